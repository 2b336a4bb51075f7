package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/batiserv/batiserv-backend/internal/users"
	pkgAuth "github.com/batiserv/batiserv-backend/pkg/auth"
	"github.com/batiserv/batiserv-backend/pkg/config"
	"github.com/batiserv/batiserv-backend/pkg/db/models"
	"github.com/batiserv/batiserv-backend/pkg/enums"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail   map[string]*models.User
	byID      map[uuid.UUID]*models.User
	lastLogin *time.Time
	newHash   string
}

func newStubUserRepo(seed ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
	for _, user := range seed {
		repo.byEmail[user.Email] = user
		repo.byID[user.ID] = user
	}
	return repo
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        dto.Email,
		PasswordHash: dto.PasswordHash,
		Name:         dto.Name,
		Role:         dto.Role,
		IsActive:     true,
	}
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.lastLogin = &at
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	r.newHash = hash
	if user, ok := r.byID[id]; ok {
		user.PasswordHash = hash
	}
	return nil
}

type stubSessionManager struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (m *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	m.generated = append(m.generated, accessID)
	return "refresh-" + accessID, nil
}

func (m *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if m.rotateErr != nil {
		return "", "", m.rotateErr
	}
	next := "rotated-" + oldAccessID
	return next, "refresh-" + next, nil
}

func (m *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	m.revoked = append(m.revoked, accessID)
	return nil
}

type stubResetStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newStubResetStore() *stubResetStore {
	return &stubResetStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubResetStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return nil
}

func (s *stubResetStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (s *stubResetStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubResetStore) ResetTokenKey(token string) string {
	return "bs:pwd_reset:" + token
}

var testJWTConfig = config.JWTConfig{
	Secret:               "test-secret",
	Issuer:               "batiserv",
	ExpirationMinutes:    30,
	ResetTokenTTLMinutes: 60,
}

type testAuth struct {
	svc     Service
	users   *stubUserRepo
	session *stubSessionManager
	resets  *stubResetStore
}

func buildTestService(t *testing.T, seed ...*models.User) *testAuth {
	t.Helper()
	env := &testAuth{
		users:   newStubUserRepo(seed...),
		session: &stubSessionManager{},
		resets:  newStubResetStore(),
	}
	svc, err := NewService(ServiceParams{
		UserRepo:       env.users,
		SessionManager: env.session,
		ResetTokens:    env.resets,
		JWTConfig:      testJWTConfig,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	env.svc = svc
	return env
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func editorUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: mustHashPassword(t, password),
		Name:         "Marie Martin",
		Role:         enums.UserRoleEditor,
		IsActive:     true,
	}
}

func TestLoginIssuesTokensAndRecordsLogin(t *testing.T) {
	user := editorUser(t, "marie@batiserv.fr", "motdepasse")
	env := buildTestService(t, user)

	resp, err := env.svc.Login(context.Background(), LoginRequest{
		Email:    "  Marie@Batiserv.fr ",
		Password: "motdepasse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("claims user = %s, want %s", claims.UserID, user.ID)
	}
	if claims.Role != enums.UserRoleEditor {
		t.Fatalf("claims role = %s, want Editor", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti claim")
	}
	if resp.RefreshToken != "refresh-"+claims.ID {
		t.Fatalf("refresh token %q not tied to session %q", resp.RefreshToken, claims.ID)
	}
	if env.users.lastLogin == nil {
		t.Fatal("last login not recorded")
	}
}

func TestLoginUnknownUserCreatesNoSession(t *testing.T) {
	env := buildTestService(t)

	_, err := env.svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@batiserv.fr",
		Password: "whatever",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if len(env.session.generated) != 0 {
		t.Fatal("session generated for unknown user")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	user := editorUser(t, "marie@batiserv.fr", "motdepasse")
	env := buildTestService(t, user)

	_, err := env.svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "pas-le-bon",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestSignupDefaultsToViewer(t *testing.T) {
	env := buildTestService(t)

	resp, err := env.svc.Signup(context.Background(), SignupRequest{
		Name:     "Paul Durand",
		Email:    "Paul@Batiserv.fr",
		Password: "motdepasse",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.User.Role != enums.UserRoleViewer {
		t.Fatalf("role = %s, want Viewer", resp.User.Role)
	}
	if resp.User.Email != "paul@batiserv.fr" {
		t.Fatalf("email = %q, want lowercased", resp.User.Email)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("signup must sign the user in")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	user := editorUser(t, "marie@batiserv.fr", "motdepasse")
	env := buildTestService(t, user)

	_, err := env.svc.Signup(context.Background(), SignupRequest{
		Name:     "Imposteur",
		Email:    "marie@batiserv.fr",
		Password: "motdepasse",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestRecoverPasswordAcksUnknownEmail(t *testing.T) {
	env := buildTestService(t)

	if err := env.svc.RecoverPassword(context.Background(), RecoverRequest{Email: "ghost@batiserv.fr"}); err != nil {
		t.Fatalf("recover must ack unknown accounts, got %v", err)
	}
	if len(env.resets.values) != 0 {
		t.Fatal("token stored for unknown account")
	}
}

func TestRecoverThenResetPassword(t *testing.T) {
	user := editorUser(t, "marie@batiserv.fr", "ancien-mdp")
	env := buildTestService(t, user)
	oldHash := user.PasswordHash

	if err := env.svc.RecoverPassword(context.Background(), RecoverRequest{Email: user.Email}); err != nil {
		t.Fatalf("recover: %v", err)
	}
	if len(env.resets.values) != 1 {
		t.Fatalf("stored %d tokens, want 1", len(env.resets.values))
	}

	var key, storedID string
	for k, v := range env.resets.values {
		key, storedID = k, v
	}
	if storedID != user.ID.String() {
		t.Fatalf("token maps to %q, want %s", storedID, user.ID)
	}
	if env.resets.ttls[key] != time.Hour {
		t.Fatalf("token ttl = %s, want 1h", env.resets.ttls[key])
	}

	token := strings.TrimPrefix(key, "bs:pwd_reset:")
	if err := env.svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Token:    token,
		Password: "nouveau-mdp",
	}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if user.PasswordHash == oldHash {
		t.Fatal("password hash unchanged")
	}
	if len(env.resets.values) != 0 {
		t.Fatal("reset token must be single-use")
	}

	err := env.svc.ResetPassword(context.Background(), ResetPasswordRequest{
		Token:    token,
		Password: "encore-un",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("reused token err = %v, want unauthorized", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	user := editorUser(t, "marie@batiserv.fr", "motdepasse")
	env := buildTestService(t, user)

	login, err := env.svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "motdepasse",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := env.svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	oldClaims, _ := pkgAuth.ParseAccessToken(testJWTConfig, login.AccessToken)
	if claims.ID == oldClaims.ID {
		t.Fatal("rotation must issue a new jti")
	}
	if claims.UserID != user.ID {
		t.Fatalf("rotated token user = %s, want %s", claims.UserID, user.ID)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := buildTestService(t)

	if err := env.svc.Logout(context.Background(), "session-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(env.session.revoked) != 1 || env.session.revoked[0] != "session-123" {
		t.Fatalf("revoked = %v, want [session-123]", env.session.revoked)
	}
}
