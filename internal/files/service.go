package files

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/logger"
)

const (
	siteNamespace   = "sites"
	optionNamespace = "options"
)

type fileListRepo interface {
	AppendFile(ctx context.Context, id uuid.UUID, file dbtypes.UploadedFile) error
	RemoveFileByURL(ctx context.Context, id uuid.UUID, url string) error
}

type objectStore interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
	DeleteObject(ctx context.Context, objectName string) error
	ParseObjectURL(raw string) (string, error)
}

// UploadInput carries one incoming attachment binary.
type UploadInput struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// Service uploads attachment binaries and keeps the owners' inline file
// lists in step with the object store.
type Service interface {
	AttachToSite(ctx context.Context, siteID uuid.UUID, input UploadInput) (*dbtypes.UploadedFile, error)
	DetachFromSite(ctx context.Context, siteID uuid.UUID, url string) error
	AttachToOption(ctx context.Context, optionID uuid.UUID, input UploadInput) (*dbtypes.UploadedFile, error)
	DetachFromOption(ctx context.Context, optionID uuid.UUID, url string) error
	CleanupObjects(ctx context.Context, lists ...dbtypes.FileList) error
}

type service struct {
	sites    fileListRepo
	options  fileListRepo
	store    objectStore
	logg     *logger.Logger
	maxBytes int64
	now      func() time.Time
}

// NewService constructs the files service.
func NewService(sites, options fileListRepo, store objectStore, logg *logger.Logger, maxUploadMB int) (Service, error) {
	if sites == nil || options == nil {
		return nil, fmt.Errorf("file list repositories required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		sites:    sites,
		options:  options,
		store:    store,
		logg:     logg,
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
		now:      time.Now,
	}, nil
}

func (s *service) AttachToSite(ctx context.Context, siteID uuid.UUID, input UploadInput) (*dbtypes.UploadedFile, error) {
	return s.attach(ctx, s.sites, siteNamespace, siteID, input)
}

func (s *service) DetachFromSite(ctx context.Context, siteID uuid.UUID, url string) error {
	return s.detach(ctx, s.sites, siteID, url)
}

func (s *service) AttachToOption(ctx context.Context, optionID uuid.UUID, input UploadInput) (*dbtypes.UploadedFile, error) {
	return s.attach(ctx, s.options, optionNamespace, optionID, input)
}

func (s *service) DetachFromOption(ctx context.Context, optionID uuid.UUID, url string) error {
	return s.detach(ctx, s.options, optionID, url)
}

// attach uploads the binary first, then appends the descriptor to the
// owner's list. When the append fails the fresh binary is removed again so
// the store does not accumulate orphans.
func (s *service) attach(ctx context.Context, repo fileListRepo, namespace string, ownerID uuid.UUID, input UploadInput) (*dbtypes.UploadedFile, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	fileName := sanitizeFileName(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file exceeds the upload size limit")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file content is required")
	}

	// Timestamp-prefixed ids keep object keys collision-resistant per owner.
	fileID := fmt.Sprintf("%d_%s", s.now().UnixMilli(), fileName)
	objectName := path.Join(namespace, ownerID.String(), fileID)

	url, err := s.store.Upload(ctx, objectName, input.ContentType, input.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading attachment")
	}

	descriptor := dbtypes.UploadedFile{
		ID:   fileID,
		Name: fileName,
		Type: input.ContentType,
		URL:  url,
	}

	if err := repo.AppendFile(ctx, ownerID, descriptor); err != nil {
		cleanupErr := s.store.DeleteObject(ctx, objectName)
		if cleanupErr != nil && s.logg != nil {
			s.logg.Warn(ctx, "orphaned attachment binary left behind")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, multierr.Append(err, cleanupErr), "recording attachment")
	}

	return &descriptor, nil
}

// detach resolves the stored URL back to its object, deletes the binary,
// then drops the descriptor from the owner's list.
func (s *service) detach(ctx context.Context, repo fileListRepo, ownerID uuid.UUID, url string) error {
	if ownerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	if strings.TrimSpace(url) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file url is required")
	}

	objectName, err := s.store.ParseObjectURL(url)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "resolving attachment url")
	}

	if err := s.store.DeleteObject(ctx, objectName); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting attachment binary")
	}

	if err := repo.RemoveFileByURL(ctx, ownerID, url); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "removing attachment record")
	}
	return nil
}

// CleanupObjects best-effort deletes every binary referenced by the given
// lists. Failures are combined and reported, not fatal to the caller.
func (s *service) CleanupObjects(ctx context.Context, lists ...dbtypes.FileList) error {
	var combined error
	for _, list := range lists {
		for _, file := range list {
			objectName, err := s.store.ParseObjectURL(file.URL)
			if err != nil {
				combined = multierr.Append(combined, err)
				continue
			}
			if err := s.store.DeleteObject(ctx, objectName); err != nil {
				combined = multierr.Append(combined, err)
			}
		}
	}
	return combined
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	// Strip any client-supplied path, keep the base name only.
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
