package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/batiserv/batiserv-backend/pkg/db/types"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
)

type stubFileListRepo struct {
	appended  []dbtypes.UploadedFile
	removed   []string
	appendErr error
	removeErr error
}

func (s *stubFileListRepo) AppendFile(ctx context.Context, id uuid.UUID, file dbtypes.UploadedFile) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, file)
	return nil
}

func (s *stubFileListRepo) RemoveFileByURL(ctx context.Context, id uuid.UUID, url string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, url)
	return nil
}

type stubObjectStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func (s *stubObjectStore) Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, objectName)
	return "https://storage.googleapis.com/test-bucket/" + objectName, nil
}

func (s *stubObjectStore) DeleteObject(ctx context.Context, objectName string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletes = append(s.deletes, objectName)
	return nil
}

func (s *stubObjectStore) ParseObjectURL(raw string) (string, error) {
	const prefix = "https://storage.googleapis.com/test-bucket/"
	if !strings.HasPrefix(raw, prefix) {
		return "", fmt.Errorf("unexpected url %q", raw)
	}
	return strings.TrimPrefix(raw, prefix), nil
}

func newTestService(t *testing.T, sites, options *stubFileListRepo, store *stubObjectStore) *service {
	t.Helper()
	svc, err := NewService(sites, options, store, nil, 25)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	typed := svc.(*service)
	typed.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return typed
}

func TestAttachToSiteUploadsThenAppends(t *testing.T) {
	t.Parallel()

	sites := &stubFileListRepo{}
	store := &stubObjectStore{}
	svc := newTestService(t, sites, &stubFileListRepo{}, store)

	siteID := uuid.New()
	got, err := svc.AttachToSite(context.Background(), siteID, UploadInput{
		FileName:    "devis.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
		Body:        strings.NewReader("%PDF"),
	})
	if err != nil {
		t.Fatalf("AttachToSite: %v", err)
	}

	wantID := "1700000000000_devis.pdf"
	if got.ID != wantID {
		t.Fatalf("expected file id %q, got %q", wantID, got.ID)
	}
	if got.Name != "devis.pdf" || got.Type != "application/pdf" {
		t.Fatalf("descriptor fields wrong: %+v", got)
	}
	wantObject := "sites/" + siteID.String() + "/" + wantID
	if len(store.uploads) != 1 || store.uploads[0] != wantObject {
		t.Fatalf("expected upload of %q, got %v", wantObject, store.uploads)
	}
	if len(sites.appended) != 1 || sites.appended[0].URL != got.URL {
		t.Fatalf("expected appended descriptor, got %v", sites.appended)
	}
}

func TestAttachCleansUpBinaryWhenAppendFails(t *testing.T) {
	t.Parallel()

	sites := &stubFileListRepo{appendErr: errors.New("db down")}
	store := &stubObjectStore{}
	svc := newTestService(t, sites, &stubFileListRepo{}, store)

	_, err := svc.AttachToSite(context.Background(), uuid.New(), UploadInput{
		FileName:    "plan.png",
		ContentType: "image/png",
		SizeBytes:   10,
		Body:        strings.NewReader("png"),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(store.deletes) != 1 {
		t.Fatalf("expected the fresh binary to be deleted, got %v", store.deletes)
	}
}

func TestAttachRejectsOversizedUpload(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubFileListRepo{}, &stubFileListRepo{}, &stubObjectStore{})

	_, err := svc.AttachToOption(context.Background(), uuid.New(), UploadInput{
		FileName:    "big.bin",
		ContentType: "application/octet-stream",
		SizeBytes:   26 * 1024 * 1024,
		Body:        strings.NewReader("x"),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDetachDeletesBinaryThenRecord(t *testing.T) {
	t.Parallel()

	options := &stubFileListRepo{}
	store := &stubObjectStore{}
	svc := newTestService(t, &stubFileListRepo{}, options, store)

	optionID := uuid.New()
	url := "https://storage.googleapis.com/test-bucket/options/" + optionID.String() + "/1_fiche.pdf"
	if err := svc.DetachFromOption(context.Background(), optionID, url); err != nil {
		t.Fatalf("DetachFromOption: %v", err)
	}
	if len(store.deletes) != 1 {
		t.Fatalf("expected binary delete, got %v", store.deletes)
	}
	if len(options.removed) != 1 || options.removed[0] != url {
		t.Fatalf("expected record removal for %q, got %v", url, options.removed)
	}
}

func TestCleanupObjectsCombinesFailures(t *testing.T) {
	t.Parallel()

	store := &stubObjectStore{deleteErr: errors.New("boom")}
	svc := newTestService(t, &stubFileListRepo{}, &stubFileListRepo{}, store)

	err := svc.CleanupObjects(context.Background(), dbtypes.FileList{
		{URL: "https://storage.googleapis.com/test-bucket/sites/a/1_x.pdf"},
		{URL: "https://storage.googleapis.com/test-bucket/sites/a/2_y.pdf"},
	})
	if err == nil {
		t.Fatal("expected combined cleanup error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected underlying failure in combined error, got %v", err)
	}
}
