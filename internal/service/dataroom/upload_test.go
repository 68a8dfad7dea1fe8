package dataroom

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"dataroom/internal/domain"
	roomSvc "dataroom/internal/domain/services/dataroom"
)

func TestUploadRejections(t *testing.T) {
	env := newTestEnv(t)
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")
	env.upload(t, env.userA, docs.ID, "taken.pdf", "pdf")
	before := env.objects.Len()

	tests := []struct {
		name     string
		userID   string
		folderID string
		fileName string
		mime     string
		body     string
		wantKind domain.ErrorKind
	}{
		{name: "not allow-listed", fileName: "a.png", mime: "image/png", body: "png", wantKind: domain.KindUnsupportedMediaType},
		{name: "over ceiling", fileName: "big.pdf", mime: "application/pdf", body: strings.Repeat("x", 2048), wantKind: domain.KindPayloadTooLarge},
		{name: "empty body", fileName: "empty.pdf", mime: "application/pdf", body: "", wantKind: domain.KindValidationFailed},
		{name: "blank name", fileName: "  ", mime: "application/pdf", body: "pdf", wantKind: domain.KindValidationFailed},
		{name: "duplicate name", fileName: "taken.pdf", mime: "application/pdf", body: "pdf", wantKind: domain.KindConflict},
		{name: "stranger", userID: env.userB, fileName: "new.pdf", mime: "application/pdf", body: "pdf", wantKind: domain.KindNotFound},
		{name: "unknown folder", folderID: "00000000-0000-0000-0000-000000000000", fileName: "new.pdf", mime: "application/pdf", body: "pdf", wantKind: domain.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, folderID := tt.userID, tt.folderID
			if userID == "" {
				userID = env.userA
			}
			if folderID == "" {
				folderID = docs.ID
			}
			_, err := env.uploads.Upload(context.Background(), &roomSvc.UploadRequest{
				UserID:      userID,
				FolderID:    folderID,
				Name:        tt.fileName,
				ContentType: tt.mime,
				Size:        int64(len(tt.body)),
				Body:        strings.NewReader(tt.body),
			})
			if got := domain.KindOf(err); got != tt.wantKind {
				t.Errorf("kind = %q (err %v), want %q", got, err, tt.wantKind)
			}
		})
	}

	if env.objects.Len() != before {
		t.Errorf("rejected uploads left %d objects behind", env.objects.Len()-before)
	}
}

func TestUploadAcceptsContentTypeParameters(t *testing.T) {
	env := newTestEnv(t)
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")

	file, err := env.uploads.Upload(context.Background(), &roomSvc.UploadRequest{
		UserID:      env.userA,
		FolderID:    docs.ID,
		Name:        "scan.pdf",
		ContentType: "Application/PDF; charset=binary",
		Size:        3,
		Body:        strings.NewReader("pdf"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if file.MimeType != "application/pdf" {
		t.Errorf("MimeType = %q", file.MimeType)
	}
}

type failingStore struct {
	putErr  error
	deleted []string
}

func (f *failingStore) Put(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	return "files/racy", nil
}

func (f *failingStore) Delete(ctx context.Context, ref string) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *failingStore) PublicURL(ctx context.Context, ref string) (string, error) { return "", nil }

func TestUploadStorageFailureWritesNoRow(t *testing.T) {
	env := newTestEnv(t)
	room := env.room(t, env.userA, "Room1")
	docs := env.folder(t, env.userA, room.ID, nil, "Docs")

	store := &failingStore{putErr: errors.New("bucket unavailable")}
	svc := NewUploadService(env.store.Folders(), env.store.Files(), store, authorizerOf(env), uploadPolicyOf(env), discardLogger())

	_, err := svc.Upload(context.Background(), &roomSvc.UploadRequest{
		UserID: env.userA, FolderID: docs.ID, Name: "a.pdf", ContentType: "application/pdf", Size: 1, Body: strings.NewReader("a"),
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("err = %v, want upstream failure", err)
	}
	if _, _, files := env.store.Counts(); files != 0 {
		t.Errorf("files = %d after failed put, want 0", files)
	}
}
