package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMemoryStorePutAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://localhost:8080/objects")

	ref, err := store.Put(ctx, strings.NewReader("%PDF-1.7"), 8, "application/pdf")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(ref, "files/") {
		t.Errorf("ref = %q, want files/ prefix", ref)
	}

	data, contentType, err := store.Get(ref)
	if err != nil || string(data) != "%PDF-1.7" || contentType != "application/pdf" {
		t.Fatalf("Get = %q, %q, %v", data, contentType, err)
	}

	url, err := store.PublicURL(ctx, ref)
	if err != nil || url != "http://localhost:8080/objects/"+ref {
		t.Errorf("PublicURL = %q, %v", url, err)
	}

	if err := store.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.PublicURL(ctx, ref); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("PublicURL after delete = %v, want ErrObjectNotFound", err)
	}
	if err := store.Delete(ctx, ref); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}

func TestMemoryStoreRejectsShortBody(t *testing.T) {
	store := NewMemoryStore("")
	if _, err := store.Put(context.Background(), strings.NewReader("abc"), 10, "application/pdf"); err == nil {
		t.Fatal("expected error for body shorter than declared size")
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d, want 0", store.Len())
	}
}

func TestParsePublicEndpoint(t *testing.T) {
	tests := []struct {
		raw        string
		wantHost   string
		wantSecure bool
		wantErr    bool
	}{
		{raw: "localhost:9000", wantHost: "localhost:9000", wantSecure: false},
		{raw: "https://files.example.com", wantHost: "files.example.com", wantSecure: true},
		{raw: "http://127.0.0.1:9000", wantHost: "127.0.0.1:9000", wantSecure: false},
		{raw: "ftp://files.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			host, secure, err := parsePublicEndpoint(tt.raw, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if host != tt.wantHost || secure != tt.wantSecure {
				t.Errorf("got %q/%v, want %q/%v", host, secure, tt.wantHost, tt.wantSecure)
			}
		})
	}
}
