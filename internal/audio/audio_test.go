package audio_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/lectern/internal/audio"
	"github.com/JaimeStill/lectern/pkg/lifecycle"
	"github.com/JaimeStill/lectern/pkg/storage"
)

const publicBase = "http://localhost:8080/api/assets"

func newStore(t *testing.T) storage.System {
	t.Helper()

	cfg := &storage.Config{
		Provider:      storage.ProviderBadger,
		InMemory:      true,
		PublicBaseURL: publicBase,
		CacheControl:  "public, max-age=60",
	}
	store, err := storage.New(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}

	lc := lifecycle.New()
	if err := store.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	return store
}

func fetch(t *testing.T, store storage.System, key string) *storage.Blob {
	t.Helper()
	blob, err := store.Download(context.Background(), key)
	if err != nil {
		t.Fatalf("Download(%s) error = %v", key, err)
	}
	return blob
}

func body(t *testing.T, blob *storage.Blob) []byte {
	t.Helper()
	defer blob.Body.Close()
	data, err := io.ReadAll(blob.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return data
}

func TestUpload(t *testing.T) {
	store := newStore(t)
	p := audio.New(store, 1<<20, slog.New(slog.DiscardHandler))

	data := append([]byte("ID3"), bytes.Repeat([]byte{0x01}, 512)...)
	asset, err := p.Upload(context.Background(), data)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !strings.HasPrefix(asset.ID, audio.Namespace+"/") {
		t.Errorf("id %q missing namespace", asset.ID)
	}
	if asset.URL != publicBase+"/"+asset.ID {
		t.Errorf("url = %s, want %s/%s", asset.URL, publicBase, asset.ID)
	}

	blob := fetch(t, store, asset.ID)
	if blob.ContentType != "audio/mpeg" {
		t.Errorf("content type = %s, want audio/mpeg", blob.ContentType)
	}
	if got := body(t, blob); !bytes.Equal(got, data) {
		t.Error("stored bytes differ from upload")
	}
}

func TestUploadDistinctIDs(t *testing.T) {
	p := audio.New(newStore(t), 1<<20, slog.New(slog.DiscardHandler))

	a, err := p.Upload(context.Background(), []byte("one"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	b, err := p.Upload(context.Background(), []byte("two"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("uploads share id %s", a.ID)
	}
}

func TestUploadRejects(t *testing.T) {
	p := audio.New(newStore(t), 8, slog.New(slog.DiscardHandler))

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		status  int
	}{
		{"empty", nil, audio.ErrEmpty, http.StatusBadRequest},
		{"too large", bytes.Repeat([]byte("a"), 9), audio.ErrTooLarge, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Upload(context.Background(), tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if got := audio.MapHTTPStatus(err); got != tt.status {
				t.Errorf("status = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestReplacePreservesReference(t *testing.T) {
	store := newStore(t)
	p := audio.New(store, 1<<20, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	original, err := p.Upload(ctx, []byte("first take"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	replaced, err := p.Replace(ctx, original.ID, []byte("second take"))
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if replaced != original {
		t.Errorf("Replace() = %+v, want %+v", replaced, original)
	}

	blob := fetch(t, store, original.ID)
	if blob.CacheControl != storage.CacheControlInvalidate {
		t.Errorf("cache control = %s, want %s", blob.CacheControl, storage.CacheControlInvalidate)
	}
	if got := body(t, blob); string(got) != "second take" {
		t.Errorf("body = %q, want replaced content", got)
	}
}

func TestReplaceInvalidID(t *testing.T) {
	p := audio.New(newStore(t), 1<<20, slog.New(slog.DiscardHandler))

	_, err := p.Replace(context.Background(), "other/abc", []byte("x"))
	if !errors.Is(err, audio.ErrInvalidID) {
		t.Errorf("Replace() error = %v, want ErrInvalidID", err)
	}
}

func TestRemoveOutcomes(t *testing.T) {
	p := audio.New(newStore(t), 1<<20, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	asset, err := p.Upload(ctx, []byte("audio"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	got, err := p.Remove(ctx, asset.ID)
	if err != nil || got != audio.Removed {
		t.Fatalf("first Remove() = %v, %v; want Removed", got, err)
	}

	got, err = p.Remove(ctx, asset.ID)
	if err != nil || got != audio.AlreadyAbsent {
		t.Fatalf("second Remove() = %v, %v; want AlreadyAbsent", got, err)
	}
}

// failingStore returns err from every mutating call.
type failingStore struct {
	storage.System
	err error
}

func (f failingStore) Upload(context.Context, string, io.Reader, storage.UploadOptions) error {
	return f.err
}

func (f failingStore) Delete(context.Context, string) error {
	return f.err
}

func (f failingStore) URL(key string) string {
	return publicBase + "/" + key
}

func TestUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
		status  int
	}{
		{
			name:    "unavailable",
			err:     fmt.Errorf("%w: connection refused", storage.ErrUnavailable),
			wantErr: audio.ErrUnavailable,
			status:  http.StatusServiceUnavailable,
		},
		{
			name:    "deadline",
			err:     context.DeadlineExceeded,
			wantErr: audio.ErrUnavailable,
			status:  http.StatusServiceUnavailable,
		},
		{
			name:    "rejected",
			err:     errors.New("403 AuthorizationFailure"),
			wantErr: audio.ErrUploadFailed,
			status:  http.StatusBadGateway,
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := audio.New(failingStore{err: tt.err}, 1<<20, slog.New(slog.DiscardHandler))

			if _, err := p.Upload(ctx, []byte("x")); !errors.Is(err, tt.wantErr) {
				t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := p.Replace(ctx, audio.Namespace+"/abc", []byte("x")); !errors.Is(err, tt.wantErr) {
				t.Errorf("Replace() error = %v, want %v", err, tt.wantErr)
			}

			got, err := p.Remove(ctx, audio.Namespace+"/abc")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Remove() error = %v, want %v", err, tt.wantErr)
			}
			if got == audio.Removed || got == audio.AlreadyAbsent {
				t.Errorf("Remove() outcome = %v on failure", got)
			}
			if status := audio.MapHTTPStatus(err); status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
		})
	}
}
