package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JaimeStill/lectern/pkg/lifecycle"
	"github.com/JaimeStill/lectern/pkg/storage"
)

func newBadger(t *testing.T) storage.System {
	t.Helper()

	cfg := &storage.Config{
		Provider:      storage.ProviderBadger,
		InMemory:      true,
		PublicBaseURL: "http://localhost:8080/api/assets",
		CacheControl:  "public, max-age=60",
	}

	sys, err := storage.New(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		if err := lc.Shutdown(5 * time.Second); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})

	return sys
}

func readBlob(t *testing.T, sys storage.System, key string) (*storage.Blob, []byte) {
	t.Helper()

	blob, err := sys.Download(context.Background(), key)
	if err != nil {
		t.Fatalf("Download(%s) error = %v", key, err)
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(blob.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return blob, data
}

func TestBadgerUploadDownload(t *testing.T) {
	sys := newBadger(t)
	ctx := context.Background()

	payload := []byte("ID3 audio bytes")
	err := sys.Upload(ctx, "sermons/a", bytes.NewReader(payload), storage.UploadOptions{ContentType: "audio/mpeg"})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	blob, data := readBlob(t, sys, "sermons/a")
	if !bytes.Equal(data, payload) {
		t.Errorf("body = %q, want %q", data, payload)
	}
	if blob.ContentType != "audio/mpeg" {
		t.Errorf("content type = %s, want audio/mpeg", blob.ContentType)
	}
	if blob.ContentLength != int64(len(payload)) {
		t.Errorf("content length = %d, want %d", blob.ContentLength, len(payload))
	}
	if blob.CacheControl != "public, max-age=60" {
		t.Errorf("cache control = %s", blob.CacheControl)
	}
}

func TestBadgerCreateOnly(t *testing.T) {
	sys := newBadger(t)
	ctx := context.Background()

	opts := storage.UploadOptions{ContentType: "audio/mpeg"}
	if err := sys.Upload(ctx, "sermons/a", bytes.NewReader([]byte("one")), opts); err != nil {
		t.Fatalf("first Upload() error = %v", err)
	}

	err := sys.Upload(ctx, "sermons/a", bytes.NewReader([]byte("two")), opts)
	if !errors.Is(err, storage.ErrExists) {
		t.Fatalf("second Upload() error = %v, want ErrExists", err)
	}

	_, data := readBlob(t, sys, "sermons/a")
	if string(data) != "one" {
		t.Errorf("body = %q, want original content", data)
	}
}

func TestBadgerOverwriteInvalidates(t *testing.T) {
	sys := newBadger(t)
	ctx := context.Background()

	if err := sys.Upload(ctx, "sermons/a", bytes.NewReader([]byte("one")), storage.UploadOptions{}); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	err := sys.Upload(ctx, "sermons/a", bytes.NewReader([]byte("two")), storage.UploadOptions{
		ContentType: "audio/wav",
		Overwrite:   true,
		Invalidate:  true,
	})
	if err != nil {
		t.Fatalf("overwrite Upload() error = %v", err)
	}

	blob, data := readBlob(t, sys, "sermons/a")
	if string(data) != "two" {
		t.Errorf("body = %q, want replaced content", data)
	}
	if blob.CacheControl != storage.CacheControlInvalidate {
		t.Errorf("cache control = %s, want %s", blob.CacheControl, storage.CacheControlInvalidate)
	}
	if got := sys.URL("sermons/a"); got != "http://localhost:8080/api/assets/sermons/a" {
		t.Errorf("URL() = %s", got)
	}
}

func TestBadgerDelete(t *testing.T) {
	sys := newBadger(t)
	ctx := context.Background()

	if err := sys.Upload(ctx, "sermons/a", bytes.NewReader([]byte("x")), storage.UploadOptions{}); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if err := sys.Delete(ctx, "sermons/a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := sys.Delete(ctx, "sermons/a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := sys.Download(ctx, "sermons/a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
}

func TestBadgerListPaging(t *testing.T) {
	sys := newBadger(t)
	ctx := context.Background()

	for i := range 5 {
		key := fmt.Sprintf("sermons/%d", i)
		if err := sys.Upload(ctx, key, bytes.NewReader([]byte("x")), storage.UploadOptions{}); err != nil {
			t.Fatalf("Upload(%s) error = %v", key, err)
		}
	}
	if err := sys.Upload(ctx, "other/z", bytes.NewReader([]byte("x")), storage.UploadOptions{}); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	var (
		keys   []string
		marker string
		pages  int
	)
	for {
		page, err := sys.List(ctx, "sermons/", marker, 2)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		pages++
		for _, b := range page.Blobs {
			keys = append(keys, b.Key)
		}
		if page.NextMarker == "" {
			break
		}
		marker = page.NextMarker
	}

	if len(keys) != 5 {
		t.Fatalf("listed %d keys, want 5: %v", len(keys), keys)
	}
	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
	for i, k := range keys {
		if want := fmt.Sprintf("sermons/%d", i); k != want {
			t.Errorf("keys[%d] = %s, want %s", i, k, want)
		}
	}
}

func TestBadgerListInvalidMax(t *testing.T) {
	sys := newBadger(t)

	_, err := sys.List(context.Background(), "", "", 0)
	if !errors.Is(err, storage.ErrInvalidMaxResults) {
		t.Errorf("List() error = %v, want ErrInvalidMaxResults", err)
	}
}
