// Package audio stores sermon audio in the remote asset store.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/lectern/pkg/formatting"
	"github.com/JaimeStill/lectern/pkg/storage"
	"github.com/JaimeStill/lectern/pkg/telemetry"
)

// Namespace is the key prefix under which all audio objects are stored.
const Namespace = "sermons"

// Asset references one stored audio object.
// ID is the object key used for overwrite and delete; URL is its public location.
type Asset struct {
	URL string
	ID  string
}

// Removal is the outcome of a successful Remove call.
type Removal int

const (
	// Removed means the object existed and was deleted.
	Removed Removal = iota + 1
	// AlreadyAbsent means no object existed under the id.
	AlreadyAbsent
)

func (r Removal) String() string {
	switch r {
	case Removed:
		return "removed"
	case AlreadyAbsent:
		return "already_absent"
	}
	return "unknown"
}

// Pipeline uploads, replaces, and removes audio objects.
type Pipeline interface {
	// Upload stores data under a new id. It never overwrites an existing object.
	Upload(ctx context.Context, data []byte) (Asset, error)
	// Replace overwrites the object at id and marks cached copies stale.
	// The returned Asset has the same id and url.
	Replace(ctx context.Context, id string, data []byte) (Asset, error)
	// Remove deletes the object at id. A failed delete is reported through the error.
	Remove(ctx context.Context, id string) (Removal, error)
}

type pipeline struct {
	store   storage.System
	maxSize int64
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a Pipeline over store that rejects payloads larger than maxSize bytes.
func New(store storage.System, maxSize int64, logger *slog.Logger) Pipeline {
	return &pipeline{
		store:   store,
		maxSize: maxSize,
		logger:  logger.With("system", "audio"),
		tracer:  telemetry.Tracer("github.com/JaimeStill/lectern/internal/audio"),
	}
}

func (p *pipeline) Upload(ctx context.Context, data []byte) (Asset, error) {
	ctx, span := p.tracer.Start(ctx, "audio.upload")
	defer span.End()

	if err := p.check(data); err != nil {
		return Asset{}, p.fail(span, "upload", err)
	}

	id := Namespace + "/" + uuid.NewString()
	span.SetAttributes(attribute.String("audio.id", id), attribute.Int("audio.size", len(data)))

	opts := storage.UploadOptions{ContentType: contentType(data)}
	if err := p.store.Upload(ctx, id, bytes.NewReader(data), opts); err != nil {
		return Asset{}, p.fail(span, "upload", upstream(err))
	}

	asset := Asset{URL: p.store.URL(id), ID: id}
	p.succeed("upload", len(data))
	p.logger.Info("asset uploaded", "asset_id", asset.ID, "size", formatting.FormatBytes(int64(len(data)), 1), "content_type", opts.ContentType)
	return asset, nil
}

func (p *pipeline) Replace(ctx context.Context, id string, data []byte) (Asset, error) {
	ctx, span := p.tracer.Start(ctx, "audio.replace", trace.WithAttributes(attribute.String("audio.id", id)))
	defer span.End()

	if !strings.HasPrefix(id, Namespace+"/") {
		return Asset{}, p.fail(span, "replace", fmt.Errorf("%w: %s", ErrInvalidID, id))
	}
	if err := p.check(data); err != nil {
		return Asset{}, p.fail(span, "replace", err)
	}

	opts := storage.UploadOptions{
		ContentType: contentType(data),
		Overwrite:   true,
		Invalidate:  true,
	}
	if err := p.store.Upload(ctx, id, bytes.NewReader(data), opts); err != nil {
		return Asset{}, p.fail(span, "replace", upstream(err))
	}

	asset := Asset{URL: p.store.URL(id), ID: id}
	p.succeed("replace", len(data))
	p.logger.Info("asset replaced", "asset_id", asset.ID, "size", formatting.FormatBytes(int64(len(data)), 1))
	return asset, nil
}

func (p *pipeline) Remove(ctx context.Context, id string) (Removal, error) {
	ctx, span := p.tracer.Start(ctx, "audio.remove", trace.WithAttributes(attribute.String("audio.id", id)))
	defer span.End()

	err := p.store.Delete(ctx, id)
	switch {
	case err == nil:
		operationsTotal.WithLabelValues("remove", Removed.String()).Inc()
		p.logger.Info("asset removed", "asset_id", id)
		return Removed, nil
	case errors.Is(err, storage.ErrNotFound):
		operationsTotal.WithLabelValues("remove", AlreadyAbsent.String()).Inc()
		span.SetAttributes(attribute.Bool("audio.absent", true))
		p.logger.Warn("asset already absent", "asset_id", id)
		return AlreadyAbsent, nil
	default:
		return 0, p.fail(span, "remove", upstream(err))
	}
}

func (p *pipeline) check(data []byte) error {
	if len(data) == 0 {
		return ErrEmpty
	}
	if p.maxSize > 0 && int64(len(data)) > p.maxSize {
		return ErrTooLarge
	}
	return nil
}

func (p *pipeline) succeed(operation string, size int) {
	operationsTotal.WithLabelValues(operation, "ok").Inc()
	uploadBytes.Observe(float64(size))
}

func (p *pipeline) fail(span trace.Span, operation string, err error) error {
	operationsTotal.WithLabelValues(operation, "error").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// upstream classifies a storage failure as ErrTooLarge, ErrUnavailable or ErrUploadFailed.
func upstream(err error) error {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return fmt.Errorf("%w: %w", ErrTooLarge, err)
	case errors.Is(err, storage.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
}

func contentType(data []byte) string {
	return mimetype.Detect(data).String()
}
