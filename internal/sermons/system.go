package sermons

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/internal/audio"
	"github.com/JaimeStill/lectern/pkg/pagination"
)

// System coordinates the record store and the audio pipeline.
//
// Writes are two-phase and not transactional: audio is written before the
// record on create, and removed before the record on delete. A record write
// that fails after a successful upload leaves an orphaned asset, which is
// logged with its id and url and counted by lectern_sermons_orphaned_assets_total.
// Concurrent edits to the same id are not serialized; the last record write wins.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// List returns a newest-first page of sermons.
	List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Sermon], error)
	// Find returns the sermon with id or ErrNotFound.
	Find(ctx context.Context, id uuid.UUID) (*Sermon, error)
	// Create uploads the audio and then writes the record.
	Create(ctx context.Context, cmd CreateCommand) (*Sermon, error)
	// Update applies the supplied fields, replacing the audio in place when present.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Sermon, error)
	// Delete removes the audio and then the record. When the audio is already
	// absent the record is kept and ErrAssetAbsent is returned.
	Delete(ctx context.Context, id uuid.UUID) error
}

type system struct {
	store      Store
	pipeline   audio.Pipeline
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a sermon System over store and pipeline.
func New(
	store Store,
	pipeline audio.Pipeline,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &system{
		store:      store,
		pipeline:   pipeline,
		logger:     logger.With("system", "sermons"),
		pagination: pagination,
	}
}

func (s *system) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxUploadSize)
}

func (s *system) List(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Sermon], error) {
	page.Normalize(s.pagination)

	total, err := s.store.Count(ctx, page.Search)
	if err != nil {
		return nil, err
	}

	if total == 0 {
		result := pagination.NewPageResult[Sermon](nil, 0, page.Page, page.Limit)
		return &result, nil
	}

	var items []Sermon
	if page.Page <= pagination.TotalPages(total, page.Limit) {
		items, err = s.store.Page(ctx, page.Search, page.Offset(), page.Limit)
		if err != nil {
			return nil, err
		}
	}

	result := pagination.NewPageResult(items, total, page.Page, page.Limit)
	return &result, nil
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (*Sermon, error) {
	return s.store.Find(ctx, id)
}

func (s *system) Create(ctx context.Context, cmd CreateCommand) (*Sermon, error) {
	title := strings.TrimSpace(cmd.Title)
	description := strings.TrimSpace(cmd.Description)
	if title == "" || description == "" || len(cmd.Audio) == 0 {
		return nil, ErrMissingFields
	}

	asset, err := s.pipeline.Upload(ctx, cmd.Audio)
	if err != nil {
		return nil, fmt.Errorf("upload sermon audio: %w", err)
	}

	// The asset is committed; a client abort must not orphan it.
	sermon, err := s.store.Create(context.WithoutCancel(ctx), &title, &description, asset)
	if err != nil {
		orphanedAssets.Inc()
		s.logger.Error(
			"sermon record write failed after audio upload; asset orphaned",
			"asset_id", asset.ID,
			"asset_url", asset.URL,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("sermon created", "id", sermon.ID, "asset_id", sermon.AssetID)
	return sermon, nil
}

func (s *system) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Sermon, error) {
	if cmd.Empty() {
		return nil, ErrMissingFields
	}

	current, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := Patch{
		Title:       cmd.Title,
		Description: cmd.Description,
	}

	if len(cmd.Audio) > 0 {
		asset, err := s.pipeline.Replace(ctx, current.AssetID, cmd.Audio)
		if err != nil {
			return nil, fmt.Errorf("replace sermon audio: %w", err)
		}
		patch.Asset = &asset
	}

	storeCtx := ctx
	if patch.Asset != nil {
		storeCtx = context.WithoutCancel(ctx)
	}

	sermon, err := s.store.Update(storeCtx, id, patch)
	if err != nil {
		if patch.Asset != nil {
			s.logger.Error(
				"sermon record update failed after audio replace",
				"id", id,
				"asset_id", patch.Asset.ID,
				"error", err,
			)
		}
		return nil, err
	}

	s.logger.Info("sermon updated", "id", sermon.ID, "audio_replaced", patch.Asset != nil)
	return sermon, nil
}

func (s *system) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}

	outcome, err := s.pipeline.Remove(ctx, current.AssetID)
	if err != nil {
		return fmt.Errorf("remove sermon audio: %w", err)
	}

	switch outcome {
	case audio.Removed:
		if err := s.store.Delete(context.WithoutCancel(ctx), id); err != nil {
			return err
		}
		s.logger.Info("sermon deleted", "id", id, "asset_id", current.AssetID)
		return nil
	case audio.AlreadyAbsent:
		s.logger.Warn("sermon audio already absent; record kept", "id", id, "asset_id", current.AssetID)
		return ErrAssetAbsent
	default:
		return fmt.Errorf("remove sermon audio: unexpected outcome %v", outcome)
	}
}
