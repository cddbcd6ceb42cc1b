package sermons

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/internal/audio"
	"github.com/JaimeStill/lectern/pkg/query"
	"github.com/JaimeStill/lectern/pkg/repository"
)

// Patch holds the fields to change on an existing record. Nil fields keep prior values.
type Patch struct {
	Title       *string
	Description *string
	Asset       *audio.Asset
}

// Store persists sermon records. Errors other than ErrNotFound wrap ErrPersistence.
type Store interface {
	Count(ctx context.Context, search *string) (int, error)
	Page(ctx context.Context, search *string, offset, limit int) ([]Sermon, error)
	Find(ctx context.Context, id uuid.UUID) (*Sermon, error)
	Create(ctx context.Context, title, description *string, asset audio.Asset) (*Sermon, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Sermon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgres struct {
	db *sql.DB
}

// NewStore creates a Store backed by the sermons table.
func NewStore(db *sql.DB) Store {
	return &postgres{db: db}
}

func (p *postgres) Count(ctx context.Context, search *string) (int, error) {
	q, args := catalogQuery(search).BuildCount()

	total, err := repository.QueryScalar[int](ctx, p.db, q, args...)
	if err != nil {
		return 0, storeError("count sermons", err)
	}
	return total, nil
}

func (p *postgres) Page(ctx context.Context, search *string, offset, limit int) ([]Sermon, error) {
	q, args := catalogQuery(search).BuildPage(offset, limit)

	items, err := repository.QueryMany(ctx, p.db, q, args, scanSermon)
	if err != nil {
		return nil, storeError("query sermons", err)
	}
	return items, nil
}

func (p *postgres) Find(ctx context.Context, id uuid.UUID) (*Sermon, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	s, err := repository.QueryOne(ctx, p.db, q, args, scanSermon)
	if err != nil {
		return nil, storeError("find sermon", err)
	}
	return &s, nil
}

func (p *postgres) Create(ctx context.Context, title, description *string, asset audio.Asset) (*Sermon, error) {
	q := `
		INSERT INTO sermons(title, description, asset_url, asset_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + returning

	args := []any{title, description, asset.URL, asset.ID}

	s, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (Sermon, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSermon)
	})
	if err != nil {
		return nil, storeError("insert sermon", err)
	}
	return &s, nil
}

func (p *postgres) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Sermon, error) {
	q := `
		UPDATE sermons SET
			title = COALESCE($2::text, title),
			description = COALESCE($3::text, description),
			asset_url = COALESCE($4::text, asset_url),
			asset_id = COALESCE($5::text, asset_id),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + returning

	var assetURL, assetID *string
	if patch.Asset != nil {
		assetURL = &patch.Asset.URL
		assetID = &patch.Asset.ID
	}

	args := []any{id, patch.Title, patch.Description, assetURL, assetID}

	s, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (Sermon, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSermon)
	})
	if err != nil {
		return nil, storeError("update sermon", err)
	}
	return &s, nil
}

func (p *postgres) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, p.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM sermons WHERE id = $1", id)
	})
	if err != nil {
		return storeError("delete sermon", err)
	}
	return nil
}

func catalogQuery(search *string) *query.Builder {
	return query.
		NewBuilder(projection, newestFirst).
		WhereSearch(search, "Title", "Description")
}

// storeError keeps ErrNotFound and marks everything else as ErrPersistence.
func storeError(op string, err error) error {
	err = repository.MapError(err, repository.Errors{NotFound: ErrNotFound})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
