package sermons

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/lectern/pkg/pagination"
)

// Sermon is a catalog record referencing exactly one stored audio asset.
// Position is the store-assigned insertion order used for newest-first listing.
type Sermon struct {
	ID          uuid.UUID `json:"id"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	AssetURL    string    `json:"assetUrl"`
	AssetID     string    `json:"assetId"`
	Position    int64     `json:"-"`
}

// CreateCommand carries the fields of a new sermon and its audio payload.
type CreateCommand struct {
	Title       string
	Description string
	Audio       []byte
}

// UpdateCommand carries the supplied subset of editable fields.
// Nil text fields and an empty Audio keep prior values.
type UpdateCommand struct {
	Title       *string
	Description *string
	Audio       []byte
}

// Empty reports whether no field was supplied.
func (c UpdateCommand) Empty() bool {
	return c.Title == nil && c.Description == nil && len(c.Audio) == 0
}

// Catalog is the list response body.
type Catalog struct {
	Sermons    []Sermon        `json:"sermons"`
	Pagination pagination.Meta `json:"pagination"`
}

// NewCatalog reshapes a page result into the list response body.
func NewCatalog(page *pagination.PageResult[Sermon]) Catalog {
	return Catalog{
		Sermons:    page.Items,
		Pagination: page.Meta,
	}
}
