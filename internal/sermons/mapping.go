package sermons

import (
	"github.com/JaimeStill/lectern/pkg/query"
	"github.com/JaimeStill/lectern/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "sermons", "s").
	Project("id", "ID").
	Project("title", "Title").
	Project("description", "Description").
	Project("asset_url", "AssetURL").
	Project("asset_id", "AssetID").
	Project("position", "Position")

var returning = projection.Returning()

var newestFirst = query.SortField{
	Field:      "Position",
	Descending: true,
}

func scanSermon(s repository.Scanner) (Sermon, error) {
	var m Sermon
	err := s.Scan(
		&m.ID,
		&m.Title,
		&m.Description,
		&m.AssetURL,
		&m.AssetID,
		&m.Position,
	)
	return m, err
}
