package migrations

import (
	"io/fs"

	tableviews "github.com/goliatone/go-tableviews"
)

func init() {
	coreFS, err := fs.Sub(tableviews.GetCoreMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(coreFS)
}
