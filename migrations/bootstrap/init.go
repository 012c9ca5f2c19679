// Package bootstrap registers minimal projects and users tables. Import it for
// side effects when the host application does not own those tables.
package bootstrap

import (
	"io/fs"

	tableviews "github.com/goliatone/go-tableviews"
	"github.com/goliatone/go-tableviews/migrations"
)

func init() {
	bootstrapFS, err := fs.Sub(tableviews.GetBootstrapMigrationsFS(), "data/sql/bootstrap")
	if err != nil {
		return
	}
	migrations.Register(bootstrapFS)
}
