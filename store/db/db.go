// Package db handles the creation of database drivers.
package db

import (
	"github.com/pkg/errors"

	"github.com/vectool/vectool/internal/profile"
	"github.com/vectool/vectool/store"
	"github.com/vectool/vectool/store/db/postgres"
	"github.com/vectool/vectool/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "postgres":
		return postgres.NewDB(profile)
	case "sqlite":
		return sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s", profile.Driver)
	}
}
