package db

import (
	"github.com/pkg/errors"

	"github.com/i474232898/weather-subscription-bot/internal/store"
	"github.com/i474232898/weather-subscription-bot/internal/store/db/mysql"
	"github.com/i474232898/weather-subscription-bot/internal/store/db/postgres"
	"github.com/i474232898/weather-subscription-bot/internal/store/db/sqlite"
)

// Profile selects the database engine and where to find it.
type Profile struct {
	// Driver is one of "sqlite", "postgres" or "mysql".
	Driver string
	// Path is the sqlite database file.
	Path string
	// DSN is used by the postgres and mysql drivers.
	DSN string
}

// NewDBDriver creates the store driver matching the profile.
func NewDBDriver(profile *Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "", "sqlite":
		driver, err = sqlite.NewDB(profile.Path)
	case "postgres":
		driver, err = postgres.NewDB(profile.DSN)
	case "mysql":
		driver, err = mysql.NewDB(profile.DSN)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
