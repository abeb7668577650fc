package setup

import (
	"context"
	"database/sql"
	"log/slog"

	"birthday-reminders/internal/adapters/storage/jsonfile"
	mem "birthday-reminders/internal/adapters/storage/memory"
	pg "birthday-reminders/internal/adapters/storage/postgres"
	"birthday-reminders/internal/config"
	"birthday-reminders/internal/domain/birthdays"
	"birthday-reminders/internal/domain/users"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type Repos struct {
	Birthdays birthdays.Repository
	Users     users.Repository

	// Close libera la conexión (postgres). Nunca es nil.
	Close func() error
}

func noopClose() error { return nil }

func NewReposFromConfig(ctx context.Context, conf *config.Config) (*Repos, error) {
	switch conf.Storage.Driver {
	case config.StorageMemory:
		slog.WarnContext(ctx, "using in-memory storage, data will be lost on restart")
		return &Repos{
			Birthdays: mem.NewBirthdayRepo(),
			Users:     mem.NewUserRepo(),
			Close:     noopClose,
		}, nil

	case config.StorageFile:
		store, err := jsonfile.Open(afero.NewOsFs(), conf.Storage.FileDir)
		if err != nil {
			return nil, errors.Wrap(err, "could not open json file store")
		}
		return &Repos{
			Birthdays: jsonfile.NewBirthdayRepo(store),
			Users:     jsonfile.NewUserRepo(store),
			Close:     noopClose,
		}, nil

	case config.StoragePostgres:
		db, err := OpenPostgres(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, errors.Wrap(err, "could not migrate postgres schema")
		}
		return &Repos{
			Birthdays: pg.NewBirthdaysRepo(db),
			Users:     pg.NewUsersRepo(db),
			Close:     db.Close,
		}, nil
	}

	return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
}

func OpenPostgres(ctx context.Context, conf *config.Config) (*sql.DB, error) {
	db, err := pg.Open(ctx, conf.Storage.PostgresDSN)
	if err != nil {
		return nil, errors.Wrap(err, "could not open postgres database")
	}
	return db, nil
}
