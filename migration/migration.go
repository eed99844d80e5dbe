package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/neko-jpg/schoolfestival-bot/internal/entity"
	"github.com/neko-jpg/schoolfestival-bot/pkg/logger"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
)

//go:embed mysql/*.sql
var mysqlFS embed.FS

// AutoMigrate creates the tables straight from the entities. It is used for
// sqlite databases and in tests, MySQL goes through Migrate.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.BuildRun{},
	)
}

type migrateLogger struct {
	logger logger.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Infof(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// Migrate brings the database of ctx to the latest schema.
func Migrate(ctx context.Context) error {
	if xcontext.DB(ctx) == nil {
		return errors.New("database is not configured")
	}

	if xcontext.Configs(ctx).Database.Driver != "mysql" {
		return AutoMigrate(ctx)
	}

	db, err := xcontext.DB(ctx).DB()
	if err != nil {
		return err
	}

	source, err := iofs.New(mysqlFS, "mysql")
	if err != nil {
		return fmt.Errorf("cannot read migration files: %w", err)
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, xcontext.Configs(ctx).Database.Database, driver)
	if err != nil {
		return err
	}
	m.Log = &migrateLogger{logger: xcontext.Logger(ctx)}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
