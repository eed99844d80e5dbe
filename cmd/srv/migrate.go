package main

import (
	"errors"

	"github.com/neko-jpg/schoolfestival-bot/migration"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(*cli.Context) error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	if db == nil {
		return errors.New("no database driver configured")
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	if err := migration.Migrate(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Database migrated")
	return nil
}
