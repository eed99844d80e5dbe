package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neko-jpg/schoolfestival-bot/config"
	"github.com/neko-jpg/schoolfestival-bot/migration"
	"github.com/neko-jpg/schoolfestival-bot/pkg/logger"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	GuildID  = "1100000000000000001"
	ClientID = "1100000000000000002"
	UserID   = "1100000000000000003"
)

func MockConfigs() config.Configs {
	cfg := config.Default()
	cfg.Discord = config.DiscordConfigs{
		BotToken: "token",
		ClientID: ClientID,
		GuildID:  GuildID,

		RequestTimeout: time.Second,
	}
	cfg.Build.ConfirmTimeout = time.Minute
	cfg.Database.Driver = "sqlite"

	return cfg
}

// MockContext returns a context holding test configs, a silent logger and a
// fresh in-memory database with every table migrated.
func MockContext() context.Context {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

// MockContextWithoutDB is MockContext for a process running without
// persistence.
func MockContextWithoutDB() context.Context {
	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, MockConfigs())
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
