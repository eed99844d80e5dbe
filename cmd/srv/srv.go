package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/neko-jpg/schoolfestival-bot/config"
	"github.com/neko-jpg/schoolfestival-bot/internal/bot"
	"github.com/neko-jpg/schoolfestival-bot/internal/client"
	"github.com/neko-jpg/schoolfestival-bot/internal/domain"
	"github.com/neko-jpg/schoolfestival-bot/internal/domain/guildbuild"
	"github.com/neko-jpg/schoolfestival-bot/internal/repository"
	"github.com/neko-jpg/schoolfestival-bot/migration"
	"github.com/neko-jpg/schoolfestival-bot/pkg/api/discord"
	"github.com/neko-jpg/schoolfestival-bot/pkg/logger"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xcontext"
	"github.com/neko-jpg/schoolfestival-bot/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	endpoint     discord.IEndpoint
	pendingStore bot.PendingStore

	buildRunRepo repository.BuildRunRepository

	buildDomain domain.BuildDomain
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String(flagConfig))
	if err != nil {
		return err
	}

	overrides := map[string]*string{
		flagDiscordToken: &cfg.Discord.BotToken,
		flagClientID:     &cfg.Discord.ClientID,
		flagGuildID:      &cfg.Discord.GuildID,
		flagDBDriver:     &cfg.Database.Driver,
		flagDBHost:       &cfg.Database.Host,
		flagDBPort:       &cfg.Database.Port,
		flagDBName:       &cfg.Database.Database,
		flagDBUser:       &cfg.Database.User,
		flagDBPassword:   &cfg.Database.Password,
		flagDBFile:       &cfg.Database.File,
		flagRedisAddr:    &cfg.Redis.Addr,
		flagTemplatePath: &cfg.Build.TemplatePath,
		flagLogLevel:     &cfg.LogLevel,
	}

	for name, field := range overrides {
		if cctx.IsSet(name) {
			*field = cctx.String(name)
		}
	}

	if err := cfg.ValidateBuild(); err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
	return nil
}

func (s *srv) loadLogger() error {
	level, err := logger.ParseLevel(xcontext.Configs(s.ctx).LogLevel)
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
	return nil
}

// newDatabase returns nil when no database driver is configured.
func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database
	gormConfig := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	switch cfg.Driver {
	case "":
		return nil, nil
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.ConnectionString()), gormConfig)
	case "mysql":
		return gorm.Open(mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		}), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// loadDatabase connects the configured database. A database that cannot be
// reached only disables the build history.
func (s *srv) loadDatabase() {
	db, err := s.newDatabase()
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot connect to database, build history is disabled: %v", err)
		return
	}

	if db == nil {
		xcontext.Logger(s.ctx).Warnf("No database configured, build history is disabled")
		return
	}

	if err := migration.AutoMigrate(xcontext.WithDB(s.ctx, db)); err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot migrate database, build history is disabled: %v", err)
		return
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) loadEndpoint() {
	cfg := xcontext.Configs(s.ctx).Discord
	s.ctx = xcontext.WithHTTPClient(s.ctx, &http.Client{Timeout: cfg.RequestTimeout})
	s.endpoint = discord.New(cfg)
}

func (s *srv) loadPendingStore() {
	if xcontext.Configs(s.ctx).Redis.Addr == "" {
		s.pendingStore = bot.NewMemoryPendingStore()
		return
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		xcontext.Logger(s.ctx).Warnf("Cannot connect to redis, pending builds are kept in memory: %v", err)
		s.pendingStore = bot.NewMemoryPendingStore()
		return
	}

	s.pendingStore = bot.NewRedisPendingStore(redisClient)
}

func (s *srv) loadRepos() {
	s.buildRunRepo = repository.NewBuildRunRepository()
}

func (s *srv) loadDomains() {
	cfg := xcontext.Configs(s.ctx)
	s.buildDomain = domain.NewBuildDomain(
		s.buildRunRepo,
		func(guildID string) guildbuild.Target {
			return client.NewGuildTarget(s.endpoint, guildID)
		},
		guildbuild.NewTemplateLoader(cfg.Build.TemplatePath),
	)
}
