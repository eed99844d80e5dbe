package main

import "github.com/urfave/cli/v2"

const (
	flagConfig       = "config"
	flagDiscordToken = "discord-token"
	flagClientID     = "client-id"
	flagGuildID      = "guild-id"
	flagDBDriver     = "db-driver"
	flagDBHost       = "db-host"
	flagDBPort       = "db-port"
	flagDBName       = "db-name"
	flagDBUser       = "db-user"
	flagDBPassword   = "db-password"
	flagDBFile       = "db-file"
	flagRedisAddr    = "redis-addr"
	flagTemplatePath = "template-path"
	flagLogLevel     = "log-level"
	flagGrades       = "grades"
)

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "schoolfestival-bot"
	s.app.Usage = "Build the school festival Discord server from a template"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{Name: flagConfig, EnvVars: []string{"CONFIG_FILE"}, Value: "config.toml", Usage: "TOML config file"},
		&cli.StringFlag{Name: flagDiscordToken, EnvVars: []string{"DISCORD_TOKEN"}, Usage: "bot token"},
		&cli.StringFlag{Name: flagClientID, EnvVars: []string{"CLIENT_ID"}, Usage: "application id"},
		&cli.StringFlag{Name: flagGuildID, EnvVars: []string{"GUILD_ID"}, Usage: "id of the festival server"},
		&cli.StringFlag{Name: flagDBDriver, EnvVars: []string{"DB_DRIVER"}, Usage: "mysql or sqlite, empty disables history"},
		&cli.StringFlag{Name: flagDBHost, EnvVars: []string{"DB_HOST"}},
		&cli.StringFlag{Name: flagDBPort, EnvVars: []string{"DB_PORT"}},
		&cli.StringFlag{Name: flagDBName, EnvVars: []string{"DB_NAME"}},
		&cli.StringFlag{Name: flagDBUser, EnvVars: []string{"DB_USER"}},
		&cli.StringFlag{Name: flagDBPassword, EnvVars: []string{"DB_PASSWORD"}},
		&cli.StringFlag{Name: flagDBFile, EnvVars: []string{"DB_FILE"}, Usage: "sqlite database file"},
		&cli.StringFlag{Name: flagRedisAddr, EnvVars: []string{"REDIS_ADDR"}, Usage: "keeps pending confirmations in redis"},
		&cli.StringFlag{Name: flagTemplatePath, EnvVars: []string{"TEMPLATE_PATH"}, Usage: "template file of the standard template"},
		&cli.StringFlag{Name: flagLogLevel, EnvVars: []string{"LOG_LEVEL"}},
	}
	s.app.Before = s.before
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startBot,
			Name:        "bot",
			Usage:       "Start the discord bot",
			Category:    "Bot",
			Description: `Connects to the gateway and serves the /build command on the festival server.`,
		},
		{
			Action:    s.startValidate,
			Name:      "validate",
			Usage:     "Validate a template",
			ArgsUsage: "[template]",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: flagGrades, Usage: "number of grades of a built-in template"},
			},
			Category:    "Template",
			Description: `Validates the template file, or the named built-in template, and reports every violation.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Category:    "Database",
			Description: `Creates or upgrades the build history tables.`,
		},
	}
}

func (s *srv) before(cctx *cli.Context) error {
	if err := s.loadConfig(cctx); err != nil {
		return err
	}

	return s.loadLogger()
}
