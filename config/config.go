package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bwmarrin/snowflake"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database DatabaseConfigs `toml:"database"`
	Discord  DiscordConfigs  `toml:"discord"`
	Build    BuildConfigs    `toml:"build"`
	Redis    RedisConfigs    `toml:"redis"`
}

type DatabaseConfigs struct {
	// Driver is mysql or sqlite. An empty driver disables persistence.
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	File     string `toml:"file"`
}

func (d *DatabaseConfigs) Enabled() bool {
	return d.Driver != ""
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.File
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&multiStatements=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type DiscordConfigs struct {
	BotToken string `toml:"bot_token"`
	ClientID string `toml:"client_id"`
	GuildID  string `toml:"guild_id"`

	// RequestTimeout bounds one REST call, rate-limit waits excluded.
	RequestTimeout time.Duration `toml:"request_timeout"`
}

type BuildConfigs struct {
	TemplatePath     string        `toml:"template_path"`
	ConfirmTimeout   time.Duration `toml:"confirm_timeout"`
	MaxFailuresShown int           `toml:"max_failures_shown"`
	DefaultGrades    int           `toml:"default_grades"`
}

type RedisConfigs struct {
	// Addr is optional, pending confirmations are kept in memory without it.
	Addr string `toml:"addr"`
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Discord: DiscordConfigs{
			RequestTimeout: 15 * time.Second,
		},
		Build: BuildConfigs{
			TemplatePath:     "template.json",
			ConfirmTimeout:   60 * time.Second,
			MaxFailuresShown: 15,
			DefaultGrades:    3,
		},
	}
}

// Load reads the TOML file at path on top of Default. A missing file is not an
// error, the defaults and environment overrides are used instead.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, fmt.Errorf("cannot decode config file %s: %w", path, err)
	}

	return cfg, nil
}

// ValidateDiscord checks the settings needed to connect the bot.
func (c *Configs) ValidateDiscord() error {
	if c.Discord.BotToken == "" {
		return errors.New("discord bot token is required")
	}

	if _, err := snowflake.ParseString(c.Discord.ClientID); err != nil {
		return fmt.Errorf("invalid discord client id %q", c.Discord.ClientID)
	}

	if _, err := snowflake.ParseString(c.Discord.GuildID); err != nil {
		return fmt.Errorf("invalid discord guild id %q", c.Discord.GuildID)
	}

	if c.Discord.RequestTimeout <= 0 {
		return errors.New("discord request timeout must be positive")
	}

	return nil
}

func (c *Configs) ValidateBuild() error {
	if c.Build.ConfirmTimeout <= 0 {
		return errors.New("build confirm timeout must be positive")
	}

	if c.Build.MaxFailuresShown <= 0 {
		return errors.New("build max failures shown must be positive")
	}

	if c.Build.DefaultGrades != 3 && c.Build.DefaultGrades != 4 {
		return fmt.Errorf("build default grades must be 3 or 4, got %d", c.Build.DefaultGrades)
	}

	switch c.Database.Driver {
	case "", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	return nil
}
