package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[discord]
bot_token = "token"
client_id = "1100000000000000001"
guild_id = "1100000000000000002"
request_timeout = "5s"

[build]
confirm_timeout = "30s"
default_grades = 4

[database]
driver = "sqlite"
file = "bot.db"
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 30*time.Second, cfg.Build.ConfirmTimeout)
	require.Equal(t, 5*time.Second, cfg.Discord.RequestTimeout)
	require.Equal(t, 4, cfg.Build.DefaultGrades)
	require.Equal(t, 15, cfg.Build.MaxFailuresShown)
	require.Equal(t, "template.json", cfg.Build.TemplatePath)
	require.Equal(t, "bot.db", cfg.Database.ConnectionString())
	require.NoError(t, cfg.ValidateDiscord())
	require.NoError(t, cfg.ValidateBuild())
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.False(t, cfg.Database.Enabled())
}

func TestConfigs_ValidateDiscord(t *testing.T) {
	tests := []struct {
		name    string
		discord DiscordConfigs
		wantErr bool
	}{
		{
			name:    "valid",
			discord: DiscordConfigs{BotToken: "t", ClientID: "123", GuildID: "456", RequestTimeout: time.Second},
		},
		{
			name:    "missing token",
			discord: DiscordConfigs{ClientID: "123", GuildID: "456", RequestTimeout: time.Second},
			wantErr: true,
		},
		{
			name:    "non numeric guild",
			discord: DiscordConfigs{BotToken: "t", ClientID: "123", GuildID: "my-guild", RequestTimeout: time.Second},
			wantErr: true,
		},
		{
			name:    "no request timeout",
			discord: DiscordConfigs{BotToken: "t", ClientID: "123", GuildID: "456"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Discord = tt.discord
			err := cfg.ValidateDiscord()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
