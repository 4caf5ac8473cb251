package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		yaml      string
		env       map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults with no file and no env",
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 3000, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
				assert.Equal(t, DefaultCron, cfg.Schedule.Cron)
				assert.Equal(t, "UTC", cfg.Schedule.Timezone)
				assert.False(t, cfg.Schedule.RunOnStart)
				assert.Equal(t, 5*time.Minute, cfg.Schedule.CycleTimeout)
				assert.Equal(t, DefaultCatalogURL, cfg.Catalog.URL)
				assert.Equal(t, "en-US", cfg.Catalog.Locale)
				assert.Equal(t, "US", cfg.Catalog.Country)
				assert.Equal(t, DefaultStoreBaseURL, cfg.Catalog.StoreBaseURL)
				assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
				assert.Empty(t, cfg.Notifications.Discord.WebhookURL)
				assert.False(t, cfg.Notifications.Discord.Enabled())
				assert.Equal(t, "Epic Free Games", cfg.Notifications.Discord.Username)
				assert.InDelta(t, 0.5, cfg.Notifications.Discord.RatePerSecond, 0.0001)
				assert.Equal(t, 2, cfg.Notifications.Discord.Burst)
				assert.False(t, cfg.Notifications.AtLeastOnce)
				assert.Equal(t, DefaultStatePath, cfg.State.Path)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.False(t, cfg.Tracing.Enabled)
				assert.Equal(t, "localhost:4317", cfg.Tracing.Endpoint)
				require.NotNil(t, cfg.Tracing.Insecure)
				assert.True(t, *cfg.Tracing.Insecure)
				assert.InDelta(t, 1.0, cfg.Tracing.SampleRatio, 0.0001)
				assert.Equal(t, DefaultServiceName, cfg.Tracing.ServiceName)
			},
		},
		{
			name: "yaml values are read",
			yaml: `
server:
  port: 9090
schedule:
  cron: "30 16 * * 4"
  run_on_start: true
  cycle_timeout: 2m
notifications:
  at_least_once: true
  discord:
    webhook_url: https://discord.com/api/webhooks/1/abc
    burst: 5
state:
  path: /var/lib/fgn/ids.json
logging:
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "30 16 * * 4", cfg.Schedule.Cron)
				assert.True(t, cfg.Schedule.RunOnStart)
				assert.Equal(t, 2*time.Minute, cfg.Schedule.CycleTimeout)
				assert.True(t, cfg.Notifications.AtLeastOnce)
				assert.True(t, cfg.Notifications.Discord.Enabled())
				assert.Equal(t, 5, cfg.Notifications.Discord.Burst)
				assert.Equal(t, "/var/lib/fgn/ids.json", cfg.State.Path)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "env overrides yaml",
			yaml: `
server:
  port: 9090
schedule:
  cron: "0 1 * * *"
`,
			env: map[string]string{
				"PORT":                "4000",
				"CRON_SCHEDULE":       "@daily",
				"DISCORD_WEBHOOK_URL": "https://discord.com/api/webhooks/2/def",
				"STATE_FILE":          "ids.json",
				"RUN_ON_START":        "true",
				"LOG_LEVEL":           "debug",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, 4000, cfg.Server.Port)
				assert.Equal(t, "@daily", cfg.Schedule.Cron)
				assert.Equal(t, "https://discord.com/api/webhooks/2/def", cfg.Notifications.Discord.WebhookURL)
				assert.Equal(t, "ids.json", cfg.State.Path)
				assert.True(t, cfg.Schedule.RunOnStart)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "https collector endpoint uses tls",
			env:  map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "https://otel.example.com:4317"},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				require.NotNil(t, cfg.Tracing.Insecure)
				assert.False(t, *cfg.Tracing.Insecure)
				assert.False(t, cfg.Tracing.PlaintextExport())
			},
		},
		{
			name: "explicit insecure overrides endpoint scheme",
			yaml: `
tracing:
  endpoint: https://otel.example.com:4317
  insecure: true
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.True(t, cfg.Tracing.PlaintextExport())
			},
		},
		{
			name: "insecure from env",
			env:  map[string]string{"OTEL_EXPORTER_OTLP_INSECURE": "false"},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.False(t, cfg.Tracing.PlaintextExport())
			},
		},
		{
			name:    "non-boolean OTEL_EXPORTER_OTLP_INSECURE",
			env:     map[string]string{"OTEL_EXPORTER_OTLP_INSECURE": "maybe"},
			wantErr: "OTEL_EXPORTER_OTLP_INSECURE",
		},
		{
			name:    "non-numeric PORT",
			env:     map[string]string{"PORT": "eighty"},
			wantErr: "PORT",
		},
		{
			name:    "non-boolean RUN_ON_START",
			env:     map[string]string{"RUN_ON_START": "sometimes"},
			wantErr: "RUN_ON_START",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"PORT": "70000"},
			wantErr: "server.port must be between 1 and 65535",
		},
		{
			name:    "invalid cron expression",
			env:     map[string]string{"CRON_SCHEDULE": "every day at noon"},
			wantErr: "schedule.cron",
		},
		{
			name:    "invalid schedule timezone",
			env:     map[string]string{"SCHEDULE_TIMEZONE": "Mars/Olympus_Mons"},
			wantErr: "schedule.timezone",
		},
		{
			name:    "invalid display timezone",
			env:     map[string]string{"DISPLAY_TIMEZONE": "Mars/Olympus_Mons"},
			wantErr: "notifications.display_timezone",
		},
		{
			name:    "webhook must be http",
			env:     map[string]string{"DISCORD_WEBHOOK_URL": "ftp://example.com/hook"},
			wantErr: "notifications.discord.webhook_url",
		},
		{
			name: "negative burst rejected",
			yaml: `
notifications:
  discord:
    burst: -1
`,
			wantErr: "burst must be at least 1",
		},
		{
			name: "sample ratio out of range",
			yaml: `
tracing:
  sample_ratio: 1.5
`,
			wantErr: "tracing.sample_ratio",
		},
		{
			name:    "invalid yaml",
			yaml:    "server: [unclosed",
			wantErr: "parsing config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := ""
			if tt.yaml != "" {
				path = writeConfig(t, tt.yaml)
			}

			cfg, err := Load(path, WithEnvFile(""), WithLookup(envMap(tt.env)))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), WithEnvFile(""), WithLookup(envMap(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_ExpandsEnvInYAML(t *testing.T) {
	t.Setenv("FGN_TEST_WEBHOOK", "https://discord.com/api/webhooks/3/ghi")

	path := writeConfig(t, `
notifications:
  discord:
    webhook_url: "${FGN_TEST_WEBHOOK}"
`)

	cfg, err := Load(path, WithEnvFile(""), WithLookup(envMap(nil)))
	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/3/ghi", cfg.Notifications.Discord.WebhookURL)
}

func TestLoad_DotEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FGN_TEST_DOTENV_PORT=4321\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("FGN_TEST_DOTENV_PORT") })

	cfg, err := Load("", WithEnvFile(envFile), WithLookup(func(k string) (string, bool) {
		if k == "PORT" {
			return os.LookupEnv("FGN_TEST_DOTENV_PORT")
		}
		return "", false
	}))
	require.NoError(t, err)
	assert.Equal(t, 4321, cfg.Server.Port)
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	t.Parallel()

	_, err := Load("", WithEnvFile(filepath.Join(t.TempDir(), ".env")), WithLookup(envMap(nil)))
	require.NoError(t, err)
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 3000}
	assert.Equal(t, "127.0.0.1:3000", s.Addr())
}

func TestLocations(t *testing.T) {
	t.Parallel()

	s := ScheduleConfig{}
	assert.Equal(t, time.UTC, s.Location())

	s.Timezone = "not/a_zone"
	assert.Equal(t, time.UTC, s.Location())

	n := NotificationsConfig{DisplayTimezone: "UTC"}
	assert.Equal(t, "UTC", n.DisplayLocation().String())
}
