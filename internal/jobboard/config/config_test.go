package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
GRPC_PORT: 6000
HTTP_PORT: 6001
DB_NAME: jobs
DB_USER: app
JWT_SECRET: from-file
KAFKA_BROKERS: ["k1:9092", "k2:9092"]
DISPATCH_INTERVAL: 2s
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.GRPCPort)
	assert.Equal(t, 6001, cfg.HTTPPort)
	assert.Equal(t, "from-env", cfg.JWTSecret, "environment should override the file")
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, 2*time.Second, cfg.DispatchInterval)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout, "unset keys keep their default")
	assert.True(t, cfg.KafkaEnabled())

	dbCfg := cfg.Database()
	assert.Equal(t, "jobs", dbCfg.DBName)
	assert.Equal(t, "app", dbCfg.User)
	assert.Equal(t, 6543, dbCfg.Port)

	producer := cfg.Producer()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, producer.Brokers)
	assert.Equal(t, "notifications", producer.Topic)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_NAME", "jobs")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.False(t, cfg.KafkaEnabled(), "empty broker list disables kafka")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{
			name:    "malformed yaml",
			content: "HTTP_PORT: [",
		},
		{
			name:    "invalid port override",
			content: "DB_NAME: jobs\nJWT_SECRET: s\n",
			env:     map[string]string{"HTTP_PORT": "eighty"},
		},
		{
			name:    "invalid duration override",
			content: "DB_NAME: jobs\nJWT_SECRET: s\n",
			env:     map[string]string{"REQUEST_TIMEOUT": "soon"},
		},
		{
			name:    "missing secret",
			content: "DB_NAME: jobs\n",
			env:     map[string]string{"JWT_SECRET": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaults()
		cfg.JWTSecret = "secret"
		cfg.DBName = "jobs"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "http port out of range", mutate: func(c *Config) { c.HTTPPort = 70000 }, wantErr: "invalid HTTP_PORT"},
		{name: "same ports", mutate: func(c *Config) { c.GRPCPort = c.HTTPPort }, wantErr: "must differ"},
		{name: "no database", mutate: func(c *Config) { c.DBName = "" }, wantErr: "DB_NAME"},
		{name: "brokers without topic", mutate: func(c *Config) {
			c.KafkaBrokers = []string{"k:9092"}
			c.Topic = ""
		}, wantErr: "TOPIC"},
		{name: "negative interval", mutate: func(c *Config) { c.DispatchInterval = -time.Second }, wantErr: "DISPATCH_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a:1", "b:2"}, splitList(" a:1, ,b:2 "))
	assert.Nil(t, splitList(""))
}
