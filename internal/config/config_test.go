package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Postgres: PostgresConfig{
			Host:   "localhost",
			User:   "myfridge",
			DBName: "myfridge",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "port zero",
			mutate: func(c *Config) { c.HTTP.Port = 0 },
			want:   "http.port",
		},
		{
			name:   "port too large",
			mutate: func(c *Config) { c.HTTP.Port = 70000 },
			want:   "http.port",
		},
		{
			name:   "no redis addrs",
			mutate: func(c *Config) { c.Database.Addrs = nil },
			want:   "database.addrs",
		},
		{
			name:   "no postgres host",
			mutate: func(c *Config) { c.Postgres.Host = "" },
			want:   "postgres.host",
		},
		{
			name:   "no postgres user",
			mutate: func(c *Config) { c.Postgres.User = "" },
			want:   "postgres.user",
		},
		{
			name:   "no postgres dbname",
			mutate: func(c *Config) { c.Postgres.DBName = "" },
			want:   "postgres.dbname",
		},
		{
			name: "provider without model",
			mutate: func(c *Config) {
				c.Embedding.APIKey = "key"
				c.Embedding.BaseURL = "http://localhost:8000/v1"
			},
			want: "embedding.model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.Postgres.Port != 5432 || cfg.Postgres.SSLMode != "disable" {
		t.Errorf("unexpected postgres defaults: %+v", cfg.Postgres)
	}
	if cfg.Index.HNSWM != 32 || cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("unexpected index defaults: %+v", cfg.Index)
	}
	if cfg.Search.CandidateWindow != 50 {
		t.Errorf("unexpected candidate window: %d", cfg.Search.CandidateWindow)
	}
	if cfg.Reindex.BatchSize != 200 || cfg.Reindex.BatchDelayMS != 100 {
		t.Errorf("unexpected reindex defaults: %+v", cfg.Reindex)
	}
	if cfg.Embedding.Dimensions != 1024 || cfg.Embedding.Provider != "openai" {
		t.Errorf("unexpected embedding defaults: %+v", cfg.Embedding)
	}
	if cfg.Embedding.Model == "" {
		t.Error("expected a default embedding model")
	}
}

func TestApplyDefaults_NegativeDelayMeansNoDelay(t *testing.T) {
	cfg := validConfig()
	cfg.Reindex.BatchDelayMS = -1
	cfg.ApplyDefaults()

	if cfg.Reindex.BatchDelayMS != 0 {
		t.Errorf("expected explicit zero delay, got %d", cfg.Reindex.BatchDelayMS)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Reindex.BatchSize = 50
	cfg.Search.CandidateWindow = 200
	cfg.ApplyDefaults()

	if cfg.Reindex.BatchSize != 50 {
		t.Errorf("expected explicit batch size kept, got %d", cfg.Reindex.BatchSize)
	}
	if cfg.Search.CandidateWindow != 200 {
		t.Errorf("expected explicit window kept, got %d", cfg.Search.CandidateWindow)
	}
}

func TestEmbeddingEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  EmbeddingConfig
		want bool
	}{
		{name: "key and url", cfg: EmbeddingConfig{APIKey: "k", BaseURL: "http://x"}, want: true},
		{name: "no key", cfg: EmbeddingConfig{BaseURL: "http://x"}, want: false},
		{name: "no url", cfg: EmbeddingConfig{APIKey: "k"}, want: false},
		{name: "empty", cfg: EmbeddingConfig{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MYFRIDGE_TEST_HOST", "db.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "set variable",
			in:   "host: ${MYFRIDGE_TEST_HOST}",
			want: "host: db.internal",
		},
		{
			name: "unset variable becomes empty",
			in:   "host: ${MYFRIDGE_TEST_UNSET}",
			want: "host: ",
		},
		{
			name: "unset variable with default",
			in:   "host: ${MYFRIDGE_TEST_UNSET:-localhost}",
			want: "host: localhost",
		},
		{
			name: "set variable ignores default",
			in:   "host: ${MYFRIDGE_TEST_HOST:-localhost}",
			want: "host: db.internal",
		},
		{
			name: "no substitution",
			in:   "host: localhost",
			want: "host: localhost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(expandEnvVars([]byte(tt.in))); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("expected local default, got %q", got)
	}

	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("expected prod, got %q", got)
	}
}

func TestLoad_ShippedLocalConfig(t *testing.T) {
	// findConfigPath falls back to the project root via runtime.Caller
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port == 0 {
		t.Error("expected port from config file")
	}
	if len(cfg.Database.Addrs) == 0 {
		t.Error("expected redis addrs from config file")
	}
}
