package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	SMTP          struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"smtp"`
	LLM struct {
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"llm"`
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	dev := ServiceConfig{Name: "nyaya"}
	dev.ApplyDefaults()
	if dev.Environment != "development" || !dev.Debug || dev.Logging.Level != "info" {
		t.Errorf("development defaults = %+v", dev)
	}

	prod := ServiceConfig{Name: "nyaya", Environment: "production"}
	prod.ApplyDefaults()
	if prod.Debug {
		t.Error("debug must stay off outside development")
	}
}

func TestServiceConfigValidate(t *testing.T) {
	for cfg, want := range map[ServiceConfig]string{
		{Name: "nyaya", Environment: "staging"}: "",
		{Environment: "production"}:             "config.name is required",
		{Name: "nyaya", Environment: "qa"}:      "config.environment must be one of",
	} {
		cfg.Logging.ApplyDefaults()
		err := cfg.Validate()
		switch {
		case want == "" && err != nil:
			t.Errorf("%+v: unexpected error %v", cfg, err)
		case want != "" && (err == nil || !strings.Contains(err.Error(), want)):
			t.Errorf("%+v: error = %v, want %q", cfg, err, want)
		}
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nyaya.yaml")
	doc := "name: nyaya\nenvironment: staging\nsmtp:\n  host: smtp.example.com\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	var cfg testConfig
	if err := LoadConfig("nyaya", &cfg, WithConfigFile(path), WithDefaults(map[string]any{"smtp.port": 587})); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Name != "nyaya" || cfg.Environment != "staging" {
		t.Errorf("service section = %+v", cfg.ServiceConfig)
	}
	if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Port != 587 {
		t.Errorf("smtp = %+v, want host from file and port from defaults", cfg.SMTP)
	}
}

func TestLoadConfigEnvAlias(t *testing.T) {
	t.Setenv("NYAYA_TEST_GROQ_KEY", "gsk-test")

	var cfg testConfig
	err := LoadConfig("nyaya", &cfg,
		WithFileSystem(&mockFS{}),
		WithEnvAliases(map[string]string{"NYAYA_TEST_GROQ_KEY": "llm.api_key"}),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LLM.APIKey != "gsk-test" {
		t.Errorf("expected aliased api key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("nyaya", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestLoadConfigNothingFound(t *testing.T) {
	var cfg testConfig
	if err := LoadConfig("nyaya", &cfg, WithFileSystem(&mockFS{})); err != nil {
		t.Fatalf("expected success with no files, got %v", err)
	}
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  Files
	}{
		{"nothing", nil, Files{}},
		{"cmd dir", []string{"cmd/nyaya/config.yml", ".env"}, Files{Config: "cmd/nyaya/config.yml", Env: ".env"}},
		{"service env preferred", []string{"config/config.yml", "config/.env", "config/.env.nyaya"}, Files{Config: "config/config.yml", Env: "config/.env.nyaya"}},
		{"from a package dir", []string{"../../cmd/nyaya/config.yml"}, Files{Config: "../../cmd/nyaya/config.yml"}},
		{"nearest wins", []string{"config.yml", "cmd/nyaya/config.yml"}, Files{Config: "cmd/nyaya/config.yml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}}
			for _, f := range tt.files {
				fs.files[f] = true
			}
			if got := Locate("nyaya", fs); got != tt.want {
				t.Errorf("Locate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	got := Keys(&testConfig{})
	want := []string{"name", "environment", "version", "debug", "logging.level", "smtp.host", "smtp.port", "llm.api_key"}
	for _, k := range want {
		if !slices.Contains(got, k) {
			t.Errorf("Keys() missing %q: %v", k, got)
		}
	}
	if EnvName("smtp.from_email") != "SMTP_FROM_EMAIL" {
		t.Errorf("EnvName() = %q", EnvName("smtp.from_email"))
	}
	if Keys("not a struct") != nil {
		t.Error("non-struct should have no keys")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("name: nyaya\nsmtp:\n  host: file.example.com\n  port: 25\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SMTP_HOST", "env.example.com")
	t.Setenv("SMTP_PORT", "\"2525\"")

	var cfg testConfig
	if err := LoadConfig("nyaya", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.SMTP.Host != "env.example.com" || cfg.SMTP.Port != 2525 {
		t.Errorf("smtp = %+v, want environment values", cfg.SMTP)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(string) error    { return nil }
