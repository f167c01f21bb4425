package config

import (
	"fmt"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nyayagpt/nyaya/util"
)

// FileSystem is the file access the loader needs. Tests substitute a fake.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFS struct{}

func (osFS) Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// LoadEnv keeps variables that are already set in the process.
func (osFS) LoadEnv(p string) error { return godotenv.Load(p) }

// Files are the sources found for a service. Empty means none.
type Files struct {
	Config string
	Env    string
}

// searchDirs are tried in order, each from the working directory and up to
// two parents, so tests run from package directories find the repo files.
func searchDirs(service string) []string {
	var dirs []string
	for _, up := range []string{".", "..", "../.."} {
		dirs = append(dirs, path.Join(up, "cmd", service), path.Join(up, "config"), up)
	}
	return dirs
}

// Locate finds config.yml and the .env file for service. For the env file,
// .env.<service> is preferred over .env in the same directory.
func Locate(service string, fs FileSystem) Files {
	var found Files
	for _, dir := range searchDirs(service) {
		if found.Config == "" {
			if p := path.Join(dir, "config.yml"); fs.Exists(p) {
				found.Config = p
			}
		}
		if found.Env == "" {
			for _, name := range []string{".env." + service, ".env"} {
				if p := path.Join(dir, name); fs.Exists(p) {
					found.Env = p
					break
				}
			}
		}
	}
	return found
}

// LoaderConfig holds the options of LoadConfig.
type LoaderConfig struct {
	FileSystem FileSystem
	// ConfigFile and EnvFile skip the search. A missing ConfigFile is an error.
	ConfigFile string
	EnvFile    string
	// Defaults are dotted keys applied before any source is read.
	Defaults map[string]any
	// EnvAliases maps extra environment variable names onto config keys,
	// e.g. GROQ_API_KEY -> llm.api_key.
	EnvAliases map[string]string
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the OS filesystem.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(p string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = p }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(p string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = p }
}

// WithDefaults seeds viper defaults.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) { lc.Defaults = defaults }
}

// WithEnvAliases binds additional environment variable names to config keys.
func WithEnvAliases(aliases map[string]string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvAliases = aliases }
}

// LoadConfig fills cfg, a pointer to a struct with mapstructure tags, from
// defaults, then config.yml, then the environment (after loading .env).
// Every key of cfg can be set from the environment by its upper-cased
// name with dots replaced by underscores: smtp.from_email is SMTP_FROM_EMAIL.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: osFS{}}
	for _, opt := range opts {
		opt(&lc)
	}

	files := Locate(serviceName, lc.FileSystem)
	if lc.ConfigFile != "" {
		if !lc.FileSystem.Exists(lc.ConfigFile) {
			return fmt.Errorf("config file %s not found", lc.ConfigFile)
		}
		files.Config = lc.ConfigFile
	}
	if lc.EnvFile != "" {
		files.Env = lc.EnvFile
	}

	v := viper.New()
	for key, value := range lc.Defaults {
		v.SetDefault(key, value)
	}
	if files.Config != "" {
		v.SetConfigFile(files.Config)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", files.Config, err)
		}
	}
	if files.Env != "" && lc.FileSystem.Exists(files.Env) {
		if err := lc.FileSystem.LoadEnv(files.Env); err != nil {
			return fmt.Errorf("failed to load .env file %s: %w", files.Env, err)
		}
	}

	bindings := make(map[string]string)
	for _, key := range Keys(cfg) {
		bindings[EnvName(key)] = key
	}
	for env, key := range lc.EnvAliases {
		bindings[env] = key
	}
	for env, key := range bindings {
		if value, ok := os.LookupEnv(env); ok && value != "" {
			v.Set(key, util.SanitizeEnvValue(value))
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

// EnvName is the environment variable that overrides key.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Keys lists the dotted leaf keys of a config struct, following
// mapstructure tags. Squashed embedded structs share their parent's prefix.
func Keys(cfg any) []string {
	t := reflect.TypeOf(cfg)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return structKeys(t, "")
}

func structKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}

		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && opts == "squash" {
			keys = append(keys, structKeys(ft, prefix)...)
			continue
		}

		if name == "" {
			name = strings.ToLower(f.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if ft.Kind() == reflect.Struct {
			keys = append(keys, structKeys(ft, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
