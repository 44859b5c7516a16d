package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppName is used for the XDG directories and the environment prefix.
const AppName = "switchtower"

// EnvPrefix prefixes environment overrides of settings.
const EnvPrefix = "SWITCHTOWER_"

// Settings are the tool's own preferences.
type Settings struct {
	Recipes RecipeSettings `koanf:"recipes"`
	SSH     SSHSettings    `koanf:"ssh"`
	Output  OutputSettings `koanf:"output"`
}

type RecipeSettings struct {
	// Path lists directories searched for recipes given by relative name.
	Path []string `koanf:"path"`
}

type SSHSettings struct {
	Timeout    time.Duration `koanf:"timeout"`
	KnownHosts string        `koanf:"known_hosts"`
}

type OutputSettings struct {
	Color string `koanf:"color"`
}

// DefaultSettingsFile is the user settings file location.
func DefaultSettingsFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// DefaultRecipeDir is searched when recipes.path is empty.
func DefaultRecipeDir() string {
	return filepath.Join(xdg.ConfigHome, AppName, "recipes")
}

// LoadSettings layers the embedded defaults, the user settings file and
// the environment.
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(DefaultSettingsFile())
}

// LoadSettingsFrom is LoadSettings with an explicit settings file. A
// missing file is not an error.
func LoadSettingsFrom(path string) (*Settings, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultSettings}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default settings: %w", err)
	}

	// 2. User settings file
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
			}
		}
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings from environment: %w", err)
	}

	// 4. Unmarshal
	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if len(s.Recipes.Path) == 0 {
		s.Recipes.Path = []string{DefaultRecipeDir()}
	}

	return &s, nil
}

// DefaultSettings skips the user settings file. It is used when that file
// cannot be read.
func DefaultSettings() *Settings {
	s, err := LoadSettingsFrom("")
	if err != nil {
		return &Settings{
			Recipes: RecipeSettings{Path: []string{DefaultRecipeDir()}},
			SSH:     SSHSettings{Timeout: 10 * time.Second},
			Output:  OutputSettings{Color: "auto"},
		}
	}
	return s
}
