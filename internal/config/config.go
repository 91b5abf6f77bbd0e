// Package config resolves runtime settings for the clarity binary.
//
// Values are layered in this order, later sources winning: built-in
// defaults, an optional YAML file (--config or CLARITY_CONFIG), the
// DB_PATH, PORT and TZ environment variables, then explicit flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/terraincognita07/clarity/internal/db"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the YAML file path.
const EnvConfigPath = "CLARITY_CONFIG"

const defaultPort = "8080"

type Config struct {
	// DBPath is the SQLite file. ":memory:" opens a throwaway database.
	DBPath string `yaml:"db_path"`

	// Port is the HTTP listen port for `clarity serve`.
	Port string `yaml:"port"`

	// Timezone is an IANA name used to decide which calendar day "today" is.
	Timezone string `yaml:"timezone"`
}

func Defaults() Config {
	return Config{
		DBPath:   db.DefaultPath,
		Port:     defaultPort,
		Timezone: "UTC",
	}
}

// Flags holds the command-line overrides bound to a flag set.
type Flags struct {
	set        *pflag.FlagSet
	configPath string
	dbPath     string
	port       string
	timezone   string
}

// BindFlags registers --config, --db, --port and --tz on flags.
func BindFlags(flags *pflag.FlagSet) *Flags {
	bound := &Flags{set: flags}
	flags.StringVar(&bound.configPath, "config", "", "path to a YAML config file (env "+EnvConfigPath+")")
	flags.StringVar(&bound.dbPath, "db", "", "SQLite database path (env DB_PATH)")
	flags.StringVar(&bound.port, "port", "", "HTTP listen port (env PORT)")
	flags.StringVar(&bound.timezone, "tz", "", "IANA timezone for the current day (env TZ)")
	return bound
}

// Resolve layers defaults, file, environment and flags. The flag set
// must already be parsed.
func (bound *Flags) Resolve(getenv func(string) string) (Config, error) {
	cfg := Defaults()

	path := getenv(EnvConfigPath)
	if bound.set.Changed("config") {
		path = bound.configPath
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg, getenv)

	if bound.set.Changed("db") {
		cfg.DBPath = bound.dbPath
	}
	if bound.set.Changed("port") {
		cfg.Port = bound.port
	}
	if bound.set.Changed("tz") {
		cfg.Timezone = bound.timezone
	}

	port, err := resolvePort(cfg.Port)
	if err != nil {
		return Config{}, err
	}
	cfg.Port = port

	if strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, errors.New("database path must not be empty")
	}
	return cfg, nil
}

// LoadFile decodes the YAML file at path over cfg. Keys missing from the
// file keep their current values; unknown keys are an error.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if value := strings.TrimSpace(getenv("DB_PATH")); value != "" {
		cfg.DBPath = value
	}
	if value := strings.TrimSpace(getenv("PORT")); value != "" {
		cfg.Port = value
	}
	if value := strings.TrimSpace(getenv("TZ")); value != "" {
		cfg.Timezone = value
	}
}

func resolvePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		return defaultPort, nil
	}

	value, err := strconv.Atoi(port)
	if err != nil {
		return "", fmt.Errorf("invalid port %q: %w", port, err)
	}
	if value < 1 || value > 65535 {
		return "", fmt.Errorf("invalid port %q: out of range", port)
	}
	return port, nil
}
