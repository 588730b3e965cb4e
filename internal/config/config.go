// Package config loads the TOML configuration shared by cmd/lranalyze and
// cmd/lrserve, following this codebase's existing TOML-based resource-file
// convention (see internal/tqw in the original engine this one is descended
// from): read the whole file, decode it with BurntSushi/toml, then apply
// defaults for anything left unset.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultGrammarDir is where cmd/lranalyze looks for named grammar files
	// when none is given an explicit path.
	DefaultGrammarDir = "grammars"

	// DefaultStorageDir is where the SQLite-backed store keeps its database
	// file.
	DefaultStorageDir = "data"

	// DefaultListenAddress is the HTTP address cmd/lrserve binds by default.
	DefaultListenAddress = ":8080"

	// DefaultUnauthDelayMillis is the default additional wait, in
	// milliseconds, before responding to an unauthorized or unauthenticated
	// request.
	DefaultUnauthDelayMillis = 1000

	// MinSecretSize and MaxSecretSize bound the JWT signing secret's length,
	// in bytes, when it comes from config rather than the environment.
	MinSecretSize = 32
	MaxSecretSize = 64
)

// Config is the configuration shared by both entry points. Not every field
// is relevant to both: GrammarDir is CLI-only, and ListenAddress/JWTSecret
// are server-only, but both read the same file so that one config can
// describe a whole deployment.
type Config struct {
	// GrammarDir is the directory cmd/lranalyze searches for a named
	// grammar file when the caller doesn't supply a path.
	GrammarDir string `toml:"grammar_dir"`

	// StorageDir is the directory the SQLite store keeps its database file
	// in.
	StorageDir string `toml:"storage_dir"`

	// ListenAddress is the address cmd/lrserve's HTTP server binds.
	ListenAddress string `toml:"listen_address"`

	// JWTSecret is the server's token-signing secret. In production this
	// should come from the GRAMMARLAB_JWT_SECRET environment variable
	// instead of being checked into a config file; Load prefers the
	// environment variable when both are present.
	JWTSecret string `toml:"jwt_secret"`

	// UnauthDelayMillis is how long, in milliseconds, the server waits
	// before responding to a request that turned out unauthorized or
	// unauthenticated. Set to a negative number to disable the delay.
	UnauthDelayMillis int `toml:"unauth_delay_millis"`
}

// EnvJWTSecret is the environment variable Load prefers over the config
// file's jwt_secret field, so a deployment never has to commit its signing
// secret to disk.
const EnvJWTSecret = "GRAMMARLAB_JWT_SECRET"

// Load reads and decodes the TOML file at path, then applies FillDefaults.
// A path of "" returns the zero Config with defaults filled in - callers
// that have no config file at all can still get a usable Config this way.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if envSecret := os.Getenv(EnvJWTSecret); envSecret != "" {
		cfg.JWTSecret = envSecret
	}

	return cfg.FillDefaults(), nil
}

// FillDefaults returns a copy of cfg with every unset field replaced by its
// default.
func (cfg Config) FillDefaults() Config {
	out := cfg

	if out.GrammarDir == "" {
		out.GrammarDir = DefaultGrammarDir
	}
	if out.StorageDir == "" {
		out.StorageDir = DefaultStorageDir
	}
	if out.ListenAddress == "" {
		out.ListenAddress = DefaultListenAddress
	}
	if out.JWTSecret == "" {
		out.JWTSecret = "DEFAULT_JWT_SECRET-DO_NOT_USE_IN_PROD!!"
	}
	if out.UnauthDelayMillis == 0 {
		out.UnauthDelayMillis = DefaultUnauthDelayMillis
	}

	return out
}

// UnauthDelay returns UnauthDelayMillis as a time.Duration. A negative
// UnauthDelayMillis disables the delay entirely.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 0 {
		return 0
	}
	return time.Duration(cfg.UnauthDelayMillis) * time.Millisecond
}

// Validate returns an error describing the first invalid field found, or
// nil if cfg is ready to use. Call this on the result of FillDefaults (Load
// already does so); a zero Config with no defaults applied will always fail
// validation.
func (cfg Config) Validate() error {
	if cfg.GrammarDir == "" {
		return fmt.Errorf("grammar_dir must not be empty")
	}
	if cfg.StorageDir == "" {
		return fmt.Errorf("storage_dir must not be empty")
	}
	if cfg.ListenAddress == "" {
		return fmt.Errorf("listen_address must not be empty")
	}
	if len(cfg.JWTSecret) < MinSecretSize {
		return fmt.Errorf("jwt_secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.JWTSecret))
	}
	if len(cfg.JWTSecret) > MaxSecretSize {
		return fmt.Errorf("jwt_secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.JWTSecret))
	}
	return nil
}
