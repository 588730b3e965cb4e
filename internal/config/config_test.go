package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_AppliesDefaultsWhenNoFile(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load("")
	assert.NoError(err)
	assert.Equal(DefaultGrammarDir, cfg.GrammarDir)
	assert.Equal(DefaultStorageDir, cfg.StorageDir)
	assert.Equal(DefaultListenAddress, cfg.ListenAddress)
	assert.NoError(cfg.Validate())
}

func TestLoad_ReadsFileValues(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "grammarlab.toml")
	contents := `
grammar_dir = "./my-grammars"
storage_dir = "./my-data"
listen_address = "127.0.0.1:9090"
jwt_secret = "a-secret-that-is-at-least-32-bytes-long"
unauth_delay_millis = 250
`
	assert.NoError(os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	assert.NoError(err)
	assert.Equal("./my-grammars", cfg.GrammarDir)
	assert.Equal("./my-data", cfg.StorageDir)
	assert.Equal("127.0.0.1:9090", cfg.ListenAddress)
	assert.Equal(250, cfg.UnauthDelayMillis)
	assert.NoError(cfg.Validate())
}

func TestLoad_EnvSecretOverridesFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "grammarlab.toml")
	contents := `jwt_secret = "a-secret-that-is-at-least-32-bytes-long"`
	assert.NoError(os.WriteFile(path, []byte(contents), 0644))

	t.Setenv(EnvJWTSecret, "env-secret-that-is-at-least-32-bytes-long")

	cfg, err := Load(path)
	assert.NoError(err)
	assert.Equal("env-secret-that-is-at-least-32-bytes-long", cfg.JWTSecret)
}

func TestValidate_RejectsShortSecret(t *testing.T) {
	cfg := Config{
		GrammarDir:    "g",
		StorageDir:    "s",
		ListenAddress: ":8080",
		JWTSecret:     "too short",
	}
	assert.Error(t, cfg.Validate())
}

func TestUnauthDelay_NegativeDisables(t *testing.T) {
	cfg := Config{UnauthDelayMillis: -1}
	assert.Equal(t, int64(0), int64(cfg.UnauthDelay()))
}
