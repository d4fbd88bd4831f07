package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// Key lookup locations
const (
	APIKeyEnv      = "TIGOS_API_KEY"
	keyringService = "tigos"
	keyringUser    = "pollinations"
)

// KeySource tells where an API key came from
type KeySource string

const (
	KeySourceEnv     KeySource = "environment"
	KeySourceKeyring KeySource = "keyring"
	KeySourceNone    KeySource = "none"
)

// LoadEnvFile loads <config dir>/.env into the process environment.
// Variables already set are not overridden; a missing file is not an error.
func LoadEnvFile() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	envPath := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(envPath)
}

// ResolveAPIKey returns the provider key from the environment (after loading
// the .env file) or the OS keyring. An empty key means anonymous access.
func ResolveAPIKey() (string, KeySource, error) {
	if err := LoadEnvFile(); err != nil {
		return "", KeySourceNone, err
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, KeySourceEnv, nil
	}

	key, err := keyring.Get(keyringService, keyringUser)
	if err == nil && key != "" {
		return key, KeySourceKeyring, nil
	}
	// A missing entry and a missing keyring backend (headless Linux) both mean anonymous
	return "", KeySourceNone, nil
}

// StoreAPIKey saves the provider key in the OS keyring
func StoreAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(keyringService, keyringUser, key)
}

// DeleteAPIKey removes the provider key from the OS keyring
func DeleteAPIKey() error {
	err := keyring.Delete(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// MaskKey hides all but the last four characters of key
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
