package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestResolveAPIKey_Env(t *testing.T) {
	keyring.MockInit()
	setHome(t)
	t.Setenv(APIKeyEnv, "  env-key  ")

	key, source, err := ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)
	assert.Equal(t, KeySourceEnv, source)
}

func TestResolveAPIKey_DotEnv(t *testing.T) {
	keyring.MockInit()
	home := setHome(t)
	t.Setenv(APIKeyEnv, "")
	os.Unsetenv(APIKeyEnv)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("TIGOS_API_KEY=from-dotenv\n"), 0o600))

	key, source, err := ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", key)
	assert.Equal(t, KeySourceEnv, source)
}

func TestResolveAPIKey_Keyring(t *testing.T) {
	keyring.MockInit()
	setHome(t)
	t.Setenv(APIKeyEnv, "")

	require.NoError(t, StoreAPIKey("ring-key"))

	key, source, err := ResolveAPIKey()
	require.NoError(t, err)
	assert.Equal(t, "ring-key", key)
	assert.Equal(t, KeySourceKeyring, source)

	require.NoError(t, DeleteAPIKey())
	key, source, err = ResolveAPIKey()
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Equal(t, KeySourceNone, source)
}

func TestStoreAPIKey_Empty(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, StoreAPIKey("   "))
}

func TestDeleteAPIKey_Missing(t *testing.T) {
	keyring.MockInit()
	assert.NoError(t, DeleteAPIKey())
}

func TestLoadEnvFile_Missing(t *testing.T) {
	setHome(t)
	assert.NoError(t, LoadEnvFile())
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", MaskKey(""))
	assert.Equal(t, "***", MaskKey("abc"))
	assert.Equal(t, "*****fgh1", MaskKey("abcdefgh1"))
}
