package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	assert.Empty(t, store.GetString(APIKey))

	host, err := store.Host()
	require.NoError(t, err)
	assert.Equal(t, Host{}, host)
}

func TestOpen_ReadsJSONSettings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	writeTestFile(t, path, `{"rooCode":{"claudeApiKey":"sk-json"},"http":{"timeout":"45s"},"output":{"render":true}}`)

	store, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-json", store.GetString(APIKey))

	host, err := store.Host()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, host.HTTP.Timeout)
	assert.True(t, host.Output.Render)
}

func TestOpen_ReadsYAMLSettings(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	writeTestFile(t, path, "rooCode:\n  claudeApiKey: sk-yaml\nhttp:\n  timeout: 2m\n")

	store, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-yaml", store.GetString(APIKey))

	host, err := store.Host()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, host.HTTP.Timeout)
	assert.False(t, host.Output.Render)
}

func TestOpen_RejectsInvalidSettings(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"numeric key":     `{"rooCode":{"claudeApiKey":123}}`,
		"bad timeout":     `{"http":{"timeout":"soon"}}`,
		"string render":   `{"output":{"render":"yes"}}`,
		"roocode as list": `{"rooCode":["a"]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "settings.json")
			writeTestFile(t, path, content)

			_, err := Open(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "settings schema validation failed")
		})
	}
}

func TestValidateSettings_NamesOffendingKey(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(map[string]any{
		"roocode": map[string]any{"claudeapikey": "sk"},
		"extra":   42,
	}))

	err := ValidateSettings(map[string]any{
		"http": map[string]any{"timeout": "soon"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http.timeout:")
}

func TestOpen_RejectsUnparsableFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	writeTestFile(t, path, `{"rooCode":`)

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read settings")
}

func TestOpen_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("CLAUDEGG_ROOCODE_CLAUDEAPIKEY", "sk-env")
	t.Setenv("CLAUDEGG_HTTP_TIMEOUT", "5s")
	t.Setenv("CLAUDEGG_OUTPUT_RENDER", "true")

	path := filepath.Join(t.TempDir(), "settings.json")
	writeTestFile(t, path, `{"rooCode":{"claudeApiKey":"sk-file"}}`)

	store, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", store.GetString(APIKey))

	host, err := store.Host()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, host.HTTP.Timeout)
	assert.True(t, host.Output.Render)
}

func TestOpen_LoadsDotenvNextToSettings(t *testing.T) {
	const envKey = "CLAUDEGG_ROOCODE_CLAUDEAPIKEY"
	require.NoError(t, os.Unsetenv(envKey))
	t.Cleanup(func() { _ = os.Unsetenv(envKey) })

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, ".env"), envKey+"=sk-dotenv\n")

	store, err := Open(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, "sk-dotenv", store.GetString(APIKey))
}

func TestStore_SetSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.Set(APIKey, "sk-saved"))
	require.NoError(t, store.Set(RequestTimeout, "30s"))
	require.NoError(t, store.Set(RenderMarkdown, "true"))
	require.NoError(t, store.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-saved", reopened.GetString(APIKey))

	host, err := reopened.Host()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, host.HTTP.Timeout)
	assert.True(t, host.Output.Render)
}

func TestStore_SaveDoesNotPersistEnvironmentOrDefaults(t *testing.T) {
	t.Setenv("CLAUDEGG_ROOCODE_CLAUDEAPIKEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "settings.json")
	writeTestFile(t, path, `{"rooCode":{"claudeApiKey":"sk-file"}}`)

	store, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", store.GetString(APIKey))

	require.NoError(t, store.Set(RequestTimeout, "30s"))
	require.NoError(t, store.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	saved := string(data)
	assert.Contains(t, saved, "sk-file")
	assert.Contains(t, saved, "30s")
	assert.NotContains(t, saved, "sk-from-env")
	assert.NotContains(t, saved, "render")

	require.NoError(t, os.Unsetenv("CLAUDEGG_ROOCODE_CLAUDEAPIKEY"))
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", reopened.GetString(APIKey))
}

func TestStore_SaveOfUntouchedStoreWritesNoDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "timeout")
	assert.NotContains(t, string(data), "render")
}

func TestStore_SetRejectsBadTypedValues(t *testing.T) {
	t.Parallel()

	store, err := Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	require.Error(t, store.Set(RenderMarkdown, "maybe"))
	require.Error(t, store.Set(RequestTimeout, "later"))
}

func TestMask(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Mask(""))
	assert.Equal(t, "*****", Mask("short"))
	assert.Equal(t, "**********cret", Mask("sk-test-secret"))
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
