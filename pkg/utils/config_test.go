package utils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("with nil values", func(t *testing.T) {
		config := NewConfig(nil)
		require.NotNil(t, config)
		assert.False(t, config.Has("anything"))
	})

	t.Run("with values", func(t *testing.T) {
		values := map[string]string{
			"BACKEND_BASE_URL": "http://localhost:8000",
		}
		config := NewConfig(values)

		assert.Equal(t, "http://localhost:8000", config.Get("BACKEND_BASE_URL"))

		// Verify it's a copy, not a reference
		values["BACKEND_BASE_URL"] = "modified"
		assert.NotEqual(t, "modified", config.Get("BACKEND_BASE_URL"))
	})
}

func TestNewConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ESSAYCHAT_TEST_FILE_KEY=from_file\nESSAYCHAT_TEST_SHADOWED=from_file\n"), 0o644))

	t.Setenv("ESSAYCHAT_TEST_SHADOWED", "from_env")
	t.Cleanup(func() { os.Unsetenv("ESSAYCHAT_TEST_FILE_KEY") })

	config := NewConfigFromEnv(path, filepath.Join(t.TempDir(), "missing.env"), "")

	assert.Equal(t, "from_file", config.Get("ESSAYCHAT_TEST_FILE_KEY"))
	assert.Equal(t, "from_env", config.Get("ESSAYCHAT_TEST_SHADOWED"), "process environment wins over files")
}

func TestConfigGetWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"existing": "value",
		"empty":    "",
	})

	assert.Equal(t, "value", config.GetWithDefault("existing", "default"))
	assert.Equal(t, "default", config.GetWithDefault("missing", "default"))
	assert.Equal(t, "default", config.GetWithDefault("empty", "default"))
}

func TestConfigGetBool(t *testing.T) {
	config := NewConfig(map[string]string{
		"true_bool":      "true",
		"false_bool":     "false",
		"true_1":         "1",
		"false_0":        "0",
		"true_yes":       "YES",
		"false_no":       "no",
		"true_on":        "on",
		"true_enabled":   "enabled",
		"false_disabled": "disabled",
		"invalid":        "invalid_bool",
		"empty":          "",
	})

	tests := []struct {
		key      string
		expected bool
	}{
		{"true_bool", true},
		{"false_bool", false},
		{"true_1", true},
		{"false_0", false},
		{"true_yes", true},
		{"false_no", false},
		{"true_on", true},
		{"true_enabled", true},
		{"false_disabled", false},
		{"invalid", false},
		{"empty", false},
		{"missing", false},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			assert.Equal(t, test.expected, config.GetBool(test.key), "GetBool(%s)", test.key)
		})
	}
}

func TestConfigGetBoolWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"ARCHIVE_ENABLED": "true",
		"empty":           "",
	})

	assert.True(t, config.GetBoolWithDefault("ARCHIVE_ENABLED", false))
	assert.True(t, config.GetBoolWithDefault("missing", true))
	assert.False(t, config.GetBoolWithDefault("empty", true))
}

func TestConfigGetIntWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"valid_int":   "42",
		"invalid_int": "not_a_number",
	})

	assert.Equal(t, 42, config.GetIntWithDefault("valid_int", 999))
	assert.Equal(t, 999, config.GetIntWithDefault("missing", 999))
	assert.Equal(t, 0, config.GetIntWithDefault("invalid_int", 999))
}

func TestConfigGetDurationWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"duration": "1m30s",
		"seconds":  "45",
		"invalid":  "soon",
		"empty":    "",
	})

	tests := []struct {
		key      string
		expected time.Duration
	}{
		{"duration", 90 * time.Second},
		{"seconds", 45 * time.Second},
		{"invalid", time.Minute},
		{"empty", time.Minute},
		{"missing", time.Minute},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			assert.Equal(t, test.expected, config.GetDurationWithDefault(test.key, time.Minute))
		})
	}
}

func TestConfigSet(t *testing.T) {
	config := NewConfig(nil)

	config.Set("API_PORT", "9090")
	assert.True(t, config.Has("API_PORT"))
	assert.Equal(t, 9090, config.GetInt("API_PORT"))

	config.Set("API_PORT", "9091")
	assert.Equal(t, "9091", config.Get("API_PORT"))
}

func TestConfigThreadSafety(t *testing.T) {
	config := NewConfig(map[string]string{"counter": "0"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				config.Set("key", "value")
				config.Get("key")
				config.GetBoolWithDefault("counter", false)
				config.GetIntWithDefault("counter", 1)
				config.GetDurationWithDefault("counter", time.Second)
			}
		}(i)
	}

	wg.Wait()
	// Test passes if no data races occur
}
