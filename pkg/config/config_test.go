package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "value")
	t.Setenv("CFG_TEST_INT", "42")
	t.Setenv("CFG_TEST_BAD_INT", "forty-two")
	t.Setenv("CFG_TEST_DUR", "90s")
	t.Setenv("CFG_TEST_BAD_DUR", "-1s")

	assert.Equal(t, "value", EnvDefault("CFG_TEST_STR", "def"))
	assert.Equal(t, "def", EnvDefault("CFG_TEST_MISSING", "def"))
	assert.Equal(t, 42, EnvIntDefault("CFG_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("CFG_TEST_BAD_INT", 1))
	assert.Equal(t, 90*time.Second, EnvDurationDefault("CFG_TEST_DUR", time.Minute))
	assert.Equal(t, time.Minute, EnvDurationDefault("CFG_TEST_BAD_DUR", time.Minute))
}
