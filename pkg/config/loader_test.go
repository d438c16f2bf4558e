package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/config"
)

type sampleConfig struct {
	Name    string `env:"CFG_TEST_NAME" envDefault:"default"`
	Retries int    `env:"CFG_TEST_RETRIES" envDefault:"3"`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config.Reset()
		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "default", cfg.Name)
		assert.Equal(t, 3, cfg.Retries)
	})

	t.Run("env overrides and caching", func(t *testing.T) {
		config.Reset()
		t.Setenv("CFG_TEST_NAME", "first")
		var cfg sampleConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "first", cfg.Name)

		t.Setenv("CFG_TEST_NAME", "second")
		var again sampleConfig
		require.NoError(t, config.Load(&again))
		assert.Equal(t, "first", again.Name)

		config.Reset()
		require.NoError(t, config.Load(&again))
		assert.Equal(t, "second", again.Name)
	})

	t.Run("missing required", func(t *testing.T) {
		config.Reset()
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)

		t.Setenv("CFG_TEST_SECRET", "s3cr3t")
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "s3cr3t", cfg.Secret)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[sampleConfig](nil), config.ErrNilPointer)
	})
}
