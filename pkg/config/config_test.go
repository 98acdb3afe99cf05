package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrakshhq/vraksh/pkg/config"
)

func TestLoad(t *testing.T) {
	type serverConfig struct {
		Addr    string `env:"TEST_CFG_ADDR" envDefault:":9090"`
		Workers int    `env:"TEST_CFG_WORKERS" envDefault:"4"`
	}

	t.Run("applies defaults", func(t *testing.T) {
		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, 4, cfg.Workers)
	})

	t.Run("returns cached value on second load", func(t *testing.T) {
		// Changing the environment after the first Load must not matter.
		t.Setenv("TEST_CFG_ADDR", ":7070")

		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":9090", cfg.Addr)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[serverConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})

	t.Run("reads environment", func(t *testing.T) {
		type mailConfig struct {
			Sender string `env:"TEST_CFG_SENDER,required"`
		}
		t.Setenv("TEST_CFG_SENDER", "no-reply@vraksh.app")

		var cfg mailConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "no-reply@vraksh.app", cfg.Sender)
	})
}

func TestMustLoad(t *testing.T) {
	type badConfig struct {
		Token string `env:"TEST_CFG_MISSING_TOKEN,required"`
	}

	assert.Panics(t, func() {
		var cfg badConfig
		config.MustLoad(&cfg)
	})
}
