package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mkrupp/homecase-signup/internal/infra/config"
)

type testConfig struct {
	EnvConfig

	Source   string        `env:"SOURCE" default:"http" validate:"oneof=http file sqlite"`
	MinLen   int           `env:"MIN_LEN" default:"4" validate:"min=1"`
	Surface  bool          `env:"SURFACE" default:"false"`
	Debounce time.Duration `env:"DEBOUNCE" default:"800ms" validate:"gt=0"`
	NoEnvTag string
	Nested   testNestedConfig `envPrefix:"NESTED_"`
}

type testNestedConfig struct {
	URL string `env:"URL" default:"https://example.com/dataset.json" validate:"url"`
}

func defaults() testConfig {
	return testConfig{
		Source:   "http",
		MinLen:   4,
		Debounce: 800 * time.Millisecond,
		Nested:   testNestedConfig{URL: "https://example.com/dataset.json"},
	}
}

func assertConfig(t *testing.T, want, got testConfig) {
	t.Helper()

	assert.Equal(t, want.Source, got.Source)
	assert.Equal(t, want.MinLen, got.MinLen)
	assert.Equal(t, want.Surface, got.Surface)
	assert.Equal(t, want.Debounce, got.Debounce)
	assert.Equal(t, want.NoEnvTag, got.NoEnvTag)
	assert.Equal(t, want.Nested, got.Nested)
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		envVars   map[string]string
		want      func(c *testConfig)
		wantErr   bool
	}{
		{
			name:    "uses default values when env vars not set",
			envVars: map[string]string{},
			want:    func(*testConfig) {},
		},
		{
			name: "reads environment variables",
			envVars: map[string]string{
				"SOURCE":     "file",
				"MIN_LEN":    "6",
				"SURFACE":    "true",
				"DEBOUNCE":   "1.5s",
				"NESTED_URL": "http://localhost/ds.json",
			},
			want: func(c *testConfig) {
				c.Source = "file"
				c.MinLen = 6
				c.Surface = true
				c.Debounce = 1500 * time.Millisecond
				c.Nested.URL = "http://localhost/ds.json"
			},
		},
		{
			name:      "prefers more specific namespace",
			namespace: "SIGNUP_SERVE",
			envVars: map[string]string{
				"SIGNUP_SOURCE":       "file",
				"SIGNUP_SERVE_SOURCE": "sqlite",
			},
			want: func(c *testConfig) { c.Source = "sqlite" },
		},
		{
			name:      "falls back to less specific namespace",
			namespace: "SIGNUP_SERVE",
			envVars:   map[string]string{"SIGNUP_DEBOUNCE": "250ms"},
			want:      func(c *testConfig) { c.Debounce = 250 * time.Millisecond },
		},
		{
			name:    "fails on invalid duration",
			envVars: map[string]string{"DEBOUNCE": "soon"},
			wantErr: true,
		},
		{
			name:    "fails on invalid int value",
			envVars: map[string]string{"MIN_LEN": "four"},
			wantErr: true,
		},
		{
			name:    "fails on invalid bool value",
			envVars: map[string]string{"SURFACE": "maybe"},
			wantErr: true,
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := &testConfig{}
			err := Parse(ctx, cfg, tt.namespace)

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)

			want := defaults()
			tt.want(&want)
			assertConfig(t, want, *cfg)
		})
	}
}

func TestParseInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  any
	}{
		{name: "non-pointer config", cfg: testConfig{}},
		{name: "non-struct pointer", cfg: new(string)},
		{name: "missing EnvConfig embedding", cfg: &struct {
			Value string `env:"VALUE"`
		}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Parse(context.Background(), tt.cfg, "")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

//nolint:paralleltest
func TestLoad(t *testing.T) {
	t.Run("applies dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("LOADTEST_SOURCE=sqlite\nLOADTEST_MIN_LEN=5\n"), 0o600))

		t.Cleanup(func() {
			os.Unsetenv("LOADTEST_SOURCE")
			os.Unsetenv("LOADTEST_MIN_LEN")
		})

		cfg := &testConfig{}
		require.NoError(t, Load(context.Background(), cfg, "LOADTEST", envFile))

		assert.Equal(t, "sqlite", cfg.Source)
		assert.Equal(t, 5, cfg.MinLen)
	})

	t.Run("skips missing dotenv file", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Load(context.Background(), cfg, "", filepath.Join(t.TempDir(), "missing.env")))
		assertConfig(t, defaults(), *cfg)
	})

	t.Run("rejects values failing validation", func(t *testing.T) {
		t.Setenv("SOURCE", "ftp")

		cfg := &testConfig{}
		err := Load(context.Background(), cfg, "")
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("rejects malformed url", func(t *testing.T) {
		t.Setenv("NESTED_URL", "not a url")

		cfg := &testConfig{}
		err := Load(context.Background(), cfg, "")
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}
