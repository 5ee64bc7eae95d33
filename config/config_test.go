package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"},
		Trace:  TraceConfig{SampleRatio: 0.1},
		Search: SearchConfig{DefaultLimit: 20, MaxLimit: 100},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"空密钥", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }},
		{"默认分页大于上限", func(c *Config) { c.Search.DefaultLimit = 200 }},
		{"分页上限为零", func(c *Config) { c.Search.MaxLimit = 0 }},
		{"采样率越界", func(c *Config) { c.Trace.SampleRatio = 1.5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("UTVEKSLE_AUTH_JWT_SECRET", "env-secret-key-for-unit-testing")
	t.Setenv("UTVEKSLE_SEARCH_MAX_LIMIT", "50")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-secret-key-for-unit-testing", cfg.Auth.JWTSecret)
	assert.Equal(t, 50, cfg.Search.MaxLimit)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.Equal(t, "utveksle", cfg.Database.Name)
}
