package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://env/db")
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "45")
	t.Setenv("PASSWORD_HASH_COST", "11")
	t.Setenv("REQUEST_TIMEOUT", "20s")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MAX_AUDIO_BYTES", "1024")
	t.Setenv("S3_BUCKET", "audio")

	c := &Config{}
	c.LoadDefaults()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, "postgres://env/db", c.DatabaseDSN)
	assert.Equal(t, testSecret, c.SecretKey)
	assert.Equal(t, 45*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 11, c.PasswordHashCost)
	assert.Equal(t, 20*time.Second, c.RequestTimeout)
	assert.Equal(t, "sk-test", c.OpenAIAPIKey)
	assert.Equal(t, int64(1024), c.MaxAudioBytes)
	assert.True(t, c.ArchiveEnabled())
	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
}

func TestParseEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, val string
	}{
		{"ACCESS_TOKEN_EXPIRE_MINUTES", "soon"},
		{"ACCESS_TOKEN_EXPIRE_MINUTES", "0"},
		{"PASSWORD_HASH_COST", "99"},
		{"REQUEST_TIMEOUT", "-1s"},
		{"MAX_AUDIO_BYTES", "five"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.val, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			c := &Config{}
			err := parseEnv(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
