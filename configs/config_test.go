package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REFUND_CASCADE", "true")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", s.HTTPAddr)
	assert.Equal(t, "postgres", s.StorageDriver)
	assert.Equal(t, "marketplace.events", s.EventsExchange)
	assert.Equal(t, "*/5 * * * *", s.BookingExpiryCron)
	assert.True(t, s.RefundCascade)
	assert.Equal(t, "s3cret", Config("JWT_SECRET"))
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}
