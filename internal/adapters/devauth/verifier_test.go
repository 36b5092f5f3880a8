package devauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerifier_Validation(t *testing.T) {
	_, err := NewVerifier(Config{Email: "dev@example.com"})
	assert.Error(t, err)

	_, err = NewVerifier(Config{Subject: "dev-user"})
	assert.Error(t, err)
}

func TestVerifier_Verify(t *testing.T) {
	v, err := NewVerifier(Config{
		Subject: "dev-user",
		Email:   "dev@example.com",
		Groups:  []string{"ticketing-admins"},
	})
	require.NoError(t, err)

	identity, err := v.Verify(context.Background(), "any-token")
	require.NoError(t, err)
	assert.Equal(t, "dev-user", identity.Subject)
	assert.True(t, identity.InGroup("ticketing-admins"))
	assert.False(t, identity.ExpiresAt.IsZero())

	_, err = v.Verify(context.Background(), "")
	assert.Error(t, err)
}
