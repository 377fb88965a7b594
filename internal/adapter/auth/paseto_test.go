package auth_test

import (
	"testing"

	"github.com/quickbites/orderhub/internal/adapter/auth"
	"github.com/quickbites/orderhub/internal/core/domain"
	"github.com/quickbites/orderhub/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestPasetoToken_RoundTrip(t *testing.T) {
	svc, err := auth.New(testKeyHex)
	require.NoError(t, err)

	payload := &port.TokenPayload{
		UserID:       "user-1",
		Role:         port.RoleRestaurant,
		RestaurantID: "rest-1",
	}

	token, err := svc.CreateToken(payload)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestPasetoToken_SharedKeyAcrossInstances(t *testing.T) {
	issuer, err := auth.New(testKeyHex)
	require.NoError(t, err)
	verifier, err := auth.New(testKeyHex)
	require.NoError(t, err)

	token, err := issuer.CreateToken(&port.TokenPayload{UserID: "user-1", Role: port.RoleUser})
	require.NoError(t, err)

	got, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestPasetoToken_EphemeralKeysDoNotCross(t *testing.T) {
	first, err := auth.New("")
	require.NoError(t, err)
	second, err := auth.New("")
	require.NoError(t, err)

	token, err := first.CreateToken(&port.TokenPayload{UserID: "user-1", Role: port.RoleUser})
	require.NoError(t, err)

	_, err = second.VerifyToken(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = second.VerifyToken("not a token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestPasetoToken_RejectsBadKey(t *testing.T) {
	_, err := auth.New("definitely not hex")
	assert.Error(t, err)
}
