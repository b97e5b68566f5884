package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	require.NoError(t, err)
	assert.Len(t, s, n*2)

	_, err = hex.DecodeString(s)
	assert.NoError(t, err)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	a, err := MakeRandHexString(32)
	require.NoError(t, err)
	b, err := MakeRandHexString(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	sentinels := []error{
		ErrorNotFound, ErrDuplicateKey, ErrInvalidCredentials, ErrDuplicateRegistration,
		ErrTokenInvalid, ErrTokenExpired, ErrIdentityMismatch, ErrInvalidClaimShape,
		ErrUpstreamUnavailable,
	}

	for _, s := range sentinels {
		wrapped := fmt.Errorf("db error: %w", s)
		assert.True(t, errors.Is(wrapped, s), s.Error())
	}

	assert.False(t, errors.Is(ErrTokenExpired, ErrTokenInvalid))
}
