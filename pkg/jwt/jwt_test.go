package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicioshogar/chat/common"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("cu__42", common.RoleCustomer, testSecret, 1)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "cu__42", claims.UserId)
	assert.Equal(t, common.RoleCustomer, claims.Role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("pr__7", common.RoleProvider, testSecret, 1)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_UserMismatch(t *testing.T) {
	token, err := GenerateToken("cu__1", common.RoleCustomer, testSecret, 1)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret, "cu__2")
	assert.Error(t, err)

	claims, err := ValidateToken(token, testSecret, "cu__1")
	require.NoError(t, err)
	assert.Equal(t, "cu__1", claims.UserId)
}

func TestParseExternalToken(t *testing.T) {
	ext := ExternalClaims{
		UserId: 42,
		Role:   "provider",
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, ext).SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := ParseExternalToken(raw, testSecret, "customer")
	require.NoError(t, err)
	assert.Equal(t, "pr__42", claims.UserId)
	assert.Equal(t, common.RoleProvider, claims.Role)
}

func TestParseExternalToken_DefaultRole(t *testing.T) {
	ext := ExternalClaims{
		UserId: 9,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, ext).SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := ParseExternalToken(raw, testSecret, "customer")
	require.NoError(t, err)
	assert.Equal(t, "cu__9", claims.UserId)
}

func TestParseExternalToken_Expired(t *testing.T) {
	ext := ExternalClaims{
		UserId: 9,
		Role:   "customer",
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, ext).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseExternalToken(raw, testSecret, "customer")
	assert.Error(t, err)
}
