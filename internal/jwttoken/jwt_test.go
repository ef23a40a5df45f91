package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountmodels "onboard/internal/account/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	time.Hour,
	24*time.Hour,
)
var credentialID = id.NewCredentialID()
var accountID = id.NewAccountID()

func Test_Issue(t *testing.T) {
	pair, err := jwtService.Issue(context.Background(), credentialID, accountID, accountmodels.RoleOwner)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := jwtService.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, credentialID.String(), claims.CredentialID)
	assert.Equal(t, accountID.String(), claims.AccountID)
	assert.Equal(t, string(accountmodels.RoleOwner), claims.Role)
	assert.Equal(t, "access", claims.TokenUse)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	refreshClaims, err := jwtService.ValidateToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refreshClaims.TokenUse)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), refreshClaims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	expired := NewJWTService("test-signing-key", "test-issuer", -time.Hour, -time.Hour)
	pair, err := expired.Issue(context.Background(), credentialID, accountID, accountmodels.RoleOwner)
	require.NoError(t, err)

	_, err = expired.ValidateToken(pair.AccessToken)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("another-key", "test-issuer", time.Hour, 24*time.Hour)
	pair, err := other.Issue(context.Background(), credentialID, accountID, accountmodels.RoleOwner)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(pair.AccessToken)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
