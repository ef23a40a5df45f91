// Package jwttoken mints and validates the session token pair issued at the
// end of onboarding.
package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	accountmodels "onboard/internal/account/models"
	"onboard/internal/onboarding/models"
	id "onboard/pkg/domain"
	dErrors "onboard/pkg/domain-errors"
	"onboard/pkg/requestcontext"
)

// Claims are the JWT claims carried by both access and refresh tokens.
type Claims struct {
	CredentialID string `json:"credential_id"`
	AccountID    string `json:"account_id"`
	Role         string `json:"role"`
	TokenUse     string `json:"token_use"`
	jwt.RegisteredClaims
}

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// JWTService signs HS256 token pairs bound to a credential/account.
type JWTService struct {
	signingKey []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTService(signingKey, issuer string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue mints the access/refresh pair for a freshly finalized registration.
func (s *JWTService) Issue(ctx context.Context, credentialID id.CredentialID, accountID id.AccountID, role accountmodels.Role) (models.TokenPair, error) {
	now := requestcontext.Now(ctx)

	access, err := s.sign(credentialID, accountID, role, tokenUseAccess, now, s.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := s.sign(credentialID, accountID, role, tokenUseRefresh, now, s.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *JWTService) sign(credentialID id.CredentialID, accountID id.AccountID, role accountmodels.Role, use string, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CredentialID: credentialID.String(),
		AccountID:    accountID.String(),
		Role:         string(role),
		TokenUse:     use,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Subject:   credentialID.String(),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken parses and verifies a token signed by this service.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
