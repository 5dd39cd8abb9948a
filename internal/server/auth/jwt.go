package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/common"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/server/models"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/timex"
)

// Claims carries the principal snapshot taken at sign-in. The account ID is
// stored in the standard subject claim.
type Claims struct {
	jwt.RegisteredClaims
	LoginCode string               `json:"login_code"`
	Role      models.Role          `json:"role"`
	Status    models.AccountStatus `json:"status"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
	clock    timex.Clock
}

func NewTokenIssuer(secret []byte, validity time.Duration, clock timex.Clock) *TokenIssuer {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &TokenIssuer{secret: secret, validity: validity, clock: clock}
}

// Issue signs a token for p.
func (i *TokenIssuer) Issue(p models.Principal) (models.Session, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		LoginCode: p.LoginCode,
		Role:      p.Role,
		Status:    p.Status,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return models.Session{}, fmt.Errorf("sign token: %w", err)
	}

	return models.Session{Token: signed, ExpiresAt: expiresAt, Principal: p}, nil
}

// Parse verifies signature and expiry and returns the embedded principal.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// verification yields common.ErrInvalidToken.
func (i *TokenIssuer) Parse(tokenString string) (models.Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Principal{}, common.ErrTokenExpired
		}
		return models.Principal{}, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return models.Principal{}, common.ErrInvalidToken
	}

	return models.Principal{
		AccountID: claims.Subject,
		LoginCode: claims.LoginCode,
		Role:      claims.Role,
		Status:    claims.Status,
	}, nil
}
