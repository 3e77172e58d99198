// Package session issues and reads signed session capabilities.
//
// A capability proves the caller authenticated as (team, role). It also
// carries the id of the credential it was minted against, so rotating or
// deleting that credential kills every outstanding capability without any
// server-side session table.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rinkside/pkg/domain"
	dErrors "rinkside/pkg/domain-errors"
)

// Capability is the decoded proof carried by an authenticated request.
type Capability struct {
	TeamID domain.TeamID
	Role   domain.Role
	KeyID  domain.KeyID
}

// Claims is the JWT claim set for a capability token.
type Claims struct {
	TeamID string `json:"team_id"`
	Role   string `json:"role"`
	KeyID  string `json:"key_id"`
	jwt.RegisteredClaims
}

// Service signs and validates capability tokens.
type Service struct {
	signingKey []byte
	ttl        time.Duration
}

func New(signingKey string, ttl time.Duration) *Service {
	return &Service{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue mints a capability token bound to the credential it was verified against.
func (s *Service) Issue(teamID domain.TeamID, role domain.Role, keyID domain.KeyID) (string, error) {
	now := time.Now()
	claims := Claims{
		TeamID: teamID.String(),
		Role:   role.String(),
		KeyID:  keyID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, nil
}

// Validate parses and verifies a capability token. Signature, algorithm and
// expiry checks only; whether the bound credential is still active is the
// guard's concern.
func (s *Service) Validate(tokenString string) (*Capability, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired session")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired session")
	}

	teamID, err := domain.ParseTeamID(claims.TeamID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired session")
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired session")
	}
	keyID, err := domain.ParseKeyID(claims.KeyID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired session")
	}

	return &Capability{TeamID: teamID, Role: role, KeyID: keyID}, nil
}

// TTL reports the configured capability lifetime, used when setting cookies.
func (s *Service) TTL() time.Duration {
	return s.ttl
}
