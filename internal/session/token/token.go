// Package token signs and verifies the session bearer token. The token only
// proves authenticity of the ids it carries; liveness (revocation, expiry)
// is always re-checked against the session record.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "checkin/pkg/domain"
	dErrors "checkin/pkg/domain-errors"
)

// Claims represents the JWT claims for session tokens.
type Claims struct {
	EmployeeID string `json:"employee_id"`
	SessionID  string `json:"session_id"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey string, issuer string, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Generate signs a token binding the employee and session ids for the given
// lifetime.
func (s *Service) Generate(
	employeeID id.EmployeeID,
	sessionID id.SessionID,
	issuedAt time.Time,
	expiresAt time.Time) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		EmployeeID: employeeID.String(),
		SessionID:  sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// Validate parses and verifies the token signature and registered claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)

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

// SessionIDTyped extracts the typed session id from validated claims.
func (c *Claims) SessionIDTyped() (id.SessionID, error) {
	return id.ParseSessionID(c.SessionID)
}

// EmployeeIDTyped extracts the typed employee id from validated claims.
func (c *Claims) EmployeeIDTyped() (id.EmployeeID, error) {
	return id.ParseEmployeeID(c.EmployeeID)
}
