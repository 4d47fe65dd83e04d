package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	syncdomain "github.com/storeops/backend/internal/domain/sync"
	"github.com/storeops/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingBranchID  = errors.New("missing branch_id in claims")
	ErrMissingSubjectID = errors.New("missing employee subject in claims")
)

// Claims are the custom JWT claims carried by device tokens. Tokens are
// issued by the identity service; this service only validates them.
type Claims struct {
	jwt.RegisteredClaims
	TenantID   string `json:"tenant_id"`
	BranchID   string `json:"branch_id"`
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
}

// JWTValidator verifies device tokens and extracts the session context
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg config.JWTConfig) *JWTValidator {
	return &JWTValidator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// ValidateToken parses and validates a token string
func (v *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// SessionContext builds the sync session context from validated claims
func (c *Claims) SessionContext() (syncdomain.SessionContext, error) {
	if c.TenantID == "" {
		return syncdomain.SessionContext{}, ErrMissingTenantID
	}
	if c.BranchID == "" {
		return syncdomain.SessionContext{}, ErrMissingBranchID
	}
	if c.EmployeeID == "" {
		return syncdomain.SessionContext{}, ErrMissingSubjectID
	}

	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return syncdomain.SessionContext{}, ErrInvalidClaims
	}
	branchID, err := uuid.Parse(c.BranchID)
	if err != nil {
		return syncdomain.SessionContext{}, ErrInvalidClaims
	}
	employeeID, err := uuid.Parse(c.EmployeeID)
	if err != nil {
		return syncdomain.SessionContext{}, ErrInvalidClaims
	}

	return syncdomain.SessionContext{
		TenantID:   tenantID,
		BranchID:   branchID,
		EmployeeID: employeeID,
		ActorRole:  c.Role,
	}, nil
}
