package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/petalpost/florist-backend/pkg/enums"
)

// AccessTokenPayload is the data minted into an operator access token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.AdminRole
	JTI    string
}

// AccessTokenClaims are the typed JWT claims carried by operator sessions.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"uid"`
	Email  string          `json:"email"`
	Role   enums.AdminRole `json:"role"`
	jwt.RegisteredClaims
}
