package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/supplydesk/supplydesk-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uint
	Type   enums.UserType
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uint           `json:"user_id"`
	Type   enums.UserType `json:"user_type"`
	jwt.RegisteredClaims
}
