package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims carries the caller identity. The subject claim is the caller id
// used for rate limiting.
type JWTClaims struct {
	Tier string `json:"tier,omitempty"`
	jwt.RegisteredClaims
}

type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}
