package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleLapak    Role = "lapak"
	RoleSupplier Role = "supplier"
)

type JWTCustomClaims struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Role       Role   `json:"role"`
	LapakID    *uint  `json:"lapak_id"`
	SupplierID *uint  `json:"supplier_id"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, claims *JWTCustomClaims) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
