package models

import (
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int `json:"user_id"`
	//has standard jwt field issued at, subject, expiry etc
	jwt.RegisteredClaims
}
