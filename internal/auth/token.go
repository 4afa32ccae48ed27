package auth

import (
	"errors"
	"time"

	"github.com/chetan-code/taskshare/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single error returned for every token
// rejection - bad signature, malformed payload, missing user id or
// expiry passed. Callers must not learn which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// DefaultTTL is how long an issued token stays valid unless configured
// otherwise.
const DefaultTTL = 24 * time.Hour

// TokenService mints and resolves the stateless bearer tokens carried
// by every authenticated request. There is no server side session and
// no revocation; a token is good until its expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{secret: secret, ttl: ttl}
}

// Issue signs a token for the given user, expiring after the configured
// TTL. The username rides along in the subject claim.
func (s *TokenService) Issue(userID int, username string) (string, error) {
	expireTime := time.Now().Add(s.ttl)

	claims := &models.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expireTime),
		},
	}

	//create the token using hs256 algo
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	//sign with the secret key and return
	return token.SignedString(s.secret)
}

// Resolve verifies signature and expiry and returns the user id the
// token was issued for.
func (s *TokenService) Resolve(tokenString string) (int, error) {
	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}
