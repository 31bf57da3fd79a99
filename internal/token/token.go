package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vaughan-dsouza/tasktracer/internal/models"
)

var (
	// ErrInvalidToken covers bad signatures, malformed payloads and
	// tokens signed with a different algorithm.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken means the token was well-formed but its expiry passed.
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the identity embedded in an access token.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) subjectID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Service signs and verifies access tokens. Secret, algorithm and TTL are
// fixed at construction for the process lifetime.
type Service struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
}

// New resolves the HMAC signing method from its identifier (HS256, HS384
// or HS512) and returns a ready service.
func New(secret, alg string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token: secret not configured")
	}
	if ttl <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}

	var method *jwt.SigningMethodHMAC
	switch alg {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("token: unsupported algorithm %q", alg)
	}

	return &Service{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

// TTL reports the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token embedding the user's id, role and expiry.
func (s *Service) Issue(userID int64, role models.Role) (string, error) {
	now := time.Now()

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	return signed, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// Only the configured algorithm is accepted.
func (s *Service) Verify(tokenStr string) (int64, models.Role, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{s.method.Name}))

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, "", ErrExpiredToken
		}
		return 0, "", ErrInvalidToken
	}

	userID, err := claims.subjectID()
	if err != nil {
		return 0, "", ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return 0, "", ErrInvalidToken
	}

	return userID, claims.Role, nil
}
