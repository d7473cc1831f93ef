// Package auth handles password hashing, JWT issuance and verification,
// and signup credential validation.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidToken is returned when a token fails signature, issuer,
	// or expiry checks, or carries no subject.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrInvalidCredentials is returned when a username or password does
	// not meet the signup rules.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenManager issues and verifies HMAC-SHA256 signed JWTs whose
// subject is the user id.
type TokenManager struct {
	signKey  string
	issuer   string
	tokenTTL time.Duration
}

func NewTokenManager(signKey, issuer string, tokenTTL time.Duration) (*TokenManager, error) {
	if signKey == "" {
		return nil, errors.New("token sign key is required")
	}
	if issuer == "" {
		return nil, errors.New("token issuer is required")
	}
	if tokenTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	return &TokenManager{
		signKey:  signKey,
		issuer:   issuer,
		tokenTTL: tokenTTL,
	}, nil
}

// Issue creates a signed token for the given user id.
//
// The token carries the standard claims:
//   - Issuer    (iss): the configured service identifier
//   - Subject   (sub): the user id
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus the configured TTL
func (m *TokenManager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.signKey))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify validates the token signature, issuer, and expiry, and returns
// the user id from the subject claim.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.signKey), nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := token.Claims.GetSubject()
	if err != nil || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}

// ParseBearer extracts the token from an Authorization header value.
// A bare token without the "Bearer " prefix is accepted as well.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("no token provided")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return header, nil
	}
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the
// stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateUsername enforces the signup username rules: 3-50 characters,
// starting with a letter and containing only letters, digits, or
// underscores.
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 50 {
		return fmt.Errorf("%w: username must be 3-50 characters", ErrInvalidCredentials)
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("%w: username must start with a letter and contain only letters, numbers, or underscores", ErrInvalidCredentials)
	}
	return nil
}

// ValidatePassword enforces the signup password rules: at least 8
// characters with an uppercase letter, a lowercase letter, a digit, and
// one of !@#$%^&*.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidCredentials)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune("!@#$%^&*", r):
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("%w: password must contain upper and lower case letters, a number, and a special character (!@#$%%^&*)", ErrInvalidCredentials)
	}
	return nil
}
