package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/bazaar-api/internal/config"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/platform/logger"
)

// MinSigningKeyLength is the shortest HMAC secret accepted, in bytes.
const MinSigningKeyLength = 32

// errUnsupportedAlgorithm is returned by the key function for any alg other than HS256.
var errUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

// hmacTokenService implements TokenService with HS256-signed JWTs.
// The key is copied at construction and never written again, so one
// instance is safe for concurrent use.
type hmacTokenService struct {
	signingKey []byte
	ttl        time.Duration
	timeFunc   func() time.Time
}

// tokenClaims is the JWT payload: sub, iat, exp, plus the roles snapshot.
type tokenClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a TokenService from the auth configuration.
// An unusable secret yields ErrSigningKey; callers must treat that as fatal.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	ttl := time.Duration(cfg.TokenLifetimeMinutes) * time.Minute
	return NewTokenServiceWithClock(cfg.JWTSecret, ttl, time.Now)
}

// NewTokenServiceWithClock is NewTokenService with an explicit secret, TTL,
// and time source.
func NewTokenServiceWithClock(
	secret string,
	ttl time.Duration,
	now func() time.Time,
) (TokenService, error) {
	if len(secret) < MinSigningKeyLength {
		return nil, fmt.Errorf("%w: secret must be at least %d characters", ErrSigningKey, MinSigningKeyLength)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}
	if now == nil {
		now = time.Now
	}

	return &hmacTokenService{
		signingKey: []byte(secret),
		ttl:        ttl,
		timeFunc:   now,
	}, nil
}

// Issue creates a signed token for subject.
func (s *hmacTokenService) Issue(
	ctx context.Context,
	subject string,
	roles domain.RoleSet,
) (*IssuedToken, error) {
	log := logger.FromContext(ctx)

	if subject == "" {
		return nil, fmt.Errorf("token subject cannot be empty")
	}

	// NumericDate has one-second precision; truncating here keeps the
	// returned times identical to what the token encodes.
	now := s.timeFunc().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	claims := tokenClaims{
		Roles: roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign token",
			"error", err,
			"subject", subject,
			"signing_method", jwt.SigningMethodHS256.Alg())
		return nil, fmt.Errorf("%w: failed to sign token: %v", ErrSigningKey, err)
	}

	return &IssuedToken{
		Token:     signed,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate verifies the token signature first and its expiry second.
func (s *hmacTokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	// Anything that is not a three-part JWS (for example a JWE or an opaque
	// API key) is a format we do not speak.
	if strings.Count(tokenString, ".") != 2 {
		log.Debug("token validation failed: not a compact JWS", "segments", strings.Count(tokenString, ".")+1)
		return nil, ErrTokenUnsupported
	}

	// Strict decoding rejects non-zero trailing bits, so every base64url
	// spelling of a segment other than the issued one fails to decode.
	parser := jwt.NewParser(
		jwt.WithTimeFunc(s.timeFunc),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)

	var claims tokenClaims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("%w: %v", errUnsupportedAlgorithm, token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		mapped := mapValidationError(err)
		log.Debug("token validation failed",
			"reason", mapped.Error(),
			"error", err,
			"error_type", fmt.Sprintf("%T", err))
		return nil, mapped
	}

	if claims.Subject == "" || claims.IssuedAt == nil {
		log.Debug("token validation failed: missing subject or issued-at claim")
		return nil, ErrTokenMalformed
	}

	roles := make([]domain.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, domain.Role(r))
	}

	return &Claims{
		Subject:   claims.Subject,
		Roles:     domain.NewRoleSet(roles...),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// mapValidationError collapses jwt parser errors into this package's taxonomy.
// The parser checks the signature before the time claims, so a tampered
// token never reports as merely expired.
func mapValidationError(err error) error {
	switch {
	case errors.Is(err, errUnsupportedAlgorithm), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenUnsupported
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}
