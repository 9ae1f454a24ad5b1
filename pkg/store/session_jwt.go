package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"jobboard/pkg/domain"
)

const (
	defaultJWTIssuer   = "jobboard-api"
	defaultJWTAudience = "jobboard-clients"

	// MinJWTSecretBytes is the shortest accepted HMAC secret.
	MinJWTSecretBytes = 32
)

var defaultJWTLeeway = 30 * time.Second

var (
	// ErrInvalidToken covers malformed, expired, mis-signed and revoked tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWeakSecret is returned when the signing secret is too short.
	ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d bytes", MinJWTSecretBytes)
)

// JWTOptions configures JWT claim validation behavior.
type JWTOptions struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
	// Now overrides the clock used to issue and verify tokens.
	Now func() time.Time
}

// JWTSessionStore issues and validates HS256 JWT tokens.
type JWTSessionStore struct {
	secret  []byte
	ttl     time.Duration
	revoker TokenRevoker

	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

type sessionClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTSessionStore builds an HS256 session store.
func NewJWTSessionStore(secret string, ttl time.Duration, revoker TokenRevoker, opts JWTOptions) (*JWTSessionStore, error) {
	if len(secret) < MinJWTSecretBytes {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	opts = normalizeJWTOptions(opts)
	now := func() time.Time { return time.Now().UTC() }
	if opts.Now != nil {
		now = func() time.Time { return opts.Now().UTC() }
	}
	return &JWTSessionStore{
		secret:   []byte(secret),
		ttl:      ttl,
		revoker:  revoker,
		issuer:   opts.Issuer,
		audience: opts.Audience,
		leeway:   opts.Leeway,
		now:      now,
	}, nil
}

// NewSession creates a signed JWT carrying the user id and role.
func (s *JWTSessionStore) NewSession(userID string, role domain.UserRole) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id required")
	}
	now, err := s.issueTime(userID)
	if err != nil {
		return "", err
	}
	claims := sessionClaims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        randomHexID(12),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// issueTime returns the issued-at for a new token of userID. Issued-at has
// second precision, so a token minted in the same second as the user's
// revocation cutoff is dated to the following second.
func (s *JWTSessionStore) issueTime(userID string) (time.Time, error) {
	now := s.now()
	if s.revoker == nil {
		return now, nil
	}
	cutoff, err := s.revoker.RevokedAfter(userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("check user revocation: %w", err)
	}
	if !cutoff.IsZero() && !now.Truncate(time.Second).After(cutoff) {
		return cutoff.Add(time.Second), nil
	}
	return now, nil
}

// VerifySession validates a JWT and returns its session.
func (s *JWTSessionStore) VerifySession(token string) (Session, error) {
	claims, err := s.parseAndVerify(token)
	if err != nil {
		return Session{}, err
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(claims.RegisteredClaims.ID)
		if err != nil {
			return Session{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return Session{}, fmt.Errorf("%w: revoked", ErrInvalidToken)
		}
		cutoff, err := s.revoker.RevokedAfter(claims.UserID)
		if err != nil {
			return Session{}, fmt.Errorf("check user revocation: %w", err)
		}
		if !cutoff.IsZero() && !claims.IssuedAt.Time.After(cutoff) {
			return Session{}, fmt.Errorf("%w: revoked for user", ErrInvalidToken)
		}
	}
	return Session{UserID: claims.UserID, Role: domain.UserRole(claims.Role)}, nil
}

// DeleteSession revokes the token until it expires. Invalid tokens are ignored.
func (s *JWTSessionStore) DeleteSession(token string) error {
	if s.revoker == nil {
		return nil
	}
	claims, err := s.parseAndVerify(token)
	if err != nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	return s.revoker.Revoke(claims.RegisteredClaims.ID, ttl)
}

// RevokeUserSessions rejects every token of userID issued at or before the
// second containing since.
func (s *JWTSessionStore) RevokeUserSessions(userID string, since time.Time) error {
	if s.revoker == nil {
		return nil
	}
	return s.revoker.RevokeUser(userID, since.Truncate(time.Second), s.ttl)
}

func (s *JWTSessionStore) parseAndVerify(token string) (sessionClaims, error) {
	claims := sessionClaims{}
	token = strings.TrimSpace(token)
	if token == "" {
		return claims, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.leeway),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("not valid")
		}
		return claims, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.RegisteredClaims.ID) == "" {
		return claims, fmt.Errorf("%w: jti missing", ErrInvalidToken)
	}
	if strings.TrimSpace(claims.UserID) == "" || claims.UserID != claims.Subject {
		return claims, fmt.Errorf("%w: subject mismatch", ErrInvalidToken)
	}
	if claims.IssuedAt == nil {
		return claims, fmt.Errorf("%w: issued_at missing", ErrInvalidToken)
	}
	return claims, nil
}

func randomHexID(nBytes int) string {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", buf)
}

func normalizeJWTOptions(opts JWTOptions) JWTOptions {
	opts.Issuer = strings.TrimSpace(opts.Issuer)
	opts.Audience = strings.TrimSpace(opts.Audience)
	if opts.Issuer == "" {
		opts.Issuer = defaultJWTIssuer
	}
	if opts.Audience == "" {
		opts.Audience = defaultJWTAudience
	}
	if opts.Leeway <= 0 {
		opts.Leeway = defaultJWTLeeway
	}
	return opts
}
