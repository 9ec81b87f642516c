package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the session lifetime. Tokens are not revocable; expiry is the
// only way a token stops being accepted.
const DefaultTTL = time.Hour

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingSecret = errors.New("signing secret is empty")
)

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is what a verified token proves about the caller.
type Identity struct {
	UserID uint   `json:"id"`
	Role   string `json:"role"`
}

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret []byte, ttl time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: secret, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source, used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) Issue(userID uint, role string) (string, time.Time, error) {
	issuedAt := s.now()
	exp := issuedAt.Add(s.ttl)

	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

func (s *Service) Verify(token string) (Identity, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return Identity{}, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if claims.Role == "" {
		return Identity{}, fmt.Errorf("%w: no role", ErrInvalidToken)
	}

	return Identity{UserID: uint(id), Role: claims.Role}, nil
}
