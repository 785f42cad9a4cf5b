package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the minimum signing secret length in bytes (256 bits)
const MinSecretLength = 32

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformed        = errors.New("token is malformed")
	ErrSecretTooShort   = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
)

// Kind discriminates access tokens from refresh tokens
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims represents the JWT claims. Subject carries the username.
type Claims struct {
	AccountID uint   `json:"accountId"`
	Role      string `json:"role,omitempty"`
	Kind      Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// Token is a signed token together with its id and expiry
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Config holds the issuer settings
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issuer signs and parses HS256 tokens
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// Option configures an Issuer
type Option func(*Issuer)

// WithClock replaces the issuer's time source
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer creates a token issuer. The secret must be at least MinSecretLength bytes.
func NewIssuer(cfg Config, opts ...Option) (*Issuer, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	i := &Issuer{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
		// Expiry is checked separately by IsExpired.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// IssueAccess generates a new access token
func (i *Issuer) IssueAccess(username string, accountID uint, role string) (*Token, error) {
	return i.sign(Claims{
		AccountID: accountID,
		Role:      role,
		Kind:      KindAccess,
	}, username, i.accessTTL)
}

// IssueRefresh generates a new refresh token. It never carries a role.
func (i *Issuer) IssueRefresh(username string, accountID uint) (*Token, error) {
	return i.sign(Claims{
		AccountID: accountID,
		Kind:      KindRefresh,
	}, username, i.refreshTTL)
}

func (i *Issuer) sign(claims Claims, username string, ttl time.Duration) (*Token, error) {
	now := i.now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	tokenID := uuid.New().String()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        tokenID,
		Subject:   username,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: expiresAt,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign %s token: %w", claims.Kind, err)
	}

	return &Token{
		Value:     signed,
		ID:        tokenID,
		ExpiresAt: expiresAt.Time,
	}, nil
}

// Parse verifies the signature and structure of a token and returns its claims.
// Expiry is not checked. Errors are ErrInvalidSignature or ErrMalformed.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := i.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if !wellFormed(claims) {
		return nil, ErrMalformed
	}
	return claims, nil
}

func wellFormed(c *Claims) bool {
	if c.Subject == "" || c.AccountID == 0 || c.IssuedAt == nil || c.ExpiresAt == nil {
		return false
	}
	switch c.Kind {
	case KindAccess:
		return c.Role != ""
	case KindRefresh:
		return c.Role == ""
	default:
		return false
	}
}

// Validate reports whether the token is signed by this issuer and well formed.
// It does not check expiry.
func (i *Issuer) Validate(tokenString string) bool {
	_, err := i.Parse(tokenString)
	return err == nil
}

// IsExpired reports whether the token expiry has passed. Unparseable tokens count as expired.
func (i *Issuer) IsExpired(tokenString string) bool {
	claims, err := i.Parse(tokenString)
	if err != nil {
		return true
	}
	return !i.now().Before(claims.ExpiresAt.Time)
}
