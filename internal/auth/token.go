package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token cannot be parsed at all.
var ErrMalformedToken = errors.New("malformed token")

// TokenStatus is the outcome of validating a session token.
type TokenStatus int

const (
	// TokenValid means signature, structure, and expiry all check out.
	TokenValid TokenStatus = iota
	// TokenExpired means the token is well formed and correctly signed but
	// its expiry has passed.
	TokenExpired
	// TokenInvalid covers everything else: bad signature, wrong algorithm,
	// unparseable payload.
	TokenInvalid
)

// Claims represents the session token payload. Roles are captured at
// issuance time; validation never consults the user store, so a role change
// only takes effect once the token expires.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Principal is the identity resolved from a validated token.
type Principal struct {
	Username string
	Roles    []string
}

// HasRole reports whether the principal carries the named role.
func (p *Principal) HasRole(name string) bool {
	if p == nil {
		return false
	}
	for _, role := range p.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// Manager issues and validates signed session tokens. The signing key is
// fixed at construction and shared by all requests; Manager is safe for
// concurrent use.
type Manager struct {
	secret   []byte
	issuer   string
	lifetime time.Duration

	now func() time.Time
}

// NewManager creates a token manager. The secret comes from configuration
// loaded once at startup; it must not be empty.
func NewManager(secret, issuer string, lifetime time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if lifetime <= 0 {
		lifetime = time.Hour * 24
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "accounts"
	}
	return &Manager{
		secret:   []byte(trimmed),
		issuer:   issuer,
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// Issue signs a token for the subject carrying the given role names.
// Duplicate roles are collapsed, keeping first-occurrence order.
func (m *Manager) Issue(username string, roleNames []string) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("token manager is nil")
	}
	if strings.TrimSpace(username) == "" {
		return "", time.Time{}, errors.New("subject must not be empty")
	}

	now := m.now().UTC()
	expiry := now.Add(m.lifetime)

	claims := Claims{
		Roles: dedupeRoles(roleNames),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// Validate checks signature, structure, and expiry in one call and reports
// the outcome as a tagged status. A principal is returned only for
// TokenValid. Parser errors never escape.
func (m *Manager) Validate(tokenString string) (*Principal, TokenStatus) {
	if m == nil {
		return nil, TokenInvalid
	}

	claims, err := m.parse(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, TokenExpired
		}
		return nil, TokenInvalid
	}

	if claims.ExpiresAt == nil || !m.now().Before(claims.ExpiresAt.Time) {
		return nil, TokenExpired
	}

	return &Principal{
		Username: claims.Subject,
		Roles:    claims.Roles,
	}, TokenValid
}

// Subject extracts the subject claim without enforcing expiry. It fails with
// ErrMalformedToken when the token does not parse or its signature is wrong.
func (m *Manager) Subject(tokenString string) (string, error) {
	if m == nil {
		return "", errors.New("token manager is nil")
	}
	claims, err := m.parse(tokenString)
	if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		return "", ErrMalformedToken
	}
	if claims == nil || claims.Subject == "" {
		return "", ErrMalformedToken
	}
	return claims.Subject, nil
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		// The parser may still have decoded the claims, e.g. for expired
		// tokens with valid signatures.
		if errors.Is(err, jwt.ErrTokenExpired) && claims.Subject != "" {
			return claims, err
		}
		return nil, err
	}
	parsed, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return parsed, nil
}

func dedupeRoles(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
