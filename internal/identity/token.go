package identity

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "caseseal/pkg/domain-errors"
)

// Claims are the JWT claims carried by caseseal bearer tokens.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and validates bearer tokens. It is the single principal
// resolution mechanism; the upstream cookie-session and CSRF variants were
// collapsed into this one interface.
type TokenService struct {
	signingKey []byte
	tokenTTL   time.Duration
}

// NewTokenService creates a TokenService with the given HS256 signing key.
func NewTokenService(signingKey string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
	}
}

// Issue mints a signed bearer token for the given principal.
// Returns the token string and its JTI for revocation tracking.
func (s *TokenService) Issue(principal Principal) (string, string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	jti := hex.EncodeToString(b)
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: principal.Username,
		Role:     string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   principal.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// Validate parses and verifies a bearer token, returning its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// PrincipalFromClaims converts validated claims back into a Principal.
func PrincipalFromClaims(claims *Claims) (Principal, error) {
	principalID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid subject claim")
	}
	role := Role(claims.Role)
	if !role.Valid() {
		return Principal{}, dErrors.New(dErrors.CodeUnauthorized, "unknown role claim")
	}
	return Principal{ID: principalID, Username: claims.Username, Role: role}, nil
}
