// Package admingrant verifies the bearer tokens that authorize mutating
// registry operations.
//
// Grants are Ed25519-signed JWTs minted by an external issuer. The registry
// only verifies: issuer, audience, expiry, and the scope claim.
package admingrant

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/appregistry/internal/platform/config"
	apperrors "github.com/louisbranch/appregistry/internal/platform/errors"
)

// ScopePackagesWrite authorizes package upserts and deletions.
const ScopePackagesWrite = "packages.write"

// grantEnv holds raw env values before post-parse validation.
type grantEnv struct {
	Issuer    string `env:"APPREGISTRY_ADMIN_GRANT_ISSUER"`
	Audience  string `env:"APPREGISTRY_ADMIN_GRANT_AUDIENCE"`
	PublicKey string `env:"APPREGISTRY_ADMIN_GRANT_PUBLIC_KEY"`
}

// Config defines how admin grants are verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// Enabled reports whether a verification key is configured. A registry with
// no key rejects every mutating request.
func (c Config) Enabled() bool {
	return len(c.Key) == ed25519.PublicKeySize
}

// Claims captures validated admin grant claims.
type Claims struct {
	Issuer    string
	Audience  []string
	Subject   string
	ExpiresAt time.Time
	JWTID     string
	Scopes    []string
}

// HasScope reports whether the grant carries the given scope.
func (c Claims) HasScope(scope string) bool {
	for _, item := range c.Scopes {
		if item == scope {
			return true
		}
	}
	return false
}

// grantClaims is the internal claims type used for JWT parsing.
type grantClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// LoadConfigFromEnv reads admin grant verification configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw grantEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, fmt.Errorf("admin grant env: %w", err)
	}
	if now == nil {
		now = time.Now
	}

	cfg := Config{
		Issuer:   strings.TrimSpace(raw.Issuer),
		Audience: strings.TrimSpace(raw.Audience),
		Now:      now,
	}
	publicKey := strings.TrimSpace(raw.PublicKey)
	if publicKey == "" {
		return cfg, nil
	}
	if cfg.Issuer == "" {
		return Config{}, fmt.Errorf("APPREGISTRY_ADMIN_GRANT_ISSUER is required")
	}
	if cfg.Audience == "" {
		return Config{}, fmt.Errorf("APPREGISTRY_ADMIN_GRANT_AUDIENCE is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode admin grant public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("admin grant public key must be %d bytes", ed25519.PublicKeySize)
	}
	cfg.Key = ed25519.PublicKey(keyBytes)
	return cfg, nil
}

// Verify checks an admin grant token and returns its validated claims.
func Verify(grant string, cfg Config) (Claims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return Claims{}, apperrors.New(apperrors.CodeAdminGrantMissing, "admin grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || !cfg.Enabled() {
		return Claims{}, errors.New("admin grant verifier is not configured")
	}

	var parsed grantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeAdminGrantInvalid,
			"admin grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeAdminGrantInvalid,
			"admin grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeAdminGrantInvalid, "admin grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeAdminGrantExpired, "admin grant is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return Claims{}, apperrors.New(apperrors.CodeAdminGrantInvalid, "admin grant not active yet")
	}

	return Claims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		Subject:   parsed.Subject,
		ExpiresAt: exp,
		JWTID:     parsed.ID,
		Scopes:    strings.Fields(parsed.Scope),
	}, nil
}

// RequireScope verifies a grant and checks it carries the given scope.
func RequireScope(grant string, cfg Config, scope string) (Claims, error) {
	claims, err := Verify(grant, cfg)
	if err != nil {
		return Claims{}, err
	}
	if !claims.HasScope(scope) {
		return Claims{}, apperrors.WithMetadata(
			apperrors.CodeAdminGrantScopeMissing,
			"admin grant scope missing",
			map[string]string{"Scope": scope},
		)
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeAdminGrantInvalid, "admin grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeAdminGrantInvalid, "admin grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeAdminGrantInvalid, "admin grant is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
