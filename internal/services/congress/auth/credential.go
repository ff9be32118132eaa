// Package auth verifies caller credentials for congress operations.
//
// Credentials are ed25519-signed JWTs. The subject claim carries the
// caller's principal; the service trusts the principal only after the
// signature, issuer, audience and lifetime all check out.
package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/statecraft/congress/internal/platform/errors"
)

// credentialEnv holds raw env values before post-parse validation.
type credentialEnv struct {
	Issuer    string `env:"CONGRESS_CREDENTIAL_ISSUER"`
	Audience  string `env:"CONGRESS_CREDENTIAL_AUDIENCE"`
	PublicKey string `env:"CONGRESS_CREDENTIAL_PUBLIC_KEY"`
}

// Config defines how caller credentials are verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// Claims captures a validated credential.
type Claims struct {
	Principal string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// LoadConfigFromEnv reads credential verification configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw credentialEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse credential env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return Config{}, fmt.Errorf("CONGRESS_CREDENTIAL_ISSUER is required")
	}
	if audience == "" {
		return Config{}, fmt.Errorf("CONGRESS_CREDENTIAL_AUDIENCE is required")
	}
	if publicKey == "" {
		return Config{}, fmt.Errorf("CONGRESS_CREDENTIAL_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode credential public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("credential public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// VerifyCredential verifies a credential token and returns its claims.
func VerifyCredential(token string, cfg Config) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return Claims{}, errors.New("credential verifier is not configured")
	}

	var parsed jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Claims{}, apperrors.WithMetadata(apperrors.CodeCredentialInvalid, "credential issuer mismatch", map[string]string{
			"Field": "issuer",
		})
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Claims{}, apperrors.WithMetadata(apperrors.CodeCredentialInvalid, "credential audience mismatch", map[string]string{
			"Field": "audience",
		})
	}

	principal := strings.TrimSpace(parsed.Subject)
	if principal == "" {
		return Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential sub is required")
	}
	if parsed.ExpiresAt == nil {
		return Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return Claims{}, apperrors.New(apperrors.CodeCredentialInvalid, "credential not active yet")
	}

	claims := Claims{
		Principal: principal,
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeCredentialInvalid, "credential signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeCredentialInvalid, "credential alg is invalid")
	}
	return apperrors.New(apperrors.CodeCredentialInvalid, "credential is invalid")
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
