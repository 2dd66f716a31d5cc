package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PaymentSessionPrefix marks tokens handed to buyers for a pending payment
const PaymentSessionPrefix = "ps_"

var errMalformedHash = errors.New("malformed password hash")

// PasswordHashConfig holds the Argon2id parameters
type PasswordHashConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultPasswordHashConfig returns the parameters used for new hashes
func DefaultPasswordHashConfig() *PasswordHashConfig {
	return &PasswordHashConfig{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (c *PasswordHashConfig) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, c.Iterations, c.Memory, c.Parallelism, c.KeyLength)
}

// HashPassword hashes a password with Argon2id in the PHC string format
func HashPassword(password string) (string, error) {
	return HashPasswordWith(DefaultPasswordHashConfig(), password)
}

// HashPasswordWith hashes a password using the given parameters
func HashPasswordWith(cfg *PasswordHashConfig, password string) (string, error) {
	salt, err := randomBytes(int(cfg.SaltLength))
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	// $argon2id$v=19$m=65536,t=3,p=2$salt$hash
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, cfg.Memory, cfg.Iterations, cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(cfg.derive(password, salt))), nil
}

// VerifyPassword reports whether password matches an encoded hash
func VerifyPassword(password, encoded string) (bool, error) {
	cfg, salt, want, err := parseHash(encoded)
	if err != nil {
		return false, fmt.Errorf("failed to parse hash: %w", err)
	}
	return subtle.ConstantTimeCompare(want, cfg.derive(password, salt)) == 1, nil
}

func parseHash(encoded string) (*PasswordHashConfig, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, nil, fmt.Errorf("%w: expected 6 parts, got %d", errMalformedHash, len(parts))
	}
	if parts[1] != "argon2id" || parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return nil, nil, nil, fmt.Errorf("%w: unsupported algorithm %s %s", errMalformedHash, parts[1], parts[2])
	}

	cfg := &PasswordHashConfig{}
	n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &cfg.Memory, &cfg.Iterations, &cfg.Parallelism)
	if err != nil || n != 3 {
		return nil, nil, nil, fmt.Errorf("%w: bad parameters %q", errMalformedHash, parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode hash: %w", err)
	}

	cfg.SaltLength = uint32(len(salt))
	cfg.KeyLength = uint32(len(key))
	return cfg, salt, key, nil
}

// GenerateSecureToken returns length random bytes, URL-safe base64 encoded without padding
func GenerateSecureToken(length int) (string, error) {
	b, err := randomBytes(length)
	if err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewPaymentSessionToken returns an opaque token identifying a payment intent to the buyer
func NewPaymentSessionToken() (string, error) {
	token, err := GenerateSecureToken(24)
	if err != nil {
		return "", err
	}
	return PaymentSessionPrefix + token, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
