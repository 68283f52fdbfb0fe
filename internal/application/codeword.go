package application

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const hashPrefix = "$argon2id$"

var (
	ErrInvalidCodewordHash         = errors.New("invalid codeword hash format")
	ErrIncompatibleCodewordVersion = errors.New("incompatible codeword hash version")
)

type Argon2idParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultArgon2idParams = Argon2idParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// HashCodeword returns an argon2id hash suitable for the schedule file's
// codeword fields.
func HashCodeword(codeword string, params Argon2idParams) (string, error) {
	salt := make([]byte, params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(codeword), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// Format is $argon2id$v=19$m=...,t=...,p=...$salt$hash
	format := "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s"
	return fmt.Sprintf(format, argon2.Version, params.Memory, params.Iterations, params.Parallelism, b64Salt, b64Hash), nil
}

// IsHashedCodeword reports whether configured holds an argon2id hash rather
// than a plain codeword.
func IsHashedCodeword(configured string) bool {
	return strings.HasPrefix(configured, hashPrefix)
}

// VerifyCodeword compares a supplied codeword with the configured one, which
// may be plain text or an argon2id hash. An empty configured value means no
// codeword exists.
func VerifyCodeword(configured, supplied string) error {
	if configured == "" {
		return ErrCodewordNotConfigured
	}
	if !IsHashedCodeword(configured) {
		if subtle.ConstantTimeCompare([]byte(configured), []byte(supplied)) == 1 {
			return nil
		}
		return ErrCodewordMismatch
	}

	parts := strings.Split(configured, "$")
	if len(parts) != 6 {
		return ErrInvalidCodewordHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCodewordHash, err)
	}
	if version != argon2.Version {
		return ErrIncompatibleCodewordVersion
	}

	var params Argon2idParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCodewordHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCodewordHash, err)
	}

	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCodewordHash, err)
	}
	params.KeyLength = uint32(len(decodedHash))

	comparisonHash := argon2.IDKey([]byte(supplied), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)

	if subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1 {
		return nil
	}

	return ErrCodewordMismatch
}
