package application

import (
	"errors"
	"testing"
)

func TestVerifyCodeword(t *testing.T) {
	t.Parallel()

	params := Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
	hashed, err := HashCodeword("open-sesame", params)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !IsHashedCodeword(hashed) {
		t.Fatalf("expected argon2id prefix, got %q", hashed)
	}

	tests := []struct {
		name       string
		configured string
		supplied   string
		want       error
	}{
		{name: "plain match", configured: "open-sesame", supplied: "open-sesame"},
		{name: "plain mismatch", configured: "open-sesame", supplied: "open", want: ErrCodewordMismatch},
		{name: "nothing configured", configured: "", supplied: "anything", want: ErrCodewordNotConfigured},
		{name: "nothing configured or supplied", configured: "", supplied: "", want: ErrCodewordNotConfigured},
		{name: "hash match", configured: hashed, supplied: "open-sesame"},
		{name: "hash mismatch", configured: hashed, supplied: "close-sesame", want: ErrCodewordMismatch},
		{name: "truncated hash", configured: "$argon2id$v=19$m=1024", supplied: "x", want: ErrInvalidCodewordHash},
		{name: "wrong version", configured: "$argon2id$v=1$m=1024,t=1,p=1$c2FsdA$aGFzaA", supplied: "x", want: ErrIncompatibleCodewordVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := VerifyCodeword(tt.configured, tt.supplied); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
