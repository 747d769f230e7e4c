package krypto

import (
	"crypto/subtle"
	"database/sql/driver"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Work factors for newly derived hashes. Verification uses the factors
// embedded in the stored hash, so these can be tuned without invalidating
// existing hashes.
const (
	hashMemoryKiB   = 19 * 1024
	hashIterations  = 2
	hashParallelism = 1

	hashSaltLen = 16
	hashKeyLen  = 32

	// Accepted parameter ranges for parsed hashes. argon2.IDKey panics on
	// zero iterations or parallelism, and an oversized memory parameter
	// would make verification allocate it. A hash outside these ranges is
	// corrupt, not a password mismatch.
	hashMinMemoryKiB = 8
	hashMaxMemoryKiB = 1 << 21 // 2 GiB
)

// ErrInvalidInput indicates the input could not be hashed or is not a
// valid argon2 hash string.
var ErrInvalidInput = errors.New("invalid input")

// Argon2Hash is an argon2id hash in the self-describing PHC string format:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<base64 salt>$<base64 hash>
//
// Because the parameters and salt travel with the hash, verification never
// needs externally stored parameters.
type Argon2Hash struct {
	Variant     string
	Version     int
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	Salt        []byte
	Hash        []byte
}

// HashArgon2 hashes raw using argon2id with a fresh random salt.
func HashArgon2(raw []byte) (Argon2Hash, error) {
	if len(raw) == 0 {
		return Argon2Hash{}, fmt.Errorf("no data to hash: %w", ErrInvalidInput)
	}

	salt, err := genRandomBytes(hashSaltLen)
	if err != nil {
		return Argon2Hash{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey(raw, salt, hashIterations, hashMemoryKiB, hashParallelism, hashKeyLen)

	return Argon2Hash{
		Variant:     "argon2id",
		Version:     argon2.Version,
		MemoryKiB:   hashMemoryKiB,
		Iterations:  hashIterations,
		Parallelism: hashParallelism,
		Salt:        salt,
		Hash:        hash,
	}, nil
}

// ParseArgon2Hash parses a hash in the PHC string format. Only the
// argon2id variant and the current argon2 version are accepted.
func ParseArgon2Hash(raw string) (Argon2Hash, error) {
	parts := strings.Split(raw, "$")
	if len(parts) != 6 || parts[0] != "" {
		return Argon2Hash{}, fmt.Errorf("wrong number of segments: %w", ErrInvalidInput)
	}

	h := Argon2Hash{
		Variant: parts[1],
	}

	if h.Variant != "argon2id" {
		return Argon2Hash{}, fmt.Errorf("unsupported variant %q: %w", h.Variant, ErrInvalidInput)
	}

	if _, err := fmt.Sscanf(parts[2], "v=%d", &h.Version); err != nil {
		return Argon2Hash{}, fmt.Errorf("malformed version segment: %w", ErrInvalidInput)
	}

	if h.Version != argon2.Version {
		return Argon2Hash{}, fmt.Errorf("unsupported version %d: %w", h.Version, ErrInvalidInput)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.MemoryKiB, &h.Iterations, &h.Parallelism); err != nil {
		return Argon2Hash{}, fmt.Errorf("malformed parameter segment: %w", ErrInvalidInput)
	}

	if h.Iterations < 1 {
		return Argon2Hash{}, fmt.Errorf("iterations out of range: %w", ErrInvalidInput)
	}

	if h.Parallelism < 1 {
		return Argon2Hash{}, fmt.Errorf("parallelism out of range: %w", ErrInvalidInput)
	}

	if h.MemoryKiB < hashMinMemoryKiB || h.MemoryKiB > hashMaxMemoryKiB {
		return Argon2Hash{}, fmt.Errorf("memory out of range: %w", ErrInvalidInput)
	}

	var err error
	h.Salt, err = base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil {
		return Argon2Hash{}, fmt.Errorf("malformed salt segment: %w", ErrInvalidInput)
	}

	h.Hash, err = base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil {
		return Argon2Hash{}, fmt.Errorf("malformed hash segment: %w", ErrInvalidInput)
	}

	return h, nil
}

// MatchBytes re-derives the hash for raw using the parameters embedded in
// h and compares the results in constant time.
func (h Argon2Hash) MatchBytes(raw []byte) bool {
	other := argon2.IDKey(raw, h.Salt, h.Iterations, h.MemoryKiB, h.Parallelism, uint32(len(h.Hash)))
	return subtle.ConstantTimeCompare(h.Hash, other) == 1
}

// String returns the hash in the PHC string format. The output contains
// the salt and derived hash, it should be treated like any other password
// hash.
func (h Argon2Hash) String() string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		h.Variant,
		h.Version,
		h.MemoryKiB,
		h.Iterations,
		h.Parallelism,
		base64.RawStdEncoding.EncodeToString(h.Salt),
		base64.RawStdEncoding.EncodeToString(h.Hash),
	)
}

func (h Argon2Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Argon2Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseArgon2Hash(string(text))
	if err != nil {
		return err
	}

	*h = parsed
	return nil
}

// Scan implements sql.Scanner, so hashes can be read directly from
// database columns.
func (h *Argon2Hash) Scan(src any) error {
	s, ok := src.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into Argon2Hash", src)
	}

	return h.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer, so hashes can be written directly to
// database columns.
func (h Argon2Hash) Value() (driver.Value, error) {
	return h.String(), nil
}
