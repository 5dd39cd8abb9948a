package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordEncoder is the one-way hashing capability for passwords.
type PasswordEncoder interface {
	Hash(raw string) (string, error)
	Matches(raw, hash string) bool
}

// Argon2Params tunes argon2id. Memory is in KiB. Zero fields take the
// DefaultArgon2Params value.
type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

var DefaultArgon2Params = Argon2Params{Time: 1, Memory: 64 * 1024, Threads: 4}

const (
	saltLen = 16
	keyLen  = 32
)

var errMalformedHash = errors.New("malformed password hash")

var b64 = base64.RawStdEncoding

// Argon2Encoder hashes passwords with argon2id. Input length is not
// limited. Hashes are self-describing:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// so changing the parameters does not invalidate stored hashes.
type Argon2Encoder struct {
	params Argon2Params
}

func NewArgon2Encoder(p Argon2Params) Argon2Encoder {
	if p.Time == 0 {
		p.Time = DefaultArgon2Params.Time
	}
	if p.Memory == 0 {
		p.Memory = DefaultArgon2Params.Memory
	}
	if p.Threads == 0 {
		p.Threads = DefaultArgon2Params.Threads
	}
	return Argon2Encoder{params: p}
}

func (e Argon2Encoder) Params() Argon2Params { return e.params }

func (e Argon2Encoder) Hash(raw string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	p := e.params
	key := argon2.IDKey([]byte(raw), salt, p.Time, p.Memory, p.Threads, keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads, b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

func (e Argon2Encoder) Matches(raw, hash string) bool {
	p, salt, key, err := decodeHash(hash)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(raw), salt, p.Time, p.Memory, p.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decodeHash(hash string) (p Argon2Params, salt, key []byte, err error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformedHash
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, errMalformedHash
	}
	if p.Time == 0 || p.Threads == 0 {
		return p, nil, nil, errMalformedHash
	}

	if salt, err = b64.DecodeString(parts[4]); err != nil {
		return p, nil, nil, errMalformedHash
	}
	if key, err = b64.DecodeString(parts[5]); err != nil || len(key) == 0 {
		return p, nil, nil, errMalformedHash
	}
	return p, salt, key, nil
}
