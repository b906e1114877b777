// Package cryptox implements password-based authenticated encryption of file
// contents and the binary envelope the ciphertext is persisted in.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taxvault/internal/common"
	"golang.org/x/crypto/scrypt"
)

// KeySize is the AES-256 key length produced by DeriveKey.
const KeySize = 32

// scrypt cost parameters. Blobs written by earlier deployments used the same
// values, so changing them makes those blobs unreadable.
const (
	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// DeriveKey derives a 32-byte key from the shared password and a per-file
// salt using scrypt. The result is deterministic for a given (password, salt).
func DeriveKey(password, salt []byte) ([]byte, error) {
	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, KeySize)
	if err != nil {
		return nil, fmt.Errorf("scrypt: %w", err)
	}
	return key, nil
}

// Cipher encrypts and decrypts file contents with a password injected at
// construction time. A Cipher is safe for concurrent use.
type Cipher struct {
	password []byte
}

// NewCipher returns a Cipher bound to password.
func NewCipher(password string) *Cipher {
	return &Cipher{password: []byte(password)}
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under a key derived from a fresh random salt and
// nonce, so two calls on identical input never produce the same envelope.
func (c *Cipher) Encrypt(plaintext []byte) (*Envelope, error) {

	salt := common.GenerateRandByteArray(SaltSize)
	nonce := common.GenerateRandByteArray(NonceSize)

	key, err := DeriveKey(c.password, salt)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	// Seal appends the tag after the ciphertext.
	sealed := aesgcm.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - TagSize

	return &Envelope{
		Salt:       salt,
		IV:         nonce,
		AuthTag:    sealed[split:],
		Ciphertext: sealed[:split],
	}, nil
}

// Decrypt verifies and opens e. Any tag mismatch (tampering, a wrong password
// or a corrupted blob) yields common.ErrAuthenticationFailed and no plaintext.
func (c *Cipher) Decrypt(e *Envelope) ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	key, err := DeriveKey(c.password, e.Salt)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(e.Ciphertext)+TagSize)
	sealed = append(sealed, e.Ciphertext...)
	sealed = append(sealed, e.AuthTag...)

	plaintext, err := aesgcm.Open(nil, e.IV, sealed, nil)
	if err != nil {
		return nil, errors.Join(common.ErrAuthenticationFailed, err)
	}
	return plaintext, nil
}

// EncryptBytes encrypts plaintext and returns the encoded envelope.
func (c *Cipher) EncryptBytes(plaintext []byte) ([]byte, error) {
	e, err := c.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}
	return Encode(e), nil
}

// DecryptBytes decodes an envelope buffer and decrypts it.
func (c *Cipher) DecryptBytes(buf []byte) ([]byte, error) {
	e, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(e)
}
