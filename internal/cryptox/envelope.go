package cryptox

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/taxvault/internal/common"
)

// Fixed envelope field sizes.
const (
	SaltSize   = 16
	NonceSize  = 12
	TagSize    = 16
	HeaderSize = SaltSize + NonceSize + TagSize
)

// Envelope is the unit persisted per encrypted file.
//
// On disk it is laid out as salt(16) || iv(12) || authTag(16) || ciphertext.
// The three header fields have fixed sizes, so no length prefix is stored
// and the ciphertext occupies the remainder of the buffer.
type Envelope struct {
	Salt       []byte
	IV         []byte
	AuthTag    []byte
	Ciphertext []byte
}

// Encode concatenates the envelope fields in their fixed order.
func Encode(e *Envelope) []byte {
	buf := make([]byte, 0, HeaderSize+len(e.Ciphertext))
	buf = append(buf, e.Salt...)
	buf = append(buf, e.IV...)
	buf = append(buf, e.AuthTag...)
	buf = append(buf, e.Ciphertext...)
	return buf
}

// Decode splits buf into an Envelope. The returned fields alias buf.
// It fails with common.ErrMalformedEnvelope when buf is shorter than the
// 44-byte header.
func Decode(buf []byte) (*Envelope, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", common.ErrMalformedEnvelope, len(buf), HeaderSize)
	}
	return &Envelope{
		Salt:       buf[0:SaltSize],
		IV:         buf[SaltSize : SaltSize+NonceSize],
		AuthTag:    buf[SaltSize+NonceSize : HeaderSize],
		Ciphertext: buf[HeaderSize:],
	}, nil
}

// Equal reports whether two envelopes carry the same bytes.
func (e *Envelope) Equal(o *Envelope) bool {
	return bytes.Equal(e.Salt, o.Salt) &&
		bytes.Equal(e.IV, o.IV) &&
		bytes.Equal(e.AuthTag, o.AuthTag) &&
		bytes.Equal(e.Ciphertext, o.Ciphertext)
}

func (e *Envelope) validate() error {
	if len(e.Salt) != SaltSize || len(e.IV) != NonceSize || len(e.AuthTag) != TagSize {
		return fmt.Errorf("%w: header sizes salt=%d iv=%d tag=%d", common.ErrMalformedEnvelope, len(e.Salt), len(e.IV), len(e.AuthTag))
	}
	return nil
}
