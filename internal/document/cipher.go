package document

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fernet/fernet-go"
)

var (
	// ErrNoKey is returned when an encrypted document is opened without a key.
	ErrNoKey = errors.New("no encryption key configured")
	// ErrDecrypt is returned when no configured key can open a token.
	ErrDecrypt = errors.New("invalid or undecryptable token")
)

// Decrypter turns at-rest ciphertext into plaintext bytes.
type Decrypter interface {
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Encrypter produces at-rest ciphertext.
type Encrypter interface {
	Encrypt(plaintext []byte) ([]byte, error)
}

// FernetCipher encrypts with the first key and decrypts with any of the keys,
// which allows rotating keys without re-encrypting old files.
type FernetCipher struct {
	keys []*fernet.Key
}

// NewFernetCipher parses base64url encoded 32-byte keys. A single string may
// hold several comma-separated keys.
func NewFernetCipher(encoded ...string) (*FernetCipher, error) {
	var raw []string
	for _, e := range encoded {
		for _, k := range strings.Split(e, ",") {
			if k = strings.TrimSpace(k); k != "" {
				raw = append(raw, k)
			}
		}
	}
	if len(raw) == 0 {
		return nil, ErrNoKey
	}
	keys, err := fernet.DecodeKeys(raw...)
	if err != nil {
		return nil, fmt.Errorf("decode fernet keys: %w", err)
	}
	return &FernetCipher{keys: keys}, nil
}

// GenerateKey returns a fresh encoded key.
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", err
	}
	return k.Encode(), nil
}

func (c *FernetCipher) Encrypt(plaintext []byte) ([]byte, error) {
	if c == nil || len(c.keys) == 0 {
		return nil, ErrNoKey
	}
	return fernet.EncryptAndSign(plaintext, c.keys[0])
}

func (c *FernetCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if c == nil || len(c.keys) == 0 {
		return nil, ErrNoKey
	}
	msg := fernet.VerifyAndDecrypt(ciphertext, 0, c.keys)
	if msg == nil {
		return nil, ErrDecrypt
	}
	return msg, nil
}

// DecryptFile reads an encrypted file and returns its plaintext.
func DecryptFile(d Decrypter, path string) ([]byte, error) {
	if d == nil {
		return nil, ErrNoKey
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return d.Decrypt(data)
}
