package gogogate2

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// gogoGate2SharedSecret is the protocol-mandated AES key shared by every
// GogoGate2 device regardless of user credentials.
const gogoGate2SharedSecret = "0e3b7%i1X9@54cAf"

// rawTokenSuffix is appended to the lowercased username before hashing to
// derive the iSmartGate access token.
const rawTokenSuffix = "@ismartgate"

// ErrInvalidCiphertext indicates content that cannot be decrypted. Error
// payloads are sent unencrypted by the devices, so callers treat this as
// "content was not encrypted" rather than a fatal condition.
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// Cipher implements the AES/CBC/PKCS5Padding scheme used by the device
// command API. Ciphertexts are the 16-byte initialization vector followed
// by the base64 encoded encrypted payload.
type Cipher struct {
	block cipher.Block
}

// NewCipher creates a cipher from a 16-character key string.
func NewCipher(key string) (*Cipher, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return &Cipher{block: block}, nil
}

// NewGogoGate2Cipher creates the cipher used by all GogoGate2 devices.
func NewGogoGate2Cipher() (*Cipher, error) {
	return NewCipher(gogoGate2SharedSecret)
}

// ISmartGateCipher derives its AES key from the account credentials and
// carries the plaintext token the device validates before decrypting.
type ISmartGateCipher struct {
	*Cipher
	token string
}

// NewISmartGateCipher creates a cipher for an iSmartGate device account.
func NewISmartGateCipher(username, password string) (*ISmartGateCipher, error) {
	base, err := NewCipher(deriveISmartGateKey(username, password))
	if err != nil {
		return nil, err
	}
	return &ISmartGateCipher{
		Cipher: base,
		token:  deriveISmartGateToken(username),
	}, nil
}

// Token returns the access token sent as a plaintext query parameter
// alongside encrypted payloads.
func (c *ISmartGateCipher) Token() string {
	return c.token
}

// deriveISmartGateKey splices fixed-offset substrings of the credentials
// digest into the 16-character AES key. The offsets and separators are
// mandated by the device firmware.
func deriveISmartGateKey(username, password string) string {
	digest := sha1.Sum([]byte(strings.ToLower(username) + password))
	h := hex.EncodeToString(digest[:])
	return h[32:36] + "a" + h[7:10] + "!" + h[18:21] + "*#" + h[24:26]
}

func deriveISmartGateToken(username string) string {
	digest := sha1.Sum([]byte(strings.ToLower(username) + rawTokenSuffix))
	return hex.EncodeToString(digest[:])
}

// Encrypt encrypts content using a freshly generated initialization
// vector.
func (c *Cipher) Encrypt(content string) string {
	id := uuid.New()
	return c.EncryptWithIV(content, hex.EncodeToString(id[:]))
}

// EncryptWithIV encrypts content with the given initialization vector
// string. The vector is PKCS5 padded and truncated to the block size,
// then prefixed unencoded to the base64 ciphertext.
func (c *Cipher) EncryptWithIV(content, iv string) string {
	ivBytes := []byte(padPKCS5(iv))[:aes.BlockSize]
	plaintext := []byte(padPKCS5(content))
	encrypted := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(c.block, ivBytes).CryptBlocks(encrypted, plaintext)
	return string(ivBytes) + base64.StdEncoding.EncodeToString(encrypted)
}

// Decrypt reverses Encrypt. The first 16 bytes of content are the
// initialization vector, the remainder is base64 encoded ciphertext.
func (c *Cipher) Decrypt(content string) (string, error) {
	if len(content) < aes.BlockSize {
		return "", fmt.Errorf("%w: content shorter than one block", ErrInvalidCiphertext)
	}

	ivBytes := []byte(content[:aes.BlockSize])
	encrypted, err := base64.StdEncoding.DecodeString(content[aes.BlockSize:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext not block aligned", ErrInvalidCiphertext)
	}

	plaintext := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(c.block, ivBytes).CryptBlocks(plaintext, encrypted)

	unpadded, err := unpadPKCS5(plaintext)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// padPKCS5 pads data to a multiple of the block size with N bytes of
// value N. Padding is always added, even on exact multiples.
func padPKCS5(data string) string {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return data + strings.Repeat(string(rune(n)), n)
}

func unpadPKCS5(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n < 1 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", ErrInvalidCiphertext)
	}
	return data[:len(data)-n], nil
}
