package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24

	// cipherPrefix は暗号文の形式バージョンを表す。
	cipherPrefix = "v1:"

	hkdfInfo = "tweetlog oauth token encryption"
)

// ErrInvalidCiphertext は復号できない暗号文を受け取った場合のエラー。
var ErrInvalidCiphertext = errors.New("invalid token ciphertext")

// TokenCipher はOAuthトークンを保存時に暗号化・復号する。
// NaCl secretboxを使用し、鍵はSESSION_SECRETからHKDFで導出する。
type TokenCipher struct {
	key [keySize]byte
}

// NewTokenCipher は秘密値から暗号鍵を導出してTokenCipherを生成する。
func NewTokenCipher(secret string) (*TokenCipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("token cipher secret is required")
	}

	c := &TokenCipher{}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, c.key[:]); err != nil {
		return nil, fmt.Errorf("failed to derive token key: %w", err)
	}
	return c, nil
}

// Encrypt は平文を暗号化し、"v1:"接頭辞付きのbase64文字列を返す。
// 同じ平文でもノンスが異なるため毎回異なる暗号文になる。
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return cipherPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt はEncryptで生成した暗号文を復号する。
// 改ざんされた暗号文や別の鍵で暗号化された値にはErrInvalidCiphertextを返す。
func (c *TokenCipher) Decrypt(ciphertext string) (string, error) {
	encoded, ok := strings.CutPrefix(ciphertext, cipherPrefix)
	if !ok {
		return "", fmt.Errorf("%w: unknown format", ErrInvalidCiphertext)
	}

	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("%w: too short", ErrInvalidCiphertext)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &c.key)
	if !ok {
		return "", fmt.Errorf("%w: authentication failed", ErrInvalidCiphertext)
	}
	return string(plain), nil
}
