package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword 使用 scrypt，存储格式为 "<hex key>.<hex salt>"
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

func CheckPassword(hash, password string) error {
	keyHex, saltHex, ok := strings.Cut(hash, ".")
	if !ok {
		return errMalformedHash
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return errMalformedHash
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return errMalformedHash
	}
	got, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, len(want))
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
