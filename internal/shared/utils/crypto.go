package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	tokenBytes   = 32
	bcryptCost   = 12
	minPassword  = 8
	maxBcryptLen = 72
)

// HashPassword bcrypt du mot de passe poivré
func HashPassword(password, pepper string) (string, error) {
	if len(password) < minPassword {
		return "", fmt.Errorf("mot de passe trop court (min %d caractères)", minPassword)
	}
	peppered := pepperPassword(password, pepper)
	hash, err := bcrypt.GenerateFromPassword([]byte(peppered), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash mot de passe: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compare en temps constant
func VerifyPassword(password, pepper, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pepperPassword(password, pepper))) == nil
}

// pepperPassword HMAC hex : longueur fixe sous la limite bcrypt de 72 octets
func pepperPassword(password, pepper string) string {
	if pepper == "" {
		if len(password) > maxBcryptLen {
			return password[:maxBcryptLen]
		}
		return password
	}
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// GenerateSessionToken jeton opaque de 64 caractères hex
func GenerateSessionToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("génération token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidateSessionToken vérifie le format d'un jeton
func ValidateSessionToken(token string) error {
	if len(token) != tokenBytes*2 {
		return fmt.Errorf("token invalide: longueur %d", len(token))
	}
	if _, err := hex.DecodeString(token); err != nil {
		return fmt.Errorf("token invalide: format hexadécimal attendu")
	}
	return nil
}
