package accounts

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

type Account struct {
	ID           string    `json:"id,omitempty"`    // Unique identifier for the account
	Email        string    `json:"email,omitempty"` // Account email address, unique
	PasswordHash string    `json:"-"`               // Hashed password - never serialize
	Active       bool      `json:"active,omitempty"`
	Verified     bool      `json:"verified,omitempty"` // Has the email address been proven
	Superuser    bool      `json:"superuser,omitempty"`
	ExternalID   *string   `json:"external_id,omitempty"` // Identity provider subject, set once linked
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Linked reports whether the account has an external identity attached.
func (a *Account) Linked() bool {
	return a.ExternalID != nil && *a.ExternalID != ""
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RandomPasswordHash produces a hash of a password nobody knows. Used when an
// account is created from an external identity: the schema requires a
// password hash, but the value grants no usable password login.
func RandomPasswordHash() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate random password: %w", err)
	}
	return HashPassword(base64.RawURLEncoding.EncodeToString(bytes))
}
