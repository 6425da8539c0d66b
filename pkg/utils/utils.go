package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt cost used by HashPassword. Tests lower it.
var PasswordCost = 14

// HashPassword hashes a plain password using bcrypt.
func HashPassword(password string) (string, error) {
	return hashPassword(password)
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
