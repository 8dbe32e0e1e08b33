package utils

import "golang.org/x/crypto/bcrypt"

// EncryptPassword returns the salted bcrypt hash of a plaintext password.
func EncryptPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword checks a plaintext password against a stored bcrypt
// hash. The comparison is constant-time inside bcrypt.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
