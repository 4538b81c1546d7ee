// Package secrets hashes and verifies profile passwords.
package secrets

import "golang.org/x/crypto/bcrypt"

// Hash returns a bcrypt hash of the cleartext password.
func Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether the cleartext password matches the stored hash.
func Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
