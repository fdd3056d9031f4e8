package credentials

import "golang.org/x/crypto/bcrypt"

// Hash returns the bcrypt hash of a raw password.
func Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether the raw password matches the stored hash. An
// empty stored hash always fails, which is what bars OAuth-only accounts
// from local login.
func Verify(password, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
