package utils

import "golang.org/x/crypto/bcrypt"

// HashCost is the bcrypt work factor used for new hashes.
var HashCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with a stored bcrypt hash.
func CheckPasswordHash(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
