package auth

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength     = 6
	MinUsernameLength     = 4
	temporaryPasswordLen  = 10
	temporaryPasswordChar = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordStrength scores a password from 0 to 5.
func PasswordStrength(password string) int {
	score := 0
	n := len([]rune(password))
	if n > 6 {
		score++
	}
	if n > 10 {
		score++
	}
	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r < 'a' || r > 'z':
			symbol = true
		}
	}
	for _, ok := range []bool{upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return score
}

func PasswordStrengthLabel(score int) string {
	switch {
	case score <= 2:
		return "약함"
	case score <= 3:
		return "중간"
	default:
		return "강함"
	}
}

// TemporaryPassword returns a random password for the reset flow.
func TemporaryPassword() (string, error) {
	max := big.NewInt(int64(len(temporaryPasswordChar)))
	out := make([]byte, temporaryPasswordLen)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = temporaryPasswordChar[n.Int64()]
	}
	return string(out), nil
}
