package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:120;not null"`
	Username     string `gorm:"uniqueIndex;size:80;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	// TokenBalance is nullable on purpose: rows created before metering
	// existed carry NULL and are repaired to the starting allotment on
	// first use. A negative balance is valid (actual usage may exceed
	// the pre-flight estimate).
	TokenBalance *int64
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Tokens returns the current balance and whether the column is set.
func (u *User) Tokens() (int64, bool) {
	if u.TokenBalance == nil {
		return 0, false
	}
	return *u.TokenBalance, true
}

func (u *User) SetTokens(n int64) {
	u.TokenBalance = &n
}
