package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/krbank/backoffice/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// ID prefixes per entity.
const (
	EmployeeIDPrefix = "emp"
	CustomerIDPrefix = "cus"
	AccountIDPrefix  = "acc"
)

// accountNumberTruncate is the number of leading millisecond-timestamp digits
// dropped from the account-number suffix.
const accountNumberTruncate = 5

// GenerateID generates a unique ID with the given prefix
func GenerateID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 10

	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}

	return fmt.Sprintf("%s-%s", prefix, string(result))
}

// GenerateAccountNumber builds the type prefix followed by the millisecond
// timestamp with its leading digits cut off. Two accounts of the same type
// opened in the same millisecond get the same number; the store's unique
// constraint rejects the second one.
func GenerateAccountNumber(accountType models.AccountType, now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ts) > accountNumberTruncate {
		ts = ts[accountNumberTruncate:]
	}
	return accountType.NumberPrefix() + ts
}

// MaxPasswordBytes is the longest secret bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by the hashers for secrets over
// MaxPasswordBytes.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// BcryptHasher is the credential hashing service. Comparison is constant
// time inside bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	if h.cost == bcrypt.DefaultCost {
		return HashPassword(secret)
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	return string(bytes), err
}

func (h *BcryptHasher) Verify(secret, digest string) bool {
	return CheckPassword(secret, digest)
}

// ValidateAccountNumber checks that an account number starts with a known
// type prefix followed by digits only.
func ValidateAccountNumber(accountNumber string) bool {
	for _, t := range models.AccountTypes() {
		rest, ok := strings.CutPrefix(accountNumber, t.NumberPrefix())
		if !ok || rest == "" {
			continue
		}
		if _, err := strconv.ParseUint(rest, 10, 64); err == nil {
			return true
		}
	}
	return false
}
