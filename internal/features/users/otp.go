package users

import (
	"crypto/rand"
	"math/big"
	"time"

	cache_utils "biodaat-backend/internal/util/cache"

	"github.com/valkey-io/valkey-go"
)

const (
	otpLength      = 6
	otpTTL         = 5 * time.Minute
	otpMaxAttempts = 3
)

// OTPEntry is the pending verification state for one phone number.
// Entries expire with the cache TTL; an expired entry and a never-sent
// one are indistinguishable, both mean "request a new OTP".
type OTPEntry struct {
	Code     string `json:"code"`
	Attempts int    `json:"attempts"`
}

// OTPStore holds pending OTP codes. The production implementation sits on
// Valkey; tests substitute an in-memory map.
type OTPStore interface {
	Get(phone string) *OTPEntry
	Set(phone string, entry *OTPEntry)
	Invalidate(phone string)
}

type ValkeyOTPStore struct {
	cache *cache_utils.CacheUtil[OTPEntry]
}

func NewValkeyOTPStore(client valkey.Client) *ValkeyOTPStore {
	return &ValkeyOTPStore{
		cache: cache_utils.NewCacheUtil[OTPEntry](client, "otp:", otpTTL),
	}
}

func (s *ValkeyOTPStore) Get(phone string) *OTPEntry {
	return s.cache.Get(phone)
}

func (s *ValkeyOTPStore) Set(phone string, entry *OTPEntry) {
	s.cache.Set(phone, entry)
}

func (s *ValkeyOTPStore) Invalidate(phone string) {
	s.cache.Invalidate(phone)
}

// GenerateOTP returns a random numeric code.
func GenerateOTP() string {
	const digits = "0123456789"

	code := make([]byte, otpLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			code[i] = digits[0]
			continue
		}
		code[i] = digits[n.Int64()]
	}

	return string(code)
}
