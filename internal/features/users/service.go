package users

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"biodaat-backend/internal/config"
	cache_utils "biodaat-backend/internal/util/cache"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrRateLimited       = errors.New("please wait before requesting another OTP")
	ErrOTPNotFound       = errors.New("no OTP found for this number")
	ErrOTPMaxAttempts    = errors.New("too many failed attempts")
	ErrOTPInvalid        = errors.New("invalid OTP")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrAccountDisabled   = errors.New("account is disabled")
	ErrUserNotFound      = errors.New("user not found")
)

// One OTP per phone per minute.
var otpResendLimit = cache_utils.Limit{MaxRequests: 1, Window: 60 * time.Second}

// RateLimiter is the narrow slice of the cache rate limiter the auth
// service needs.
type RateLimiter interface {
	Allow(identifier, scope string, limit cache_utils.Limit) (bool, error)
}

type AuthService struct {
	repository  *UserRepository
	otpStore    OTPStore
	rateLimiter RateLimiter
	env         *config.Env
	logger      *slog.Logger
}

func NewAuthService(
	repository *UserRepository,
	otpStore OTPStore,
	rateLimiter RateLimiter,
	env *config.Env,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		repository:  repository,
		otpStore:    otpStore,
		rateLimiter: rateLimiter,
		env:         env,
		logger:      logger,
	}
}

// SendOTP generates and stores a code for the phone number. SMS delivery
// is an external collaborator; the code is returned so debug builds can
// echo it to the client.
func (s *AuthService) SendOTP(phone string) (string, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}

	allowed, err := s.rateLimiter.Allow(normalized, "send-otp", otpResendLimit)
	if err != nil {
		// Rate limiting is advisory; an unreachable cache must not block
		// logins.
		s.logger.Warn("OTP rate limit check failed", "error", err)
	} else if !allowed {
		return "", ErrRateLimited
	}

	code := GenerateOTP()
	s.otpStore.Set(normalized, &OTPEntry{Code: code})

	s.logger.Info("OTP generated", "phone", maskPhone(normalized))
	return code, nil
}

// VerifyOTP checks the submitted code and, on success, returns the
// (possibly freshly created) user for the phone number.
func (s *AuthService) VerifyOTP(phone, code string) (*User, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	entry := s.otpStore.Get(normalized)
	if entry == nil {
		return nil, ErrOTPNotFound
	}

	if entry.Attempts >= otpMaxAttempts {
		s.otpStore.Invalidate(normalized)
		return nil, ErrOTPMaxAttempts
	}

	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(strings.TrimSpace(code))) != 1 {
		entry.Attempts++
		s.otpStore.Set(normalized, entry)
		return nil, ErrOTPInvalid
	}

	s.otpStore.Invalidate(normalized)

	user, err := s.getOrCreateUser(normalized)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return user, nil
}

func (s *AuthService) getOrCreateUser(phone string) (*User, error) {
	user, err := s.repository.FindByPhone(phone)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &User{Phone: phone, IsActive: true}
	if err := s.repository.Create(user); err != nil {
		return nil, err
	}

	s.logger.Info("created user", "phone", maskPhone(phone))
	return user, nil
}

// AdminLogin validates admin credentials against the bcrypt hash.
func (s *AuthService) AdminLogin(username, password string) (*AdminUser, error) {
	admin, err := s.repository.FindAdminByUsername(username)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	if err := s.repository.TouchAdminLogin(admin.ID); err != nil {
		s.logger.Warn("failed to record admin login time", "error", err)
	}

	return admin, nil
}

func (s *AuthService) GetAdmin(id uuid.UUID) (*AdminUser, error) {
	return s.repository.FindAdminByID(id)
}

func (s *AuthService) UpdateProfile(id uuid.UUID, name, email string) (*User, error) {
	if err := s.repository.UpdateProfile(id, name, email); err != nil {
		return nil, err
	}
	return s.repository.FindByID(id)
}

// ToggleUserActive flips the active flag and returns the new state.
func (s *AuthService) ToggleUserActive(id uuid.UUID) (bool, error) {
	user, err := s.repository.FindByID(id)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, ErrUserNotFound
	}

	newState := !user.IsActive
	ok, err := s.repository.SetActive(id, newState)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrUserNotFound
	}

	return newState, nil
}

func (s *AuthService) ChangeAdminPassword(admin *AdminUser, currentPassword, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredential
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.repository.UpdateAdminPassword(admin.ID, string(hash))
}

// NormalizePhone strips everything non-numeric and drops the 91 country
// prefix, matching how numbers are stored.
func NormalizePhone(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	normalized := digits.String()
	if len(normalized) == 12 && strings.HasPrefix(normalized, "91") {
		normalized = normalized[2:]
	}

	if len(normalized) != 10 {
		return "", ErrInvalidPhone
	}

	return normalized, nil
}

func maskPhone(phone string) string {
	if len(phone) < 4 {
		return "****"
	}
	return "******" + phone[len(phone)-4:]
}
