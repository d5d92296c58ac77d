package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"schooldir/internal/domain"
	"schooldir/internal/email"
	"schooldir/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVerified    = errors.New("already verified")
	ErrNotVerified        = errors.New("email not verified")
	ErrOTPNotRequested    = errors.New("otp not requested")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short")
	ErrPasswordTooLong    = errors.New("password too long")
)

const (
	defaultOTPTTL     = 10 * time.Minute
	minPasswordLength = 8
	// bcrypt sólo consume los primeros 72 bytes; más largo es un error.
	maxPasswordLength = 72
)

// UserService coordina el flujo registro -> verificación -> login.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	otps        repository.OTPRepository
	emailSender email.Sender
	otpLimiter  OTPRateLimiter
	otpTTL      time.Duration
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, otps repository.OTPRepository, emailSender email.Sender, otpLimiter OTPRateLimiter, otpTTL time.Duration) *UserService {
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(otpTTL, 3)
	}
	return &UserService{
		logger:      logger,
		users:       users,
		otps:        otps,
		emailSender: emailSender,
		otpLimiter:  otpLimiter,
		otpTTL:      otpTTL,
	}
}

// Register crea el usuario sin verificar y le envía un código por correo.
// Si el envío falla el usuario queda creado igualmente y el error devuelto
// es ErrEmailSendFailure; el código puede reenviarse después.
func (s *UserService) Register(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || !isValidEmail(emailAddr) {
		return domain.User{}, ErrInvalidEmail
	}
	password = strings.TrimSpace(password)
	if len(password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}
	if len(password) > maxPasswordLength {
		return domain.User{}, ErrPasswordTooLong
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		IsVerified:   false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	if err := s.issueOTP(ctx, user); err != nil {
		return user, err
	}
	return user, nil
}

// VerifyOTP comprueba el intento más reciente y marca el usuario verificado.
func (s *UserService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	code = strings.TrimSpace(code)
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if user.IsVerified {
		return domain.User{}, ErrAlreadyVerified
	}

	latest, err := s.otps.Latest(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrOTPNotRequested
		}
		return domain.User{}, err
	}
	if time.Now().UTC().After(latest.ExpiresAt) {
		return domain.User{}, ErrOTPExpired
	}
	if !verifyOTPHash(code, latest.CodeHash) {
		return domain.User{}, ErrOTPInvalid
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return domain.User{}, err
	}
	user.IsVerified = true
	return user, nil
}

// ResendOTP genera un intento nuevo; los anteriores quedan supersedidos.
func (s *UserService) ResendOTP(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if s.otpLimiter != nil && !s.otpLimiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	return s.issueOTP(ctx, user)
}

// Login valida las credenciales y registra last_login.
func (s *UserService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if !user.IsVerified {
		return domain.User{}, ErrNotVerified
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("record login failed", zap.Error(err), zap.String("user_id", user.ID))
	}
	user.LastLogin = &now
	return user, nil
}

// GetProfile devuelve el usuario autenticado.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) issueOTP(ctx context.Context, user domain.User) error {
	code, hash, expiresAt, err := generateOTP(s.otpTTL)
	if err != nil {
		return err
	}

	record := domain.OTPCode{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CodeHash:  hash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.otps.Append(ctx, record); err != nil {
		return err
	}

	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendVerificationOTP(ctx, user.Email, code, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", user.Email))
		}
		return ErrEmailSendFailure
	}
	return nil
}

func generateOTP(ttl time.Duration) (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", time.Time{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	expiresAt := time.Now().UTC().Add(ttl)
	return code, saltStr + ":" + hash, expiresAt, nil
}

func verifyOTPHash(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	expectedHash := parts[1]
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
