package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"accounts-api/internal/domain"
	"accounts-api/internal/email"
	"accounts-api/internal/repository"
)

// UserService coordina reglas de negocio para cuentas de usuario.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
	otpWindow   time.Duration
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender, otpWindow time.Duration) *UserService {
	if otpWindow <= 0 {
		otpWindow = 5 * time.Minute
	}
	return &UserService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
		otpWindow:   otpWindow,
	}
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrOTPInvalid         = errors.New("invalid otp or email")
	ErrOTPExpired         = errors.New("otp expired")
)

type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}
	return s.users.Create(ctx, user)
}

// Authenticate valida credenciales y devuelve el usuario. Email desconocido,
// cuenta sin contraseña y contraseña errada son indistinguibles para el
// llamador.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

type ListMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	TotalPages int64 `json:"total_pages"`
	Skip       int   `json:"skip"`
}

// ListUsers devuelve una página de usuarios sin credenciales.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]domain.PublicUser, ListMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	skip := (page - 1) * limit

	users, total, err := s.users.List(ctx, skip, limit)
	if err != nil {
		return nil, ListMeta{}, err
	}

	public := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return public, ListMeta{
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		TotalPages: totalPages,
		Skip:       skip,
	}, nil
}

// UserPatch enumera los campos que una actualización parcial puede tocar.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, patch UserPatch) (domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Email != nil {
		emailAddr := normalizeEmail(*patch.Email)
		if emailAddr == "" {
			return domain.User{}, ErrInvalidEmail
		}
		user.Email = emailAddr
	}
	if patch.Password != nil {
		hashBytes, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		user.PasswordHash = string(hashBytes)
	}

	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	affected, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RequestPasswordReset emite un OTP de 4 dígitos, lo persiste y despacha el
// correo en segundo plano. El estado persistido es la fuente de verdad: una
// falla de entrega no revierte la emisión. Un OTP pendiente anterior queda
// sobrescrito.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user.Otp = &code
	user.OtpRequestedAt = &now
	user.ResetFlag = true

	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	go s.dispatchOTP(user.Email, code)
	return nil
}

func (s *UserService) dispatchOTP(toEmail, code string) {
	if s.emailSender == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.emailSender.SendPasswordResetOTP(ctx, toEmail, code); err != nil {
		if s.logger != nil {
			s.logger.Warn("send otp email failed", zap.Error(err), zap.String("email", toEmail))
		}
	}
}

// ResetPassword consume el OTP: con código correcto y vigente cambia la
// contraseña; vencido, lo invalida y falla. En ambos casos el usuario vuelve
// a quedar sin OTP activo.
func (s *UserService) ResetPassword(ctx context.Context, emailAddr, otp, newPassword string) error {
	emailAddr = normalizeEmail(emailAddr)
	otp = strings.TrimSpace(otp)
	if emailAddr == "" || otp == "" {
		return ErrOTPInvalid
	}

	user, err := s.users.GetForReset(ctx, emailAddr, otp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOTPInvalid
		}
		return err
	}

	if user.OtpRequestedAt == nil || time.Since(*user.OtpRequestedAt) > s.otpWindow {
		user.Otp = nil
		user.OtpRequestedAt = nil
		user.ResetFlag = false
		if err := s.users.Save(ctx, user); err != nil {
			return err
		}
		return ErrOTPExpired
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashBytes)
	user.Otp = nil
	user.OtpRequestedAt = nil
	user.ResetFlag = false
	return s.users.Save(ctx, user)
}

// generateOTP devuelve un código numérico uniforme en [1000, 9999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
