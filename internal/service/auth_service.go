package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hostel-portal/internal/domain"
	"hostel-portal/internal/repository"
	"hostel-portal/internal/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService registers and signs in admins and students.
type AuthService interface {
	// RegisterAdmin parks the registration until the mailed OTP is verified.
	RegisterAdmin(ctx context.Context, req RegisterAdminRequest) error
	VerifyAdminRegistration(ctx context.Context, email, otp string) (*domain.Admin, error)
	AdminLogin(ctx context.Context, email, password string) (*Session, error)
	SendLoginOTP(ctx context.Context, email string) error
	VerifyLoginOTP(ctx context.Context, email, otp string) (*Session, error)

	RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*domain.Application, error)
	StudentLogin(ctx context.Context, applicationNumber, password string) (*Session, error)

	Refresh(ctx context.Context, token string) (*Session, error)
	ParseToken(token string) (*Claims, error)
}

type RegisterAdminRequest struct {
	AdminID  string
	Name     string
	Email    string
	Role     string
	Password string
}

type RegisterStudentRequest struct {
	Name              string
	ApplicationNumber string
	Email             string
	DOB               string
	Year              int
	Branch            string
	Gender            string
	Distance          int
	Rank              int
	CounselingRound   int
	Password          string
}

// Session is a successful login. Exactly one of Admin and Student is set.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Admin     *domain.Admin
	Student   *domain.Application
}

// pendingAdmin is what waits in the KV store for OTP verification.
type pendingAdmin struct {
	AdminID      string    `json:"adminId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"passwordHash"`
	RequestedAt  time.Time `json:"requestedAt"`
}

type authService struct {
	admins     repository.AdminsRepository
	apps       repository.ApplicationsRepository
	kv         store.KV
	otp        *OTPManager
	tokens     *TokenIssuer
	mailer     Mailer
	messFee    int
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(
	admins repository.AdminsRepository,
	apps repository.ApplicationsRepository,
	kv store.KV,
	otp *OTPManager,
	tokens *TokenIssuer,
	mailer Mailer,
	messFeePerMonth int,
	logger *zap.Logger,
) AuthService {
	return &authService{
		admins:     admins,
		apps:       apps,
		kv:         kv,
		otp:        otp,
		tokens:     tokens,
		mailer:     mailer,
		messFee:    messFeePerMonth,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func pendingAdminKey(email string) string { return "admin:pending:" + email }

// invalidCredentials covers unknown accounts and wrong passwords alike.
var invalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)

func (s *authService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *authService) RegisterAdmin(ctx context.Context, req RegisterAdminRequest) error {
	email := normalizeEmail(req.Email)
	adminID := strings.TrimSpace(req.AdminID)
	exists, err := s.admins.AdminExists(ctx, email, adminID)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: an admin with this email or admin ID already exists", domain.ErrConflict)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return err
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = domain.RoleAdmin
	}
	b, err := json.Marshal(pendingAdmin{
		AdminID:      adminID,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		RequestedAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, pendingAdminKey(email), string(b), s.otp.TTL()); err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}
	code, err := s.otp.Issue(ctx, OTPRegister, email)
	if err != nil {
		return err
	}
	if err := s.sendOTP(ctx, email, "Verify your hostel admin registration", code); err != nil {
		return err
	}
	s.logger.Info("Admin registration pending verification", zap.String("email", email), zap.String("admin_id", adminID))
	return nil
}

func (s *authService) VerifyAdminRegistration(ctx context.Context, email, otp string) (*domain.Admin, error) {
	email = normalizeEmail(email)
	raw, err := s.kv.Get(ctx, pendingAdminKey(email))
	if errors.Is(err, store.ErrMiss) {
		return nil, fmt.Errorf("%w: no pending registration for %s", domain.ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("load pending registration: %w", err)
	}
	if err := s.otp.Verify(ctx, OTPRegister, email, strings.TrimSpace(otp)); err != nil {
		return nil, err
	}

	var p pendingAdmin
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode pending registration: %w", err)
	}
	admin := &domain.Admin{
		AdminID:      p.AdminID,
		Name:         p.Name,
		Email:        p.Email,
		Role:         p.Role,
		PasswordHash: p.PasswordHash,
	}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	if err := s.kv.Del(ctx, pendingAdminKey(email)); err != nil {
		s.logger.Warn("Failed to clear pending registration", zap.String("email", email), zap.Error(err))
	}
	s.logger.Info("Admin registered", zap.String("email", email), zap.String("admin_id", admin.AdminID))
	return admin, nil
}

func (s *authService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	admin, err := s.admins.GetAdminByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, invalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		s.logger.Info("Admin login rejected", zap.String("email", admin.Email))
		return nil, invalidCredentials
	}
	return s.adminSession(admin)
}

func (s *authService) SendLoginOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := s.admins.GetAdminByEmail(ctx, email); err != nil {
		return err
	}
	code, err := s.otp.Issue(ctx, OTPLogin, email)
	if err != nil {
		return err
	}
	return s.sendOTP(ctx, email, "Your hostel admin login code", code)
}

func (s *authService) VerifyLoginOTP(ctx context.Context, email, otp string) (*Session, error) {
	email = normalizeEmail(email)
	if err := s.otp.Verify(ctx, OTPLogin, email, strings.TrimSpace(otp)); err != nil {
		return nil, err
	}
	admin, err := s.admins.GetAdminByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.adminSession(admin)
}

func (s *authService) adminSession(admin *domain.Admin) (*Session, error) {
	token, exp, err := s.tokens.Issue(admin.Email, domain.RoleAdmin, admin.Name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Admin logged in", zap.String("email", admin.Email))
	return &Session{Token: token, ExpiresAt: exp, Admin: admin}, nil
}

func (s *authService) sendOTP(ctx context.Context, email, subject, code string) error {
	text := fmt.Sprintf("Your one-time code is %s. It expires in %s.", code, s.otp.TTL())
	if err := s.mailer.Send(ctx, email, subject, text); err != nil {
		return fmt.Errorf("deliver OTP: %w", err)
	}
	return nil
}

func (s *authService) RegisterStudent(ctx context.Context, req RegisterStudentRequest) (*domain.Application, error) {
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	round := req.CounselingRound
	if round <= 0 {
		round = 1
	}
	a := &domain.Application{
		Name:              strings.TrimSpace(req.Name),
		ApplicationNumber: strings.TrimSpace(req.ApplicationNumber),
		Email:             normalizeEmail(req.Email),
		DOB:               req.DOB,
		Year:              req.Year,
		Branch:            strings.TrimSpace(req.Branch),
		Gender:            req.Gender,
		Distance:          req.Distance,
		Rank:              req.Rank,
		CounselingRound:   round,
		Status:            domain.ApplicationPending,
		FeeStatus:         domain.FeePending,
		MessFeePerMonth:   s.messFee,
		PasswordHash:      hash,
	}
	if err := s.apps.CreateApplication(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info("Student registered", zap.String("application_number", a.ApplicationNumber))
	return a, nil
}

func (s *authService) StudentLogin(ctx context.Context, applicationNumber, password string) (*Session, error) {
	a, err := s.apps.GetApplication(ctx, strings.TrimSpace(applicationNumber))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, invalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		s.logger.Info("Student login rejected", zap.String("application_number", a.ApplicationNumber))
		return nil, invalidCredentials
	}
	token, exp, err := s.tokens.Issue(a.ApplicationNumber, domain.RoleStudent, a.Name)
	if err != nil {
		return nil, err
	}
	a.RefreshDerived(time.Now())
	s.logger.Info("Student logged in", zap.String("application_number", a.ApplicationNumber))
	return &Session{Token: token, ExpiresAt: exp, Student: a}, nil
}

// Refresh re-issues the token and reloads the account, so a deleted account
// cannot keep refreshing.
func (s *authService) Refresh(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	sess := &Session{}
	switch claims.Role {
	case domain.RoleAdmin:
		admin, err := s.admins.GetAdminByEmail(ctx, claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)
		}
		sess.Admin = admin
	case domain.RoleStudent:
		a, err := s.apps.GetApplication(ctx, claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)
		}
		a.RefreshDerived(time.Now())
		sess.Student = a
	}
	sess.Token, sess.ExpiresAt, _, err = s.tokens.Refresh(token)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *authService) ParseToken(token string) (*Claims, error) {
	return s.tokens.Parse(token)
}
