package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kendall-kelly/autoparts-api/config"
	"github.com/kendall-kelly/autoparts-api/middleware"
	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterInput is the sign-up payload
type RegisterInput struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName string  `json:"fullName" binding:"required"`
	Phone    *string `json:"phone"`
}

// VerifyOTPInput confirms an email address
type VerifyOTPInput struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// LoginInput is the password login payload. OTP is only needed while the
// email is unverified.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	OTP      string `json:"otp" binding:"omitempty,len=6,numeric"`
}

// ProfileUpdateInput patches the caller's own profile
type ProfileUpdateInput struct {
	FullName *string `json:"fullName" binding:"omitempty,min=1"`
	Phone    *string `json:"phone"`
}

// AuthResult is returned by every successful login
type AuthResult struct {
	Token    string           `json:"token"`
	Role     string           `json:"role"`
	Customer *models.Customer `json:"user"`
}

// TokenClaims are the claims of tokens issued by AuthService
type TokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles registration, OTP verification and login
type AuthService struct {
	db     *gorm.DB
	mailer Mailer
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService
func NewAuthService(db *gorm.DB, mailer Mailer, cfg *config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, mailer: mailer, cfg: cfg, logger: logger, now: time.Now}
}

// Register creates a customer and emails a verification code. A customer
// created by checkout without a password can claim the account this way.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Customer, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(in.Password) < 8 || strings.TrimSpace(in.FullName) == "" {
		return nil, utils.NewValidationError("MISSING_FIELDS", "email, password (8+ characters) and fullName are required")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var customer models.Customer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&customer).Error
		switch {
		case err == nil:
			if customer.PasswordHash != nil || customer.GoogleID != nil {
				return utils.NewValidationError("EMAIL_EXISTS", "An account with this email already exists")
			}
		case isNotFound(err):
			customer = models.Customer{Email: email}
		default:
			return storeErr("failed to load customer", err)
		}

		hash := string(passwordHash)
		customer.PasswordHash = &hash
		customer.FullName = strings.TrimSpace(in.FullName)
		if in.Phone != nil {
			customer.Phone = utils.StringPtr(*in.Phone)
		}

		otp, err := s.setOTP(&customer)
		if err != nil {
			return err
		}
		if err := tx.Save(&customer).Error; err != nil {
			return storeErr("failed to save customer", err)
		}
		return s.sendOTP(ctx, customer.Email, otp)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer registered", zap.Uint("customer_id", customer.ID))
	return &customer, nil
}

// VerifyOTP marks the email as verified when the code matches and has not expired
func (s *AuthService) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).First(&customer).Error
	if isNotFound(err) {
		return nil, utils.NewValidationError("INVALID_OTP", "Invalid or expired verification code")
	}
	if err != nil {
		return nil, storeErr("failed to load customer", err)
	}

	if !s.otpMatches(&customer, in.OTP) {
		return nil, utils.NewValidationError("INVALID_OTP", "Invalid or expired verification code")
	}
	if err := s.markVerified(ctx, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// Login checks the password and issues a token. An unverified customer
// must also pass the emailed code; without one a fresh code is sent.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).First(&customer).Error
	if err != nil && !isNotFound(err) {
		return nil, storeErr("failed to load customer", err)
	}
	if err != nil || customer.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*customer.PasswordHash), []byte(in.Password)) != nil {
		return nil, utils.NewAuthError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !customer.IsVerified() {
		if strings.TrimSpace(in.OTP) == "" {
			otp, err := s.setOTP(&customer)
			if err != nil {
				return nil, err
			}
			if err := s.db.WithContext(ctx).Model(&customer).Updates(map[string]interface{}{
				"otp_hash":       customer.OTPHash,
				"otp_expires_at": customer.OTPExpiresAt,
			}).Error; err != nil {
				return nil, storeErr("failed to save verification code", err)
			}
			if err := s.sendOTP(ctx, customer.Email, otp); err != nil {
				return nil, err
			}
			return nil, utils.NewAuthError("OTP_REQUIRED", "Email not verified. A verification code has been sent")
		}
		if !s.otpMatches(&customer, in.OTP) {
			return nil, utils.NewAuthError("INVALID_OTP", "Invalid or expired verification code")
		}
		if err := s.markVerified(ctx, &customer); err != nil {
			return nil, err
		}
	}

	return s.authResult(&customer)
}

// LoginWithGoogle finds or creates the customer behind a Google account
func (s *AuthService) LoginWithGoogle(ctx context.Context, info *GoogleUserInfo) (*AuthResult, error) {
	email := normalizeEmail(info.Email)
	if info.Sub == "" || email == "" {
		return nil, utils.NewAuthError("GOOGLE_PROFILE_INCOMPLETE", "Google account has no email")
	}
	if !info.EmailVerified {
		return nil, utils.NewAuthError("GOOGLE_EMAIL_UNVERIFIED", "Google email is not verified")
	}

	var customer models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("google_id = ?", info.Sub).First(&customer).Error
		if err == nil {
			return nil
		}
		if !isNotFound(err) {
			return storeErr("failed to load customer", err)
		}

		err = tx.Where("email = ?", email).First(&customer).Error
		if err != nil && !isNotFound(err) {
			return storeErr("failed to load customer", err)
		}
		if isNotFound(err) {
			customer = models.Customer{Email: email, FullName: utils.FirstNonEmpty(info.Name, email)}
		}

		now := s.now().UTC()
		sub := info.Sub
		customer.GoogleID = &sub
		if customer.EmailVerifiedAt == nil {
			customer.EmailVerifiedAt = &now
		}
		if err := tx.Save(&customer).Error; err != nil {
			return storeErr("failed to save customer", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.authResult(&customer)
}

// GetProfile loads the customer behind a token subject
func (s *AuthService) GetProfile(ctx context.Context, customerID uint) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).First(&customer, customerID).Error
	if isNotFound(err) {
		return nil, utils.NewNotFoundError("USER_NOT_FOUND", "User not found")
	}
	if err != nil {
		return nil, storeErr("failed to load customer", err)
	}
	return &customer, nil
}

// UpdateProfile patches the caller's name and phone
func (s *AuthService) UpdateProfile(ctx context.Context, customerID uint, in ProfileUpdateInput) (*models.Customer, error) {
	customer, err := s.GetProfile(ctx, customerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, utils.NewValidationError("INVALID_NAME", "fullName cannot be empty")
		}
		updates["full_name"] = name
	}
	if in.Phone != nil {
		updates["phone"] = utils.StringPtr(*in.Phone)
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(customer).Updates(updates).Error; err != nil {
			return nil, storeErr("failed to update profile", err)
		}
	}
	return s.GetProfile(ctx, customerID)
}

// IssueToken signs an HS256 token for the customer
func (s *AuthService) IssueToken(customer *models.Customer) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Email: customer.Email,
		Role:  s.roleFor(customer.Email),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(customer.ID), 10),
			Issuer:    s.cfg.JWTIssuer,
			Audience:  jwt.ClaimStrings{s.cfg.JWTAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *AuthService) authResult(customer *models.Customer) (*AuthResult, error) {
	token, err := s.IssueToken(customer)
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer logged in", zap.Uint("customer_id", customer.ID))
	return &AuthResult{Token: token, Role: s.roleFor(customer.Email), Customer: customer}, nil
}

func (s *AuthService) roleFor(email string) string {
	if s.cfg.IsAdminEmail(email) {
		return middleware.RoleAdmin
	}
	return middleware.RoleCustomer
}

// setOTP stores a fresh hashed code on the customer and returns the plain code
func (s *AuthService) setOTP(customer *models.Customer) (string, error) {
	otp, err := generateOTP()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash verification code: %w", err)
	}
	hashed := string(hash)
	expires := s.now().Add(s.cfg.OTPTTL).UTC()
	customer.OTPHash = &hashed
	customer.OTPExpiresAt = &expires
	return otp, nil
}

func (s *AuthService) otpMatches(customer *models.Customer, otp string) bool {
	if customer.OTPHash == nil || customer.OTPExpiresAt == nil {
		return false
	}
	if s.now().After(*customer.OTPExpiresAt) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*customer.OTPHash), []byte(strings.TrimSpace(otp))) == nil
}

func (s *AuthService) markVerified(ctx context.Context, customer *models.Customer) error {
	now := s.now().UTC()
	err := s.db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"email_verified_at": now,
		"otp_hash":          nil,
		"otp_expires_at":    nil,
	}).Error
	if err != nil {
		return storeErr("failed to verify customer", err)
	}
	customer.EmailVerifiedAt = &now
	customer.OTPHash = nil
	customer.OTPExpiresAt = nil
	return nil
}

func (s *AuthService) sendOTP(ctx context.Context, email, otp string) error {
	body := fmt.Sprintf("Your verification code is %s. It expires in %s.", otp, s.cfg.OTPTTL)
	if err := s.mailer.Send(ctx, email, "Your verification code", body); err != nil {
		s.logger.Error("failed to send verification code", zap.String("email", email), zap.Error(err))
		return err
	}
	return nil
}

// generateOTP returns a uniformly random six digit code
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
