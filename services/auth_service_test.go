package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kendall-kelly/autoparts-api/middleware"
	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/testutil"
	"github.com/kendall-kelly/autoparts-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var otpPattern = regexp.MustCompile(`\b(\d{6})\b`)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB, *MockMailer) {
	t.Helper()
	db := testutil.NewTestDB(t)
	mailer := NewMockMailer()
	return NewAuthService(db, mailer, testutil.TestConfig(), testutil.NewTestLogger()), db, mailer
}

func lastOTP(t *testing.T, mailer *MockMailer, email string) string {
	t.Helper()
	msg, ok := mailer.LastTo(email)
	require.True(t, ok, "no mail sent to %s", email)
	match := otpPattern.FindStringSubmatch(msg.Body)
	require.Len(t, match, 2, "no code in %q", msg.Body)
	return match[1]
}

func registerVerified(t *testing.T, svc *AuthService, mailer *MockMailer, email string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: email, Password: "hunter2hunter2", FullName: "Pat Buyer"})
	require.NoError(t, err)
	_, err = svc.VerifyOTP(ctx, VerifyOTPInput{Email: email, OTP: lastOTP(t, mailer, email)})
	require.NoError(t, err)
}

func TestAuthService_RegisterAndVerify(t *testing.T) {
	svc, db, mailer := setupAuthService(t)
	ctx := context.Background()

	customer, err := svc.Register(ctx, RegisterInput{Email: "Pat@Example.com", Password: "hunter2hunter2", FullName: " Pat Buyer "})
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", customer.Email)
	assert.Equal(t, "Pat Buyer", customer.FullName)
	assert.False(t, customer.IsVerified())

	wrong := "000000"
	if lastOTP(t, mailer, "pat@example.com") == wrong {
		wrong = "111111"
	}
	_, err = svc.VerifyOTP(ctx, VerifyOTPInput{Email: "pat@example.com", OTP: wrong})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	verified, err := svc.VerifyOTP(ctx, VerifyOTPInput{Email: "pat@example.com", OTP: lastOTP(t, mailer, "pat@example.com")})
	require.NoError(t, err)
	assert.True(t, verified.IsVerified())

	var stored models.Customer
	require.NoError(t, db.First(&stored, customer.ID).Error)
	assert.Nil(t, stored.OTPHash)
	assert.NotNil(t, stored.EmailVerifiedAt)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "pat@example.com", Password: "hunter2hunter2", FullName: "Pat"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "PAT@example.com", Password: "another-password", FullName: "Pat"})
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "EMAIL_EXISTS", appErr.Code)
}

func TestAuthService_RegisterClaimsCheckoutCustomer(t *testing.T) {
	svc, db, _ := setupAuthService(t)
	guest := models.Customer{Email: "guest@example.com", FullName: "guest@example.com"}
	require.NoError(t, db.Create(&guest).Error)

	customer, err := svc.Register(context.Background(), RegisterInput{Email: "guest@example.com", Password: "hunter2hunter2", FullName: "Gus Guest"})
	require.NoError(t, err)
	assert.Equal(t, guest.ID, customer.ID)
	assert.Equal(t, "Gus Guest", customer.FullName)
	assert.Equal(t, int64(1), testutil.CountRows(t, db, &models.Customer{}))
}

func TestAuthService_RegisterMailFailureRollsBack(t *testing.T) {
	svc, db, mailer := setupAuthService(t)
	mailer.Err = errors.New("smtp down")

	_, err := svc.Register(context.Background(), RegisterInput{Email: "pat@example.com", Password: "hunter2hunter2", FullName: "Pat"})
	require.Error(t, err)
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &models.Customer{}))
}

func TestAuthService_Login(t *testing.T) {
	svc, _, mailer := setupAuthService(t)
	ctx := context.Background()
	registerVerified(t, svc, mailer, "pat@example.com")

	result, err := svc.Login(ctx, LoginInput{Email: "Pat@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, middleware.RoleCustomer, result.Role)
	assert.NotEmpty(t, result.Token)

	claims := &TokenClaims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithIssuer("autoparts-api"), jwt.WithAudience("autoparts-dashboard"))
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", claims.Email)
	assert.Equal(t, middleware.RoleCustomer, claims.Role)

	_, err = svc.Login(ctx, LoginInput{Email: "pat@example.com", Password: "wrong-password"})
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.Code)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "hunter2hunter2"})
	assert.True(t, utils.IsKind(err, utils.KindAuth))
}

func TestAuthService_LoginUnverifiedRequiresOTP(t *testing.T) {
	svc, _, mailer := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "pat@example.com", Password: "hunter2hunter2", FullName: "Pat"})
	require.NoError(t, err)
	require.Len(t, mailer.Sent(), 1)

	_, err = svc.Login(ctx, LoginInput{Email: "pat@example.com", Password: "hunter2hunter2"})
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "OTP_REQUIRED", appErr.Code)
	assert.Len(t, mailer.Sent(), 2)

	result, err := svc.Login(ctx, LoginInput{Email: "pat@example.com", Password: "hunter2hunter2", OTP: lastOTP(t, mailer, "pat@example.com")})
	require.NoError(t, err)
	assert.True(t, result.Customer.IsVerified())
}

func TestAuthService_ExpiredOTP(t *testing.T) {
	svc, _, mailer := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "pat@example.com", Password: "hunter2hunter2", FullName: "Pat"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = svc.VerifyOTP(ctx, VerifyOTPInput{Email: "pat@example.com", OTP: lastOTP(t, mailer, "pat@example.com")})
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_OTP", appErr.Code)
}

func TestAuthService_AdminRole(t *testing.T) {
	svc, _, mailer := setupAuthService(t)
	registerVerified(t, svc, mailer, "admin@autoparts.test")

	result, err := svc.Login(context.Background(), LoginInput{Email: "admin@autoparts.test", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, middleware.RoleAdmin, result.Role)
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	svc, db, _ := setupAuthService(t)
	ctx := context.Background()

	existing := models.Customer{Email: "driver@gmail.com", FullName: "Checkout Driver"}
	require.NoError(t, db.Create(&existing).Error)

	info := &GoogleUserInfo{Sub: "g-123", Email: "Driver@Gmail.com", EmailVerified: true, Name: "Dee Driver"}
	result, err := svc.LoginWithGoogle(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.Customer.ID)
	assert.True(t, result.Customer.IsVerified())
	assert.Equal(t, "Checkout Driver", result.Customer.FullName)

	again, err := svc.LoginWithGoogle(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, again.Customer.ID)

	fresh, err := svc.LoginWithGoogle(ctx, &GoogleUserInfo{Sub: "g-456", Email: "new@gmail.com", EmailVerified: true, Name: "New Driver"})
	require.NoError(t, err)
	assert.Equal(t, "New Driver", fresh.Customer.FullName)
	assert.Equal(t, int64(2), testutil.CountRows(t, db, &models.Customer{}))

	_, err = svc.LoginWithGoogle(ctx, &GoogleUserInfo{Sub: "g-789", Email: "x@gmail.com"})
	assert.True(t, utils.IsKind(err, utils.KindAuth))
}

func TestAuthService_Profile(t *testing.T) {
	svc, _, mailer := setupAuthService(t)
	ctx := context.Background()
	registerVerified(t, svc, mailer, "pat@example.com")

	result, err := svc.Login(ctx, LoginInput{Email: "pat@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	phone := "555-0100"
	name := "Pat Q. Buyer"
	updated, err := svc.UpdateProfile(ctx, result.Customer.ID, ProfileUpdateInput{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Pat Q. Buyer", updated.FullName)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "555-0100", *updated.Phone)

	blank := "  "
	_, err = svc.UpdateProfile(ctx, result.Customer.ID, ProfileUpdateInput{FullName: &blank})
	assert.True(t, utils.IsKind(err, utils.KindValidation))

	_, err = svc.GetProfile(ctx, 9999)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
