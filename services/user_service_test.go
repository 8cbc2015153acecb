package services

import (
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentals-api/domain"
	"rentals-api/dto"
	"rentals-api/filters"
	"rentals-api/logging"
	"rentals-api/mailer"
	"rentals-api/uploads"
	"rentals-api/utils"
	"rentals-api/validation"
)

// in-memory repositories

type mockUserRepository struct {
	users  map[uint]*domain.User
	nextID uint
	writes int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[uint]*domain.User)}
}

func (m *mockUserRepository) Create(_ context.Context, user *domain.User) error {
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	m.writes++
	return nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id uint) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, domain.NewNotFound("User", id)
	}
	cp := *user
	return &cp, nil
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, domain.NewNotFound("User", email)
}

func (m *mockUserRepository) EmailTaken(_ context.Context, email string, exceptID uint) (bool, error) {
	for _, user := range m.users {
		if user.Email == email && user.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) VATTaken(_ context.Context, vat string, exceptID uint) (bool, error) {
	for _, user := range m.users {
		if user.VATNumber != nil && *user.VATNumber == vat && user.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return domain.NewNotFound("User", user.ID)
	}
	cp := *user
	m.users[user.ID] = &cp
	m.writes++
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, id uint) (int64, error) {
	if _, ok := m.users[id]; !ok {
		return 0, nil
	}
	delete(m.users, id)
	return 1, nil
}

func (m *mockUserRepository) List(_ context.Context, spec *filters.Spec) ([]domain.User, int64, error) {
	var all []domain.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	start := spec.Page.Offset()
	if start >= len(all) {
		return nil, total, nil
	}
	end := min(start+spec.Page.Limit, len(all))
	return all[start:end], total, nil
}

type mockVerificationRepository struct {
	otps   map[uint]domain.OTP
	tokens map[string]domain.PasswordResetToken
}

func newMockVerificationRepository() *mockVerificationRepository {
	return &mockVerificationRepository{
		otps:   make(map[uint]domain.OTP),
		tokens: make(map[string]domain.PasswordResetToken),
	}
}

func (m *mockVerificationRepository) ReplaceOTP(_ context.Context, otp *domain.OTP) error {
	m.otps[otp.UserID] = *otp
	return nil
}

func (m *mockVerificationRepository) FindOTP(_ context.Context, userID uint, code string) (*domain.OTP, error) {
	otp, ok := m.otps[userID]
	if !ok || otp.Code != code {
		return nil, domain.NewNotFound("OTP", userID)
	}
	return &otp, nil
}

func (m *mockVerificationRepository) DeleteOTPs(_ context.Context, userID uint) error {
	delete(m.otps, userID)
	return nil
}

func (m *mockVerificationRepository) ReplaceResetToken(_ context.Context, token *domain.PasswordResetToken) error {
	for k, t := range m.tokens {
		if t.UserID == token.UserID {
			delete(m.tokens, k)
		}
	}
	m.tokens[token.Token] = *token
	return nil
}

func (m *mockVerificationRepository) FindResetToken(_ context.Context, token string) (*domain.PasswordResetToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return nil, domain.NewNotFound("Reset token", token)
	}
	return &t, nil
}

func (m *mockVerificationRepository) DeleteResetTokens(_ context.Context, userID uint) error {
	for k, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, k)
		}
	}
	return nil
}

type userFixture struct {
	service *userService
	users   *mockUserRepository
	verify  *mockVerificationRepository
	mail    *mailer.Memory
	upload  *uploads.Memory
	home    *countingInvalidator
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:  newMockUserRepository(),
		verify: newMockVerificationRepository(),
		mail:   &mailer.Memory{},
		upload: &uploads.Memory{},
		home:   &countingInvalidator{},
	}
	f.service = NewUserService(
		f.users, f.verify,
		utils.NewTokenManager("test-secret", time.Hour),
		f.mail, f.upload, f.home,
		validation.New(), logging.Nop(),
		UserOptions{OTPTTL: 15 * time.Minute, ResetTokenTTL: time.Hour, UploadFolder: "rentals"},
	).(*userService)
	return f
}

func validSignup() dto.SignupRequest {
	return dto.SignupRequest{Name: "Ana Silva", Email: "Ana@Example.com ", Password: "password123", Nationality: "Portuguese"}
}

// signup and verify in one go
func (f *userFixture) verifiedUser(t *testing.T, req dto.SignupRequest) *domain.User {
	t.Helper()
	ctx := context.Background()
	user, err := f.service.Signup(ctx, req)
	require.NoError(t, err)
	sent, ok := f.mail.Last("verification", user.Email)
	require.True(t, ok)
	require.NoError(t, f.service.Verify(ctx, dto.VerifyRequest{Email: user.Email, Code: sent.Value}))
	return user
}

func TestSignup_Success(t *testing.T) {
	f := newUserFixture()

	user, err := f.service.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, domain.UserTypeUser, user.Type)
	assert.False(t, user.Verified)
	assert.NotEqual(t, "password123", user.Password)

	sent, ok := f.mail.Last("verification", "ana@example.com")
	require.True(t, ok)
	assert.Len(t, sent.Value, 6)
}

func TestSignup_ShortPassword(t *testing.T) {
	f := newUserFixture()
	req := validSignup()
	req.Password = "short"

	_, err := f.service.Signup(context.Background(), req)

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Messages(), "Password must be at least 8 characters long")
	assert.Zero(t, f.users.writes)
}

func TestSignup_PasswordOverByteLimit(t *testing.T) {
	f := newUserFixture()
	req := validSignup()
	// 40 runes, 80 bytes
	req.Password = strings.Repeat("é", 40)

	_, err := f.service.Signup(context.Background(), req)

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Password must be at most 72 bytes"}, ve.Messages())
	assert.Zero(t, f.users.writes)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := hashPassword(strings.Repeat("a", 73))

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Password must be at most 72 bytes"}, ve.Messages())
}

func TestSignup_DuplicateEmailAndVAT(t *testing.T) {
	f := newUserFixture()
	vat := "123456789"
	req := validSignup()
	req.VATNumber = &vat
	_, err := f.service.Signup(context.Background(), req)
	require.NoError(t, err)

	again := validSignup()
	again.VATNumber = &vat
	_, err = f.service.Signup(context.Background(), again)

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{EmailTakenMessage, VATTakenMessage}, ve.Messages())
}

func TestLogin(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	user, err := f.service.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = f.service.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrUserNotVerified)

	sent, _ := f.mail.Last("verification", user.Email)
	require.NoError(t, f.service.Verify(ctx, dto.VerifyRequest{Email: user.Email, Code: sent.Value}))

	_, err = f.service.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.service.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	res, err := f.service.Login(ctx, dto.LoginRequest{Email: "ANA@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, user.ID, res.User.ID)

	blocked := true
	_, _, err = f.service.UpdateStatus(ctx, user.ID, dto.UserStatusRequest{Blocked: &blocked})
	require.NoError(t, err)
	_, err = f.service.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrUserBlocked)
}

func TestVerify_ExpiredOrWrongCode(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user, err := f.service.Signup(ctx, validSignup())
	require.NoError(t, err)
	sent, _ := f.mail.Last("verification", user.Email)

	wrong := "000000"
	if sent.Value == wrong {
		wrong = "999999"
	}
	err = f.service.Verify(ctx, dto.VerifyRequest{Email: user.Email, Code: wrong})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	f.service.now = func() time.Time { return time.Now().Add(time.Hour) }
	err = f.service.Verify(ctx, dto.VerifyRequest{Email: user.Email, Code: sent.Value})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	err = f.service.Verify(ctx, dto.VerifyRequest{Email: "ghost@example.com", Code: sent.Value})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestResendCode_AfterExpiry(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user, err := f.service.Signup(ctx, validSignup())
	require.NoError(t, err)
	first, _ := f.mail.Last("verification", user.Email)

	f.service.now = func() time.Time { return time.Now().Add(time.Hour) }
	err = f.service.Verify(ctx, dto.VerifyRequest{Email: user.Email, Code: first.Value})
	require.ErrorIs(t, err, domain.ErrInvalidCode)

	require.NoError(t, f.service.ResendCode(ctx, dto.ResendCodeRequest{Email: " ANA@example.com"}))
	second, ok := f.mail.Last("verification", user.Email)
	require.True(t, ok)
	require.NoError(t, f.service.Verify(ctx, dto.VerifyRequest{Email: user.Email, Code: second.Value}))

	_, err = f.service.Login(ctx, dto.LoginRequest{Email: user.Email, Password: "password123"})
	assert.NoError(t, err)
}

func TestResendCode_SilentForUnknownOrVerified(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user := f.verifiedUser(t, validSignup())
	sent := len(f.mail.Sent)

	require.NoError(t, f.service.ResendCode(ctx, dto.ResendCodeRequest{Email: "ghost@example.com"}))
	require.NoError(t, f.service.ResendCode(ctx, dto.ResendCodeRequest{Email: user.Email}))
	assert.Len(t, f.mail.Sent, sent)

	err := f.service.ResendCode(ctx, dto.ResendCodeRequest{Email: "not-an-email"})
	_, ok := domain.AsValidation(err)
	assert.True(t, ok)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user := f.verifiedUser(t, validSignup())

	require.NoError(t, f.service.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ghost@example.com"}))
	_, ok := f.mail.Last("reset", "ghost@example.com")
	assert.False(t, ok)

	require.NoError(t, f.service.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: user.Email}))
	sent, ok := f.mail.Last("reset", user.Email)
	require.True(t, ok)

	require.NoError(t, f.service.ResetPassword(ctx, dto.ResetPasswordRequest{Token: sent.Value, Password: "brand-new-pass"}))
	_, err := f.service.Login(ctx, dto.LoginRequest{Email: user.Email, Password: "brand-new-pass"})
	assert.NoError(t, err)

	// tokens are single use
	err = f.service.ResetPassword(ctx, dto.ResetPasswordRequest{Token: sent.Value, Password: "another-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestUpdate_NoChanges(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user := f.verifiedUser(t, validSignup())
	writes := f.users.writes

	name, password := "Ana Silva", "password123"
	_, changed, err := f.service.Update(ctx, user.ID, dto.UpdateUserRequest{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, writes, f.users.writes)

	nationality := "Spanish"
	updated, changed, err := f.service.Update(ctx, user.ID, dto.UpdateUserRequest{Nationality: &nationality})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Spanish", updated.Nationality)
}

func TestUpdate_BlankName(t *testing.T) {
	f := newUserFixture()
	user := f.verifiedUser(t, validSignup())
	writes := f.users.writes

	blank := "   "
	_, _, err := f.service.Update(context.Background(), user.ID, dto.UpdateUserRequest{Name: &blank})

	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Name must not be blank"}, ve.Messages())
	assert.Equal(t, writes, f.users.writes)

	padded := "  Ana Costa "
	updated, changed, err := f.service.Update(context.Background(), user.ID, dto.UpdateUserRequest{Name: &padded})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Ana Costa", updated.Name)
}

func TestUpdate_EmailMustBeUnique(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	f.verifiedUser(t, validSignup())
	other := validSignup()
	other.Email = "bruno@example.com"
	bruno := f.verifiedUser(t, other)

	taken := "ana@example.com"
	_, _, err := f.service.Update(ctx, bruno.ID, dto.UpdateUserRequest{Email: &taken})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{EmailTakenMessage}, ve.Messages())

	_, _, err = f.service.Update(ctx, 99, dto.UpdateUserRequest{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user := f.verifiedUser(t, validSignup())

	admin := "admin"
	updated, changed, err := f.service.UpdateStatus(ctx, user.ID, dto.UserStatusRequest{Type: &admin})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, updated.IsAdmin())

	_, changed, err = f.service.UpdateStatus(ctx, user.ID, dto.UserStatusRequest{Type: &admin})
	require.NoError(t, err)
	assert.False(t, changed)

	bogus := "root"
	_, _, err = f.service.UpdateStatus(ctx, user.ID, dto.UserStatusRequest{Type: &bogus})
	_, ok := domain.AsValidation(err)
	assert.True(t, ok)
}

func TestUpdateAvatar(t *testing.T) {
	f := newUserFixture()
	user := f.verifiedUser(t, validSignup())

	updated, err := f.service.UpdateAvatar(context.Background(), user.ID, &multipart.FileHeader{Filename: "me.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://assets.test/rentals/avatars/1-me.png", updated.Avatar)

	f.service.uploader = uploads.Disabled{}
	_, err = f.service.UpdateAvatar(context.Background(), user.ID, &multipart.FileHeader{Filename: "me.png"})
	assert.True(t, errors.Is(err, uploads.ErrDisabled))
}

func TestDeleteUser(t *testing.T) {
	f := newUserFixture()
	user := f.verifiedUser(t, validSignup())

	require.NoError(t, f.service.Delete(context.Background(), user.ID))
	assert.ErrorIs(t, f.service.Delete(context.Background(), user.ID), domain.ErrNotFound)
}

func TestUserWrites_InvalidateHomeStats(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	user := f.verifiedUser(t, validSignup())
	assert.Equal(t, 1, f.home.calls)

	admin := "admin"
	_, _, err := f.service.UpdateStatus(ctx, user.ID, dto.UserStatusRequest{Type: &admin})
	require.NoError(t, err)
	assert.Equal(t, 2, f.home.calls)

	// unchanged status writes nothing
	_, _, err = f.service.UpdateStatus(ctx, user.ID, dto.UserStatusRequest{Type: &admin})
	require.NoError(t, err)
	assert.Equal(t, 2, f.home.calls)

	require.NoError(t, f.service.Delete(ctx, user.ID))
	assert.Equal(t, 3, f.home.calls)
}

func TestListUsers_Pages(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com", "f@x.com", "g@x.com"} {
		req := validSignup()
		req.Email = email
		_, err := f.service.Signup(ctx, req)
		require.NoError(t, err)
	}

	spec := &filters.Spec{Page: filters.Page{Number: 2, Limit: 6}}
	users, p, err := f.service.List(ctx, spec)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 2, p.Pages)
	require.NotNil(t, p.Previous)
	assert.Nil(t, p.Next)

	spec.Page.Number = 3
	_, _, err = f.service.List(ctx, spec)
	assert.ErrorIs(t, err, filters.ErrNoMoreResults)
}
