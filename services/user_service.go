package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/crypto/bcrypt"

	"rentals-api/domain"
	"rentals-api/dto"
	"rentals-api/filters"
	"rentals-api/mailer"
	"rentals-api/repositories"
	"rentals-api/uploads"
	"rentals-api/utils"
	"rentals-api/validation"
)

const (
	EmailTakenMessage = "Email already in use. It must be unique"
	VATTakenMessage   = "VAT number already in use. It must be unique"
)

// UserService holds the account rules: signup, login, verification and
// profile maintenance.
type UserService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*domain.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Verify(ctx context.Context, req dto.VerifyRequest) error
	ResendCode(ctx context.Context, req dto.ResendCodeRequest) error
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	List(ctx context.Context, spec *filters.Spec) ([]domain.User, filters.Pagination, error)
	Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*domain.User, bool, error)
	UpdateStatus(ctx context.Context, id uint, req dto.UserStatusRequest) (*domain.User, bool, error)
	UpdateAvatar(ctx context.Context, id uint, file *multipart.FileHeader) (*domain.User, error)
	Delete(ctx context.Context, id uint) error
}

// UserOptions tunes token lifetimes and where avatars are stored.
type UserOptions struct {
	OTPTTL         time.Duration
	ResetTokenTTL  time.Duration
	UploadFolder   string
	LegacyNextPage bool
}

type userService struct {
	users         repositories.UserRepository
	verifications repositories.VerificationRepository
	tokens        *utils.TokenManager
	mail          mailer.Mailer
	uploader      uploads.Uploader
	home          Invalidator
	validate      *validation.Validator
	logger        log.Logger
	opts          UserOptions
	now           Clock
}

func NewUserService(
	users repositories.UserRepository,
	verifications repositories.VerificationRepository,
	tokens *utils.TokenManager,
	mail mailer.Mailer,
	uploader uploads.Uploader,
	home Invalidator,
	validate *validation.Validator,
	logger log.Logger,
	opts UserOptions,
) UserService {
	if home == nil {
		home = noopInvalidator{}
	}
	return &userService{
		users:         users,
		verifications: verifications,
		tokens:        tokens,
		mail:          mail,
		uploader:      uploader,
		home:          home,
		validate:      validate,
		logger:        log.With(logger, "service", "users"),
		opts:          opts,
		now:           time.Now,
	}
}

// Signup registers an unverified guest account and mails it a one-time code.
func (s *userService) Signup(ctx context.Context, req dto.SignupRequest) (*domain.User, error) {
	// normalize before validating so padded input is judged on its content
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.VATNumber = normalizeVAT(req.VATNumber)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	// email and VAT number are unique across accounts
	verr := &domain.ValidationError{}
	if err := s.checkUnique(ctx, verr, &req.Email, req.VATNumber, 0); err != nil {
		return nil, err
	}
	if !verr.Empty() {
		return nil, verr
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    hashed,
		Nationality: req.Nationality,
		VATNumber:   req.VATNumber,
		Type:        domain.UserTypeUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent signup can still win the race on the unique index
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewValidationError("email", EmailTakenMessage)
		}
		return nil, err
	}
	s.home.Invalidate()

	if err := s.sendOTP(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// sendOTP stores a fresh code for user, replacing any earlier one, and mails
// it. A mail failure is logged only; the code can be requested again.

func (s *userService) sendOTP(ctx context.Context, user *domain.User) error {
	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	now := s.now()
	otp := &domain.OTP{UserID: user.ID, Code: code, CreatedAt: now, ExpiresAt: now.Add(s.opts.OTPTTL)}
	if err := s.verifications.ReplaceOTP(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	if err := s.mail.SendVerificationCode(ctx, user.Email, user.Name, code); err != nil {
		level.Warn(s.logger).Log("msg", "verification email not sent", "user_id", user.ID, "err", err)
	}
	return nil
}

// Login checks the credentials and issues a bearer token. Unknown emails and
// wrong passwords share one error.
func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	// account state is only revealed to someone who knows the password
	if user.Blocked {
		return nil, domain.ErrUserBlocked
	}
	if !user.Verified {
		return nil, domain.ErrUserNotVerified
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: user}, nil
}

// Verify marks the account behind req.Email as verified when the code matches
// and has not expired. Verifying twice is a no-op.
func (s *userService) Verify(ctx context.Context, req dto.VerifyRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCode
		}
		return err
	}
	if user.Verified {
		return nil
	}

	otp, err := s.verifications.FindOTP(ctx, user.ID, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCode
		}
		return err
	}
	if otp.Expired(s.now()) {
		return domain.ErrInvalidCode
	}

	user.Verified = true
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.verifications.DeleteOTPs(ctx, user.ID)
}

// ResendCode replaces the pending verification code of an unverified account
// and mails the new one. Unknown and already verified addresses succeed
// silently.
func (s *userService) ResendCode(ctx context.Context, req dto.ResendCodeRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.Verified {
		return nil
	}
	return s.sendOTP(ctx, user)
}

// ForgotPassword issues a reset token. Unknown addresses succeed silently so
// the endpoint does not reveal which accounts exist.
func (s *userService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	now := s.now()
	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     utils.GenerateResetToken(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.ResetTokenTTL),
	}
	if err := s.verifications.ReplaceResetToken(ctx, token); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if err := s.mail.SendPasswordReset(ctx, user.Email, user.Name, token.Token); err != nil {
		level.Warn(s.logger).Log("msg", "reset email not sent", "user_id", user.ID, "err", err)
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	token, err := s.verifications.FindResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCode
		}
		return err
	}
	if token.Expired(s.now()) {
		return domain.ErrInvalidCode
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	// a token is single use
	return s.verifications.DeleteResetTokens(ctx, user.ID)
}

func (s *userService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context, spec *filters.Spec) ([]domain.User, filters.Pagination, error) {
	users, total, err := s.users.List(ctx, spec)
	if err != nil {
		return nil, filters.Pagination{}, err
	}
	p, err := page(total, spec, s.opts.LegacyNextPage)
	if err != nil {
		return nil, filters.Pagination{}, err
	}
	return users, p, nil
}

// Update applies the non-nil fields of req. The boolean reports whether
// anything differed from the stored values; when it is false nothing is
// written.
func (s *userService) Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*domain.User, bool, error) {
	if req.Email != nil {
		e := normalizeEmail(*req.Email)
		req.Email = &e
	}
	trimInPlace(req.Name)
	trimInPlace(req.Nationality)
	req.VATNumber = normalizeVAT(req.VATNumber)
	if err := s.validate.Struct(req); err != nil {
		return nil, false, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	// only values that actually change need the uniqueness check
	var email, vat *string
	if req.Email != nil && *req.Email != user.Email {
		email = req.Email
	}
	if req.VATNumber != nil && (user.VATNumber == nil || *req.VATNumber != *user.VATNumber) {
		vat = req.VATNumber
	}
	verr := &domain.ValidationError{}
	if err := s.checkUnique(ctx, verr, email, vat, user.ID); err != nil {
		return nil, false, err
	}
	if !verr.Empty() {
		return nil, false, verr
	}

	changed := false
	if req.Name != nil && *req.Name != user.Name {
		user.Name = *req.Name
		changed = true
	}
	if email != nil {
		user.Email = *email
		changed = true
	}
	if req.Nationality != nil && *req.Nationality != user.Nationality {
		user.Nationality = *req.Nationality
		changed = true
	}
	if vat != nil {
		user.VATNumber = vat
		changed = true
	}
	// the stored value is a hash, so compare through bcrypt
	if req.Password != nil && !utils.CheckPasswordHash(*req.Password, user.Password) {
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			return nil, false, err
		}
		user.Password = hashed
		changed = true
	}

	if !changed {
		return user, false, nil
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, false, domain.NewValidationError("email", EmailTakenMessage)
		}
		return nil, false, err
	}
	return user, true, nil
}

// UpdateStatus changes the role or the blocked flag. It is reserved to
// administrators by the router.
func (s *userService) UpdateStatus(ctx context.Context, id uint, req dto.UserStatusRequest) (*domain.User, bool, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, false, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	changed := false
	if req.Type != nil && domain.UserType(*req.Type) != user.Type {
		user.Type = domain.UserType(*req.Type)
		changed = true
	}
	if req.Blocked != nil && *req.Blocked != user.Blocked {
		user.Blocked = *req.Blocked
		changed = true
	}
	if !changed {
		return user, false, nil
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, false, err
	}
	// the guest count excludes administrators
	s.home.Invalidate()
	return user, true, nil
}

// UpdateAvatar uploads file and stores its URL on the account.
func (s *userService) UpdateAvatar(ctx context.Context, id uint, file *multipart.FileHeader) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.uploader.Upload(ctx, file, s.opts.UploadFolder+"/avatars")
	if err != nil {
		return nil, err
	}
	user.Avatar = url
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes the account. Accounts still referenced by listings or
// bookings are refused by the repository with domain.ErrInUse.
func (s *userService) Delete(ctx context.Context, id uint) error {
	n, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n != 1 {
		return domain.NewNotFound("User", id)
	}
	s.home.Invalidate()
	return nil
}

// hashPassword maps bcrypt's length limit to a field error so oversized
// input never surfaces as a server error.
func hashPassword(password string) (string, error) {
	hashed, err := utils.HashPassword(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewValidationError("password", "Password must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hashed, nil
}

// checkUnique adds a message to verr for every value already used by another
// account. nil values are skipped.
func (s *userService) checkUnique(ctx context.Context, verr *domain.ValidationError, email, vat *string, exceptID uint) error {
	if email != nil {
		taken, err := s.users.EmailTaken(ctx, *email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("email", EmailTakenMessage)
		}
	}
	if vat != nil {
		taken, err := s.users.VATTaken(ctx, *vat, exceptID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("vat_number", VATTakenMessage)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeVAT treats a blank VAT number as absent; the column is unique.
func normalizeVAT(vat *string) *string {
	if vat == nil {
		return nil
	}
	v := strings.TrimSpace(*vat)
	if v == "" {
		return nil
	}
	return &v
}
