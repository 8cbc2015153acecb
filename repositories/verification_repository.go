package repositories

import (
	"context"

	"gorm.io/gorm"

	"rentals-api/domain"
)

// VerificationRepository stores email verification codes and password reset
// tokens. A user has at most one live code and one live token.
type VerificationRepository interface {
	ReplaceOTP(ctx context.Context, otp *domain.OTP) error
	FindOTP(ctx context.Context, userID uint, code string) (*domain.OTP, error)
	DeleteOTPs(ctx context.Context, userID uint) error
	ReplaceResetToken(ctx context.Context, token *domain.PasswordResetToken) error
	FindResetToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	DeleteResetTokens(ctx context.Context, userID uint) error
}

type verificationRepository struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

func (r *verificationRepository) ReplaceOTP(ctx context.Context, otp *domain.OTP) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", otp.UserID).Delete(&domain.OTP{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
}

func (r *verificationRepository) FindOTP(ctx context.Context, userID uint, code string) (*domain.OTP, error) {
	var otp domain.OTP
	err := r.db.WithContext(ctx).Where("user_id = ? AND code = ?", userID, code).First(&otp).Error
	if err != nil {
		return nil, notFound(err, "OTP", userID)
	}
	return &otp, nil
}

func (r *verificationRepository) DeleteOTPs(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.OTP{}).Error
}

func (r *verificationRepository) ReplaceResetToken(ctx context.Context, token *domain.PasswordResetToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&domain.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

func (r *verificationRepository) FindResetToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	var t domain.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, notFound(err, "Reset token", token)
	}
	return &t, nil
}

func (r *verificationRepository) DeleteResetTokens(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.PasswordResetToken{}).Error
}
