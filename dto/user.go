package dto

import "rentals-api/domain"

type SignupRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=8,maxbytes=72"`
	Nationality string  `json:"nationality" validate:"omitempty,max=100"`
	VATNumber   *string `json:"vat_number" validate:"omitempty,numeric,min=9,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,uuid"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Name        *string `json:"name" validate:"omitnil,notblank,min=2,max=100"`
	Email       *string `json:"email" validate:"omitnil,email,max=255"`
	Password    *string `json:"password" validate:"omitnil,min=8,maxbytes=72"`
	Nationality *string `json:"nationality" validate:"omitnil,max=100"`
	VATNumber   *string `json:"vat_number" validate:"omitnil,numeric,min=9,max=30"`
}

// UserStatusRequest is the admin-only part of a user.
type UserStatusRequest struct {
	Type    *string `json:"type" validate:"omitnil,oneof=user admin"`
	Blocked *bool   `json:"blocked"`
}
