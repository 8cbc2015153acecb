package domain

import "time"

// UserType defines the kinds of accounts that exist.
type UserType string

const (
	UserTypeUser  UserType = "user"
	UserTypeAdmin UserType = "admin"
)

// User represents an account. Hosts and guests share the same table; a user
// becomes a host when the first property is published (HostSince).
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Email       string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"size:255;not null" json:"-"`
	Nationality string     `gorm:"size:100" json:"nationality"`
	VATNumber   *string    `gorm:"size:30;uniqueIndex" json:"vat_number"`
	Type        UserType   `gorm:"size:20;not null;default:user" json:"type"`
	Blocked     bool       `gorm:"not null;default:false" json:"blocked"`
	Verified    bool       `gorm:"not null;default:false" json:"verified"`
	Avatar      string     `gorm:"size:500" json:"avatar"`
	HostSince   *time.Time `json:"host_since"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}
