package model

import "time"

// User is the identity anchor. Rows are created through registration;
// the task engine itself only ever reads them.
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `json:"name"`
	Email           string     `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	Password        string     `json:"-"` // bcrypt hash
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	VerifyOTP       string     `json:"-"` // bcrypt hash of the 6-digit code
	OTPExpiresAt    *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Lists []TaskList `gorm:"foreignKey:UserID" json:"-"`
}
