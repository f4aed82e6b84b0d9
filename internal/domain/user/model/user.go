package model

import (
	baseModel "microsocial/pkg/model"

	"golang.org/x/crypto/bcrypt"
)

// Platform roles.
const (
	RoleUser  = 1
	RoleAdmin = 2
)

// User is a registered account.
type User struct {
	baseModel.BaseModel
	Email     string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username  string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password  string `gorm:"type:varchar(255);not null" json:"-"`
	FullName  string `gorm:"type:varchar(100)" json:"fullName"`
	Bio       string `gorm:"type:varchar(500)" json:"bio"`
	AvatarURL string `gorm:"type:varchar(500)" json:"avatarUrl"`
	CoverURL  string `gorm:"type:varchar(500)" json:"coverUrl"`
	Website   string `gorm:"type:varchar(255)" json:"website"`
	Location  string `gorm:"type:varchar(100)" json:"location"`

	// Private accounts expose content to accepted followers only.
	IsPublic bool `gorm:"default:true" json:"isPublic"`
	Role     int  `gorm:"default:1" json:"role"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (u *User) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}

// IsAdmin reports whether the user is a platform administrator.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName prefers the full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
