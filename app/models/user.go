package models

import (
	"time"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

// User is a site account. Password holds whatever the configured password
// policy produced; with the default policy that is the plaintext password.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id,omitempty"`
	Login     string    `gorm:"uniqueIndex;type:varchar(150) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin" json:"login" validate:"required,max=150"`
	Password  string    `gorm:"column:pass;type:text" json:"pass" validate:"required"`
	Email     string    `gorm:"type:varchar(200)" json:"email,omitempty" validate:"max=200"`
	Role      string    `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

func CreateUser(login, password, email, role string) (*User, error) {
	if role == "" {
		role = ROLE_USER
	}

	u := &User{
		Login:     login,
		Password:  password,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func (u *User) Validate() error {
	return validate.Struct(u)
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}
