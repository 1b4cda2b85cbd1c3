package users

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"        gorm:"column:id;primaryKey"`
	Phone     string    `json:"phone"     gorm:"column:phone;uniqueIndex;not null"`
	Name      string    `json:"name"      gorm:"column:name"`
	Email     string    `json:"email"     gorm:"column:email"`
	IsActive  bool      `json:"isActive"  gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;not null"`
}

func (User) TableName() string {
	return "users"
}

type AdminUser struct {
	ID           uuid.UUID  `json:"id"          gorm:"column:id;primaryKey"`
	Username     string     `json:"username"    gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string     `json:"-"           gorm:"column:password_hash;not null"`
	LastLoginAt  *time.Time `json:"lastLoginAt" gorm:"column:last_login_at"`
	CreatedAt    time.Time  `json:"createdAt"   gorm:"column:created_at;not null"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}
