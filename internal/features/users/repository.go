package users

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByPhone(phone string) (*User, error) {
	var user User

	err := r.db.Where("phone = ?", phone).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) FindByID(id uuid.UUID) (*User, error) {
	var user User

	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) Create(user *User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	return r.db.Create(user).Error
}

func (r *UserRepository) UpdateProfile(id uuid.UUID, name, email string) error {
	return r.db.Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "email": email}).Error
}

func (r *UserRepository) SetActive(id uuid.UUID, isActive bool) (bool, error) {
	result := r.db.Model(&User{}).
		Where("id = ?", id).
		Update("is_active", isActive)

	return result.RowsAffected == 1, result.Error
}

func (r *UserRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&User{}).Count(&count).Error
	return count, err
}

func (r *UserRepository) FindAdminByUsername(username string) (*AdminUser, error) {
	var admin AdminUser

	err := r.db.Where("username = ?", username).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &admin, nil
}

func (r *UserRepository) FindAdminByID(id uuid.UUID) (*AdminUser, error) {
	admin := &AdminUser{}

	err := r.db.Where("id = ?", id).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return admin, nil
}

func (r *UserRepository) UpdateAdminPassword(id uuid.UUID, passwordHash string) error {
	return r.db.Model(&AdminUser{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *UserRepository) TouchAdminLogin(id uuid.UUID) error {
	return r.db.Model(&AdminUser{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now().UTC()).Error
}
