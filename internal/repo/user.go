package repo

import (
	"context"

	"github.com/Skotchmaster/fashion_store/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return translate(r.DB.WithContext(ctx).Create(u).Error)
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_admin", isAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
