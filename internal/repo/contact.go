package repo

import (
	"context"

	"github.com/Skotchmaster/fashion_store/internal/models"
)

func (r *GormRepo) CreateContact(ctx context.Context, msg *models.Contact) error {
	return r.DB.WithContext(ctx).Create(msg).Error
}

func (r *GormRepo) CreateSubscription(ctx context.Context, sub *models.NewsletterSubscription) error {
	return translate(r.DB.WithContext(ctx).Create(sub).Error)
}
