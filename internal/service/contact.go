package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/fashion_store/internal/models"
	"github.com/Skotchmaster/fashion_store/internal/repo"
	"github.com/Skotchmaster/fashion_store/pkg/events"
)

type ContactStore interface {
	CreateContact(ctx context.Context, msg *models.Contact) error
	CreateSubscription(ctx context.Context, sub *models.NewsletterSubscription) error
}

type ContactService struct {
	Repo   ContactStore
	Events events.Publisher
}

func (s *ContactService) SendMessage(ctx context.Context, name, email, message string) error {
	name, email, message = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(message)
	if name == "" || email == "" || message == "" {
		return fmt.Errorf("all fields are required: %w", ErrValidation)
	}

	msg := models.Contact{Name: name, Email: email, Message: message}
	if err := s.Repo.CreateContact(ctx, &msg); err != nil {
		return err
	}
	publish(ctx, s.Events, events.TopicContact, msg.ID, map[string]any{
		"type":      "contact_message",
		"contactID": msg.ID,
		"email":     msg.Email,
	})
	return nil
}

func (s *ContactService) Subscribe(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required: %w", ErrValidation)
	}

	sub := models.NewsletterSubscription{Email: email}
	if err := s.Repo.CreateSubscription(ctx, &sub); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return fmt.Errorf("email already subscribed: %w", ErrConflict)
		}
		return err
	}
	publish(ctx, s.Events, events.TopicContact, sub.ID, map[string]any{
		"type":  "newsletter_subscribed",
		"email": sub.Email,
	})
	return nil
}
