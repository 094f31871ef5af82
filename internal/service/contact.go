package service

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/stagepass/portal/internal/errors"
	"github.com/stagepass/portal/internal/ports"
	"github.com/stagepass/portal/internal/validation"
)

// ContactService validates and forwards contact form submissions.
type ContactService struct {
	sender ports.ContactSender
}

// NewContactService constructs a new ContactService.
func NewContactService(sender ports.ContactSender) *ContactService {
	if sender == nil {
		panic("ContactSender is required")
	}
	return &ContactService{sender: sender}
}

// ValidateContact runs the form checks. An empty map means the message may be sent.
func ValidateContact(msg ports.ContactMessage) map[string]string {
	return validation.New().
		Validate("name", msg.Name, validation.Required("Name", 100)).
		Validate("email", msg.Email, validation.Email("Email")).
		Validate("subject", msg.Subject, validation.Required("Subject", 150)).
		Validate("message", msg.Message, validation.Required("Message", 5000)).
		Errors()
}

// Send validates msg and posts it. Invalid input returns a validation error and sends nothing.
func (s *ContactService) Send(ctx context.Context, msg ports.ContactMessage) error {
	msg = ports.ContactMessage{
		Name:    strings.TrimSpace(msg.Name),
		Email:   strings.TrimSpace(msg.Email),
		Subject: strings.TrimSpace(msg.Subject),
		Message: strings.TrimSpace(msg.Message),
	}
	if fields := ValidateContact(msg); len(fields) > 0 {
		return apperrors.Validation(fields)
	}
	if err := s.sender.SendContact(ctx, msg); err != nil {
		return fmt.Errorf("send contact message: %w", err)
	}
	return nil
}
