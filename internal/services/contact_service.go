package services

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"storefront/internal/config"
	"storefront/internal/models/db_models"
	"storefront/internal/models/request_models"
	"storefront/internal/models/response_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

const contactMailWarning = "Message saved but the notification email could not be sent"

type ContactService interface {
	// Submit returns an empty response for honeypot submissions.
	Submit(ctx context.Context, req request_models.ContactRequest) (*response_models.ContactResponse, error)
}

type contactService struct {
	cfg         *config.Config
	contactRepo repositories.ContactRepository
	mail        MailService
}

func NewContactService(cfg *config.Config, contactRepo repositories.ContactRepository, mail MailService) ContactService {
	return &contactService{cfg: cfg, contactRepo: contactRepo, mail: mail}
}

func (s *contactService) Submit(ctx context.Context, req request_models.ContactRequest) (*response_models.ContactResponse, error) {
	if strings.TrimSpace(req.Website) != "" {
		log.Debug("Contact honeypot triggered")
		return &response_models.ContactResponse{}, nil
	}

	msg := &db_models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   utils.OptionalString(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if !req.Privacy {
		return nil, utils.ErrPrivacyNotAccepted
	}
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return nil, utils.ErrMissingFields
	}
	if !utils.IsValidEmail(msg.Email) {
		return nil, utils.ErrInvalidEmail
	}

	if err := s.contactRepo.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: contact insert: %v", utils.ErrDatabaseError, err)
	}

	resp := &response_models.ContactResponse{ID: msg.ID.String()}
	if err := s.mail.SendContactNotification(ctx, s.cfg.ContactToEmail, msg); err != nil {
		log.WithError(err).WithField("contact_id", msg.ID).Warn("Contact notification not sent")
		resp.Warning = contactMailWarning
	}
	return resp, nil
}
