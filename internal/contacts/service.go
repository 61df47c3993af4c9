package contacts

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
)

// phoneRe accepts Russian mobile numbers only: +7 followed by ten digits.
var phoneRe = regexp.MustCompile(`^\+7\d{10}$`)

// ContactRepository defines the persistence surface required by the contact service.
type ContactRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Contact, error)
	FindByIDAndUser(ctx context.Context, id, userID uint) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	DeleteByIDAndUser(ctx context.Context, id, userID uint) (int64, error)
}

// CreateContactInput captures the payload for a new delivery address.
type CreateContactInput struct {
	City      string
	Street    string
	House     string
	Structure string
	Building  string
	Apartment string
	Phone     string
}

// Service exposes the address book operations.
type Service interface {
	List(ctx context.Context, userID uint) ([]models.Contact, error)
	Create(ctx context.Context, userID uint, input CreateContactInput) (*models.Contact, error)
	Delete(ctx context.Context, userID, id uint) error
}

type service struct {
	repo ContactRepository
}

// NewService builds a contact service backed by the provided repository.
func NewService(repo ContactRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	return &service{repo: repo}, nil
}

// List returns the user's saved contacts.
func (s *service) List(ctx context.Context, userID uint) ([]models.Contact, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}
	return rows, nil
}

// Create validates and stores a new contact for the user.
func (s *service) Create(ctx context.Context, userID uint, input CreateContactInput) (*models.Contact, error) {
	city := strings.TrimSpace(input.City)
	street := strings.TrimSpace(input.Street)
	phone := strings.TrimSpace(input.Phone)

	if city == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	if street == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "street is required")
	}
	if !phoneRe.MatchString(phone) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone must be in +7XXXXXXXXXX format")
	}

	contact := &models.Contact{
		UserID:    userID,
		City:      city,
		Street:    street,
		House:     strings.TrimSpace(input.House),
		Structure: strings.TrimSpace(input.Structure),
		Building:  strings.TrimSpace(input.Building),
		Apartment: strings.TrimSpace(input.Apartment),
		Phone:     phone,
	}
	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contact")
	}
	return created, nil
}

// Delete removes the user's contact; unknown ids surface as not found.
func (s *service) Delete(ctx context.Context, userID, id uint) error {
	if id == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact id is required")
	}
	affected, err := s.repo.DeleteByIDAndUser(ctx, id, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contact")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeContactNotFound, "contact not found")
	}
	return nil
}
