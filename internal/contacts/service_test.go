package contacts

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
)

func TestCreateContactValidatesPhone(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubContactRepo{})

	bad := []string{"", "89991234567", "+7999123456", "+799912345678", "+7 999 123 45 67", "+19991234567"}
	for _, phone := range bad {
		input := CreateContactInput{City: "Moscow", Street: "Tverskaya", Phone: phone}
		_, err := svc.Create(context.Background(), 1, input)
		if err == nil {
			t.Fatalf("expected error for phone %q", phone)
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("unexpected error for phone %q: %v", phone, err)
		}
	}
}

func TestCreateContactSuccess(t *testing.T) {
	t.Parallel()

	repo := &stubContactRepo{}
	svc := newTestService(t, repo)

	input := CreateContactInput{
		City:      " Moscow ",
		Street:    "Tverskaya",
		House:     "1",
		Apartment: "12",
		Phone:     "+79991234567",
	}
	contact, err := svc.Create(context.Background(), 9, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contact.UserID != 9 || contact.City != "Moscow" || contact.Phone != "+79991234567" {
		t.Fatalf("unexpected contact: %+v", contact)
	}
}

func TestCreateContactRequiresCityAndStreet(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubContactRepo{})

	if _, err := svc.Create(context.Background(), 1, CreateContactInput{Street: "Tverskaya", Phone: "+79991234567"}); err == nil {
		t.Fatal("expected error for missing city")
	}
	if _, err := svc.Create(context.Background(), 1, CreateContactInput{City: "Moscow", Phone: "+79991234567"}); err == nil {
		t.Fatal("expected error for missing street")
	}
}

func TestDeleteContactNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubContactRepo{deleteAffected: 0})

	err := svc.Delete(context.Background(), 1, 5)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeContactNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteContactSuccess(t *testing.T) {
	t.Parallel()

	repo := &stubContactRepo{deleteAffected: 1}
	svc := newTestService(t, repo)

	if err := svc.Delete(context.Background(), 1, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deletedID != 5 || repo.deletedUserID != 1 {
		t.Fatalf("delete not scoped: id=%d user=%d", repo.deletedID, repo.deletedUserID)
	}
}

func newTestService(t *testing.T, repo ContactRepository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

type stubContactRepo struct {
	deleteAffected int64
	deletedID      uint
	deletedUserID  uint
}

func (s *stubContactRepo) ListByUser(ctx context.Context, userID uint) ([]models.Contact, error) {
	return nil, nil
}

func (s *stubContactRepo) FindByIDAndUser(ctx context.Context, id, userID uint) (*models.Contact, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubContactRepo) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	return contact, nil
}

func (s *stubContactRepo) DeleteByIDAndUser(ctx context.Context, id, userID uint) (int64, error) {
	s.deletedID = id
	s.deletedUserID = userID
	return s.deleteAffected, nil
}
