package controllers

import (
	"net/http"

	"github.com/supplydesk/supplydesk-backend/api/middleware"
	"github.com/supplydesk/supplydesk-backend/api/responses"
	"github.com/supplydesk/supplydesk-backend/api/validators"
	contactsvc "github.com/supplydesk/supplydesk-backend/internal/contacts"
	"github.com/supplydesk/supplydesk-backend/pkg/db/models"
	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
	"github.com/supplydesk/supplydesk-backend/pkg/logger"
)

// ContactsList returns the caller's saved delivery addresses.
func ContactsList(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		rows, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]contactResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newContactResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// ContactCreate stores a new delivery address for the caller.
func ContactCreate(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createContactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contact, err := svc.Create(r.Context(), userID, contactsvc.CreateContactInput{
			City:      payload.City,
			Street:    payload.Street,
			House:     payload.House,
			Structure: payload.Structure,
			Building:  payload.Building,
			Apartment: payload.Apartment,
			Phone:     payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newContactResponse(contact))
	}
}

type createContactRequest struct {
	City      string `json:"city" validate:"required"`
	Street    string `json:"street" validate:"required"`
	House     string `json:"house"`
	Structure string `json:"structure"`
	Building  string `json:"building"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone" validate:"required"`
}

// ContactDelete removes one of the caller's delivery addresses.
func ContactDelete(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload deleteContactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, payload.ContactID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type deleteContactRequest struct {
	ContactID uint `json:"contact_id" validate:"required,min=1"`
}

type contactResponse struct {
	ID        uint   `json:"id"`
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house,omitempty"`
	Structure string `json:"structure,omitempty"`
	Building  string `json:"building,omitempty"`
	Apartment string `json:"apartment,omitempty"`
	Phone     string `json:"phone"`
}

func newContactResponse(contact *models.Contact) contactResponse {
	return contactResponse{
		ID:        contact.ID,
		City:      contact.City,
		Street:    contact.Street,
		House:     contact.House,
		Structure: contact.Structure,
		Building:  contact.Building,
		Apartment: contact.Apartment,
		Phone:     contact.Phone,
	}
}
