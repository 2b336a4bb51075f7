package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/batiserv/batiserv-backend/api/middleware"
	"github.com/batiserv/batiserv-backend/api/responses"
	"github.com/batiserv/batiserv-backend/api/validators"
	"github.com/batiserv/batiserv-backend/internal/customers"
	"github.com/batiserv/batiserv-backend/internal/files"
	"github.com/batiserv/batiserv-backend/internal/orders"
	"github.com/batiserv/batiserv-backend/internal/sites"
	"github.com/batiserv/batiserv-backend/internal/workspace"
	"github.com/batiserv/batiserv-backend/pkg/enums"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/logger"
)

type createCustomerRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Notes string `json:"notes" validate:"max=10000"`
}

type updateCustomerRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Notes *string `json:"notes" validate:"omitempty,max=10000"`
}

type createSiteRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	GeneralInfo string `json:"general_info" validate:"max=10000"`
}

type updateSiteRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	GeneralInfo *string `json:"general_info" validate:"omitempty,max=10000"`
}

type createOrderRequest struct {
	FramesNumber string `json:"frames_number" validate:"max=100"`
	DoorsNumber  string `json:"doors_number" validate:"max=100"`
}

type updateOrderPartRequest struct {
	ToggleSent bool    `json:"toggle_sent"`
	Number     *string `json:"number" validate:"omitempty,max=100"`
	UserID     *string `json:"user_id" validate:"omitempty,uuid"`
	Notes      *string `json:"notes" validate:"omitempty,max=10000"`
}

type detachFileRequest struct {
	URL string `json:"url" validate:"required"`
}

// WorkspaceTree serves the full customer tree out of the in-memory mirror.
func WorkspaceTree(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}
		responses.WriteSuccess(w, ctrl.Tree())
	}
}

func CustomerCreate(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		var body createCustomerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := ctrl.AddCustomer(r.Context(), body.Name, body.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func CustomerUpdate(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateCustomerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := ctrl.UpdateCustomer(r.Context(), customerID, customers.UpdateCustomerDTO{
			Name:  body.Name,
			Notes: body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func CustomerDelete(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := ctrl.DeleteCustomer(r.Context(), customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func SiteCreate(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createSiteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := ctrl.AddSite(r.Context(), customerID, body.Name, body.GeneralInfo)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func SiteUpdate(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		siteID, err := parseUUIDParam(r, "siteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateSiteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := ctrl.UpdateSite(r.Context(), customerID, siteID, sites.UpdateSiteDTO{
			Name:        body.Name,
			GeneralInfo: body.GeneralInfo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func SiteDelete(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		siteID, err := parseUUIDParam(r, "siteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := ctrl.DeleteSite(r.Context(), customerID, siteID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderCreate adds up to two orders at once: one per non-blank reference
// number. The acting user is snapshotted onto every created part.
func OrderCreate(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		siteID, err := parseUUIDParam(r, "siteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context"))
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := ctrl.AddOrder(r.Context(), customerID, siteID, body.FramesNumber, body.DoorsNumber, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// OrderPartUpdate patches one half of an order: frames or doors, chosen
// by the URL, leaving the sibling part untouched.
func OrderPartUpdate(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		siteID, err := parseUUIDParam(r, "siteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseOrderPartKind(chi.URLParam(r, "part"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order part"))
			return
		}

		var body updateOrderPartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		patch := orders.PartPatch{
			ToggleSent: body.ToggleSent,
			Number:     body.Number,
			Notes:      body.Notes,
		}
		if body.UserID != nil {
			assignee, err := uuid.Parse(*body.UserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id"))
				return
			}
			patch.User = &orders.PartUser{ID: assignee}
		}

		updated, err := ctrl.UpdateOrderPart(r.Context(), customerID, siteID, orderID, kind, patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func OrderDelete(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		siteID, err := parseUUIDParam(r, "siteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := ctrl.DeleteOrder(r.Context(), customerID, siteID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SiteFileUpload attaches one multipart binary to a site's general-info
// file list.
func SiteFileUpload(ctrl *workspace.Controller, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		siteID, err := parseUUIDParam(r, "siteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, cleanup, err := readUploadInput(w, r, maxUploadMB)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		uploaded, err := ctrl.AttachSiteFile(r.Context(), customerID, siteID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, uploaded)
	}
}

// SiteFileDetach removes one attachment from a site by URL and deletes
// the backing object.
func SiteFileDetach(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		customerID, err := parseUUIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		siteID, err := parseUUIDParam(r, "siteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body detachFileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := ctrl.DetachSiteFile(r.Context(), customerID, siteID, body.URL); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "detached"})
	}
}

func readUploadInput(w http.ResponseWriter, r *http.Request, maxUploadMB int) (files.UploadInput, func(), error) {
	maxBytes := int64(maxUploadMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return files.UploadInput{}, func() {}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return files.UploadInput{}, func() {}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field required")
	}

	input := files.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
		Body:        file,
	}
	return input, func() { _ = file.Close() }, nil
}
