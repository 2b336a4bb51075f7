package controllers

import (
	"net/http"

	"github.com/batiserv/batiserv-backend/api/responses"
	"github.com/batiserv/batiserv-backend/api/validators"
	"github.com/batiserv/batiserv-backend/internal/options"
	"github.com/batiserv/batiserv-backend/internal/workspace"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/logger"
)

type createOptionRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Details string `json:"details" validate:"max=10000"`
}

type updateOptionRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Details *string `json:"details" validate:"omitempty,max=10000"`
}

// OptionsList serves the special options catalog out of the mirror.
func OptionsList(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}
		responses.WriteSuccess(w, ctrl.Options())
	}
}

func OptionCreate(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		var body createOptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := ctrl.AddOption(r.Context(), body.Name, body.Details)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func OptionUpdate(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		optionID, err := parseUUIDParam(r, "optionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOptionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := ctrl.UpdateOption(r.Context(), optionID, options.UpdateOptionDTO{
			Name:    body.Name,
			Details: body.Details,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func OptionDelete(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		optionID, err := parseUUIDParam(r, "optionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := ctrl.DeleteOption(r.Context(), optionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func OptionFileUpload(ctrl *workspace.Controller, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		optionID, err := parseUUIDParam(r, "optionID")
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

		uploaded, err := ctrl.AttachOptionFile(r.Context(), optionID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, uploaded)
	}
}

func OptionFileDetach(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		optionID, err := parseUUIDParam(r, "optionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body detachFileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := ctrl.DetachOptionFile(r.Context(), optionID, body.URL); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "detached"})
	}
}
