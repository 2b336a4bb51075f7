package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/batiserv/batiserv-backend/api/responses"
	"github.com/batiserv/batiserv-backend/api/validators"
	"github.com/batiserv/batiserv-backend/internal/workspace"
	pkgerrors "github.com/batiserv/batiserv-backend/pkg/errors"
	"github.com/batiserv/batiserv-backend/pkg/logger"
)

type exportCustomersRequest struct {
	CustomerIDs []string `json:"customer_ids" validate:"dive,uuid"`
}

// PendingOrders lists every unsent order part, optionally filtered to
// one assignee via ?user_id=.
func PendingOrders(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if raw == "" {
			responses.WriteSuccess(w, ctrl.PendingOrders())
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id"))
			return
		}
		responses.WriteSuccess(w, ctrl.PendingOrdersForUser(userID))
	}
}

// PendingDigest returns a ready-to-open mailto link summarizing the
// pending orders, optionally scoped to one assignee via ?user_id=.
func PendingDigest(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if raw == "" {
			responses.WriteSuccess(w, map[string]string{"mailto": ctrl.PendingDigestMailto()})
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"mailto": ctrl.PendingDigestMailtoForUser(userID)})
	}
}

// WorkspaceSearch runs the free-text search across customers, sites,
// orders and options.
func WorkspaceSearch(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		// A blank query matches nothing, not everything.
		query := validators.SanitizeString(r.URL.Query().Get("q"), 200)
		responses.WriteSuccess(w, ctrl.Search(query))
	}
}

// OrdersExport streams the selected customers' orders as a CSV
// attachment. An empty selection exports everything.
func OrdersExport(ctrl *workspace.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "workspace unavailable"))
			return
		}

		var body exportCustomersRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selected := make([]uuid.UUID, 0, len(body.CustomerIDs))
		for _, raw := range body.CustomerIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer id"))
				return
			}
			selected = append(selected, id)
		}

		csv, filename := ctrl.ExportCSV(selected)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(csv))
	}
}

// OrdersImport is deliberately unimplemented: data flows in through the
// regular CRUD endpoints only.
func OrdersImport(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnsupported, "order import is not supported"))
	}
}
