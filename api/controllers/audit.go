package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/developerboi1/tourclean/api/responses"
	"github.com/developerboi1/tourclean/api/validators"
	"github.com/developerboi1/tourclean/internal/audit"
	"github.com/developerboi1/tourclean/pkg/enums"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/logger"
)

// AuditList pages through the moderation trail. submission_id, cashout_id,
// actor_id, event_type and an RFC3339 since/until window narrow the result.
func AuditList(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		filters, err := parseAuditFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseAuditFilters(r *http.Request) (audit.Filters, error) {
	var filters audit.Filters

	if raw := r.URL.Query().Get("submission_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid submission_id")
		}
		filters.SubmissionID = &id
	}
	if raw := r.URL.Query().Get("cashout_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid cashout_id")
		}
		filters.CashoutID = &id
	}
	if raw := r.URL.Query().Get("actor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid actor_id")
		}
		filters.ActorID = &id
	}
	if raw := r.URL.Query().Get("event_type"); raw != "" {
		eventType := enums.SubmissionEventType(raw)
		if !eventType.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid event_type")
		}
		filters.EventType = &eventType
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "since must be RFC3339")
		}
		filters.Since = &since
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "until must be RFC3339")
		}
		filters.Until = &until
	}
	if filters.Since != nil && filters.Until != nil && filters.Until.Before(*filters.Since) {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "until must not precede since")
	}

	return filters, nil
}
