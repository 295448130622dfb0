package controllers

import (
	"net/http"

	"github.com/developerboi1/tourclean/api/responses"
	"github.com/developerboi1/tourclean/api/validators"
	"github.com/developerboi1/tourclean/internal/analytics"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/logger"
)

// AnalyticsOverview reports program-wide totals for the council dashboard.
// An optional since query bounds the window.
func AnalyticsOverview(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		since, err := validators.ParseQuerySince(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Overview(r.Context(), since)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
