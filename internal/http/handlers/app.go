package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"rewardengine/internal/domain"
	"rewardengine/internal/governance"
	"rewardengine/internal/infra"
	"rewardengine/internal/loyalty"
	"rewardengine/internal/middleware"
)

// App bundles the services the HTTP layer exposes.
type App struct {
	Logger   infra.Logger
	Engine   *loyalty.Engine
	Governor *governance.Governor
}

// NewApp creates the handler container.
func NewApp(logger infra.Logger, engine *loyalty.Engine, governor *governance.Governor) *App {
	return &App{Logger: logger, Engine: engine, Governor: governor}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]string{"error": slug, "message": message})
}

var capMessages = map[string]string{
	"en": "monthly points limit reached",
	"id": "batas poin bulanan telah tercapai",
}

// domainError translates engine errors into specific, actionable responses.
// Governance-gate and business-rule rejections are never collapsed into a
// generic 500.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrDuplicateTransaction):
		a.error(w, http.StatusConflict, "duplicate_transaction", "transaction already has a reward grant")
	case errors.Is(err, domain.ErrCapExceeded):
		locale := middleware.LocaleFromContext(r.Context())
		msg, ok := capMessages[locale]
		if !ok {
			msg = capMessages["en"]
		}
		a.error(w, http.StatusUnprocessableEntity, "cap_exceeded", msg)
	case errors.Is(err, domain.ErrAlreadyVested):
		a.error(w, http.StatusConflict, "already_vested", "reward has already vested and can no longer be cancelled")
	case errors.Is(err, domain.ErrAlreadyCancelled):
		a.error(w, http.StatusConflict, "already_cancelled", "reward was already cancelled")
	case errors.Is(err, domain.ErrNotApproved):
		a.error(w, http.StatusConflict, "not_approved", "change has not been approved by governance")
	case errors.Is(err, domain.ErrAlreadyImplemented):
		a.error(w, http.StatusConflict, "already_implemented", "change was already implemented")
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
