package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/campwatch/campwatch-api/internal/repository"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type AlertRuleHandler struct {
	rules  repository.AlertRuleRepository
	logger zerolog.Logger
}

func NewAlertRuleHandler(rules repository.AlertRuleRepository, logger zerolog.Logger) *AlertRuleHandler {
	return &AlertRuleHandler{rules: rules, logger: logger}
}

func (h *AlertRuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rule models.AlertRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rule.IsActive = true
	if rule.MinNights == 0 {
		rule.MinNights = 1
	}
	if rule.AdvanceNoticeDays == 0 {
		rule.AdvanceNoticeDays = 1
	}

	if err := rule.Validate(); err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"field": vErr.Field, "error": vErr.Constraint})
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.rules.Create(r.Context(), rule)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create alert rule")
		http.Error(w, "Failed to create alert rule", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *AlertRuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list alert rules")
		http.Error(w, "Failed to list alert rules", http.StatusInternalServerError)
		return
	}
	if rules == nil {
		rules = []models.AlertRule{}
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *AlertRuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rule, err := h.rules.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Alert rule not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("rule_id", id).Msg("failed to fetch alert rule")
		http.Error(w, "Failed to fetch alert rule", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

func (h *AlertRuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var rule models.AlertRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rule.ID = id

	if err := rule.Validate(); err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"field": vErr.Field, "error": vErr.Constraint})
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.rules.Update(r.Context(), rule)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Alert rule not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("rule_id", id).Msg("failed to update alert rule")
		http.Error(w, "Failed to update alert rule", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Deactivate soft-disables a rule instead of deleting it, preserving its
// notification history.
func (h *AlertRuleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rule, err := h.rules.SetActive(r.Context(), id, false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Alert rule not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("rule_id", id).Msg("failed to deactivate alert rule")
		http.Error(w, "Failed to deactivate alert rule", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rule)
}
