// Package transport defines the response DTOs for the nudges API.
package transport

import (
	"encoding/json"
	"time"

	"lead_outcomes_backend/internal/nudges/repository"

	"github.com/google/uuid"
)

// StaleLeadResponse is one row of the missing-outcomes view.
type StaleLeadResponse struct {
	LeadID         uuid.UUID  `json:"leadId"`
	Tier           string     `json:"tier"`
	TimelineBucket string     `json:"timelineBucket"`
	CurrentStage   string     `json:"currentStage"`
	LastTouchAt    *time.Time `json:"lastTouchAt"`
}

// AlertResponse is one admin alert.
type AlertResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Severity    string          `json:"severity"`
	Evidence    json.RawMessage `json:"evidence"`
	CreatedAt   time.Time       `json:"createdAt"`
	DismissedAt *time.Time      `json:"dismissedAt,omitempty"`
	DismissedBy *uuid.UUID      `json:"dismissedBy,omitempty"`
}

// ToStaleLeadResponse maps a stale-lead row to its DTO. Leads with no state
// row surface as top_of_funnel, matching how the detector treats them.
func ToStaleLeadResponse(lead repository.StaleLead) StaleLeadResponse {
	stage := "top_of_funnel"
	if lead.CurrentStage != nil {
		stage = *lead.CurrentStage
	}
	return StaleLeadResponse{
		LeadID:         lead.LeadID,
		Tier:           lead.Tier,
		TimelineBucket: lead.TimelineBucket,
		CurrentStage:   stage,
		LastTouchAt:    lead.LastTouchAt,
	}
}

// ToAlertResponse maps a stored alert to its DTO.
func ToAlertResponse(alert repository.Alert) AlertResponse {
	return AlertResponse{
		ID:          alert.ID,
		Code:        alert.Code,
		Severity:    alert.Severity,
		Evidence:    alert.Evidence,
		CreatedAt:   alert.CreatedAt,
		DismissedAt: alert.DismissedAt,
		DismissedBy: alert.DismissedBy,
	}
}
