// Package transport defines the request/response DTOs for the outcomes API.
package transport

import (
	"time"

	"lead_outcomes_backend/internal/outcomes/domain"
	"lead_outcomes_backend/internal/outcomes/repository"

	"github.com/google/uuid"
)

// RecordOutcomeRequest records one outcome for one lead.
type RecordOutcomeRequest struct {
	LeadID     uuid.UUID  `json:"leadId" validate:"required"`
	Outcome    string     `json:"outcome" validate:"required,outcome_type"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Override   bool       `json:"override,omitempty"`
}

// BulkRecordOutcomeRequest applies one outcome to many leads.
type BulkRecordOutcomeRequest struct {
	LeadIDs    []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500"`
	Outcome    string      `json:"outcome" validate:"required,outcome_type"`
	OccurredAt *time.Time  `json:"occurredAt,omitempty"`
	Notes      *string     `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Override   bool        `json:"override,omitempty"`
}

// AttributionResponse is the frozen snapshot as stored on the ledger row.
type AttributionResponse struct {
	SourceKey       string  `json:"sourceKey"`
	GeoKey          string  `json:"geoKey"`
	IntentType      *string `json:"intentType,omitempty"`
	TimelineBucket  string  `json:"timelineBucket"`
	AssignedPartner *string `json:"assignedPartner,omitempty"`
	PriceBand       *string `json:"priceBand,omitempty"`
	BudgetBand      *string `json:"budgetBand,omitempty"`
}

// OutcomeResponse is one ledger row.
type OutcomeResponse struct {
	ID          uuid.UUID           `json:"id"`
	LeadID      uuid.UUID           `json:"leadId"`
	Outcome     string              `json:"outcome"`
	Stage       string              `json:"stage"`
	OccurredAt  time.Time           `json:"occurredAt"`
	RecordedBy  uuid.UUID           `json:"recordedBy"`
	Notes       *string             `json:"notes,omitempty"`
	Attribution AttributionResponse `json:"attribution"`
	Warnings    []string            `json:"warnings,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// ToOutcomeResponse maps a repository row to its DTO.
func ToOutcomeResponse(o repository.Outcome) OutcomeResponse {
	return OutcomeResponse{
		ID:          o.ID,
		LeadID:      o.LeadID,
		Outcome:     string(o.OutcomeType),
		Stage:       string(o.OutcomeStage),
		OccurredAt:  o.OccurredAt,
		RecordedBy:  o.RecordedBy,
		Notes:       o.Notes,
		Attribution: toAttributionResponse(o.Metadata.Attribution),
		Warnings:    o.Metadata.Warnings,
		CreatedAt:   o.CreatedAt,
	}
}

func toAttributionResponse(a domain.Attribution) AttributionResponse {
	resp := AttributionResponse{
		SourceKey:       a.SourceKey,
		GeoKey:          a.GeoKey,
		TimelineBucket:  a.TimelineBucket,
		AssignedPartner: a.AssignedPartner,
		PriceBand:       a.PriceBand,
		BudgetBand:      a.BudgetBand,
	}
	if a.IntentType != nil {
		intent := string(*a.IntentType)
		resp.IntentType = &intent
	}
	return resp
}
