// Package domain holds the pure decision logic for the outcome ledger:
// outcome/stage enums, the derived lead state with its monotonic flags,
// and the sequence validator. No I/O lives here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeType is a discrete lifecycle event recorded against a lead.
type OutcomeType string

const (
	OutcomeContacted      OutcomeType = "contacted"
	OutcomeAppointmentSet OutcomeType = "appointment_set"
	OutcomeListingSigned  OutcomeType = "listing_signed"
	OutcomeBuyerAgreement OutcomeType = "buyer_agreement"
	OutcomeClosedWon      OutcomeType = "closed_won"
	OutcomeClosedLost     OutcomeType = "closed_lost"
	OutcomeInvalid        OutcomeType = "invalid"
)

// Stage is the coarse funnel bucket an outcome maps to.
type Stage string

const (
	StageTopOfFunnel Stage = "top_of_funnel"
	StageMidFunnel   Stage = "mid_funnel"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
	StageInvalid     Stage = "invalid"
)

var outcomeStages = map[OutcomeType]Stage{
	OutcomeContacted:      StageTopOfFunnel,
	OutcomeAppointmentSet: StageMidFunnel,
	OutcomeListingSigned:  StageMidFunnel,
	OutcomeBuyerAgreement: StageMidFunnel,
	OutcomeClosedWon:      StageWon,
	OutcomeClosedLost:     StageLost,
	OutcomeInvalid:        StageInvalid,
}

// ParseOutcomeType validates a raw outcome type string.
func ParseOutcomeType(raw string) (OutcomeType, bool) {
	t := OutcomeType(raw)
	_, ok := outcomeStages[t]
	return t, ok
}

// StageOf returns the funnel stage an outcome type maps to.
// The mapping is total over the known outcome types.
func StageOf(t OutcomeType) Stage {
	return outcomeStages[t]
}

// LeadState is the derived per-lead state, upserted after every recorded
// outcome. The three flags are monotonic: once true, normal flow never
// clears them.
type LeadState struct {
	LeadID          uuid.UUID
	TenantID        uuid.UUID
	CurrentStage    Stage
	LastOutcomeType OutcomeType
	LastOutcomeAt   time.Time
	WonFlag         bool
	LostFlag        bool
	InvalidFlag     bool
	// Version supports optimistic concurrency on the upsert. Zero means
	// "no state row yet".
	Version int
}

// Apply merges a newly recorded outcome into the state: stage and
// last-outcome fields are overwritten, each flag becomes old OR incoming.
func (s LeadState) Apply(t OutcomeType, occurredAt time.Time) LeadState {
	s.CurrentStage = StageOf(t)
	s.LastOutcomeType = t
	s.LastOutcomeAt = occurredAt
	s.WonFlag = s.WonFlag || t == OutcomeClosedWon
	s.LostFlag = s.LostFlag || t == OutcomeClosedLost
	s.InvalidFlag = s.InvalidFlag || t == OutcomeInvalid
	return s
}
