package domain

import (
	"testing"
	"time"
)

func TestStageOfCoversAllOutcomeTypes(t *testing.T) {
	expected := map[OutcomeType]Stage{
		OutcomeContacted:      StageTopOfFunnel,
		OutcomeAppointmentSet: StageMidFunnel,
		OutcomeListingSigned:  StageMidFunnel,
		OutcomeBuyerAgreement: StageMidFunnel,
		OutcomeClosedWon:      StageWon,
		OutcomeClosedLost:     StageLost,
		OutcomeInvalid:        StageInvalid,
	}

	for outcome, stage := range expected {
		if got := StageOf(outcome); got != stage {
			t.Fatalf("StageOf(%s) = %s, want %s", outcome, got, stage)
		}
	}
}

func TestParseOutcomeTypeRejectsUnknown(t *testing.T) {
	if _, ok := ParseOutcomeType("ghosted"); ok {
		t.Fatal("expected unknown outcome type to be rejected")
	}
	if parsed, ok := ParseOutcomeType("closed_won"); !ok || parsed != OutcomeClosedWon {
		t.Fatalf("expected closed_won to parse, got %v %v", parsed, ok)
	}
}

func TestApplyFlagsAreMonotonic(t *testing.T) {
	at := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	// Every permutation of closing outcomes must leave earlier flags set.
	state := LeadState{}
	state = state.Apply(OutcomeClosedLost, at)
	state = state.Apply(OutcomeClosedWon, at.Add(time.Hour))
	state = state.Apply(OutcomeContacted, at.Add(2*time.Hour))
	state = state.Apply(OutcomeInvalid, at.Add(3*time.Hour))
	state = state.Apply(OutcomeContacted, at.Add(4*time.Hour))

	if !state.LostFlag || !state.WonFlag || !state.InvalidFlag {
		t.Fatalf("flags must never reset: %+v", state)
	}
	if state.CurrentStage != StageTopOfFunnel {
		t.Fatalf("current stage should track the latest outcome, got %s", state.CurrentStage)
	}
	if state.LastOutcomeType != OutcomeContacted {
		t.Fatalf("last outcome should be contacted, got %s", state.LastOutcomeType)
	}
}

func TestAttributionNormalizeGatesBandsByIntent(t *testing.T) {
	price := "300k-500k"
	budget := "200k-400k"
	seller := IntentSeller
	buyer := IntentBuyer

	got := Attribution{IntentType: &seller, PriceBand: &price, BudgetBand: &budget}.Normalize()
	if got.BudgetBand != nil || got.PriceBand == nil {
		t.Fatalf("seller attribution should keep only price band: %+v", got)
	}

	got = Attribution{IntentType: &buyer, PriceBand: &price, BudgetBand: &budget}.Normalize()
	if got.PriceBand != nil || got.BudgetBand == nil {
		t.Fatalf("buyer attribution should keep only budget band: %+v", got)
	}

	got = Attribution{PriceBand: &price, BudgetBand: &budget}.Normalize()
	if got.PriceBand != nil || got.BudgetBand != nil {
		t.Fatalf("unknown intent keeps neither band: %+v", got)
	}
	if got.IntentBucket() != "unknown" {
		t.Fatalf("unknown intent bucket, got %s", got.IntentBucket())
	}
}
