package domain

import (
	"testing"
	"time"
)

func stateAfter(outcomes ...OutcomeType) *LeadState {
	state := LeadState{}
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for _, o := range outcomes {
		state = state.Apply(o, at)
		at = at.Add(time.Hour)
	}
	return &state
}

func TestValidateSequence_FreshLeadAlwaysProceeds(t *testing.T) {
	for _, proposed := range []OutcomeType{
		OutcomeContacted, OutcomeAppointmentSet, OutcomeListingSigned,
		OutcomeBuyerAgreement, OutcomeClosedWon, OutcomeClosedLost, OutcomeInvalid,
	} {
		result := ValidateSequence(nil, proposed, false)
		if !result.CanProceed {
			t.Fatalf("fresh lead should proceed for %s", proposed)
		}
		if len(result.Warnings) != 0 || len(result.Blocks) != 0 {
			t.Fatalf("fresh lead should have no warnings or blocks for %s", proposed)
		}
	}
}

func TestValidateSequence_WonAfterLostBlocks(t *testing.T) {
	result := ValidateSequence(stateAfter(OutcomeContacted, OutcomeClosedLost), OutcomeClosedWon, false)

	if result.CanProceed {
		t.Fatal("closed_won after closed_lost should be blocked without override")
	}
	if len(result.Blocks) != 1 || result.Blocks[0] != BlockWonAfterLost {
		t.Fatalf("expected block %q, got %v", BlockWonAfterLost, result.Blocks)
	}
}

func TestValidateSequence_LostAfterWonBlocks(t *testing.T) {
	result := ValidateSequence(stateAfter(OutcomeClosedWon), OutcomeClosedLost, false)

	if result.CanProceed {
		t.Fatal("closed_lost after closed_won should be blocked without override")
	}
}

func TestValidateSequence_OverrideProceedsWithWarning(t *testing.T) {
	result := ValidateSequence(stateAfter(OutcomeClosedLost), OutcomeClosedWon, true)

	if !result.CanProceed {
		t.Fatal("override should let a blocked outcome proceed")
	}
	if !containsString(result.Warnings, WarnOverrideUsed) {
		t.Fatalf("expected override warning, got %v", result.Warnings)
	}
}

func TestValidateSequence_InvalidFlagWarnsOnly(t *testing.T) {
	result := ValidateSequence(stateAfter(OutcomeInvalid), OutcomeContacted, false)

	if !result.CanProceed {
		t.Fatal("invalid flag must never block")
	}
	if !containsString(result.Warnings, WarnLeadInvalid) {
		t.Fatalf("expected invalid-lead warning, got %v", result.Warnings)
	}
}

func TestValidateSequence_AppointmentWithoutContactWarns(t *testing.T) {
	result := ValidateSequence(stateAfter(OutcomeListingSigned), OutcomeAppointmentSet, false)

	if !result.CanProceed {
		t.Fatal("appointment warning must not block")
	}
	if !containsString(result.Warnings, WarnAppointmentSkipsStep) {
		t.Fatalf("expected appointment warning, got %v", result.Warnings)
	}
}

func TestValidateSequence_AppointmentAfterContactIsClean(t *testing.T) {
	result := ValidateSequence(stateAfter(OutcomeContacted), OutcomeAppointmentSet, false)

	if !result.CanProceed || len(result.Warnings) != 0 {
		t.Fatalf("contacted -> appointment_set should be clean, got %+v", result)
	}
}

func TestValidateSequence_ClosingFromTopOfFunnelWarns(t *testing.T) {
	for _, proposed := range []OutcomeType{OutcomeClosedWon, OutcomeClosedLost} {
		result := ValidateSequence(stateAfter(OutcomeContacted), proposed, false)
		if !result.CanProceed {
			t.Fatalf("%s from top_of_funnel should proceed", proposed)
		}
		if !containsString(result.Warnings, WarnClosedFromTop) {
			t.Fatalf("expected skip-mid-funnel warning for %s, got %v", proposed, result.Warnings)
		}
	}
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
