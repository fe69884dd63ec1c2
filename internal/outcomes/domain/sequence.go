package domain

// Block and warning reason strings surfaced to callers. Stable text:
// operator tooling matches on these.
const (
	BlockWonAfterLost = "lead already closed lost; closed_won requires override"
	BlockLostAfterWon = "lead already closed won; closed_lost requires override"

	WarnOverrideUsed         = "override used to bypass a sequence block"
	WarnLeadInvalid          = "lead was previously marked invalid"
	WarnAppointmentSkipsStep = "appointment_set recorded without a prior contacted outcome"
	WarnClosedFromTop        = "closing outcome recorded directly from top_of_funnel"
)

// SequenceResult is the decision of the sequence validator.
type SequenceResult struct {
	CanProceed bool
	Warnings   []string
	Blocks     []string
}

// ValidateSequence decides whether a proposed outcome is legal given the
// lead's current derived state. A nil state means a fresh lead: always
// legal, no warnings. Pure decision logic; performs no writes.
func ValidateSequence(state *LeadState, proposed OutcomeType, override bool) SequenceResult {
	result := SequenceResult{CanProceed: true}
	if state == nil {
		return result
	}

	// Hard blocks: contradicting a terminal closed state. An explicit
	// override lets the write proceed but is still recorded as a warning.
	if proposed == OutcomeClosedWon && state.LostFlag {
		result.Blocks = append(result.Blocks, BlockWonAfterLost)
	}
	if proposed == OutcomeClosedLost && state.WonFlag {
		result.Blocks = append(result.Blocks, BlockLostAfterWon)
	}
	if len(result.Blocks) > 0 {
		if !override {
			result.CanProceed = false
			return result
		}
		result.Warnings = append(result.Warnings, WarnOverrideUsed)
	}

	// Soft warnings never block.
	if state.InvalidFlag {
		result.Warnings = append(result.Warnings, WarnLeadInvalid)
	}
	if proposed == OutcomeAppointmentSet && state.LastOutcomeType != OutcomeContacted {
		result.Warnings = append(result.Warnings, WarnAppointmentSkipsStep)
	}
	if (proposed == OutcomeClosedWon || proposed == OutcomeClosedLost) && state.CurrentStage == StageTopOfFunnel {
		result.Warnings = append(result.Warnings, WarnClosedFromTop)
	}

	return result
}
