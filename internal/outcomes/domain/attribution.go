package domain

// IntentType classifies a lead as a buyer or a seller. Leads whose intent
// is not yet known carry no intent.
type IntentType string

const (
	IntentBuyer  IntentType = "buyer"
	IntentSeller IntentType = "seller"
)

// Attribution is the frozen copy of a lead's marketing/geo/intent
// attributes at the moment an outcome is recorded. It is a closed struct,
// not an open map: the band fields are gated by intent and never both set.
type Attribution struct {
	SourceKey       string      `json:"sourceKey"`
	GeoKey          string      `json:"geoKey"`
	IntentType      *IntentType `json:"intentType,omitempty"`
	TimelineBucket  string      `json:"timelineBucket"`
	AssignedPartner *string     `json:"assignedPartner,omitempty"`
	// PriceBand is only present for seller intent.
	PriceBand *string `json:"priceBand,omitempty"`
	// BudgetBand is only present for buyer intent.
	BudgetBand *string `json:"budgetBand,omitempty"`
}

// Normalize enforces the band/intent gating regardless of stray data on
// the source lead row: sellers keep only PriceBand, buyers only
// BudgetBand, unknown intent keeps neither.
func (a Attribution) Normalize() Attribution {
	switch {
	case a.IntentType != nil && *a.IntentType == IntentSeller:
		a.BudgetBand = nil
	case a.IntentType != nil && *a.IntentType == IntentBuyer:
		a.PriceBand = nil
	default:
		a.PriceBand = nil
		a.BudgetBand = nil
	}
	return a
}

// IntentBucket returns the aggregation bucket for the attribution's
// intent: "buyer", "seller", or "unknown" when intent is unset.
func (a Attribution) IntentBucket() string {
	if a.IntentType == nil {
		return "unknown"
	}
	return string(*a.IntentType)
}
