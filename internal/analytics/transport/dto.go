// Package transport defines the response DTOs for the analytics API.
package transport

import (
	"strconv"

	"lead_outcomes_backend/internal/analytics/repository"
	"lead_outcomes_backend/internal/analytics/service"
)

// WinRateResponse is one aggregate bucket in API form.
type WinRateResponse struct {
	Week            string   `json:"week"`
	DimensionKey    string   `json:"dimensionKey"`
	Intent          string   `json:"intent"`
	LeadsEntered    int      `json:"leadsEntered"`
	Appointments    int      `json:"appointments"`
	Won             int      `json:"won"`
	Lost            int      `json:"lost"`
	WinRate         *float64 `json:"winRate"`
	AppointmentRate *float64 `json:"appointmentRate"`
}

// ToWinRateResponse maps a stored aggregate row to its DTO. The appointment
// rate is derived here rather than stored.
func ToWinRateResponse(row repository.WinRateRow) WinRateResponse {
	resp := WinRateResponse{
		Week:         service.WeekLabel(row.WeekStart),
		DimensionKey: row.DimensionKey,
		Intent:       row.IntentBucket,
		LeadsEntered: row.LeadsEntered,
		Appointments: row.Appointments,
		Won:          row.Won,
		Lost:         row.Lost,
		WinRate:      row.WinRate,
	}
	if row.LeadsEntered > 0 {
		rate := float64(row.Appointments) / float64(row.LeadsEntered)
		resp.AppointmentRate = &rate
	}
	return resp
}

// CSVHeaders is the column order for the CSV export.
func CSVHeaders() []string {
	return []string{
		"week", "dimension_key", "intent",
		"leads_entered", "appointments", "won", "lost",
		"win_rate", "appointment_rate",
	}
}

// CSV renders the response as one export row.
func (r WinRateResponse) CSV() []string {
	return []string{
		r.Week,
		r.DimensionKey,
		r.Intent,
		strconv.Itoa(r.LeadsEntered),
		strconv.Itoa(r.Appointments),
		strconv.Itoa(r.Won),
		strconv.Itoa(r.Lost),
		formatRate(r.WinRate),
		formatRate(r.AppointmentRate),
	}
}

func formatRate(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', 4, 64)
}
