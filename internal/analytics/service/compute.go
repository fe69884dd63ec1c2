package service

import (
	"sort"

	"lead_outcomes_backend/internal/analytics/repository"
	"lead_outcomes_backend/internal/outcomes/domain"

	"github.com/google/uuid"
)

type bucketCounts struct {
	leads        map[uuid.UUID]struct{}
	appointments map[uuid.UUID]struct{}
	won          map[uuid.UUID]struct{}
	lost         map[uuid.UUID]struct{}
}

func newBucketCounts() *bucketCounts {
	return &bucketCounts{
		leads:        make(map[uuid.UUID]struct{}),
		appointments: make(map[uuid.UUID]struct{}),
		won:          make(map[uuid.UUID]struct{}),
		lost:         make(map[uuid.UUID]struct{}),
	}
}

type bucketKey struct {
	dimension string
	intent    string
}

// ComputeBySource aggregates a week's ledger entries by source key.
func ComputeBySource(entries []repository.WeekEntry) []repository.AggregateRow {
	return compute(entries, func(e repository.WeekEntry) string { return e.SourceKey })
}

// ComputeByGeo aggregates a week's ledger entries by geo key.
func ComputeByGeo(entries []repository.WeekEntry) []repository.AggregateRow {
	return compute(entries, func(e repository.WeekEntry) string { return e.GeoKey })
}

// compute counts distinct lead ids per (dimension, intent) bucket. A lead
// with several outcomes in the window still enters each counter once.
func compute(entries []repository.WeekEntry, dimensionOf func(repository.WeekEntry) string) []repository.AggregateRow {
	buckets := make(map[bucketKey]*bucketCounts)

	for _, entry := range entries {
		dimension := dimensionOf(entry)
		if dimension == "" {
			continue
		}
		key := bucketKey{dimension: dimension, intent: entry.IntentBucket}
		counts, ok := buckets[key]
		if !ok {
			counts = newBucketCounts()
			buckets[key] = counts
		}

		counts.leads[entry.LeadID] = struct{}{}
		switch entry.OutcomeType {
		case domain.OutcomeAppointmentSet:
			counts.appointments[entry.LeadID] = struct{}{}
		case domain.OutcomeClosedWon:
			counts.won[entry.LeadID] = struct{}{}
		case domain.OutcomeClosedLost:
			counts.lost[entry.LeadID] = struct{}{}
		}
	}

	rows := make([]repository.AggregateRow, 0, len(buckets))
	for key, counts := range buckets {
		rows = append(rows, repository.AggregateRow{
			DimensionKey: key.dimension,
			IntentBucket: key.intent,
			LeadsEntered: len(counts.leads),
			Appointments: len(counts.appointments),
			Won:          len(counts.won),
			Lost:         len(counts.lost),
			WinRate:      winRate(len(counts.won), len(counts.lost)),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DimensionKey != rows[j].DimensionKey {
			return rows[i].DimensionKey < rows[j].DimensionKey
		}
		return rows[i].IntentBucket < rows[j].IntentBucket
	})
	return rows
}

func winRate(won, lost int) *float64 {
	denominator := won + lost
	if denominator == 0 {
		return nil
	}
	rate := float64(won) / float64(denominator)
	return &rate
}
