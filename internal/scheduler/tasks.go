// Package scheduler wires the periodic jobs: weekly win-rate aggregation
// and daily stale-lead detection. Tasks carry no payload; each handler
// fans out over every registered tenant.
package scheduler

import (
	"github.com/hibiken/asynq"
)

const TaskWeeklyAggregation = "analytics.aggregate_week"

const TaskDailyNudge = "nudges.detect_stale"

// Job names as recorded in job_runs.
const (
	JobNameWeeklyAggregation = "weekly_aggregation"
	JobNameDailyNudge        = "daily_nudge"
)

func NewWeeklyAggregationTask() *asynq.Task {
	return asynq.NewTask(TaskWeeklyAggregation, nil)
}

func NewDailyNudgeTask() *asynq.Task {
	return asynq.NewTask(TaskDailyNudge, nil)
}
