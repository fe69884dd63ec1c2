package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"lead_outcomes_backend/platform/config"
	"lead_outcomes_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Periodic registers the cron entries and enqueues the tasks on schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewPeriodic creates the periodic trigger from the configured cron
// expressions (asynq accepts @weekly/@daily shorthands).
func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, err := redisOpt(cfg)
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})

	if _, err := scheduler.Register(cfg.GetAggregationCron(), NewWeeklyAggregationTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register aggregation schedule: %w", err)
	}
	if _, err := scheduler.Register(cfg.GetNudgeCron(), NewDailyNudgeTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register nudge schedule: %w", err)
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run blocks until the context is canceled.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		return "default"
	}
	return queue
}

func redisOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if cfg.GetRedisTLSInsecure() {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if cfg.GetRedisTLSInsecure() {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
