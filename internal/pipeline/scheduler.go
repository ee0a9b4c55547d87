package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type idleCheckRunner interface {
	RunIdleCheck(ctx context.Context)
}

// Scheduler persists deferred idle checks in a Redis sorted set scored by
// due time and drains due entries on a cron tick. Entries survive process
// restarts, unlike an in-process timer.
type Scheduler struct {
	client   *redis.Client
	set      string
	runner   idleCheckRunner
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewScheduler constructs Scheduler. The runner is attached afterwards via
// SetRunner, since the orchestrator that runs the checks also schedules them.
func NewScheduler(client *redis.Client, set string, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{client: client, set: set, interval: interval, logger: logger}
}

// SetRunner attaches the idle-check runner. Must be called before Start.
func (s *Scheduler) SetRunner(runner idleCheckRunner) {
	s.runner = runner
}

// ScheduleIdleCheck records a check due at the given time.
func (s *Scheduler) ScheduleIdleCheck(ctx context.Context, dueAt time.Time) error {
	member := uuid.NewString()
	err := s.client.ZAdd(ctx, s.set, redis.Z{
		Score:  float64(dueAt.UnixMilli()),
		Member: member,
	}).Err()
	if err != nil {
		return fmt.Errorf("schedule idle check: %w", err)
	}
	return nil
}

// Start begins the drain tick. Call Stop to shut down.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron = cron.New()
	spec := "@every " + s.interval.String()
	_, err := s.cron.AddFunc(spec, func() {
		s.drain(ctx)
	})
	if err != nil {
		s.logger.Error("failed to register scheduler tick", zap.Error(err))
		return
	}
	s.cron.Start()
	s.logger.Info("idle-check scheduler started", zap.Duration("interval", s.interval))
}

// Stop halts the tick and waits for a running drain to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) drain(ctx context.Context) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	due, err := s.client.ZRangeByScore(ctx, s.set, &redis.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		s.logger.Error("failed to read due idle checks", zap.Error(err))
		return
	}
	if s.runner == nil {
		return
	}
	for _, member := range due {
		removed, err := s.client.ZRem(ctx, s.set, member).Result()
		if err != nil {
			s.logger.Error("failed to claim idle check", zap.Error(err))
			continue
		}
		// Another instance claimed it first.
		if removed == 0 {
			continue
		}
		s.runner.RunIdleCheck(ctx)
	}
}
