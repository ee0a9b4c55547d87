package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/compute"
)

// ErrDiscard marks a message the consumer should drop without retrying.
var ErrDiscard = errors.New("discard message")

type taskPool interface {
	Desired(ctx context.Context) (int, error)
	ScaleUp(ctx context.Context) (bool, error)
	ScaleDown(ctx context.Context) (bool, error)
	ActiveTasks(ctx context.Context) (int, error)
}

type taskLauncher interface {
	Launch(ctx context.Context, input compute.TaskInput) error
}

type idleCheckScheduler interface {
	ScheduleIdleCheck(ctx context.Context, dueAt time.Time) error
}

type metricsObserver interface {
	ObserveTaskLaunch(err error)
	ObserveScaleChange(direction string)
}

// Orchestrator reacts to document-object events: it makes sure the
// execution pool is up, launches one generation task per document and
// schedules the deferred idle check that scales the pool back down.
type Orchestrator struct {
	pool      taskPool
	launcher  taskLauncher
	scheduler idleCheckScheduler
	metrics   metricsObserver

	warmupDelay    time.Duration
	idleCheckDelay time.Duration
	sleep          func(time.Duration)
	logger         *zap.Logger
}

// NewOrchestrator constructs Orchestrator.
func NewOrchestrator(pool taskPool, launcher taskLauncher, scheduler idleCheckScheduler, metrics metricsObserver, warmupDelay, idleCheckDelay time.Duration, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		pool:           pool,
		launcher:       launcher,
		scheduler:      scheduler,
		metrics:        metrics,
		warmupDelay:    warmupDelay,
		idleCheckDelay: idleCheckDelay,
		sleep:          time.Sleep,
		logger:         logger,
	}
}

// HandleNotification processes one queue notification. Returning ErrDiscard
// (wrapped or bare) tells the consumer not to retry.
func (o *Orchestrator) HandleNotification(ctx context.Context, n Notification) error {
	if n.IsTestEvent() {
		o.logger.Info("ignoring storage self-test event")
		return nil
	}

	for _, record := range n.Records {
		if err := o.handleRecord(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) handleRecord(ctx context.Context, record Record) error {
	ref, err := ParseObjectKey(record.Storage.Object.Key)
	if err != nil {
		o.logger.Error("unparseable object key", zap.String("key", record.Storage.Object.Key), zap.Error(err))
		return errors.Join(ErrDiscard, err)
	}

	log := o.logger.With(
		zap.String("course_id", ref.CourseID),
		zap.String("document_id", ref.DocumentID),
	)

	desired, err := o.pool.Desired(ctx)
	if err != nil {
		return err
	}
	if desired == 0 {
		raised, err := o.pool.ScaleUp(ctx)
		if err != nil {
			return err
		}
		if raised {
			if o.metrics != nil {
				o.metrics.ObserveScaleChange("up")
			}
			log.Info("scaled execution pool up, waiting for warm-up", zap.Duration("delay", o.warmupDelay))
			o.sleep(o.warmupDelay)
		}
	}

	input := compute.TaskInput{
		CourseID:   ref.CourseID,
		DocumentID: ref.DocumentID,
		ObjectKey:  record.Storage.Object.Key,
	}
	err = o.launcher.Launch(ctx, input)
	if o.metrics != nil {
		o.metrics.ObserveTaskLaunch(err)
	}
	if err != nil {
		return err
	}
	log.Info("generation task launched")

	if err := o.scheduler.ScheduleIdleCheck(ctx, time.Now().Add(o.idleCheckDelay)); err != nil {
		// The pool stays warm until the next successful schedule; cost,
		// not correctness.
		log.Error("failed to schedule idle check", zap.Error(err))
	}
	return nil
}

// RunIdleCheck scales the pool down when nothing is running or pending.
// Errors are logged only; a missed check never fails the scheduler.
func (o *Orchestrator) RunIdleCheck(ctx context.Context) {
	active, err := o.pool.ActiveTasks(ctx)
	if err != nil {
		o.logger.Error("idle check could not read active tasks", zap.Error(err))
		return
	}
	if active > 0 {
		o.logger.Info("idle check found active tasks, keeping pool up", zap.Int("active", active))
		return
	}

	lowered, err := o.pool.ScaleDown(ctx)
	if err != nil {
		o.logger.Error("idle check could not scale pool down", zap.Error(err))
		return
	}
	if lowered {
		if o.metrics != nil {
			o.metrics.ObserveScaleChange("down")
		}
		o.logger.Info("scaled execution pool down to zero")
	}
}
