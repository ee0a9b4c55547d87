package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/compute"
)

type mockPool struct {
	desired   int
	active    int
	scaledUp  bool
	scaledDn  bool
	desireErr error
}

func (m *mockPool) Desired(ctx context.Context) (int, error) {
	return m.desired, m.desireErr
}

func (m *mockPool) ScaleUp(ctx context.Context) (bool, error) {
	if m.desired != 0 {
		return false, nil
	}
	m.desired = 1
	m.scaledUp = true
	return true, nil
}

func (m *mockPool) ScaleDown(ctx context.Context) (bool, error) {
	if m.desired != 1 {
		return false, nil
	}
	m.desired = 0
	m.scaledDn = true
	return true, nil
}

func (m *mockPool) ActiveTasks(ctx context.Context) (int, error) {
	return m.active, nil
}

type mockLauncher struct {
	launched []compute.TaskInput
	err      error
}

func (m *mockLauncher) Launch(ctx context.Context, input compute.TaskInput) error {
	if m.err != nil {
		return m.err
	}
	m.launched = append(m.launched, input)
	return nil
}

type mockIdleScheduler struct {
	scheduled []time.Time
	err       error
}

func (m *mockIdleScheduler) ScheduleIdleCheck(ctx context.Context, dueAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.scheduled = append(m.scheduled, dueAt)
	return nil
}

func testOrchestrator(pool *mockPool, launcher *mockLauncher, scheduler *mockIdleScheduler) *Orchestrator {
	o := NewOrchestrator(pool, launcher, scheduler, nil, 90*time.Second, 15*time.Minute, zap.NewNop())
	o.sleep = func(time.Duration) {}
	return o
}

func objectNotification(key string) Notification {
	return Notification{Records: []Record{{
		Storage: StorageRecord{
			Bucket: BucketRecord{Name: "documents"},
			Object: ObjectRecord{Key: key},
		},
	}}}
}

func TestOrchestratorScalesUpAndLaunches(t *testing.T) {
	pool := &mockPool{desired: 0}
	launcher := &mockLauncher{}
	scheduler := &mockIdleScheduler{}
	o := testOrchestrator(pool, launcher, scheduler)

	err := o.HandleNotification(context.Background(), objectNotification("courses/c1/documents/d1/lecture.pdf"))
	require.NoError(t, err)

	assert.True(t, pool.scaledUp)
	require.Len(t, launcher.launched, 1)
	assert.Equal(t, compute.TaskInput{
		CourseID:   "c1",
		DocumentID: "d1",
		ObjectKey:  "courses/c1/documents/d1/lecture.pdf",
	}, launcher.launched[0])
	assert.Len(t, scheduler.scheduled, 1)
}

func TestOrchestratorSkipsScaleUpWhenWarm(t *testing.T) {
	pool := &mockPool{desired: 1}
	launcher := &mockLauncher{}
	o := testOrchestrator(pool, launcher, &mockIdleScheduler{})

	err := o.HandleNotification(context.Background(), objectNotification("courses/c1/documents/d1/lecture.pdf"))
	require.NoError(t, err)
	assert.False(t, pool.scaledUp)
	assert.Len(t, launcher.launched, 1)
}

func TestOrchestratorIgnoresTestEvent(t *testing.T) {
	pool := &mockPool{}
	launcher := &mockLauncher{}
	o := testOrchestrator(pool, launcher, &mockIdleScheduler{})

	err := o.HandleNotification(context.Background(), Notification{Event: TestEventName})
	require.NoError(t, err)
	assert.Empty(t, launcher.launched)
	assert.False(t, pool.scaledUp)
}

func TestOrchestratorDiscardsBadObjectKey(t *testing.T) {
	launcher := &mockLauncher{}
	o := testOrchestrator(&mockPool{}, launcher, &mockIdleScheduler{})

	err := o.HandleNotification(context.Background(), objectNotification("random/key.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiscard)
	assert.Empty(t, launcher.launched)
}

func TestOrchestratorLaunchFailurePropagates(t *testing.T) {
	launcher := &mockLauncher{err: errors.New("runner unreachable")}
	o := testOrchestrator(&mockPool{desired: 1}, launcher, &mockIdleScheduler{})

	err := o.HandleNotification(context.Background(), objectNotification("courses/c1/documents/d1/lecture.pdf"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDiscard)
}

func TestOrchestratorSchedulerFailureIsNonFatal(t *testing.T) {
	launcher := &mockLauncher{}
	scheduler := &mockIdleScheduler{err: errors.New("redis down")}
	o := testOrchestrator(&mockPool{desired: 1}, launcher, scheduler)

	err := o.HandleNotification(context.Background(), objectNotification("courses/c1/documents/d1/lecture.pdf"))
	require.NoError(t, err)
	assert.Len(t, launcher.launched, 1)
}

func TestIdleCheckScalesDownWhenIdle(t *testing.T) {
	pool := &mockPool{desired: 1, active: 0}
	o := testOrchestrator(pool, &mockLauncher{}, &mockIdleScheduler{})

	o.RunIdleCheck(context.Background())
	assert.True(t, pool.scaledDn)
}

func TestIdleCheckKeepsPoolWithActiveTasks(t *testing.T) {
	pool := &mockPool{desired: 1, active: 2}
	o := testOrchestrator(pool, &mockLauncher{}, &mockIdleScheduler{})

	o.RunIdleCheck(context.Background())
	assert.False(t, pool.scaledDn)
	assert.Equal(t, 1, pool.desired)
}
