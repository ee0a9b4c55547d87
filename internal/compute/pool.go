package compute

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	desiredCapacityKey = "compute:desired_capacity"
	activeTasksKey     = "compute:active_tasks"
)

// Compare-and-set so concurrent scale decisions collapse into one winner.
var scaleScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current == tonumber(ARGV[1]) then
  redis.call('SET', KEYS[1], ARGV[2])
  return 1
end
return 0
`)

// Pool tracks the desired capacity and active-task gauge of the
// quiz-generation execution pool in Redis, shared between the API and the
// runner processes.
type Pool struct {
	client *redis.Client
}

// NewPool constructs Pool.
func NewPool(client *redis.Client) *Pool {
	return &Pool{client: client}
}

// Desired returns the current desired capacity. A missing key reads as 0.
func (p *Pool) Desired(ctx context.Context) (int, error) {
	n, err := p.client.Get(ctx, desiredCapacityKey).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read desired capacity: %w", err)
	}
	return n, nil
}

// ScaleUp raises desired capacity 0 -> 1. Returns false when another
// caller already raised it, which is not an error.
func (p *Pool) ScaleUp(ctx context.Context) (bool, error) {
	return p.compareAndSet(ctx, 0, 1)
}

// ScaleDown lowers desired capacity 1 -> 0. Returns false when capacity
// already moved, which is not an error.
func (p *Pool) ScaleDown(ctx context.Context) (bool, error) {
	return p.compareAndSet(ctx, 1, 0)
}

func (p *Pool) compareAndSet(ctx context.Context, from, to int) (bool, error) {
	res, err := scaleScript.Run(ctx, p.client, []string{desiredCapacityKey}, from, to).Int()
	if err != nil {
		return false, fmt.Errorf("scale capacity %d -> %d: %w", from, to, err)
	}
	return res == 1, nil
}

// ActiveTasks returns the number of generation tasks currently running or
// pending.
func (p *Pool) ActiveTasks(ctx context.Context) (int, error) {
	n, err := p.client.Get(ctx, activeTasksKey).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read active tasks: %w", err)
	}
	return n, nil
}

// TaskStarted increments the active-task gauge.
func (p *Pool) TaskStarted(ctx context.Context) error {
	if err := p.client.Incr(ctx, activeTasksKey).Err(); err != nil {
		return fmt.Errorf("increment active tasks: %w", err)
	}
	return nil
}

// TaskFinished decrements the active-task gauge, clamping at zero.
func (p *Pool) TaskFinished(ctx context.Context) error {
	n, err := p.client.Decr(ctx, activeTasksKey).Result()
	if err != nil {
		return fmt.Errorf("decrement active tasks: %w", err)
	}
	if n < 0 {
		p.client.Set(ctx, activeTasksKey, 0, 0)
	}
	return nil
}
