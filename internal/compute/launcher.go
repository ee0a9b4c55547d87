package compute

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// TaskInput names the parameters of one quiz-generation task.
type TaskInput struct {
	CourseID   string `json:"courseId"`
	DocumentID string `json:"documentId"`
	ObjectKey  string `json:"objectKey"`
}

// Launcher starts one-shot generation tasks on the runner over HTTP.
type Launcher struct {
	client *resty.Client
}

// NewLauncher constructs Launcher against the runner's base URL.
func NewLauncher(baseURL string, timeout time.Duration) *Launcher {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Launcher{client: client}
}

// Launch submits exactly one task. The runner executes it asynchronously.
func (l *Launcher) Launch(ctx context.Context, input TaskInput) error {
	resp, err := l.client.R().
		SetContext(ctx).
		SetBody(input).
		Post("/tasks")
	if err != nil {
		return fmt.Errorf("launch task: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("launch task: runner returned %s", resp.Status())
	}
	return nil
}
