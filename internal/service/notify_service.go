package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GavrielUnict/elearning-platform/internal/models"
)

// EnrollmentNotification is the payload published to a course owner's
// channel when a student requests enrollment.
type EnrollmentNotification struct {
	Type         string    `json:"type"`
	CourseID     string    `json:"courseId"`
	CourseName   string    `json:"courseName"`
	StudentID    string    `json:"studentId"`
	StudentEmail string    `json:"studentEmail"`
	RequestedAt  time.Time `json:"requestedAt"`
}

// NotifyService publishes teacher notifications over Redis pub/sub.
// Publishing is best effort; callers treat failures as non-fatal.
type NotifyService struct {
	client        *redis.Client
	channelPrefix string
	enabled       bool
	logger        *zap.Logger
}

// NewNotifyService constructs NotifyService.
func NewNotifyService(client *redis.Client, channelPrefix string, enabled bool, logger *zap.Logger) *NotifyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifyService{client: client, channelPrefix: channelPrefix, enabled: enabled, logger: logger}
}

// EnrollmentRequested notifies the course owner of a new pending request.
func (s *NotifyService) EnrollmentRequested(ctx context.Context, enrollment models.Enrollment) error {
	if !s.enabled || s.client == nil {
		return nil
	}
	payload, err := json.Marshal(EnrollmentNotification{
		Type:         "enrollment_requested",
		CourseID:     enrollment.CourseID,
		CourseName:   enrollment.CourseName,
		StudentID:    enrollment.StudentID,
		StudentEmail: enrollment.StudentEmail,
		RequestedAt:  enrollment.RequestedAt,
	})
	if err != nil {
		return err
	}
	channel := s.channelPrefix + enrollment.TeacherID
	if err := s.client.Publish(ctx, channel, payload).Err(); err != nil {
		return err
	}
	s.logger.Debug("published enrollment notification", zap.String("channel", channel))
	return nil
}
