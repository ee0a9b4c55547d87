package models

import "time"

// DocumentStatus represents the ingestion state of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusReady   DocumentStatus = "ready"
	DocumentStatusFailed  DocumentStatus = "failed"
)

// Document is keyed by (courseId, documentId). QuizID is attached by the
// ingestion pipeline once generation finishes.
type Document struct {
	CourseID   string         `db:"course_id" json:"courseId"`
	DocumentID string         `db:"document_id" json:"documentId"`
	Name       string         `db:"name" json:"name"`
	ObjectKey  string         `db:"object_key" json:"objectKey"`
	UploadedBy string         `db:"uploaded_by" json:"uploadedBy"`
	UploadedAt time.Time      `db:"uploaded_at" json:"uploadedAt"`
	Size       int64          `db:"size" json:"size"`
	Status     DocumentStatus `db:"status" json:"status"`
	QuizID     *string        `db:"quiz_id" json:"quizId,omitempty"`
}
