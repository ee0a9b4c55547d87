package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TestEventName marks the storage layer's self-test notification, emitted
// when a listener is attached. It carries no object and must be discarded.
const TestEventName = "storage:TestEvent"

// Notification is the storage-event wrapper pushed onto the queue when an
// object lands in the document store.
type Notification struct {
	Event   string   `json:"Event,omitempty"`
	Records []Record `json:"Records,omitempty"`
}

// Record is one object-level event inside a notification.
type Record struct {
	EventName string        `json:"eventName,omitempty"`
	Storage   StorageRecord `json:"storage"`
}

// StorageRecord locates the object that triggered the event.
type StorageRecord struct {
	Bucket BucketRecord `json:"bucket"`
	Object ObjectRecord `json:"object"`
}

// BucketRecord names the containing bucket.
type BucketRecord struct {
	Name string `json:"name"`
}

// ObjectRecord carries the object key and size.
type ObjectRecord struct {
	Key  string `json:"key"`
	Size int64  `json:"size,omitempty"`
}

// IsTestEvent reports whether the notification is the storage self-test.
func (n Notification) IsTestEvent() bool {
	return n.Event == TestEventName
}

// Message is the queue envelope around a notification, carrying the retry
// counter across re-queues.
type Message struct {
	Body     Notification `json:"body"`
	Attempts int          `json:"attempts"`
}

// Encode serialises the message for the queue.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeMessage parses a raw queue payload.
func DecodeMessage(raw []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return Message{}, fmt.Errorf("decode queue message: %w", err)
	}
	return m, nil
}

// ObjectRef is a parsed document object key.
type ObjectRef struct {
	CourseID   string
	DocumentID string
	FileName   string
}

// ParseObjectKey validates and splits a document object key. Only the
// canonical layout courses/{courseId}/documents/{documentId}/{fileName}
// is accepted; anything else is a permanent parse failure.
func ParseObjectKey(key string) (ObjectRef, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 5 || parts[0] != "courses" || parts[2] != "documents" {
		return ObjectRef{}, fmt.Errorf("unexpected object key layout: %q", key)
	}
	for _, p := range parts[1:] {
		if p == "" {
			return ObjectRef{}, fmt.Errorf("unexpected object key layout: %q", key)
		}
	}
	return ObjectRef{CourseID: parts[1], DocumentID: parts[3], FileName: parts[4]}, nil
}
