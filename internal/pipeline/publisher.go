package pipeline

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes object-created notifications onto the pipeline queue.
type Publisher struct {
	client *redis.Client
	queue  string
	bucket string
}

// NewPublisher constructs Publisher. bucket names the logical store the
// notifications report.
func NewPublisher(client *redis.Client, queue, bucket string) *Publisher {
	return &Publisher{client: client, queue: queue, bucket: bucket}
}

// ObjectCreated enqueues a notification for a freshly stored object.
func (p *Publisher) ObjectCreated(ctx context.Context, objectKey string, size int64) error {
	msg := Message{Body: Notification{
		Records: []Record{{
			EventName: "ObjectCreated:Put",
			Storage: StorageRecord{
				Bucket: BucketRecord{Name: p.bucket},
				Object: ObjectRecord{Key: objectKey, Size: size},
			},
		}},
	}}
	raw, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode object event: %w", err)
	}
	if err := p.client.LPush(ctx, p.queue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue object event: %w", err)
	}
	return nil
}
