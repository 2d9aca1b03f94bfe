// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultQueueName is the Redis list show events are pushed to.
const DefaultQueueName = "show_events"

// Event kinds written to the journal.
const (
	KindRoomCreated = "room_created"
	KindRoomExpired = "room_expired"
	KindAdminAction = "admin_action"
	KindDonation    = "donation"
)

// ShowEventRecord is one journal entry for downstream consumers.
type ShowEventRecord struct {
	ID        uuid.UUID              `json:"id"`
	RoomID    string                 `json:"room_id"`
	Kind      string                 `json:"kind"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// NewRecord stamps a record with a fresh id and the current time.
func NewRecord(roomID, kind string, payload map[string]interface{}) ShowEventRecord {
	return ShowEventRecord{
		ID:        uuid.New(),
		RoomID:    roomID,
		Kind:      kind,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Journal receives show events. Room state is never read back from it.
type Journal interface {
	Publish(ctx context.Context, rec ShowEventRecord) error
}

// NopJournal discards everything. Used when Redis is not configured.
type NopJournal struct{}

func (NopJournal) Publish(context.Context, ShowEventRecord) error { return nil }

// RedisJournal pushes records onto a Redis list.
type RedisJournal struct {
	Client *redis.Client
	Queue  string
}

// ConnectRedis creates a client for addr/db and checks it with a PING.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisJournal wraps client. An empty queue uses DefaultQueueName.
func NewRedisJournal(client *redis.Client, queue string) *RedisJournal {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RedisJournal{Client: client, Queue: queue}
}

// Publish serializes rec to JSON and RPUSHes it.
func (j *RedisJournal) Publish(ctx context.Context, rec ShowEventRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal ShowEventRecord: %w", err)
	}
	if err := j.Client.RPush(ctx, j.Queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", j.Queue, err)
	}
	return nil
}

// Recorder publishes in the background so callers never wait on Redis.
type Recorder struct {
	Journal Journal
	Logger  *logrus.Logger
	Timeout time.Duration
}

// NewRecorder returns a recorder; a nil journal records nothing.
func NewRecorder(j Journal, logger *logrus.Logger) *Recorder {
	if j == nil {
		j = NopJournal{}
	}
	return &Recorder{Journal: j, Logger: logger, Timeout: 3 * time.Second}
}

// Record publishes a record asynchronously. Failures are logged only.
func (r *Recorder) Record(roomID, kind string, payload map[string]interface{}) {
	if _, nop := r.Journal.(NopJournal); nop {
		return
	}
	rec := NewRecord(roomID, kind, payload)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
		defer cancel()
		if err := r.Journal.Publish(ctx, rec); err != nil {
			r.Logger.WithFields(logrus.Fields{
				"room": roomID,
				"kind": kind,
			}).Warnf("Journal: publish failed: %v", err)
		}
	}()
}
