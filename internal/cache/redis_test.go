package cache

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memJournal struct {
	mu   sync.Mutex
	recs []ShowEventRecord
}

func (m *memJournal) Publish(_ context.Context, rec ShowEventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memJournal) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recs)
}

func TestRecorderPublishesInBackground(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	j := &memJournal{}
	r := NewRecorder(j, logger)

	r.Record("final", KindDonation, map[string]interface{}{"user": "ann", "amount": 5.0})
	require.Eventually(t, func() bool { return j.len() == 1 }, time.Second, 5*time.Millisecond)

	j.mu.Lock()
	rec := j.recs[0]
	j.mu.Unlock()
	assert.Equal(t, "final", rec.RoomID)
	assert.Equal(t, KindDonation, rec.Kind)
	assert.NotZero(t, rec.Timestamp)
}

func TestRecorderWithNilJournalIsNoop(t *testing.T) {
	r := NewRecorder(nil, logrus.New())
	assert.NotPanics(t, func() { r.Record("final", KindAdminAction, nil) })
}

func TestRecordJSONShape(t *testing.T) {
	data, err := json.Marshal(NewRecord("final", KindAdminAction, map[string]interface{}{"action": "start"}))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "final", decoded["room_id"])
	assert.Equal(t, "admin_action", decoded["kind"])
	assert.Contains(t, decoded, "id")
}

// Needs a reachable Redis; set REDIS_ADDR to run it.
func TestRedisJournalPublish(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb, err := ConnectRedis(ctx, addr, 0)
	require.NoError(t, err)
	defer rdb.Close()

	queue := "show_events_test"
	defer rdb.Del(context.Background(), queue)
	j := NewRedisJournal(rdb, queue)
	require.NoError(t, j.Publish(ctx, NewRecord("final", KindRoomCreated, nil)))

	n, err := rdb.LLen(ctx, queue).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
