package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postured/internal/posture"
	"postured/pkg/types"
)

func TestFanout_DeliversToAllSinks(t *testing.T) {
	a, b := &memorySink{name: "a"}, &memorySink{name: "b", err: errors.New("down")}
	f := NewFanout(nil, a, b)
	require.Equal(t, 2, f.Len())
	for i := 0; i < 3; i++ {
		require.NoError(t, f.Publish(context.Background(), StatusEvent(MsgActive, time.Now())))
	}
	require.NoError(t, f.Close())
	gotA, closedA := a.snapshot()
	gotB, closedB := b.snapshot()
	assert.Len(t, gotA, 3)
	assert.Len(t, gotB, 3, "a failing sink still receives every event")
	assert.True(t, closedA)
	assert.True(t, closedB)
	assert.Error(t, f.Publish(context.Background(), StatusEvent(MsgStopped, time.Now())))
	assert.NoError(t, f.Close(), "second close is a no-op")
}

func TestFanout_DropsWhenQueueFull(t *testing.T) {
	slow := &memorySink{name: "slow", block: make(chan struct{})}
	f := NewFanout(nil, slow)
	start := time.Now()
	for i := 0; i < defaultQueueSize*3; i++ {
		require.NoError(t, f.Publish(context.Background(), StatusEvent(MsgActive, time.Now())))
	}
	assert.Less(t, time.Since(start), time.Second, "publish must not block on a slow sink")
	close(slow.block)
	require.NoError(t, f.Close())
	got, _ := slow.snapshot()
	assert.LessOrEqual(t, len(got), defaultQueueSize+1)
	assert.NotEmpty(t, got)
}

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	d := make(chan struct{})
	close(d)
	return &fakeToken{err: err, done: d}
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type publishCall struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeMQTT implements the mqtt.Client methods the sink uses; the embedded
// interface panics on anything else.
type fakeMQTT struct {
	mqtt.Client
	calls        []publishCall
	err          error
	disconnected bool
}

func (c *fakeMQTT) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.calls = append(c.calls, publishCall{topic: topic, qos: qos, payload: payload.([]byte)})
	return newFakeToken(c.err)
}

func (c *fakeMQTT) Disconnect(uint) { c.disconnected = true }

func TestMQTTSink_Publish(t *testing.T) {
	client := &fakeMQTT{}
	s := newMQTTSink(client, MQTTConfig{Topic: "postured/events/", QoS: 1})
	ev := PostureEvent(posture.Leaning, time.Unix(10, 0))
	require.NoError(t, s.Publish(context.Background(), ev))
	require.Len(t, client.calls, 1)
	assert.Equal(t, "postured/events/posture", client.calls[0].topic)
	assert.Equal(t, byte(1), client.calls[0].qos)
	var got types.Event
	require.NoError(t, json.Unmarshal(client.calls[0].payload, &got))
	assert.Equal(t, types.PostureLeaning, got.Posture)

	client.err = errors.New("not connected")
	assert.Error(t, s.Publish(context.Background(), ev))
	assert.Equal(t, "mqtt", s.Name())
	require.NoError(t, s.Close())
	assert.True(t, client.disconnected)
}

type fakeRedis struct {
	args   []*redis.XAddArgs
	err    error
	closed bool
}

func (r *fakeRedis) XAdd(_ context.Context, a *redis.XAddArgs) *redis.StringCmd {
	r.args = append(r.args, a)
	return redis.NewStringResult("1-0", r.err)
}

func (r *fakeRedis) Close() error {
	r.closed = true
	return nil
}

func TestRedisSink_Publish(t *testing.T) {
	client := &fakeRedis{}
	s := newRedisSink(client, RedisConfig{Stream: "postured:events", MaxLen: 100})
	ev := ErrorEvent(types.CodeDetection, "Posture detection error: x", time.Unix(10, 0))
	require.NoError(t, s.Publish(context.Background(), ev))
	require.Len(t, client.args, 1)
	a := client.args[0]
	assert.Equal(t, "postured:events", a.Stream)
	assert.Equal(t, int64(100), a.MaxLen)
	assert.True(t, a.Approx)
	values, ok := a.Values.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", values["type"])
	assert.Equal(t, "3", values["code"])
	var got types.Event
	require.NoError(t, json.Unmarshal([]byte(values["data"].(string)), &got))
	assert.Equal(t, ev.Message, got.Message)

	unbounded := newRedisSink(client, RedisConfig{Stream: "s"})
	require.NoError(t, unbounded.Publish(context.Background(), ev))
	assert.Zero(t, client.args[1].MaxLen)

	client.err = errors.New("READONLY")
	assert.Error(t, s.Publish(context.Background(), ev))
	require.NoError(t, s.Close())
	assert.True(t, client.closed)
}
