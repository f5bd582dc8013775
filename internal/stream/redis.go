package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"postured/pkg/types"
)

// RedisConfig configures the Redis Streams sink.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	// MaxLen caps the stream length approximately; zero means unbounded.
	MaxLen  int64
	Timeout time.Duration
}

// streamAdder is the subset of *redis.Client used by the sink.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisSink appends events to a Redis stream.
type RedisSink struct {
	client  streamAdder
	stream  string
	maxLen  int64
	timeout time.Duration
}

// NewRedisSink connects to cfg.Addr and verifies the connection with PING.
func NewRedisSink(ctx context.Context, cfg RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	s := newRedisSink(client, cfg)
	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return s, nil
}

func newRedisSink(client streamAdder, cfg RedisConfig) *RedisSink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RedisSink{client: client, stream: cfg.Stream, maxLen: cfg.MaxLen, timeout: timeout}
}

func (s *RedisSink) Name() string { return "redis" }

// Publish runs XADD <stream> MAXLEN ~ <maxlen> * type <t> code <c> data <json>.
func (s *RedisSink) Publish(ctx context.Context, e types.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"type": e.Type,
			"code": strconv.Itoa(e.Code),
			"data": string(data),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.XAdd(cctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

func (s *RedisSink) Close() error { return s.client.Close() }
