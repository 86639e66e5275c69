package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StreamPrefix namespaces metric streams, one per measurement.
const StreamPrefix = "metrics:"

const (
	defaultStreamBuffer       = 1024
	defaultStreamWriteTimeout = 2 * time.Second
)

// StreamAdder is the part of the go-redis client the sink needs.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamSink appends each point to a capped Redis stream. Points are
// queued and written by a background goroutine; a full queue drops the point.
type RedisStreamSink struct {
	client       StreamAdder
	maxLen       int64
	writeTimeout time.Duration
	logger       *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan *redis.XAddArgs
	done   chan struct{}
}

// NewRedisStreamSink returns a sink trimming streams to roughly maxLen entries.
func NewRedisStreamSink(client StreamAdder, maxLen int64, logger *zap.Logger) *RedisStreamSink {
	return newRedisStreamSink(client, maxLen, logger, defaultStreamBuffer, defaultStreamWriteTimeout)
}

func newRedisStreamSink(client StreamAdder, maxLen int64, logger *zap.Logger, buffer int, writeTimeout time.Duration) *RedisStreamSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RedisStreamSink{
		client:       client,
		maxLen:       maxLen,
		writeTimeout: writeTimeout,
		logger:       logger,
		queue:        make(chan *redis.XAddArgs, buffer),
		done:         make(chan struct{}),
	}
	go s.run()
	return s
}

// Write enqueues the point and returns immediately.
func (s *RedisStreamSink) Write(_ context.Context, measurement string, tags map[string]string, fields map[string]any) error {
	args := streamArgs(measurement, tags, fields, s.maxLen, time.Now().UTC())

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.queue <- args:
	default:
		s.logger.Warn("metrics stream queue full; dropping point", zap.String("measurement", measurement))
	}
	return nil
}

func (s *RedisStreamSink) run() {
	defer close(s.done)
	for args := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
		if err := s.client.XAdd(ctx, args).Err(); err != nil {
			s.logger.Warn("metrics stream write failed", zap.String("stream", args.Stream), zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting points and waits for queued ones to be written.
// The client itself is owned by persistence.Redis.
func (s *RedisStreamSink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
	return nil
}

func streamArgs(measurement string, tags map[string]string, fields map[string]any, maxLen int64, ts time.Time) *redis.XAddArgs {
	values := make(map[string]interface{}, len(tags)+len(fields)+1)
	for k, v := range tags {
		values["tag."+k] = v
	}
	for k, v := range fields {
		values[k] = v
	}
	values["ts"] = ts.Format(time.RFC3339Nano)

	args := &redis.XAddArgs{
		Stream: StreamPrefix + measurement,
		Values: values,
	}
	if maxLen > 0 {
		args.MaxLen = maxLen
		args.Approx = true
	}
	return args
}
