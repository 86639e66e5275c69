package metrics

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"go.uber.org/zap"
)

// InfluxSink writes points through the non-blocking InfluxDB write API.
// Write failures surface asynchronously and are logged.
type InfluxSink struct {
	writer api.WriteAPI
	logger *zap.Logger
	done   chan struct{}
}

// NewInfluxSink binds a batching writer to org and bucket.
func NewInfluxSink(client influxdb2.Client, org, bucket string, logger *zap.Logger) *InfluxSink {
	s := &InfluxSink{
		writer: client.WriteAPI(org, bucket),
		logger: logger,
		done:   make(chan struct{}),
	}
	go s.drainErrors()
	return s
}

func (s *InfluxSink) drainErrors() {
	defer close(s.done)
	for err := range s.writer.Errors() {
		s.logger.Warn("influx write failed", zap.Error(err))
	}
}

func (s *InfluxSink) Write(_ context.Context, measurement string, tags map[string]string, fields map[string]any) error {
	s.writer.WritePoint(influxdb2.NewPoint(measurement, tags, fields, time.Now().UTC()))
	return nil
}

// Close flushes buffered points. The owning client closes the error channel.
func (s *InfluxSink) Close() error {
	s.writer.Flush()
	return nil
}
