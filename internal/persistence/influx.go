package persistence

import (
	"context"
	"errors"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"go.uber.org/zap"

	"github.com/Elmamis69/ticket-master-api/internal/config"
)

// Influx wraps the InfluxDB v2 client used for ticket metrics.
type Influx struct {
	Client influxdb2.Client
	Org    string
	Bucket string
}

// NewInflux creates a client when a URL is configured. The client connects
// lazily, so an unreachable server only produces a warning here.
func NewInflux(ctx context.Context, cfg config.InfluxConfig, logger *zap.Logger) *Influx {
	if cfg.URL == "" {
		logger.Warn("INFLUXDB_URL not provided; influx disabled")
		return &Influx{}
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	if ok, err := client.Ping(ctx); err != nil || !ok {
		logger.Warn("unable to reach influxdb", zap.String("url", cfg.URL), zap.Error(err))
	} else {
		logger.Info("connected to influxdb", zap.String("bucket", cfg.Bucket))
	}

	return &Influx{Client: client, Org: cfg.Org, Bucket: cfg.Bucket}
}

// Enabled reports whether a client was created.
func (i *Influx) Enabled() bool {
	return i != nil && i.Client != nil
}

// Ping verifies InfluxDB connectivity.
func (i *Influx) Ping(ctx context.Context) error {
	if !i.Enabled() {
		return errors.New("influx client not configured")
	}
	ok, err := i.Client.Ping(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("influxdb ping failed")
	}
	return nil
}

// Close flushes pending writes and releases the client.
func (i *Influx) Close() {
	if i.Enabled() {
		i.Client.Close()
	}
}
