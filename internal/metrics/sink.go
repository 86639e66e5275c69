// Package metrics writes ticket activity points to a time-series backend.
package metrics

import (
	"context"
	"sync"
)

// Sink accepts measurement points. Implementations must be safe for
// concurrent use.
type Sink interface {
	Write(ctx context.Context, measurement string, tags map[string]string, fields map[string]any) error
	Close() error
}

// NopSink drops every point.
type NopSink struct{}

func (NopSink) Write(context.Context, string, map[string]string, map[string]any) error { return nil }

func (NopSink) Close() error { return nil }

// Point is a point captured by Recorder.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]any
}

// Recorder keeps points in memory. Tests use it to assert emitted metrics.
type Recorder struct {
	mu     sync.Mutex
	points []Point
	// Err, when set, is returned from every Write after recording.
	Err error
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Write(_ context.Context, measurement string, tags map[string]string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.points = append(r.points, Point{Measurement: measurement, Tags: tags, Fields: fields})
	return r.Err
}

func (r *Recorder) Close() error { return nil }

// Points returns a copy of everything recorded so far.
func (r *Recorder) Points() []Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Point(nil), r.points...)
}

// Measurements returns the recorded points with the given name.
func (r *Recorder) Measurements(name string) []Point {
	var out []Point
	for _, p := range r.Points() {
		if p.Measurement == name {
			out = append(out, p)
		}
	}
	return out
}
