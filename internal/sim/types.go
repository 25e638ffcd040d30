package sim

import (
	"time"

	"github.com/san-kum/mdsim/internal/md"
)

const DefaultInterval = 100

// ProgressSink is told about every recorded step. Implementations must be
// cheap; they run on the simulation goroutine.
type ProgressSink interface {
	Progress(step int)
}

// NopProgress discards progress reports.
type NopProgress struct{}

func (NopProgress) Progress(int) {}

// ObserverFunc adapts a function to md.Observer.
type ObserverFunc func(step int, pos md.Coords)

func (f ObserverFunc) OnFrame(step int, pos md.Coords) { f(step, pos) }

type Result struct {
	StepsTaken int
	Frames     int
	Metrics    map[string]float64
	Elapsed    time.Duration
}

type Option func(*Simulator) error

// WithInterval sets how many steps separate two recorded frames.
func WithInterval(k int) Option {
	return func(s *Simulator) error {
		if k <= 0 {
			return md.Configf("interval must be positive, got %d", k)
		}
		s.interval = k
		return nil
	}
}

func WithObserver(o md.Observer) Option {
	return func(s *Simulator) error {
		s.observers = append(s.observers, o)
		return nil
	}
}

func WithMetric(m md.Metric) Option {
	return func(s *Simulator) error {
		s.metrics = append(s.metrics, m)
		return nil
	}
}

func WithProgress(p ProgressSink) Option {
	return func(s *Simulator) error {
		if p == nil {
			p = NopProgress{}
		}
		s.progress = p
		return nil
	}
}
