package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

// profileTypes are collected whenever profiling is on.
// Upload decoding and thumbnailing dominate CPU and allocations.
var profileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// Profiler streams continuous profiles to Pyroscope.
type Profiler struct {
	profiler *pyroscope.Profiler
	stopOnce sync.Once
	stopErr  error
}

// NewProfiler starts profiling when cfg.ProfilingEnabled is set and returns
// an inert profiler otherwise.
func NewProfiler(cfg config.TelemetryConfig, logger *zap.Logger) (*Profiler, error) {
	if !cfg.ProfilingEnabled {
		return &Profiler{}, nil
	}
	if cfg.PyroscopeAddress == "" {
		return nil, errors.New("profiling enabled without a pyroscope address")
	}

	tags := map[string]string{"service_version": ServiceVersion}
	if host, err := os.Hostname(); err == nil {
		tags["hostname"] = host
	}

	prof, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.PyroscopeAddress,
		Logger:          pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:            tags,
		ProfileTypes:    profileTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope: %w", err)
	}

	logger.Info("Profiling started", zap.String("pyroscope", cfg.PyroscopeAddress))
	return &Profiler{profiler: prof}, nil
}

// Stop flushes the last profiles. Later calls return the first result.
func (p *Profiler) Stop() error {
	p.stopOnce.Do(func() {
		if p.profiler != nil {
			p.stopErr = p.profiler.Stop()
		}
	})
	return p.stopErr
}

func (p *Profiler) IsEnabled() bool {
	return p.profiler != nil
}

// pyroscopeLogger adapts zap to pyroscope.Logger
type pyroscopeLogger struct {
	s *zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
