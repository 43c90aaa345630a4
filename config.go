package depot

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultGrowthFactor    = 1.5
	DefaultInitialCapacity = 10
)

// Config holds the global defaults applied to storages created by Factory.NewStorage
var Config config = config{
	growthFactor:    DefaultGrowthFactor,
	initialCapacity: DefaultInitialCapacity,
}

type config struct {
	growthFactor    float64
	initialCapacity int
	logger          *zap.Logger
	defaultOnce     sync.Once
	defaultLogger   *zap.Logger
}

// Options overrides the global Config for a single storage
type Options struct {
	GrowthFactor    float64
	InitialCapacity int
	Logger          *zap.Logger
}

// SetLogger sets the logger used for warnings and fatal errors
func (c *config) SetLogger(l *zap.Logger) {
	c.logger = l
}

// SetGrowthFactor sets the default growth factor of new component types
func (c *config) SetGrowthFactor(f float64) error {
	if f <= 1 {
		return GrowthFactorError{Factor: f}
	}
	c.growthFactor = f
	return nil
}

// SetInitialCapacity sets the default slot capacity of new component types
func (c *config) SetInitialCapacity(n int) {
	if n < 0 {
		n = 0
	}
	c.initialCapacity = n
}

// Logger returns the configured logger, building the default one on first use
func (c *config) Logger() *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	c.defaultOnce.Do(func() {
		cfg := zap.Config{
			Level:            zap.NewAtomicLevelAt(zapcore.WarnLevel),
			Development:      false,
			Encoding:         "json",
			EncoderConfig:    zap.NewProductionEncoderConfig(),
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
			DisableCaller:    true,
		}
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		c.defaultLogger = l.Named("depot")
	})
	return c.defaultLogger
}

func (o Options) withDefaults() Options {
	if o.GrowthFactor <= 1 {
		o.GrowthFactor = Config.growthFactor
	}
	if o.InitialCapacity <= 0 {
		o.InitialCapacity = Config.initialCapacity
	}
	if o.Logger == nil {
		o.Logger = Config.Logger()
	}
	return o
}
