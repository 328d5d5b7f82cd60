package hatanaka

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/crxkit/crinex/errs"
	"github.com/crxkit/crinex/internal/options"
)

// DefaultOrder is the re-initialization order the compressor uses unless
// configured otherwise; 3 is what the historical tooling hardcodes.
const DefaultOrder = 3

type sessionConfig struct {
	maxOrder     int
	defaultOrder int
	pruneAfter   int
	logger       logrus.FieldLogger
}

// Option configures a Compressor or Decompressor session.
type Option = options.Option[*sessionConfig]

func newSessionConfig() *sessionConfig {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &sessionConfig{
		maxOrder:     MaxOrder,
		defaultOrder: DefaultOrder,
		logger:       logger,
	}
}

func applySessionOptions(cfg *sessionConfig, opts []Option) error {
	if err := options.Apply(cfg, opts...); err != nil {
		return err
	}
	if cfg.defaultOrder > cfg.maxOrder {
		return fmt.Errorf("%w: default order %d exceeds max order %d",
			errs.ErrInvalidConfig, cfg.defaultOrder, cfg.maxOrder)
	}

	return nil
}

// WithMaxOrder caps the compression order the session accepts, 1..MaxOrder.
// Re-initialization tokens requesting a higher order fail that field with
// ErrOrderTooLarge.
func WithMaxOrder(order int) Option {
	return options.New(func(cfg *sessionConfig) error {
		if order < 1 || order > MaxOrder {
			return fmt.Errorf("%w: max order %d not in 1..%d", errs.ErrInvalidConfig, order, MaxOrder)
		}
		cfg.maxOrder = order

		return nil
	})
}

// WithDefaultOrder sets the order the compressor re-initializes fields to.
func WithDefaultOrder(order int) Option {
	return options.New(func(cfg *sessionConfig) error {
		if order < 0 || order > MaxOrder {
			return fmt.Errorf("%w: default order %d not in 0..%d", errs.ErrInvalidConfig, order, MaxOrder)
		}
		cfg.defaultOrder = order

		return nil
	})
}

// WithPruneAfter drops a satellite's kernels once it has been absent for
// more than the given number of consecutive epochs. Zero (the default)
// disables pruning.
func WithPruneAfter(epochs int) Option {
	return options.New(func(cfg *sessionConfig) error {
		if epochs < 0 {
			return fmt.Errorf("%w: prune window %d is negative", errs.ErrInvalidConfig, epochs)
		}
		cfg.pruneAfter = epochs

		return nil
	})
}

// WithLogger routes per-field diagnostics to the given logger. The default
// logger discards everything.
func WithLogger(logger logrus.FieldLogger) Option {
	return options.New(func(cfg *sessionConfig) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", errs.ErrInvalidConfig)
		}
		cfg.logger = logger

		return nil
	})
}
