package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

var ErrInvalidOptions = errors.New("validator: invalid options")

const (
	LayoutContest     = "contest"
	LayoutInterleaved = "interleaved"
)

// Options configures one engine process. Every field can be set from the
// environment, command line flags override it.
type Options struct {
	// Workers is the size of the clause fan-out pool, 0 disables it.
	Workers int `env:"VALIDATOR_WORKERS" envDefault:"0"`
	// ParallelClauses is the minimum clause count for a fan-out.
	ParallelClauses int `env:"VALIDATOR_PARALLEL_CLAUSES" envDefault:"4"`
	// QueueCapacity is the initial pending result ring size.
	QueueCapacity uint32 `env:"VALIDATOR_QUEUE_CAPACITY" envDefault:"1024"`
	// IndexDegree is the btree degree of every version index.
	IndexDegree int `env:"VALIDATOR_INDEX_DEGREE" envDefault:"32"`
	// TxnLayout selects the transaction message layout.
	TxnLayout string `env:"VALIDATOR_TXN_LAYOUT" envDefault:"contest"`
	// StrictTxnOrder rejects transactions whose id does not increase.
	StrictTxnOrder bool   `env:"VALIDATOR_STRICT_TXN_ORDER" envDefault:"false"`
	LogLevel       string `env:"VALIDATOR_LOG_LEVEL" envDefault:"warn"`
}

func Default() Options {
	return Options{
		Workers:         0,
		ParallelClauses: 4,
		QueueCapacity:   1024,
		IndexDegree:     32,
		TxnLayout:       LayoutContest,
		LogLevel:        "warn",
	}
}

// FromEnv loads options from environment variables.
func FromEnv() (Options, error) {
	var opts Options
	if err := env.Parse(&opts); err != nil {
		return opts, fmt.Errorf("parse env: %w", err)
	}
	return opts, opts.Validate()
}

func (opts Options) Validate() error {
	if opts.Workers < 0 {
		return fmt.Errorf("workers %d: %w", opts.Workers, ErrInvalidOptions)
	}
	if opts.IndexDegree < 2 {
		return fmt.Errorf("index degree %d: %w", opts.IndexDegree, ErrInvalidOptions)
	}
	switch opts.TxnLayout {
	case LayoutContest, LayoutInterleaved:
	default:
		return fmt.Errorf("txn layout %q: %w", opts.TxnLayout, ErrInvalidOptions)
	}
	if _, err := logrus.ParseLevel(opts.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", opts.LogLevel, ErrInvalidOptions)
	}
	return nil
}

// ApplyLogLevel configures the global logger. Logs go to stderr, stdout
// carries release output.
func (opts Options) ApplyLogLevel() error {
	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("log level %q: %w", opts.LogLevel, ErrInvalidOptions)
	}
	logrus.SetLevel(level)
	return nil
}
