package timedwriter

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultInterval   = 5 * time.Second
	MinInterval       = 1 * time.Second
	MaxInterval       = 60 * 60 * time.Second
	MaxIterations     = 666
	DefaultFailMax    = 5
	MaxFailMax        = 100
	MaxBlockSize      = 1024 * 1024 * 32
	DefaultBlockSize  = 0
	DefaultIterations = MaxIterations
)

var (
	ErrMissingFileName   = errors.New("missing file name")
	ErrInvalidInterval   = errors.New("invalid sleep time")
	ErrInvalidIterations = errors.New("invalid max iterations")
	ErrInvalidFailMax    = errors.New("invalid max consecutive write failures")
	ErrInvalidBlockSize  = errors.New("invalid write block size")
)

// Config holds the parameters of a single run. It is not modified once a
// TimedWriter has been created from it.
type Config struct {
	FileName      string
	Interval      time.Duration
	Iterations    int
	FailMax       int // 0 means unlimited
	BlockSize     int // 0 means write the iteration index line
	ExclusiveLock bool
}

// DefaultConfig returns the configuration used when no option overrides it.
func DefaultConfig(fileName string) Config {
	return Config{
		FileName:   fileName,
		Interval:   DefaultInterval,
		Iterations: DefaultIterations,
		FailMax:    DefaultFailMax,
		BlockSize:  DefaultBlockSize,
	}
}

// Validate range-checks every field and returns the first violation.
func (c Config) Validate() error {
	if c.Interval < MinInterval || c.Interval > MaxInterval {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, int64(c.Interval/time.Second))
	}
	if c.Iterations <= 0 || c.Iterations > MaxIterations {
		return fmt.Errorf("%w: %d", ErrInvalidIterations, c.Iterations)
	}
	if c.FailMax < 0 || c.FailMax > MaxFailMax {
		return fmt.Errorf("%w: %d", ErrInvalidFailMax, c.FailMax)
	}
	if c.BlockSize < 0 || c.BlockSize > MaxBlockSize {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, c.BlockSize)
	}
	if c.FileName == "" {
		return ErrMissingFileName
	}
	return nil
}
