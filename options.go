package timedwriter

import (
	"io"
	"os"
	"time"

	"github.com/romosch/timedwriter/internal/mountinfo"
	"k8s.io/klog/v2"
	mount "k8s.io/mount-utils"
)

type Option func(*TimedWriter)

// New creates a TimedWriter for fileName. The defaults of DefaultConfig
// apply unless overridden by one of the functional options, and the
// resulting configuration is validated before it is returned.
// The file itself is not touched until Run is called.
func New(fileName string, options ...Option) (*TimedWriter, error) {
	w := &TimedWriter{
		cfg:       DefaultConfig(fileName),
		out:       os.Stdout,
		errOut:    os.Stderr,
		openFile:  openSync,
		writeFile: writeSyscall,
		sleep:     time.Sleep,
		mounts:    mountinfo.NewResolver(mount.New("")),
	}

	for _, o := range options {
		o(w)
	}

	if err := w.cfg.Validate(); err != nil {
		return nil, err
	}
	w.report = newReporter(w.out, w.errOut)

	klog.V(2).Infof("timed writer for %s configured: %+v", fileName, w.cfg)

	return w, nil
}

// WithConfig returns an option replacing every setting except the file name
// with the values in cfg.
func WithConfig(cfg Config) func(*TimedWriter) {
	return func(w *TimedWriter) {
		name := w.cfg.FileName
		w.cfg = cfg
		w.cfg.FileName = name
	}
}

// WithInterval returns an option to set the sleep between two writes.
func WithInterval(interval time.Duration) func(*TimedWriter) {
	return func(w *TimedWriter) {
		w.cfg.Interval = interval
	}
}

// WithIterations returns an option to set the number of writes to perform.
func WithIterations(iterations int) func(*TimedWriter) {
	return func(w *TimedWriter) {
		w.cfg.Iterations = iterations
	}
}

// WithFailMax returns an option to set how many consecutive write failures
// abort the run. Zero disables the limit.
func WithFailMax(failMax int) func(*TimedWriter) {
	return func(w *TimedWriter) {
		w.cfg.FailMax = failMax
	}
}

// WithBlockSize returns an option to set the size of every write in bytes.
// Zero writes the decimal iteration index followed by a newline.
func WithBlockSize(blockSize int) func(*TimedWriter) {
	return func(w *TimedWriter) {
		w.cfg.BlockSize = blockSize
	}
}

// WithExclusiveLock returns an option to hold a LOCK_EX flock on the file
// for the whole run.
func WithExclusiveLock() func(*TimedWriter) {
	return func(w *TimedWriter) {
		w.cfg.ExclusiveLock = true
	}
}

// WithOutput returns an option to redirect status lines to out and
// diagnostics to errOut.
func WithOutput(out, errOut io.Writer) func(*TimedWriter) {
	return func(w *TimedWriter) {
		w.out = out
		w.errOut = errOut
	}
}
