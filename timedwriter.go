package timedwriter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/romosch/timedwriter/internal/mountinfo"
	"k8s.io/klog/v2"
)

var (
	ErrOpen    = errors.New("unable to open")
	ErrLock    = errors.New("unable to lock")
	ErrFailCap = errors.New("reached max consecutive write failures")
)

// TimedWriter writes a block to a file every so many seconds and reports
// how long each write took.
type TimedWriter struct {
	cfg    Config
	out    io.Writer
	errOut io.Writer
	report *reporter
	mounts *mountinfo.Resolver

	openFile  func(name string) (File, error)
	writeFile func(f File, p []byte) (int, error)
	sleep     func(time.Duration)
}

// Config returns the validated configuration of the writer.
func (w *TimedWriter) Config() Config {
	return w.cfg
}

// Run opens (and optionally locks) the target file and performs the
// configured number of timed writes, sleeping between them.
//
// A failed write is reported and the run carries on. Only when FailMax
// consecutive writes fail does Run stop early, returning an error wrapping
// ErrFailCap. Open and lock failures return errors wrapping ErrOpen and
// ErrLock before anything is written. The returned summary covers every
// attempted write and is nil when nothing was attempted.
func (w *TimedWriter) Run() (*Summary, error) {
	cfg := w.cfg
	w.report.header(cfg)

	f, err := w.openFile(cfg.FileName)
	if err != nil {
		w.report.openFailed(cfg.FileName, err)
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, cfg.FileName, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			klog.Warningf("failed to close %s: %v", cfg.FileName, closeErr)
		}
	}()

	if cfg.ExclusiveLock {
		klog.V(2).Infof("waiting for exclusive lock on %s", cfg.FileName)
		if err := lockExclusive(f); err != nil {
			w.report.lockFailed(cfg.FileName, err)
			return nil, fmt.Errorf("%w %s: %w", ErrLock, cfg.FileName, err)
		}
		klog.V(2).Infof("exclusive lock on %s acquired", cfg.FileName)
	}

	if m, err := w.mounts.Lookup(cfg.FileName); err != nil {
		klog.V(2).Infof("no mount information for %s: %v", cfg.FileName, err)
	} else {
		w.report.filesystem(m)
	}

	buf := newWriteBuffer(cfg.BlockSize)
	defer buf.release()
	klog.V(2).Infof("allocated %d byte write buffer", buf.size())

	summary := &Summary{}
	failures := 0

	for iter := 0; iter < cfg.Iterations; {
		res := w.writeOnce(f, buf, iter)
		summary.add(res)

		if res.Failed() {
			w.report.writeFailed(res.Err)
			if cfg.FailMax > 0 {
				failures++
				if failures == cfg.FailMax {
					w.report.failCap(cfg.FailMax)
					return summary, fmt.Errorf("%w (%d) on %s: %w", ErrFailCap, cfg.FailMax, cfg.FileName, res.Err)
				}
			}
		} else {
			failures = 0
		}
		if res.Short() {
			w.report.shortWrite(res.Written, res.Requested)
		}
		w.report.timing(res)

		if iter++; iter < cfg.Iterations {
			w.sleep(cfg.Interval)
		}
	}

	return summary, nil
}

// writeOnce stamps the buffer with iter and times a single write of it.
func (w *TimedWriter) writeOnce(f File, buf *writeBuffer, iter int) IterationResult {
	size := buf.stamp(iter)
	if w.cfg.BlockSize > 0 {
		size = w.cfg.BlockSize
	}
	w.report.writing(iter, size)

	block := buf.block(size)

	wallBefore := time.Now()
	cpuBefore, cpuErr := processCPUTime()
	n, err := w.writeFile(f, block)
	cpuAfter, cpuAfterErr := processCPUTime()
	wall := time.Since(wallBefore)

	res := IterationResult{
		Index:     iter,
		Requested: size,
		Written:   n,
		Wall:      wall,
		Err:       err,
	}
	if cpuErr == nil && cpuAfterErr == nil {
		cpu := cpuAfter.sub(cpuBefore)
		res.User = cpu.user
		res.System = cpu.system
	} else {
		klog.V(2).Infof("getrusage failed: %v", errors.Join(cpuErr, cpuAfterErr))
	}

	return res
}
