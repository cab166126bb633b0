package timedwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/romosch/timedwriter/internal/mountinfo"
)

// reporter prints the human readable status lines of a run. Nothing it
// writes is meant to be parsed.
type reporter struct {
	out    io.Writer
	errOut io.Writer
	fail   *color.Color
	warn   *color.Color
}

func newReporter(out, errOut io.Writer) *reporter {
	return &reporter{
		out:    out,
		errOut: errOut,
		fail:   colorFor(errOut, color.FgRed),
		warn:   colorFor(out, color.FgYellow),
	}
}

// colorFor returns a colour that is disabled unless w is a terminal.
// color.NoColor only looks at stdout, which says nothing about a
// redirected stderr.
func colorFor(w io.Writer, attr color.Attribute) *color.Color {
	c := color.New(attr)
	if !isTerminal(w) {
		c.DisableColor()
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (r *reporter) header(cfg Config) {
	fmt.Fprintf(r.out, "Filename: %s\n", cfg.FileName)
	fmt.Fprintf(r.out, "Exclusive lock: %s\n", onOff(cfg.ExclusiveLock))
	fmt.Fprintf(r.out, "Sleep after each write: %d\n", int64(cfg.Interval/time.Second))
	fmt.Fprintf(r.out, "Max iterations: %d\n", cfg.Iterations)
	fmt.Fprintf(r.out, "Max consecutive write fails: %d\n", cfg.FailMax)
	fmt.Fprintf(r.out, "Write size: %d\n", cfg.BlockSize)
}

func (r *reporter) filesystem(m *mountinfo.Mount) {
	fmt.Fprintf(r.out, "Filesystem: %s on %s (%s)\n", m.Type, m.Path, m.Device)
}

func (r *reporter) openFailed(name string, err error) {
	_, _ = r.fail.Fprintf(r.errOut, "Unable to open %s : open returned %s\n", name, describeErrno(err))
}

func (r *reporter) lockFailed(name string, err error) {
	_, _ = r.fail.Fprintf(r.errOut, "Unable to place lock on %s : flock returned %s\n", name, describeErrno(err))
}

func (r *reporter) writing(iter, size int) {
	fmt.Fprintf(r.out, "\nWriting sequence %d (%d bytes)\n", iter, size)
}

func (r *reporter) writeFailed(err error) {
	_, _ = r.fail.Fprintf(r.errOut, "write failed with errno %s\n", describeErrno(err))
}

func (r *reporter) failCap(failMax int) {
	_, _ = r.fail.Fprintf(r.errOut, "Reached max failcount (%d) ... bye!\n", failMax)
}

func (r *reporter) shortWrite(written, requested int) {
	_, _ = r.warn.Fprintf(r.out, "write returned %d instead of %d. Interrupted?!!\n", written, requested)
}

func (r *reporter) timing(res IterationResult) {
	fmt.Fprintf(r.out, "write took approx %.2f seconds (user: %.2f; sys: %.2f)\n",
		res.Wall.Seconds(),
		res.User.Seconds(),
		res.System.Seconds())
}
