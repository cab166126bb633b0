package timedwriter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

// File is the handle the write loop works on. *os.File satisfies it.
type File interface {
	io.Closer
	Fd() uintptr
	Name() string
}

// openSync opens fileName for writing, creating and truncating it, with
// O_SYNC so every write reaches the device before returning.
func openSync(fileName string) (File, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC | unix.O_SYNC
	klog.V(2).Infof("opening %s with flags %#x", fileName, flags)

	f, err := os.OpenFile(fileName, flags, 0666)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// writeSyscall issues exactly one write(2) of p on f. Unlike
// (*os.File).Write it does not loop on a partial write, so a short count
// comes back with a nil error.
func writeSyscall(f File, p []byte) (int, error) {
	n, err := unix.Write(int(f.Fd()), p)
	if err != nil {
		return max(n, 0), &os.PathError{Op: "write", Path: f.Name(), Err: err}
	}
	return n, nil
}

// lockExclusive blocks until a LOCK_EX flock is held on f. The lock goes
// away when f is closed.
func lockExclusive(f File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire exclusive lock on %s: %w", f.Name(), err)
	}
	return nil
}

// describeErrno renders err as "<code> (<text>)" when it carries an errno.
func describeErrno(err error) string {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return fmt.Sprintf("%d (%s)", int(errno), errno.Error())
	}
	return err.Error()
}
