package timedwriter

import (
	"time"

	"golang.org/x/sys/unix"
)

// cpuTime is the user and system CPU consumed by the process so far.
type cpuTime struct {
	user   time.Duration
	system time.Duration
}

func (c cpuTime) sub(o cpuTime) cpuTime {
	return cpuTime{user: c.user - o.user, system: c.system - o.system}
}

func processCPUTime() (cpuTime, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return cpuTime{}, err
	}
	return cpuTime{
		user:   time.Duration(ru.Utime.Nano()),
		system: time.Duration(ru.Stime.Nano()),
	}, nil
}
