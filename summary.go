package timedwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

// IterationResult describes a single timed write.
type IterationResult struct {
	Index     int
	Requested int
	Written   int
	Wall      time.Duration
	User      time.Duration
	System    time.Duration
	Err       error
}

// Failed reports whether the write returned an error.
func (r IterationResult) Failed() bool {
	return r.Err != nil
}

// Short reports a write that succeeded with fewer bytes than requested.
// A failed write is never short.
func (r IterationResult) Short() bool {
	return r.Err == nil && r.Written != r.Requested
}

// Summary aggregates the iterations of a run.
type Summary struct {
	Attempts     int
	Failures     int
	ShortWrites  int
	BytesWritten int64
	MinWall      time.Duration
	MaxWall      time.Duration
	TotalWall    time.Duration
	TotalUser    time.Duration
	TotalSystem  time.Duration
}

func (s *Summary) add(r IterationResult) {
	if s.Attempts == 0 || r.Wall < s.MinWall {
		s.MinWall = r.Wall
	}
	if r.Wall > s.MaxWall {
		s.MaxWall = r.Wall
	}
	s.Attempts++
	s.TotalWall += r.Wall
	s.TotalUser += r.User
	s.TotalSystem += r.System
	s.BytesWritten += int64(r.Written)
	if r.Failed() {
		s.Failures++
	}
	if r.Short() {
		s.ShortWrites++
	}
}

// AvgWall returns the mean wall clock time of a write.
func (s *Summary) AvgWall() time.Duration {
	if s.Attempts == 0 {
		return 0
	}
	return s.TotalWall / time.Duration(s.Attempts)
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.4f", d.Seconds())
}

// Render prints the summary as a table to w.
func (s *Summary) Render(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Writes", "Failed", "Short", "Bytes", "Wall min", "Wall avg", "Wall max", "User", "Sys")
	err := table.Append(
		strconv.Itoa(s.Attempts),
		strconv.Itoa(s.Failures),
		strconv.Itoa(s.ShortWrites),
		strconv.FormatInt(s.BytesWritten, 10),
		seconds(s.MinWall),
		seconds(s.AvgWall()),
		seconds(s.MaxWall),
		seconds(s.TotalUser),
		seconds(s.TotalSystem),
	)
	if err != nil {
		return fmt.Errorf("failed to append summary row: %w", err)
	}

	fmt.Fprintln(w)
	return table.Render()
}
