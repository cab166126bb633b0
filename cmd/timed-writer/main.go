package main

import (
	"errors"
	goflag "flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/romosch/timedwriter"
	"github.com/romosch/timedwriter/internal/version"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"
)

func usage(w io.Writer, prog string) {
	fmt.Fprintf(w, "Usage: %s [-s SLEEP] [-c MAX_ITER] [-f MAX_FAIL] [-b BLOCK_SIZE] [-l] FILENAME\n", prog)
	fmt.Fprintf(w, "       %s -h\n", prog)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Writes a line to FILENAME with SLEEP seconds between writes")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "        -s SLEEP      : seconds sleep after each iteration (default: %d; bounds: [%d, %d])\n",
		int(timedwriter.DefaultInterval/time.Second),
		int(timedwriter.MinInterval/time.Second),
		int(timedwriter.MaxInterval/time.Second))
	fmt.Fprintf(w, "        -c MAX_ITER   : limit iterations to MAX_ITER (def: %d)\n", timedwriter.MaxIterations)
	fmt.Fprintf(w, "        -f MAX_FAIL   : limit consecutive write failures to MAX_FAIL <= %d (def: %d; inf: 0)\n",
		timedwriter.MaxFailMax,
		timedwriter.DefaultFailMax)
	fmt.Fprintf(w, "        -b BLOCK_SIZE : set write size to BLOCK_SIZE <= %d (def: 0)\n", timedwriter.MaxBlockSize)
	fmt.Fprintf(w, "                        0 writes iteration's \"%%d\\n\"\n")
	fmt.Fprintln(w, "        -l            : place LOCK_EX on FILENAME")
	fmt.Fprintln(w, "        -v LEVEL      : klog verbosity, 2 traces open, lock and buffer setup")
	fmt.Fprintln(w, "        --version     : print version and exit")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Example: %s /mnt/myfile.txt\n", prog)
	fmt.Fprintf(w, "         %s -s 5 -c 100 -l /mnt/myexclusive.txt\n", prog)
	fmt.Fprintf(w, "         %s -s 1 -c 10 -f 2 -b $((1024*1024)) -l /mnt/megwrite.txt\n", prog)
	fmt.Fprintln(w)
}

// run parses args (args[0] being the program name), performs the timed
// writes and returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	prog := filepath.Base(args[0])

	fs := pflag.NewFlagSet(prog, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	// Numeric values are taken as strings and parsed as decimal below;
	// pflag's Int would also accept 0x and leading-zero octal forms.
	sleepArg := fs.StringP("sleep", "s", strconv.Itoa(int(timedwriter.DefaultInterval/time.Second)), "seconds sleep after each iteration")
	countArg := fs.StringP("count", "c", strconv.Itoa(timedwriter.DefaultIterations), "limit iterations to MAX_ITER")
	failMaxArg := fs.StringP("max-fail", "f", strconv.Itoa(timedwriter.DefaultFailMax), "limit consecutive write failures (0: unlimited)")
	blockSizeArg := fs.StringP("block-size", "b", strconv.Itoa(timedwriter.DefaultBlockSize), "write size in bytes (0: iteration index line)")
	lock := fs.BoolP("lock", "l", false, "place LOCK_EX on FILENAME")
	fs.BoolP("help", "h", false, "print usage and exit")
	showVersion := fs.Bool("version", false, "print version and exit")

	klogFlags := goflag.NewFlagSet(prog, goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	fs.AddGoFlag(klogFlags.Lookup("v"))

	if helpRequested(fs, args[1:]) {
		usage(stdout, prog)
		return 0
	}

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintf(stderr, "%v\nCommand line gibberish, try -h\n", err)
		return 1
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s version %s\n", prog, version.FullVersion())
		return 0
	}

	var sleep, count, failMax, blockSize int
	for _, v := range []struct {
		raw     string
		dst     *int
		invalid error
	}{
		{*sleepArg, &sleep, timedwriter.ErrInvalidInterval},
		{*countArg, &count, timedwriter.ErrInvalidIterations},
		{*failMaxArg, &failMax, timedwriter.ErrInvalidFailMax},
		{*blockSizeArg, &blockSize, timedwriter.ErrInvalidBlockSize},
	} {
		n, err := strconv.Atoi(v.raw)
		if err != nil {
			fmt.Fprintf(stderr, "%v: %s\n", v.invalid, v.raw)
			return 1
		}
		*v.dst = n
	}

	// Checked here as well so huge values cannot wrap around once
	// converted to a time.Duration.
	if sleep < int(timedwriter.MinInterval/time.Second) || sleep > int(timedwriter.MaxInterval/time.Second) {
		fmt.Fprintf(stderr, "%v: %d\n", timedwriter.ErrInvalidInterval, sleep)
		return 1
	}

	options := []timedwriter.Option{
		timedwriter.WithInterval(time.Duration(sleep) * time.Second),
		timedwriter.WithIterations(count),
		timedwriter.WithFailMax(failMax),
		timedwriter.WithBlockSize(blockSize),
		timedwriter.WithOutput(stdout, stderr),
	}
	if *lock {
		options = append(options, timedwriter.WithExclusiveLock())
	}

	// Option values are reported before the positional argument count.
	w, err := timedwriter.New(fs.Arg(0), options...)
	if err != nil && !errors.Is(err, timedwriter.ErrMissingFileName) {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Expecting one, and only one, FILENAME")
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	summary, err := w.Run()
	if err != nil {
		klog.V(2).Infof("run failed: %v", err)
		return 1
	}

	if err := summary.Render(stdout); err != nil {
		fmt.Fprintf(stderr, "failed to render summary: %v\n", err)
	}

	return 0
}

// helpRequested reports whether -h or --help appears among args before a
// "--" terminator, without treating the value of a flag as a flag. Help wins
// over every other parse or range error.
func helpRequested(fs *pflag.FlagSet, args []string) bool {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return false
		case arg == "--help":
			return true
		case strings.HasPrefix(arg, "--"):
			name := arg[2:]
			if !strings.Contains(name, "=") && takesValue(fs.Lookup(name)) {
				i++
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			for j := 1; j < len(arg); j++ {
				if arg[j] == 'h' {
					return true
				}
				if takesValue(fs.ShorthandLookup(arg[j : j+1])) {
					if j == len(arg)-1 {
						i++
					}
					break
				}
			}
		}
	}
	return false
}

func takesValue(f *pflag.Flag) bool {
	return f != nil && f.NoOptDefVal == ""
}

func main() {
	code := run(os.Args, os.Stdout, os.Stderr)
	klog.Flush()
	os.Exit(code)
}
