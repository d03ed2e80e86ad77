// Command aisdecode decodes AIVDM/AIVDO sentences into JSON lines.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

type options struct {
	workers        int
	labels         bool
	verifyChecksum bool
	files          []string
}

// summary counts what a run produced
type summary struct {
	decoded int
	failed  int
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := run(ctx, opts, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		log.Printf("Decode failed: %v", err)
		os.Exit(1)
	}
	if sum.failed > 0 {
		log.Printf("Decoded %d sentence(s), %d failed", sum.decoded, sum.failed)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("aisdecode", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&opts.workers, "workers", runtime.NumCPU(), "Number of decode workers")
	fs.BoolVar(&opts.labels, "labels", false, "Add navigation status and vessel type labels")
	fs.BoolVar(&opts.verifyChecksum, "checksum", false, "Reject sentences with a bad checksum")
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: aisdecode [flags] [file ...]\n\nReads standard input when no file is given.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.workers < 1 {
		fmt.Fprintln(output, "-workers must be at least 1")
		return opts, fmt.Errorf("invalid worker count %d", opts.workers)
	}
	opts.files = fs.Args()
	return opts, nil
}

// openInputs opens the named files, or returns stdin when there are none
func openInputs(files []string, stdin io.Reader) ([]io.Reader, func(), error) {
	if len(files) == 0 {
		return []io.Reader{stdin}, func() {}, nil
	}

	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "error closing %s: %v\n", f.Name(), err)
			}
		}
	}

	readers := make([]io.Reader, 0, len(files))
	for _, name := range files {
		if name == "-" {
			readers = append(readers, stdin)
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to open input: %w", err)
		}
		opened = append(opened, f)
		readers = append(readers, f)
	}
	return readers, closeAll, nil
}

// readLines numbers the lines of every reader in turn
func readLines(ctx context.Context, readers []io.Reader, lines chan<- Line) error {
	defer close(lines)

	seq := 0
	for _, r := range readers {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 4096), 64*1024)
		for scanner.Scan() {
			select {
			case lines <- Line{Seq: seq, Text: scanner.Text()}:
				seq++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
	return nil
}

// run decodes every input line and writes one JSON object per sentence
func run(ctx context.Context, opts options, stdin io.Reader, stdout, stderr io.Writer) (summary, error) {
	var sum summary

	readers, closeInputs, err := openInputs(opts.files, stdin)
	if err != nil {
		return sum, err
	}
	defer closeInputs()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan Line, opts.workers*4)
	readErr := make(chan error, 1)
	go func() {
		readErr <- readLines(ctx, readers, lines)
	}()

	dock := NewDock(opts.workers, opts.labels, opts.verifyChecksum)
	w := bufio.NewWriter(stdout)
	for res := range dock.Run(ctx, lines) {
		if res.Err != nil {
			sum.failed++
			fmt.Fprintf(stderr, "line %d: %v: %q\n", res.Seq+1, res.Err, res.Text)
			continue
		}
		if res.Output == nil {
			continue
		}
		if _, err := w.Write(res.Output); err != nil {
			cancel()
			return sum, fmt.Errorf("failed to write output: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			cancel()
			return sum, fmt.Errorf("failed to write output: %w", err)
		}
		sum.decoded++
	}

	if err := w.Flush(); err != nil {
		return sum, fmt.Errorf("failed to write output: %w", err)
	}
	// An interrupt ends the run like the end of input. The reader may still
	// be blocked on stdin, so do not wait for it then.
	select {
	case err := <-readErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return sum, err
		}
	case <-ctx.Done():
	}
	return sum, nil
}
