package tmrun

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/miko-misa/typmark/pkg/typmark"
)

// Runner orchestrates multi-file rendering using pkg/typmark.Parse.
//
// TypMark has no in-place file rewriting, so there is no per-file pipeline
// or write-back locking to hold onto. Run calls typmark.Parse directly
// per file instead.
type Runner struct{}

// New creates a new Runner.
func New() *Runner {
	return &Runner{}
}

// Run discovers files under opts.Paths and renders them concurrently.
// It returns a deterministic collection of FileOutcome values and aggregate stats.
//
// The runner:
//   - Discovers files matching the options criteria
//   - Renders files concurrently using a worker pool
//   - Aggregates results into a single Result with statistics
//   - Respects context cancellation
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: newStats(),
	}
	result.Stats.FilesDiscovered = len(files)

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(files) {
		jobs = len(files)
	}

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup

	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, opts.Parse)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))

	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// worker reads files from workCh, parses/emits them, and sends outcomes to outCh.
func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- FileOutcome,
	parseOpts typmark.ParseOptions,
) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := FileOutcome{Path: path}

		source, err := os.ReadFile(path)
		if err != nil {
			outcome.Error = fmt.Errorf("read %s: %w", path, err)
		} else {
			outcome.Source = source
			res := typmark.Parse(source, parseOpts)
			outcome.Result = &res
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}
