package tmreport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"

	"github.com/miko-misa/typmark/internal/ui/pretty"
	"github.com/miko-misa/typmark/pkg/tmrun"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *tmrun.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to render."))
		}
		return 0, nil
	}

	var total int

	for _, file := range result.Files {
		if file.Error != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(file.Path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", file.Error)),
			)
			continue
		}

		if file.Result == nil || len(file.Result.Diagnostics) == 0 {
			continue
		}

		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(file.Path, len(file.Result.Diagnostics)))

		for _, diag := range file.Result.Diagnostics {
			var sourceLine string
			if r.opts.ShowContext {
				sourceLine = getSourceLine(file.Source, diag.Range.Start.Line)
			}

			fmt.Fprint(r.bw, r.styles.FormatDiagnostic(file.Path, &diag, r.opts.ShowContext, sourceLine))
			total++
		}

		fmt.Fprintln(r.bw)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return total, nil
}

// getSourceLine extracts the 0-based lineNum-th line from source, stripping
// any trailing '\r' left by a "\r\n" split (tmspan.Map leaves it attached
// to the preceding line's content).
func getSourceLine(source []byte, lineNum int) string {
	if source == nil || lineNum < 0 {
		return ""
	}
	lines := bytes.Split(source, []byte("\n"))
	if lineNum >= len(lines) {
		return ""
	}
	return string(bytes.TrimSuffix(lines[lineNum], []byte("\r")))
}
