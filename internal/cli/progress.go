package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/polyast/internal/extractor"
)

// CLIProgressReporter implements extractor.Progress with progress bars.
// Everything goes to w so stdout stays clean for results.
type CLIProgressReporter struct {
	w         io.Writer
	quiet     bool
	fileBar   *progressbar.ProgressBar
	parseBar  *progressbar.ProgressBar
	startTime time.Time
	parsed    int
}

var _ extractor.Progress = (*CLIProgressReporter)(nil)

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(w io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		w:         w,
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) newBar(total int, desc, its string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(its),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.w)
		}),
	)
}

func (c *CLIProgressReporter) OnFilterComplete(kept, skipped int) {
	if c.quiet || skipped == 0 {
		return
	}
	fmt.Fprintf(c.w, "Skipping %s of %s files (path filters)\n", formatNumber(skipped), formatNumber(kept+skipped))
}

func (c *CLIProgressReporter) OnTokenizeStart(totalFiles int) {
	if c.quiet {
		return
	}
	c.fileBar = c.newBar(totalFiles, "Tokenizing files", "files/s")
}

func (c *CLIProgressReporter) OnFileTokenized(path string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnParseStart(totalCandidates int) {
	if c.quiet {
		return
	}
	// Finish any existing progress bar
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	c.parsed = 0
	c.parseBar = c.newBar(totalCandidates, "Parsing objects", "obj/s")
}

func (c *CLIProgressReporter) OnCandidateParsed(done, total int) {
	if c.quiet || c.parseBar == nil {
		return
	}
	if delta := done - c.parsed; delta > 0 {
		c.parseBar.Add(delta)
		c.parsed = done
	}
}

func (c *CLIProgressReporter) OnComplete(stats *extractor.Stats) {
	if c.quiet {
		return
	}
	if c.parseBar != nil {
		c.parseBar.Finish()
		c.parseBar = nil
	}

	fmt.Fprintf(c.w, "✓ Extraction complete: %s objects in %.1fs\n",
		formatNumber(stats.Objects), stats.Duration.Seconds())
	fmt.Fprintf(c.w, "  Functions: %s\n", formatNumber(stats.Functions))
	fmt.Fprintf(c.w, "  Variables: %s\n", formatNumber(stats.Variables))
	fmt.Fprintf(c.w, "  Lines:     %s\n", formatNumber(stats.Lines))
}

// formatNumber formats integer with thousand separators.
// Examples: 1234 -> "1,234", 1234567 -> "1,234,567"
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}
