package batch

import (
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// ItemReport is the finalized outcome of one image. Exactly one of Analysis
// and Err is set; timing and memory samples are present either way.
type ItemReport struct {
	Path      string
	Duration  time.Duration
	MemBefore uint64
	MemAfter  uint64
	Analysis  string // raw model output; usually follows the requested schema
	Err       error
}

// Failed reports whether inference failed for this image.
func (r ItemReport) Failed() bool { return r.Err != nil }

// Summary holds the once-per-batch measurements and the outcome tallies.
type Summary struct {
	Backend        string
	ModelSize      uint64
	ModelSizeKnown bool
	LoadDuration   time.Duration
	InitialMem     uint64
	Succeeded      int
	Failed         int
}

var (
	boldSpan  = regexp.MustCompile(`\*\*(.*?)\*\*`)
	boldStyle = lipgloss.NewStyle().Bold(true)
)

// renderMarkdownBold turns **bold** spans of the model output into styled
// terminal text. No other markdown is interpreted.
func renderMarkdownBold(text string) string {
	return boldSpan.ReplaceAllStringFunc(text, func(m string) string {
		return boldStyle.Render(m[2 : len(m)-2])
	})
}

const itemSeparator = "---------------------------------------------------------------"

func writeSummary(w io.Writer, s Summary) {
	if s.ModelSizeKnown {
		fmt.Fprintf(w, "Model size on disk: %s\n", humanize.IBytes(s.ModelSize))
	} else {
		fmt.Fprintln(w, "Model size on disk: unknown")
	}
	fmt.Fprintf(w, "Model loaded in %.2f seconds.\n", s.LoadDuration.Seconds())
	fmt.Fprintf(w, "Initial memory usage: %s\n\n", humanize.IBytes(s.InitialMem))
}

func writeItemReport(w io.Writer, r ItemReport) {
	if r.Failed() {
		fmt.Fprintf(w, "Error processing %s: %v (in %.2f seconds)\n", r.Path, r.Err, r.Duration.Seconds())
	} else {
		fmt.Fprintf(w, "---\nImage Name: %s\n\nLLM Inference:\n%s\n\nInference Time: %.2f seconds\n", r.Path, renderMarkdownBold(r.Analysis), r.Duration.Seconds())
	}
	fmt.Fprintf(w, "Memory usage before inference: %s\n", humanize.IBytes(r.MemBefore))
	fmt.Fprintf(w, "Memory usage after inference: %s\n---\n\n", humanize.IBytes(r.MemAfter))
	if !r.Failed() {
		fmt.Fprintf(w, "%s\n\n", itemSeparator)
	}
}
