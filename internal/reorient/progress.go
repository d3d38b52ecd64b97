package reorient

import (
	"fmt"
	"io"
	"time"
)

// Progress receives batch progress. Implementations need not be safe for concurrent use.
type Progress interface {
	Start(total int, message string)
	Advance(n int)
	End()
}

// NopProgress discards progress.
type NopProgress struct{}

func (NopProgress) Start(int, string) {}
func (NopProgress) Advance(int)       {}
func (NopProgress) End()              {}

// ConsoleProgress prints "[done/total]" lines to a writer.
type ConsoleProgress struct {
	W io.Writer

	total int
	done  int
	start time.Time
}

func NewConsoleProgress(w io.Writer) *ConsoleProgress {
	return &ConsoleProgress{W: w}
}

func (p *ConsoleProgress) Start(total int, message string) {
	p.total, p.done, p.start = total, 0, time.Now()
	fmt.Fprintf(p.W, "%s (%d)\n", message, total)
}

func (p *ConsoleProgress) Advance(n int) {
	p.done += n
	fmt.Fprintf(p.W, "  [%d/%d]\n", p.done, p.total)
}

func (p *ConsoleProgress) End() {
	fmt.Fprintf(p.W, "  done %d/%d in %v\n", p.done, p.total, time.Since(p.start).Round(time.Millisecond))
}
