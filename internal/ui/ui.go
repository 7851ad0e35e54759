// Package ui renders human-readable command output on stderr.
package ui

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/mnoda/pkg/mnoda"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	green  = "\033[32m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

type Printer struct {
	w io.Writer
}

// New returns a Printer writing to stderr.
func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewWriter returns a Printer writing to w.
func NewWriter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Error prints msg as a failure.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, red+bold+"error: "+reset+"%s\n", msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, dim+"%s"+reset+"\n", msg)
}

// Valid reports a document that loaded cleanly.
func (p *Printer) Valid(path string, records, relationships int) {
	fmt.Fprintf(p.w, green+"✓ %s"+reset+dim+" (%s, %s)"+reset+"\n",
		path, plural(records, "record"), plural(relationships, "relationship"))
}

// Invalid reports a document that failed to load.
func (p *Printer) Invalid(path string, err error) {
	fmt.Fprintf(p.w, red+bold+"✗ %s"+reset+": %v\n", path, err)
}

// Removed reports a watched document that disappeared.
func (p *Printer) Removed(path string) {
	fmt.Fprintf(p.w, yellow+"- %s"+reset+dim+" removed"+reset+"\n", path)
}

// Converted reports a finished format conversion.
func (p *Printer) Converted(in, out string, size int64) {
	fmt.Fprintf(p.w, green+"✓"+reset+" %s → %s "+dim+"(%s)"+reset+"\n", in, out, humanize.IBytes(uint64(size)))
}

// Saved reports a newly written document.
func (p *Printer) Saved(path string, id mnoda.ID) {
	fmt.Fprintf(p.w, green+"✓"+reset+" wrote %s "+dim+"(%s id %s)"+reset+"\n", path, id.Scope, id.Name)
}

// InspectData summarizes a document for Inspect.
type InspectData struct {
	Path          string
	Format        string
	Size          int64
	ModTime       time.Time
	Types         map[string]int // Record count per type
	Relationships int
}

// Inspect prints a document summary.
func (p *Printer) Inspect(d InspectData) {
	fmt.Fprintf(p.w, bold+cyan+"%s"+reset+"\n", d.Path)
	fmt.Fprintf(p.w, "  format:        %s\n", d.Format)
	fmt.Fprintf(p.w, "  size:          %s\n", humanize.IBytes(uint64(d.Size)))
	if !d.ModTime.IsZero() {
		fmt.Fprintf(p.w, "  modified:      %s\n", humanize.Time(d.ModTime))
	}
	total := 0
	for _, n := range d.Types {
		total += n
	}
	fmt.Fprintf(p.w, "  records:       %s\n", humanize.Comma(int64(total)))
	for _, typ := range slices.Sorted(maps.Keys(d.Types)) {
		fmt.Fprintf(p.w, "    %-12s %s\n", typ, humanize.Comma(int64(d.Types[typ])))
	}
	fmt.Fprintf(p.w, "  relationships: %s\n", humanize.Comma(int64(d.Relationships)))
}

// Diff prints the result of comparing a and b.
func (p *Printer) Diff(a, b, diff string) {
	if diff == "" {
		fmt.Fprintf(p.w, green+"✓ %s and %s are identical"+reset+"\n", a, b)
		return
	}
	fmt.Fprintf(p.w, yellow+bold+"⚠ %s and %s differ"+reset+dim+" (-%s +%s)"+reset+"\n", a, b, a, b)
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		color := ""
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "-"):
			color = red
		case strings.HasPrefix(strings.TrimSpace(line), "+"):
			color = green
		}
		if color == "" {
			fmt.Fprintln(p.w, line)
			continue
		}
		fmt.Fprintln(p.w, color+line+reset)
	}
}

// IDs prints a list of archived record IDs.
func (p *Printer) IDs(ids []mnoda.ID) {
	if len(ids) == 0 {
		fmt.Fprintln(p.w, dim+"archive is empty"+reset)
		return
	}
	for _, id := range ids {
		fmt.Fprintf(p.w, "%-40s "+dim+"%s"+reset+"\n", id.Name, id.Scope)
	}
	fmt.Fprintf(p.w, dim+"%s"+reset+"\n", plural(len(ids), "record"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
