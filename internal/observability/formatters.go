// Package observability provides formatted output utilities for CLI run reports.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jonathan/aeroleads/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of skipped items listed in a summary
	maxItemsToShow = 5
)

// Printer handles formatted output for run reports
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

var summaryTitles = map[types.JobKind]string{
	types.JobProfiles: "PROFILE COLLECTION SUMMARY",
	types.JobCalls:    "CALL DISPATCH SUMMARY",
	types.JobArticles: "ARTICLE GENERATION SUMMARY",
}

// PrintRunSummary outputs succeeded/skipped counts and the first few skip reasons.
func (p *Printer) PrintRunSummary(summary *types.RunSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Requested: %d\n", summary.Requested))
	sb.WriteString(fmt.Sprintf("Succeeded: %d\n", summary.Succeeded))
	sb.WriteString(fmt.Sprintf("Skipped:   %d", summary.Skipped))

	var skipped []types.ItemOutcome
	for _, item := range summary.Items {
		if item.Status == types.ItemSkipped {
			skipped = append(skipped, item)
		}
	}
	if len(skipped) > 0 {
		sb.WriteString("\n\nSkipped items:")
		count := min(len(skipped), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("\n  • %s: %s", skipped[i].Key, skipped[i].Error))
		}
		if len(skipped) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(skipped)-maxItemsToShow))
		}
	}

	title, ok := summaryTitles[summary.Kind]
	if !ok {
		title = "RUN SUMMARY"
	}
	p.printBox(title, sb.String())
}

// PrintCallResults renders one table row per call, in input order.
func (p *Printer) PrintCallResults(results []types.CallResult) {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Number", "Status", "Call ID", "Error"})
	for i, r := range results {
		t.AppendRow(table.Row{i + 1, r.ToNumber, string(r.Status), r.CallID, r.Error})
	}
	t.Render()
}

// PrintArticles renders the written article files.
func (p *Printer) PrintArticles(outputs []types.ArticleOutput) {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Title", "File"})
	for i, a := range outputs {
		t.AppendRow(table.Row{i + 1, a.Title, a.Path})
	}
	t.Render()
}

// PrintItems renders per-item outcomes, used for profile runs where records go straight to CSV.
func (p *Printer) PrintItems(items []types.ItemOutcome) {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Input", "Status", "Detail"})
	for _, item := range items {
		detail := item.Detail
		if item.Error != "" {
			detail = item.Error
		}
		t.AppendRow(table.Row{item.Index + 1, item.Key, string(item.Status), detail})
	}
	t.Render()
}
