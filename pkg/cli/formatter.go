package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"manhwaverse/pkg/core"
	"manhwaverse/pkg/provider"
)

// Formatter handles all CLI output formatting.
type Formatter struct {
	Writer io.Writer

	HeaderStyle  *color.Color
	SuccessStyle *color.Color
	ErrorStyle   *color.Color
	WarningStyle *color.Color
	InfoStyle    *color.Color
}

// NewFormatter creates a formatter writing to stdout.
func NewFormatter() *Formatter {
	return &Formatter{
		Writer:       os.Stdout,
		HeaderStyle:  color.New(color.FgCyan, color.Bold),
		SuccessStyle: color.New(color.FgGreen),
		ErrorStyle:   color.New(color.FgRed, color.Bold),
		WarningStyle: color.New(color.FgYellow),
		InfoStyle:    color.New(color.FgBlue),
	}
}

// PrintHeader prints a section header.
func (f *Formatter) PrintHeader(text string) {
	_, _ = f.HeaderStyle.Fprintln(f.Writer, text)
}

// PrintSuccess prints a success line.
func (f *Formatter) PrintSuccess(format string, args ...any) {
	_, _ = f.SuccessStyle.Fprintf(f.Writer, format+"\n", args...)
}

// PrintError prints an error line.
func (f *Formatter) PrintError(format string, args ...any) {
	_, _ = f.ErrorStyle.Fprintf(f.Writer, format+"\n", args...)
}

// PrintWarning prints a warning line.
func (f *Formatter) PrintWarning(format string, args ...any) {
	_, _ = f.WarningStyle.Fprintf(f.Writer, format+"\n", args...)
}

// PrintInfo prints an informational line.
func (f *Formatter) PrintInfo(format string, args ...any) {
	_, _ = f.InfoStyle.Fprintf(f.Writer, format+"\n", args...)
}

// PrintTable prints data in a table format.
func (f *Formatter) PrintTable(headers []string, data [][]string) {
	table := tablewriter.NewTable(f.Writer)
	table.Configure(func(tableConfig *tablewriter.Config) {
		tableConfig.Header.Alignment.Global = tw.AlignLeft
		tableConfig.Row.Alignment.Global = tw.AlignLeft
		tableConfig.Header.Padding.Global = tw.Padding{
			Left:  " ",
			Right: " ",
		}
		tableConfig.Row.Padding.Global = tw.Padding{
			Left:  " ",
			Right: " ",
		}
	})

	table.Header(headers)
	if err := table.Bulk(data); err != nil {
		return
	}
	_ = table.Render()
}

// PrintListing renders listing items as a table.
func (f *Formatter) PrintListing(items []core.ListingItem) {
	if len(items) == 0 {
		f.PrintWarning("No results.")
		return
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			truncate(item.Title, 48),
			item.LatestChapter,
			string(item.Source),
			item.DetailURL,
		})
	}
	f.PrintTable([]string{"Title", "Latest", "Source", "URL"}, rows)
}

// PrintProviderList renders the registered providers as a table.
func (f *Formatter) PrintProviderList(provs []provider.Provider) {
	f.PrintHeader("Registered Sources")

	if len(provs) == 0 {
		f.PrintWarning("No sources registered.")
		return
	}

	rows := make([][]string, 0, len(provs))
	for _, p := range provs {
		rows = append(rows, []string{p.ID(), p.Name(), p.SiteURL()})
	}
	f.PrintTable([]string{"ID", "Name", "Site"}, rows)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return fmt.Sprintf("%s...", s[:max-3])
}
