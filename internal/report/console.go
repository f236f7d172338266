// Package report prints human-readable progress for a generation run.
// The output is for the operator at the terminal and is not meant to be
// parsed; structured diagnostics go to the logger instead.
package report

import (
	"fmt"
	"io"

	"github.com/JonMunkholm/sitereg/internal/core"
	"github.com/alessio/shellescape"
)

// Console writes progress and the final summary to an io.Writer.
// Write errors are remembered and returned by Err; once one occurs the
// remaining output is skipped.
type Console struct {
	w   io.Writer
	err error
}

// NewConsole creates a Console that writes to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Summary is what the console reports after all rows.
type Summary struct {
	SQLPath    string
	Statements int
	CSVPath    string
	CSVRows    int

	SyntheticCoordinates bool
	DryRun               bool

	SSHTarget string
	Database  string
}

// Start announces how many rows will be processed.
func (c *Console) Start(total int) {
	c.printf("Total rows in input: %d\n", total)
	c.printf("\nGenerating SQL for bulk site registration...\n\n")
}

// Row prints one derived site. Numbering starts at 1.
func (c *Console) Row(rec core.SiteRecord) {
	c.printf("%d. %s - %s\n", rec.Ordinal(), rec.NearEnd.SiteID, rec.NearEnd.Name)
	c.printf("   FE: %s - %s\n", rec.FarEnd.SiteID, rec.FarEnd.Name)
	c.printf("   Region: %s | ATP: %s\n", rec.Region, rec.ATPType)
	c.printf("\n")
}

// Summary prints output locations, counts and the command that applies the
// script.
func (c *Console) Summary(s Summary) {
	if s.DryRun {
		c.printf("\nDry run: no files were written.\n")
		c.printf("   SQL script would be: %s (%d statements)\n", s.SQLPath, s.Statements)
		c.printf("   Bulk CSV would be:   %s (%d rows)\n", s.CSVPath, s.CSVRows)
	} else {
		c.printf("\nSQL file saved: %s\n", s.SQLPath)
		c.printf("   Total sites: %d\n", s.Statements)
		c.printf("\nTo execute:\n")
		c.printf("  %s\n", ApplyCommand(s.SSHTarget, s.Database, s.SQLPath))
		c.printf("\nCSV file saved: %s\n", s.CSVPath)
		c.printf("   Rows: %d\n", s.CSVRows)
		c.printf("   Use this for bulk upload via frontend Site Management\n")
	}

	if s.SyntheticCoordinates {
		c.printf("\nWARNING: latitude/longitude values are synthetic placeholders, not real site positions.\n")
		c.printf("         Replace them with surveyed coordinates before relying on any map or distance data.\n")
	}

	if !s.DryRun {
		c.printf("\n=== BULK REGISTRATION READY ===\n")
	}
}

// Err returns the first write error, if any.
func (c *Console) Err() error {
	return c.err
}

func (c *Console) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}

// ApplyCommand returns the shell command that pipes the script into psql on
// the target host. The target and path are quoted when the shell would split
// or expand them.
func ApplyCommand(target, database, sqlPath string) string {
	return fmt.Sprintf("ssh %s 'sudo -u postgres psql %s' < %s",
		shellescape.Quote(target), database, shellescape.Quote(sqlPath))
}
