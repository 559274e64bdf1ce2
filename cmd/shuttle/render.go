package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

var phaseCaser = cases.Title(language.English)

// phaseLabel turns a machine phase name into a display label, e.g.
// "uploading_chunk" into "Uploading Chunk". Unknown phases render the
// same way, so future uploader phases need no CLI change.
func phaseLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Working"
	}
	return phaseCaser.String(strings.ReplaceAll(name, "_", " "))
}

// renderSummaryTable renders the end-of-drain result table.
func renderSummaryTable(rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Status", "Size", "Asset", "Detail"})
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func colorize(s, color string, enabled bool) string {
	if !enabled || color == "" {
		return s
	}
	return color + s + ansiReset
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func byteCount(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// progressLine builds the single in-place line shown while an upload runs.
func progressLine(name, phase string, displayBytes, totalBytes int64, percent float64) string {
	if totalBytes > 0 {
		return fmt.Sprintf("%s: %s %5.1f%% (%s / %s)",
			name, phaseLabel(phase), percent, byteCount(displayBytes), byteCount(totalBytes))
	}
	return fmt.Sprintf("%s: %s", name, phaseLabel(phase))
}
