package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/itunes-catalog/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func printSummary(cmd *cobra.Command, result *models.Result, playtime models.Playtime, duration time.Duration, rows int) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, titleStyle.Render("Search complete"))
	fmt.Fprintln(out, summaryLine("Run", result.RunID))
	fmt.Fprintln(out, summaryLine("Snapshot", result.SnapshotDate))
	fmt.Fprintln(out, summaryLine("Raw rows", strconv.Itoa(result.Raw.Len())))
	fmt.Fprintln(out, summaryLine("Raw columns", strconv.Itoa(len(result.Raw.Columns))))
	fmt.Fprintln(out, summaryLine("Cached", strconv.FormatBool(result.FromCache)))
	fmt.Fprintln(out, summaryLine("Duration", duration.Round(time.Millisecond).String()))
	fmt.Fprintln(out)

	fmt.Fprintln(out, titleStyle.Render("Missing values"))
	fmt.Fprintln(out, renderMissing(result.Missing))
	fmt.Fprintln(out)

	fmt.Fprintln(out, titleStyle.Render("Tracks"))
	fmt.Fprintln(out, renderTracks(result.Projected, playtime, rows))
}

func summaryLine(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("  %-12s", label+":")) + " " + value
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderMissing(report models.MissingReport) string {
	t := newTable("column", "missing %")
	for _, e := range report {
		t.Row(e.Column, strconv.FormatFloat(e.Percent, 'f', 1, 64))
	}
	return t.Render()
}

func renderTracks(projected *models.Table, playtime models.Playtime, limit int) string {
	headers := append([]string{"#"}, projected.Columns...)
	headers = append(headers, "playtime")
	t := newTable(headers...)

	n := projected.Len()
	if limit >= 0 && limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(headers))
		row = append(row, strconv.Itoa(i))
		for _, column := range projected.Columns {
			v, _ := projected.Value(i, column)
			row = append(row, formatValue(v))
		}
		minutes, seconds := playtime.At(i)
		row = append(row, formatPlaytime(minutes, seconds))
		t.Row(row...)
	}
	return t.Render()
}

func renderPlaytime(series models.Series, playtime models.Playtime) string {
	t := newTable("millis", "minutes", "seconds")
	for i, ms := range series.Values {
		minutes, seconds := playtime.At(i)
		t.Row(formatValue(ms), formatValue(minutes), formatValue(seconds))
	}
	return t.Render()
}

func formatPlaytime(minutes, seconds float64) string {
	if math.IsNaN(minutes) || math.IsNaN(seconds) {
		return "-"
	}
	return fmt.Sprintf("%.0f:%02.0f", minutes, seconds)
}

func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case string:
		return truncate(value, 32)
	case float64:
		if math.IsNaN(value) {
			return "-"
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return truncate(fmt.Sprint(value), 32)
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
