package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/miko-misa/typmark/pkg/tmdiag"
	"github.com/miko-misa/typmark/pkg/tmrun"
)

// Table formatting constants.
//
// No FIXABLE column or legend entry: TypMark diagnostics carry no
// fix-edit concept, so there is nothing for that column to report.
const (
	tablePadding     = 2
	tableColumnCount = 4 // FILE, LOC, MESSAGE, CODE
	minFileWidth     = 20
	minLocWidth      = 10
	minMessageWidth  = 35
	minCodeWidth     = 10
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// TableRow represents a single row in the diagnostic table.
type TableRow struct {
	File     string
	Location string
	Message  string
	Code     tmdiag.Code
	Severity tmdiag.Severity
}

// TableFormatter formats diagnostics as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatTable formats a run result as a styled table.
func (t *TableFormatter) FormatTable(result *tmrun.Result) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	fileGroups := t.collectRows(result)
	if len(fileGroups) == 0 {
		return ""
	}

	colWidths := t.calculateColumnWidths(fileGroups)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(colWidths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(colWidths, heavySeparator))
	builder.WriteString("\n")

	isFirstGroup := true
	for _, group := range fileGroups {
		if !isFirstGroup {
			builder.WriteString(t.formatSeparator(colWidths, lightSeparator))
			builder.WriteString("\n")
		}
		isFirstGroup = false

		for _, row := range group {
			builder.WriteString(t.formatRow(row, colWidths))
			builder.WriteString("\n")
		}
	}

	builder.WriteString(t.formatSeparator(colWidths, heavySeparator))
	builder.WriteString("\n")

	builder.WriteString(t.formatLegend())
	builder.WriteString("\n")

	return builder.String()
}

// FormatFileTable formats a single file's diagnostics as a standalone table.
func (t *TableFormatter) FormatFileTable(file tmrun.FileOutcome) string {
	if file.Result == nil || len(file.Result.Diagnostics) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(file.Result.Diagnostics))
	for _, diag := range file.Result.Diagnostics {
		rows = append(rows, diagnosticToTableRow(file.Path, &diag))
	}

	colWidths := t.calculateColumnWidthsForRows(rows)

	var builder strings.Builder

	builder.WriteString(t.formatPerFileHeader(colWidths))
	builder.WriteString("\n")
	builder.WriteString(t.formatPerFileSeparator(colWidths, heavySeparator))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatPerFileRow(row, colWidths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatPerFileSeparator(colWidths, heavySeparator))
	builder.WriteString("\n")

	builder.WriteString(t.formatFileSummary(rows))
	builder.WriteString("\n")

	return builder.String()
}

// calculateColumnWidthsForRows calculates widths for per-file table (no FILE column).
func (t *TableFormatter) calculateColumnWidthsForRows(rows []TableRow) perFileColumnWidths {
	widths := perFileColumnWidths{
		loc:     minLocWidth,
		message: minMessageWidth,
		code:    minCodeWidth,
	}

	for _, row := range rows {
		if len(row.Location) > widths.loc {
			widths.loc = len(row.Location)
		}
		if len(row.Message) > widths.message {
			widths.message = len(row.Message)
		}
		if len(row.Code) > widths.code {
			widths.code = len(row.Code)
		}
	}

	totalWidth := widths.loc + widths.message + widths.code + (tablePadding * (tableColumnCount - 1))
	if totalWidth > t.termWidth {
		excess := totalWidth - t.termWidth
		widths.message = max(minMessageWidth, widths.message-excess)
	}

	return widths
}

type perFileColumnWidths struct {
	loc     int
	message int
	code    int
}

// formatPerFileHeader formats the header for per-file tables.
func (t *TableFormatter) formatPerFileHeader(widths perFileColumnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s",
		widths.loc, "LOC",
		widths.message, "MESSAGE",
		widths.code, "CODE",
	)
	return t.styles.TableHeader.Render(header)
}

// formatPerFileSeparator formats a separator line for per-file tables.
func (t *TableFormatter) formatPerFileSeparator(widths perFileColumnWidths, char string) string {
	totalWidth := widths.loc + widths.message + widths.code + (tablePadding * (tableColumnCount - 1))
	sep := strings.Repeat(char, totalWidth)
	return t.styles.TableSeparator.Render(sep)
}

// formatPerFileRow formats a single row in the per-file table.
func (t *TableFormatter) formatPerFileRow(row TableRow, widths perFileColumnWidths) string {
	loc := truncateString(row.Location, widths.loc)
	message := truncateString(row.Message, widths.message)
	code := truncateString(string(row.Code), widths.code)

	content := fmt.Sprintf(" %-*s  %-*s  %-*s",
		widths.loc, loc,
		widths.message, message,
		widths.code, code,
	)

	rowStyle := t.getRowStyle(row.Severity)
	return rowStyle.Render(content)
}

// formatFileSummary formats a summary line for a single file.
func (t *TableFormatter) formatFileSummary(rows []TableRow) string {
	var errors, warnings int

	for _, row := range rows {
		switch row.Severity {
		case tmdiag.SeverityError:
			errors++
		case tmdiag.SeverityWarning:
			warnings++
		}
	}

	var parts []string
	if errors > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d errors", errors)))
	}
	if warnings > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d warnings", warnings)))
	}

	return " " + strings.Join(parts, " | ")
}

// collectRows collects diagnostic rows grouped by file.
func (t *TableFormatter) collectRows(result *tmrun.Result) [][]TableRow {
	var groups [][]TableRow

	for _, file := range result.Files {
		if file.Result == nil || len(file.Result.Diagnostics) == 0 {
			continue
		}

		rows := make([]TableRow, 0, len(file.Result.Diagnostics))
		for _, diag := range file.Result.Diagnostics {
			rows = append(rows, diagnosticToTableRow(file.Path, &diag))
		}

		if len(rows) > 0 {
			groups = append(groups, rows)
		}
	}

	return groups
}

// calculateColumnWidths determines optimal column widths based on content.
func (t *TableFormatter) calculateColumnWidths(groups [][]TableRow) columnWidths {
	widths := columnWidths{
		file:    minFileWidth,
		loc:     minLocWidth,
		message: minMessageWidth,
		code:    minCodeWidth,
	}

	for _, group := range groups {
		for _, row := range group {
			if len(row.File) > widths.file {
				widths.file = len(row.File)
			}
			if len(row.Location) > widths.loc {
				widths.loc = len(row.Location)
			}
			if len(row.Message) > widths.message {
				widths.message = len(row.Message)
			}
			if len(row.Code) > widths.code {
				widths.code = len(row.Code)
			}
		}
	}

	totalWidth := t.calculateTotalWidth(widths)
	if totalWidth > t.termWidth {
		excess := totalWidth - t.termWidth
		widths.message = max(minMessageWidth, widths.message-excess)

		totalWidth = t.calculateTotalWidth(widths)
		if totalWidth > t.termWidth {
			excess = totalWidth - t.termWidth
			widths.file = max(minFileWidth, widths.file-excess)
		}
	}

	return widths
}

type columnWidths struct {
	file    int
	loc     int
	message int
	code    int
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s",
		widths.file, "FILE",
		widths.loc, "LOC",
		widths.message, "MESSAGE",
		widths.code, "CODE",
	)
	return t.styles.TableHeader.Render(header)
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.file + widths.loc + widths.message + widths.code +
		(tablePadding * tableColumnCount)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	totalWidth := t.calculateTotalWidth(widths)
	sep := strings.Repeat(char, totalWidth)
	return t.styles.TableSeparator.Render(sep)
}

// formatRow formats a single table row with severity-based styling.
func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	file := truncateFilePath(row.File, widths.file)
	loc := truncateString(row.Location, widths.loc)
	message := truncateString(row.Message, widths.message)
	code := truncateString(string(row.Code), widths.code)

	content := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s",
		widths.file, file,
		widths.loc, loc,
		widths.message, message,
		widths.code, code,
	)

	rowStyle := t.getRowStyle(row.Severity)
	return rowStyle.Render(content)
}

// getRowStyle returns the appropriate style for a severity level.
func (t *TableFormatter) getRowStyle(severity tmdiag.Severity) lipgloss.Style {
	switch severity {
	case tmdiag.SeverityError:
		return t.styles.TableErrorRow
	case tmdiag.SeverityWarning:
		return t.styles.TableWarnRow
	default:
		return lipgloss.NewStyle()
	}
}

// formatLegend formats the legend explaining the table colors.
func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: E = error | W = warning")
	}

	errorSample := t.styles.TableErrorRow.Render(" error ")
	warnSample := t.styles.TableWarnRow.Render(" warning ")

	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s = error  %s = warning", errorSample, warnSample),
	)
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats tmrun.Stats, duration string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%d files checked", stats.FilesProcessed))

	if stats.DiagnosticsBySeverity["error"] > 0 {
		errCount := t.styles.Error.Render(fmt.Sprintf("%d errors", stats.DiagnosticsBySeverity["error"]))
		parts = append(parts, errCount)
	}

	if stats.DiagnosticsBySeverity["warning"] > 0 {
		warnCount := t.styles.Warning.Render(fmt.Sprintf("%d warnings", stats.DiagnosticsBySeverity["warning"]))
		parts = append(parts, warnCount)
	}

	if duration != "" {
		parts = append(parts, t.styles.Dim.Render(duration))
	}

	return " " + strings.Join(parts, " | ")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}

// diagnosticToTableRow converts a diagnostic to a table row.
func diagnosticToTableRow(path string, diag *tmdiag.Diagnostic) TableRow {
	return TableRow{
		File:     path,
		Location: fmt.Sprintf("%d:%d", diag.Range.Start.Line+1, diag.Range.Start.Character+1),
		Message:  diag.Message,
		Code:     diag.Code,
		Severity: diag.Severity,
	}
}
