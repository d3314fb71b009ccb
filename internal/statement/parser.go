// Package statement parses free-form bank and card statement exports.
// Column layout is not known in advance: the parser infers the date,
// description and amount columns from header keywords and tolerates a mix
// of date and amount formats, skipping rows it cannot read instead of
// failing the whole upload.
package statement

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RawRow is one successfully parsed statement line.
type RawRow struct {
	Date        string   // Normalized to YYYY-MM-DD
	Description string   // Cleaned merchant text, "Unknown" if empty
	Amount      float64  // Positive = money out, negative = money in
	Raw         []string // Original cells, kept for diagnostics
}

// ParseResult carries the parsed rows plus per-row errors. A bad row is
// recorded and skipped, never fatal.
type ParseResult struct {
	Rows   []RawRow
	Errors []string
}

// Date shapes accepted, tried in this order.
var (
	dateISO      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateSlashDMY = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	dateDashDMY  = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	dateShortDMY = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	dateCompact  = regexp.MustCompile(`^\d{8}$`)
)

var (
	amountPattern   = regexp.MustCompile(`-?\d+\.?\d*`)
	nonAmountChars  = regexp.MustCompile(`[^\d.-]`)
	symbolRuns      = regexp.MustCompile(`[*#]+`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	edgeDecorations = regexp.MustCompile(`^\s*[-=]+|[-=]+\s*$`)
)

// Header keywords used for column inference, matched case-insensitively by
// substring. First matching header cell wins, independently per column.
var (
	dateKeywords        = []string{"date", "posting date", "trans date", "transaction date"}
	descKeywords        = []string{"description", "merchant", "posted description", "details", "memo", "payee", "name"}
	amountKeywords      = []string{"amount", "debit", "credit", "transaction amount"}
	creditDebitKeywords = []string{"debit/credit", "type", "dr/cr", "dc"}
)

type columnLayout struct {
	dateIdx        int
	descIdx        int
	amountIdx      int
	creditDebitIdx int // -1 when the statement has no indicator column
}

// detectColumns infers column positions from the header row. Unresolved
// columns fall back to position 0 (date), 1 (description) and the last
// column (amount) so every row attempt can proceed.
func detectColumns(header []string) columnLayout {
	layout := columnLayout{dateIdx: -1, descIdx: -1, amountIdx: -1, creditDebitIdx: -1}

	for i, cell := range header {
		lower := strings.ToLower(strings.TrimSpace(cell))
		if layout.dateIdx == -1 && containsAny(lower, dateKeywords) {
			layout.dateIdx = i
		}
		if layout.descIdx == -1 && containsAny(lower, descKeywords) {
			layout.descIdx = i
		}
		if layout.amountIdx == -1 && containsAny(lower, amountKeywords) {
			layout.amountIdx = i
		}
		if layout.creditDebitIdx == -1 && containsAny(lower, creditDebitKeywords) {
			layout.creditDebitIdx = i
		}
	}

	if layout.dateIdx == -1 {
		layout.dateIdx = 0
	}
	if layout.descIdx == -1 {
		layout.descIdx = 1
	}
	if layout.amountIdx == -1 {
		layout.amountIdx = len(header) - 1
	}
	return layout
}

func containsAny(cell string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(cell, k) {
			return true
		}
	}
	return false
}

// splitLine splits a statement line into cells on comma or tab. Double
// quotes toggle an in-field state; delimiters inside quotes do not split.
func splitLine(line string) []string {
	var cells []string
	var current strings.Builder
	inQuotes := false

	for _, c := range line {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case (c == ',' || c == '\t') && !inQuotes:
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(c)
		}
	}
	cells = append(cells, strings.TrimSpace(current.String()))
	return cells
}

// parseDate normalizes a raw date cell to YYYY-MM-DD. Returns "" when the
// value matches none of the accepted shapes.
func parseDate(val string) string {
	v := strings.TrimSpace(val)
	if v == "" {
		return ""
	}
	switch {
	case dateISO.MatchString(v):
		return v
	case dateSlashDMY.MatchString(v):
		p := strings.Split(v, "/")
		return p[2] + "-" + p[1] + "-" + p[0]
	case dateDashDMY.MatchString(v):
		p := strings.Split(v, "-")
		return p[2] + "-" + p[1] + "-" + p[0]
	case dateShortDMY.MatchString(v):
		p := strings.Split(v, "/")
		return p[2] + "-" + pad2(p[1]) + "-" + pad2(p[0])
	case dateCompact.MatchString(v):
		return v[0:4] + "-" + v[4:6] + "-" + v[6:8]
	}
	return ""
}

// parseAmount extracts the first signed decimal from a raw amount cell,
// stripping thousands separators and currency decoration.
func parseAmount(val string) (float64, bool) {
	v := strings.TrimSpace(strings.ReplaceAll(val, ",", ""))
	m := amountPattern.FindString(nonAmountChars.ReplaceAllString(v, ""))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NormalizeDescription cleans a merchant/description cell: symbol runs
// become spaces, internal whitespace collapses, leading/trailing -/= runs
// are trimmed.
func NormalizeDescription(desc string) string {
	s := symbolRuns.ReplaceAllString(desc, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	s = edgeDecorations.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// Parse turns raw delimited text into typed rows. Rows with an unreadable
// date or amount are skipped and reported in Errors with their 1-based
// line number (the header is line 1). Only an input too short to contain a
// header plus one data row yields zero rows.
func Parse(content string) ParseResult {
	var lines []string
	for _, l := range strings.Split(content, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	if len(lines) < 2 {
		return ParseResult{Errors: []string{"statement must have a header and at least one data row"}}
	}

	layout := detectColumns(splitLine(lines[0]))
	result := ParseResult{}

	for i := 1; i < len(lines); i++ {
		cells := splitLine(lines[i])
		dateRaw := cellAt(cells, layout.dateIdx)
		descRaw := cellAt(cells, layout.descIdx)
		amountRaw := cellAt(cells, layout.amountIdx)
		indicator := ""
		if layout.creditDebitIdx != -1 {
			indicator = cellAt(cells, layout.creditDebitIdx)
		}

		date := parseDate(dateRaw)
		if date == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid date %q", i+1, dateRaw))
			continue
		}

		amount, ok := parseAmount(amountRaw)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid amount %q", i+1, amountRaw))
			continue
		}

		// Sign convention: positive = money out. An explicit credit marker
		// or a leading minus on the raw cell forces money in, regardless of
		// the sign the numeric value carried.
		signed := math.Abs(amount)
		indicatorLower := strings.ToLower(indicator)
		if strings.Contains(indicatorLower, "credit") || strings.Contains(indicatorLower, "cr") ||
			strings.HasPrefix(amountRaw, "-") {
			signed = -signed
		}

		desc := NormalizeDescription(descRaw)
		if desc == "" {
			desc = "Unknown"
		}

		result.Rows = append(result.Rows, RawRow{
			Date:        date,
			Description: desc,
			Amount:      signed,
			Raw:         cells,
		})
	}

	return result
}
