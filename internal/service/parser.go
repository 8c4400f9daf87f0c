package service

import (
	"regexp"
	"strconv"
	"strings"

	"receiptvault/internal/domain"
)

// ============================================================
// Extraction engine — OCR text to draft receipt fields
// ============================================================

var (
	datePattern   = regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`)
	amountPattern = regexp.MustCompile(`\$?\s*(\d+\.\d{2})`)
)

// ParseReceiptText extracts a best-effort {date, amount, vendor} draft from
// raw OCR text. Total function: a field that cannot be found comes back as
// an empty string, never as an error. The caller shows the draft in an
// editable form, so every guess can be corrected by a human.
func ParseReceiptText(rawText string) domain.DraftExtraction {
	return domain.DraftExtraction{
		Date:     extractDate(rawText),
		Amount:   extractAmount(rawText),
		Vendor:   extractVendor(rawText),
		FullText: rawText,
	}
}

// extractDate returns the first numeric date-shaped substring verbatim.
// Separators may mix within one match; normalization to ISO form happens
// downstream, at persistence time.
func extractDate(text string) string {
	return datePattern.FindString(text)
}

// extractAmount returns the largest currency-shaped value in the text.
// Receipts typically list the final total as the largest line amount, so
// the maximum wins; among equal maxima the earliest occurrence is kept.
// The currency symbol and whitespace are stripped from the result.
func extractAmount(text string) string {
	matches := amountPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ""
	}

	best := ""
	bestValue := 0.0
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if best == "" || v > bestValue {
			best = m[1]
			bestValue = v
		}
	}
	return best
}

// extractVendor returns the first non-empty line, trimmed. A line shorter
// than 3 characters is treated as a logo glyph or OCR noise and the next
// non-empty line is used instead, when there is one.
func extractVendor(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	if len(lines) == 0 {
		return ""
	}
	if len(lines[0]) >= 3 {
		return lines[0]
	}
	if len(lines) > 1 {
		return lines[1]
	}
	return ""
}
