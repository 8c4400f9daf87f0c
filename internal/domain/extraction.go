package domain

// ============================================================
// OCR extraction
// ============================================================

// DraftExtraction is the best-effort structured result parsed out of raw
// OCR text for one receipt image. It is transient: the user edits and
// confirms it in the form, and it is never persisted. A field the parser
// could not find is an empty string, never an error.
type DraftExtraction struct {
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Vendor   string `json:"vendor"`
	FullText string `json:"fullText"`
}

// Empty reports whether extraction found nothing at all; callers treat
// this as "extraction failed" and fall back to manual entry.
func (d DraftExtraction) Empty() bool {
	return d.Date == "" && d.Amount == "" && d.Vendor == ""
}

// ScanResult is returned by POST /v1/receipts/scan: the extraction draft
// plus the object-storage reference of the uploaded image.
type ScanResult struct {
	Draft    DraftExtraction `json:"draft"`
	ImageURL string          `json:"imageUrl,omitempty"`
}
