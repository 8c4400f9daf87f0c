package service_test

import (
	"testing"

	"receiptvault/internal/service"
)

func TestParseReceiptText_TypicalReceipt(t *testing.T) {
	draft := service.ParseReceiptText("STARBUCKS\n01/15/2024\nTotal $4.95\nSubtotal $4.50")

	if draft.Date != "01/15/2024" {
		t.Errorf("date = %q, want %q", draft.Date, "01/15/2024")
	}
	if draft.Amount != "4.95" {
		t.Errorf("amount = %q, want %q", draft.Amount, "4.95")
	}
	if draft.Vendor != "STARBUCKS" {
		t.Errorf("vendor = %q, want %q", draft.Vendor, "STARBUCKS")
	}
	if draft.FullText == "" {
		t.Error("full text should carry the raw OCR output")
	}
}

func TestParseReceiptText_VendorFallback(t *testing.T) {
	// The first line is a single glyph, so the vendor falls back to the
	// next non-empty line.
	draft := service.ParseReceiptText("X\nJoe's Diner\n03-02-24\n$12.00 $8.50")

	if draft.Vendor != "Joe's Diner" {
		t.Errorf("vendor = %q, want %q", draft.Vendor, "Joe's Diner")
	}
	if draft.Amount != "12.00" {
		t.Errorf("amount = %q, want %q", draft.Amount, "12.00")
	}
	if draft.Date != "03-02-24" {
		t.Errorf("date = %q, want %q", draft.Date, "03-02-24")
	}
}

func TestParseReceiptText_NoDigits(t *testing.T) {
	draft := service.ParseReceiptText("CORNER BAKERY\nThank you for visiting")

	if draft.Date != "" {
		t.Errorf("date = %q, want empty", draft.Date)
	}
	if draft.Amount != "" {
		t.Errorf("amount = %q, want empty", draft.Amount)
	}
	if draft.Vendor != "CORNER BAKERY" {
		t.Errorf("vendor = %q, want %q", draft.Vendor, "CORNER BAKERY")
	}
}

func TestParseReceiptText_LargestAmountWins(t *testing.T) {
	draft := service.ParseReceiptText("SHOP\n$3.10\n$47.20\n$15.99")

	if draft.Amount != "47.20" {
		t.Errorf("amount = %q, want %q", draft.Amount, "47.20")
	}
}

func TestParseReceiptText_EqualAmountsFirstWins(t *testing.T) {
	// Two matches parse to the same value; the earlier occurrence is kept.
	draft := service.ParseReceiptText("SHOP\nTotal 9.50\nCharged $9.50")

	if draft.Amount != "9.50" {
		t.Errorf("amount = %q, want %q", draft.Amount, "9.50")
	}
}

func TestParseReceiptText_MixedDateSeparators(t *testing.T) {
	draft := service.ParseReceiptText("SHOP\n12/31-2023 some trailing text")

	if draft.Date != "12/31-2023" {
		t.Errorf("date = %q, want %q", draft.Date, "12/31-2023")
	}
}

func TestParseReceiptText_Deterministic(t *testing.T) {
	raw := "GROCERY MART\n07.04.2024\nItem 2.50\nItem 3.75\nTotal $6.25"
	first := service.ParseReceiptText(raw)
	second := service.ParseReceiptText(raw)

	if first != second {
		t.Errorf("repeated extraction differs: %+v vs %+v", first, second)
	}
}

func TestParseReceiptText_Empty(t *testing.T) {
	draft := service.ParseReceiptText("")

	if !draft.Empty() {
		t.Errorf("expected empty draft, got %+v", draft)
	}
}

func TestParseReceiptText_ShortOnlyLine(t *testing.T) {
	// A single sub-threshold line with nothing to fall back to.
	draft := service.ParseReceiptText("AB")

	if draft.Vendor != "" {
		t.Errorf("vendor = %q, want empty", draft.Vendor)
	}
}
