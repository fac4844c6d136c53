package jsonrepair

import (
	"encoding/json"
	"strings"
	"testing"
)

// ============================================================================
// Pass-through behavior
// ============================================================================

func TestRepairValidInputUnchanged(t *testing.T) {
	input := `{"response": "ok", "edit": {"type": "replace"}}`
	if got := Repair(input); got != input {
		t.Errorf("Repair() rewrote already-valid input: %q", got)
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	input := "{\"response\": \"line one\nline two\""
	once := Repair(input)
	if once == input {
		t.Fatal("Repair() did not fix the input")
	}
	if twice := Repair(once); twice != once {
		t.Errorf("Repair() not idempotent: %q then %q", once, twice)
	}
}

func TestRepairUnrecoverableReturnsOriginal(t *testing.T) {
	input := `{"a" "b" : : }`
	if got := Repair(input); got != input {
		t.Errorf("Repair() = %q, want original input back", got)
	}
}

// ============================================================================
// Control character escaping
// ============================================================================

func TestRepairEscapesLiteralNewlines(t *testing.T) {
	input := "{\"response\": \"first\nsecond\"}"
	got := Repair(input)
	if !json.Valid([]byte(got)) {
		t.Fatalf("Repair() produced invalid JSON: %q", got)
	}

	var v map[string]string
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v["response"] != "first\nsecond" {
		t.Errorf("response = %q, want newline preserved as escape", v["response"])
	}
}

func TestRepairLeavesEscapedQuotesAlone(t *testing.T) {
	input := `{"response": "he said \"hi\"",`
	got := Repair(input)
	if !json.Valid([]byte(got)) {
		t.Fatalf("Repair() produced invalid JSON: %q", got)
	}
}

func TestRepairEscapesTabsAndCarriageReturns(t *testing.T) {
	input := "{\"v\": \"a\tb\rc\"}"
	got := Repair(input)
	var v map[string]string
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", got, err)
	}
	if v["v"] != "a\tb\rc" {
		t.Errorf("v = %q", v["v"])
	}
}

// ============================================================================
// Truncation recovery
// ============================================================================

func TestRepairClosesTruncatedNesting(t *testing.T) {
	// Truncated with three structures open: the repaired form must end with
	// exactly the missing closers, in reverse nesting order.
	input := `{"edit": {"values": [["a", "b"`
	got := Repair(input)
	if !json.Valid([]byte(got)) {
		t.Fatalf("Repair() produced invalid JSON: %q", got)
	}
	if !strings.HasSuffix(got, `]]}}`) {
		t.Errorf("Repair() = %q, want closers ]]}} appended", got)
	}
}

func TestRepairClosesNOpenBraces(t *testing.T) {
	input := `{"a": {"b": {"c": 1`
	got := Repair(input)
	if !json.Valid([]byte(got)) {
		t.Fatalf("Repair() produced invalid JSON: %q", got)
	}
	if want := input + "}}}"; got != want {
		t.Errorf("Repair() = %q, want %q", got, want)
	}
}

func TestRepairClosesUnterminatedString(t *testing.T) {
	input := `{"response": "cut off mid sent`
	got := Repair(input)
	if !json.Valid([]byte(got)) {
		t.Fatalf("Repair() produced invalid JSON: %q", got)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v["response"] != "cut off mid sent" {
		t.Errorf("response = %q", v["response"])
	}
}

func TestRepairIgnoresBracesInsideStrings(t *testing.T) {
	input := `{"response": "use {braces} here"`
	got := Repair(input)
	if !json.Valid([]byte(got)) {
		t.Fatalf("Repair() produced invalid JSON: %q", got)
	}
	if want := input + "}"; got != want {
		t.Errorf("Repair() = %q, want %q", got, want)
	}
}

// ============================================================================
// Trailing commas
// ============================================================================

func TestRepairStripsTrailingCommas(t *testing.T) {
	input := `{"a": 1, "b": [1, 2,],}`
	got := Repair(input)
	if !json.Valid([]byte(got)) {
		t.Fatalf("Repair() produced invalid JSON: %q", got)
	}
}

func TestRepairKeepsCommasInsideStrings(t *testing.T) {
	input := `{"a": "one,]", "b": 2,}`
	got := Repair(input)
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", got, err)
	}
	if v["a"] != "one,]" {
		t.Errorf("a = %q", v["a"])
	}
}

// ============================================================================
// Parse helper
// ============================================================================

func TestParseUsesNumbers(t *testing.T) {
	v, err := Parse(`{"n": 12345678901234567890}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := v["n"].(json.Number); !ok {
		t.Errorf("n decoded as %T, want json.Number", v["n"])
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	if _, err := Parse(`{"n":`); err == nil {
		t.Error("Parse() accepted invalid JSON")
	}
}
