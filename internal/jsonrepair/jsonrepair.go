// Package jsonrepair heuristically fixes common malformations in JSON emitted
// by language models: literal control characters inside string values and
// structures left open by token-limit truncation. Repair is deliberately
// narrow; anything outside those failure modes is left alone.
package jsonrepair

import (
	"encoding/json"
	"strings"
)

// Repair returns a parseable version of input, or the original string
// unchanged if the input already parses or cannot be recovered. A returned
// value that differs from the input is guaranteed to parse.
func Repair(input string) string {
	// Valid input passes through byte-identical.
	if json.Valid([]byte(input)) {
		return input
	}

	a := &attempt{buf: make([]byte, 0, len(input)+16)}
	a.escapeControlChars(input)
	a.balanceBrackets()
	a.stripTrailingCommas()

	if json.Valid(a.buf) {
		return string(a.buf)
	}
	// Failure is explicit: never hand back a half-repaired value.
	return input
}

// attempt is the scratch state of one repair call. It is never shared, so
// concurrent repairs stay independent.
type attempt struct {
	buf []byte
}

// escapeControlChars walks the input tracking whether the cursor is inside a
// string literal. A quote toggles the state only when preceded by an even
// number of backslashes. Inside a string, literal newlines, carriage returns
// and tabs are rewritten to their escape sequences. If the scan ends while
// still inside a string, a closing quote is appended: an unterminated string
// is a recoverable truncation, not a fatal condition.
func (a *attempt) escapeControlChars(input string) {
	inString := false
	backslashes := 0

	for i := 0; i < len(input); i++ {
		c := input[i]

		switch c {
		case '\\':
			backslashes++
			a.buf = append(a.buf, c)
			continue
		case '"':
			if backslashes%2 == 0 {
				inString = !inString
			}
			a.buf = append(a.buf, c)
		case '\n':
			if inString {
				a.buf = append(a.buf, '\\', 'n')
			} else {
				a.buf = append(a.buf, c)
			}
		case '\r':
			if inString {
				a.buf = append(a.buf, '\\', 'r')
			} else {
				a.buf = append(a.buf, c)
			}
		case '\t':
			if inString {
				a.buf = append(a.buf, '\\', 't')
			} else {
				a.buf = append(a.buf, c)
			}
		default:
			a.buf = append(a.buf, c)
		}
		backslashes = 0
	}

	if inString {
		a.buf = append(a.buf, '"')
	}
}

// balanceBrackets appends the closers needed for any braces or brackets left
// open at the end of the buffer. Truncation only ever happens at the tail of
// model output, so closers are appended in reverse nesting order and
// unmatched closers are left for the final parse probe to reject.
func (a *attempt) balanceBrackets() {
	var stack []byte
	inString := false
	backslashes := 0

	for i := 0; i < len(a.buf); i++ {
		c := a.buf[i]

		if c == '\\' {
			backslashes++
			continue
		}
		if c == '"' && backslashes%2 == 0 {
			inString = !inString
		}
		backslashes = 0
		if inString {
			continue
		}

		switch c {
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			a.buf = append(a.buf, '}')
		} else {
			a.buf = append(a.buf, ']')
		}
	}
}

// stripTrailingCommas removes any comma that is immediately followed,
// ignoring whitespace, by a closing brace or bracket. String interiors are
// skipped with the same backslash-parity rule as the other passes.
func (a *attempt) stripTrailingCommas() {
	out := make([]byte, 0, len(a.buf))
	inString := false
	backslashes := 0

	for i := 0; i < len(a.buf); i++ {
		c := a.buf[i]

		if c == '\\' {
			backslashes++
			out = append(out, c)
			continue
		}
		if c == '"' && backslashes%2 == 0 {
			inString = !inString
		}
		backslashes = 0

		if c == ',' && !inString {
			j := i + 1
			for j < len(a.buf) && isSpace(a.buf[j]) {
				j++
			}
			if j < len(a.buf) && (a.buf[j] == '}' || a.buf[j] == ']') {
				continue // drop the comma
			}
		}
		out = append(out, c)
	}

	a.buf = out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Parse probes s and, on success, decodes it into a generic value. Callers
// that only need validity should use Repair directly.
func Parse(s string) (map[string]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v map[string]interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
