// Package locator maps a findText hint onto a precise position inside a
// paragraph-structured document. Hints conventionally include a few words of
// surrounding context, so matching escalates from exact substring search to
// progressively looser strategies, each with a confidence tier.
package locator

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"docs-assistant/internal/docs"
	"docs-assistant/internal/types"
)

// MatchResult is the position of a located hint. Offset and Length are byte
// positions within the matched paragraph's text; Length never exceeds that
// paragraph's length.
type MatchResult struct {
	ParagraphIndex int
	Offset         int
	Length         int
	Tier           types.Confidence
}

// Locate returns the best match for hint across the paragraphs, or an
// ErrUnlocatable error when no strategy yields a hit. When a strategy yields
// multiple hits the first one in paragraph order is returned; repetitive text
// is not disambiguated further.
func Locate(paragraphs []docs.Paragraph, hint string) (*MatchResult, error) {
	// Model output is not guaranteed to be NFC while document text is, so
	// the hint is canonicalized before any comparison.
	hint = norm.NFC.String(hint)

	if hint != "" {
		if m := exactMatch(paragraphs, hint); m != nil {
			return m, nil
		}
		if m := normalizedMatch(paragraphs, hint); m != nil {
			return m, nil
		}
		if m := coreTextMatch(paragraphs, hint); m != nil {
			return m, nil
		}
	}

	return nil, types.NewAppErrorWithDetails(types.ErrUnlocatable,
		"text could not be located in the document", hint, nil)
}

// exactMatch searches for the hint verbatim. Confidence high.
func exactMatch(paragraphs []docs.Paragraph, hint string) *MatchResult {
	for i, p := range paragraphs {
		if off := strings.Index(p.Text, hint); off >= 0 {
			return &MatchResult{
				ParagraphIndex: i,
				Offset:         off,
				Length:         len(hint),
				Tier:           types.ConfidenceHigh,
			}
		}
	}
	return nil
}

// normalizedMatch collapses whitespace runs in both the hint and each
// paragraph before searching, then maps the hit back to original byte
// offsets. Handles formatting drift between what the model remembers and the
// actual paragraph whitespace. Confidence medium.
func normalizedMatch(paragraphs []docs.Paragraph, hint string) *MatchResult {
	needle, _ := collapseWhitespace(hint)
	if needle == "" {
		return nil
	}

	for i, p := range paragraphs {
		if m := searchCollapsed(p.Text, needle); m != nil {
			m.ParagraphIndex = i
			return m
		}
	}
	return nil
}

// coreTextMatch strips the first and last word of the normalized hint
// (assumed to be the model's context padding) and searches for the remaining
// core. Only applies to hints of more than two words. Confidence medium.
func coreTextMatch(paragraphs []docs.Paragraph, hint string) *MatchResult {
	collapsed, _ := collapseWhitespace(hint)
	words := strings.Split(collapsed, " ")
	if len(words) <= 2 {
		return nil
	}
	core := strings.Join(words[1:len(words)-1], " ")
	if core == "" {
		return nil
	}

	for i, p := range paragraphs {
		if m := searchCollapsed(p.Text, core); m != nil {
			m.ParagraphIndex = i
			return m
		}
	}
	return nil
}

// searchCollapsed finds needle inside the whitespace-collapsed form of text
// and translates the hit back to byte offsets in the original text.
func searchCollapsed(text, needle string) *MatchResult {
	collapsed, offsets := collapseWhitespace(text)

	pos := strings.Index(collapsed, needle)
	if pos < 0 {
		return nil
	}

	start := offsets[pos]
	endCollapsed := pos + len(needle) - 1
	end := offsets[endCollapsed] + 1
	// The final collapsed byte may stand for a run of original whitespace or
	// a multi-byte rune; extend to that rune's full width.
	for end < len(text) && !isBoundary(text, offsets[endCollapsed], end) {
		end++
	}

	return &MatchResult{
		Offset: start,
		Length: end - start,
		Tier:   types.ConfidenceMedium,
	}
}

// isBoundary reports whether end is the first byte past the original rune
// starting at runeStart.
func isBoundary(text string, runeStart, end int) bool {
	r := []rune(text[runeStart:])
	if len(r) == 0 {
		return true
	}
	return end >= runeStart+len(string(r[0]))
}

// collapseWhitespace trims text and collapses every whitespace run to a
// single space. It also returns, for each byte of the collapsed string, the
// byte offset of the original character it came from.
func collapseWhitespace(text string) (string, []int) {
	var sb strings.Builder
	offsets := make([]int, 0, len(text))
	pendingSpace := false
	wroteAny := false

	for i, r := range text {
		if unicode.IsSpace(r) {
			if wroteAny {
				pendingSpace = true
			}
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			offsets = append(offsets, i)
			pendingSpace = false
		}
		runeBytes := string(r)
		sb.WriteString(runeBytes)
		for range runeBytes {
			offsets = append(offsets, i)
		}
		wroteAny = true
	}

	return sb.String(), offsets
}
