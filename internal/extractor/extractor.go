// Package extractor isolates the JSON-shaped edit payload embedded in a raw
// model reply. Models wrap instructions in markdown fencing or surround them
// with prose; extraction strips both without attempting to parse.
package extractor

import (
	"strings"
)

const fence = "```"

// Extract returns the substring of raw believed to contain a single JSON
// object. A fenced code block (optionally tagged "json") takes priority;
// otherwise the inclusive region between the first '{' and the last '}' is
// used. If no object-like region is detected the input is returned unchanged.
func Extract(raw string) string {
	if block, ok := fencedBlock(raw); ok {
		return block
	}
	if obj, ok := braceRegion(raw); ok {
		return obj
	}
	return raw
}

// fencedBlock returns the interior of the first triple-backtick code block.
func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, fence)
	if start < 0 {
		return "", false
	}
	rest := s[start+len(fence):]

	// Drop a language tag such as "json" on the opening fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		tag := strings.TrimSpace(rest[:nl])
		if tag == "" || isLanguageTag(tag) {
			rest = rest[nl+1:]
		}
	}

	end := strings.Index(rest, fence)
	if end < 0 {
		// Unterminated fence: the model was likely cut off mid-block. Take
		// everything after the opening fence and let the repair engine cope.
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// isLanguageTag reports whether tag looks like a fence language marker
// rather than content.
func isLanguageTag(tag string) bool {
	if len(tag) > 16 {
		return false
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// braceRegion returns the inclusive substring between the first '{' and the
// last '}' in s.
func braceRegion(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(s, '}')
	if end < start {
		// An opening brace with no closer still marks an object-like region;
		// truncated output is repaired downstream.
		return s[start:], true
	}
	return s[start : end+1], true
}
