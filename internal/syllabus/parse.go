// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package syllabus extracts module titles from free-text syllabus output.
// Parsing is best-effort and total: when no header is recognized the
// fixed Fallback list is returned.
package syllabus

import (
	"regexp"
	"strings"
)

// MaxModules caps the number of modules taken from a syllabus.
const MaxModules = 5

// Fallback is returned when the syllabus contains no recognizable header.
var Fallback = []string{
	"Module_1_Fundamentals",
	"Module_2_Core_Concepts",
	"Module_3_Advanced_Topics",
	"Module_4_Practical_Applications",
	"Module_5_Future_Trends",
}

// headerPattern matches "Module 1:", "Unit 2 -", "3. Title" and similar.
var headerPattern = regexp.MustCompile(`(?i)^(?:Module\s+\d+|Unit\s+\d+|\d+\.)[:\s-]`)

// Parse returns module titles in document order, capped at MaxModules.
func Parse(raw string) []string {
	return ParseN(raw, MaxModules)
}

// ParseN is Parse with an explicit cap. A non-positive max means MaxModules.
func ParseN(raw string, max int) []string {
	if max <= 0 {
		max = MaxModules
	}

	var modules []string
	for _, line := range strings.Split(raw, "\n") {
		clean := strings.TrimSpace(line)
		if !IsHeader(strings.TrimLeft(clean, "*")) {
			continue
		}
		modules = append(modules, stripEmphasis(clean))
	}

	if len(modules) == 0 {
		return FallbackModules()
	}
	if len(modules) > max {
		modules = modules[:max]
	}
	return modules
}

// IsHeader reports whether a trimmed line looks like a module header.
// Leading bold markers must already be removed.
func IsHeader(line string) bool {
	return headerPattern.MatchString(line)
}

// FallbackModules returns a fresh copy of Fallback.
func FallbackModules() []string {
	out := make([]string, len(Fallback))
	copy(out, Fallback)
	return out
}

// IsFallback reports whether modules is exactly the fallback list.
func IsFallback(modules []string) bool {
	if len(modules) != len(Fallback) {
		return false
	}
	for i := range modules {
		if modules[i] != Fallback[i] {
			return false
		}
	}
	return true
}

// stripEmphasis removes bold/italic asterisks and surrounding whitespace.
func stripEmphasis(line string) string {
	return strings.TrimSpace(strings.ReplaceAll(line, "*", ""))
}
