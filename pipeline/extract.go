package pipeline

import (
	"regexp"
	"strings"
)

var (
	sentenceRe  = regexp.MustCompile(`[^.!?]+[.!?]?`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
)

// ExtractUnits splits translated content into ordered speakable units.
// Each unit carries its normalized start position within the original
// content, so positions stay comparable across units. Empty content yields
// an empty slice; downstream stages treat zero units as a no-op run.
func ExtractUnits(content string) []TextUnit {
	if content == "" {
		return nil
	}
	total := float64(len(content))
	matches := sentenceRe.FindAllStringIndex(content, -1)

	units := make([]TextUnit, 0, len(matches))
	for _, m := range matches {
		raw := content[m[0]:m[1]]
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		// Display position measured at the first non-space character.
		start := m[0] + leadingSpace(raw)
		units = append(units, TextUnit{
			Order:             len(units),
			Text:              text,
			DisplayPercentage: float64(start) / total,
		})
	}
	return units
}

// SplitParagraphs splits content on blank-line boundaries, the unit strategy
// used for scene generation. Display percentages follow the same rule as
// ExtractUnits.
func SplitParagraphs(content string) []TextUnit {
	if content == "" {
		return nil
	}
	total := float64(len(content))

	units := make([]TextUnit, 0, 8)
	for _, part := range splitKeepingOffsets(content) {
		text := strings.TrimSpace(part.text)
		if text == "" {
			continue
		}
		start := part.start + leadingSpace(part.text)
		units = append(units, TextUnit{
			Order:             len(units),
			Text:              text,
			DisplayPercentage: float64(start) / total,
		})
	}
	return units
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t\r\n"))
}

type textSpan struct {
	start int
	text  string
}

func splitKeepingOffsets(content string) []textSpan {
	seps := paragraphRe.FindAllStringIndex(content, -1)
	spans := make([]textSpan, 0, len(seps)+1)
	prev := 0
	for _, s := range seps {
		spans = append(spans, textSpan{start: prev, text: content[prev:s[0]]})
		prev = s[1]
	}
	spans = append(spans, textSpan{start: prev, text: content[prev:]})
	return spans
}
