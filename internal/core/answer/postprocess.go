package answer

import (
	"regexp"
	"strings"
)

const (
	negationWindow  = 600
	maxHeadingChars = 48
)

var (
	// "**Applicable Laws:**", "### summary", "Recommendations" on a line of their own
	headingLine = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?(?:\*\*)?\s*(summary|applicable\s+(?:laws?|provisions?)[a-z /()]*|relevant\s+case\s+laws?[a-z /()]*|case\s+law[a-z /()]*|recommendations?[a-z /()]*|next\s+steps)$`)

	rolePrefix = regexp.MustCompile(`(?im)^[ \t]*(?:assistant|system|user|ai)[ \t]*:[ \t]*`)

	headingThenText = regexp.MustCompile(`(?m)^(## [^\n]+)\n([^\n#])`)
	textThenHeading = regexp.MustCompile(`([^\n])\n(## )`)

	blankRuns = regexp.MustCompile(`\n{3,}`)

	headingSplit = regexp.MustCompile(`(?m)^##\s+`)

	negation = regexp.MustCompile(`(?i)\b(none found|no relevant|no applicable|do not relate|does not relate|do not address|does not address|provided cases? do not|none (?:were|was|are|is) (?:provided|identified|stated|found)|not (?:provided|present) in the (?:provided )?context)\b`)
)

var internalLabels = []string{sectionLabel, articleLabel, casesLabel}

// Clean strips prompt labels and role prefixes and rewrites loose headings
// into the four canonical ones.
func Clean(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	for _, label := range internalLabels {
		text = strings.ReplaceAll(text, label, "")
	}
	text = rolePrefix.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if h, ok := canonicalHeading(line); ok {
			lines[i] = h
			continue
		}
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")

	text = headingThenText.ReplaceAllString(text, "$1\n\n$2")
	text = textThenHeading.ReplaceAllString(text, "$1\n\n$2")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func canonicalHeading(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if len(line) > maxHeadingChars {
		return "", false
	}
	m := headingLine.FindStringSubmatch(strings.TrimSpace(strings.TrimRight(line, ":* ")))
	if m == nil {
		return "", false
	}
	name := strings.ToLower(m[1])
	switch {
	case strings.HasPrefix(name, "summary"):
		return HeadingSummary, true
	case strings.HasPrefix(name, "applicable"):
		return HeadingApplicableLaws, true
	case strings.Contains(name, "case law"):
		return HeadingCaseLaw, true
	default:
		return HeadingRecommendation, true
	}
}

// NegationFlags reports whether the provisions and case-law sections state
// that nothing relevant was found. Only the first part of each section is
// inspected.
func NegationFlags(text string) (noLaws, noCases bool) {
	for _, part := range headingSplit.Split(text, -1) {
		lower := strings.ToLower(part)
		window := part
		if r := []rune(part); len(r) > negationWindow {
			window = string(r[:negationWindow])
		}
		switch {
		case strings.HasPrefix(lower, "applicable laws"):
			noLaws = negation.MatchString(window)
		case strings.HasPrefix(lower, "relevant case law"):
			noCases = negation.MatchString(window)
		}
	}
	return noLaws, noCases
}
