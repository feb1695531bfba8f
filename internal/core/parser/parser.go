// Package parser extracts explicit statutory references from a free-text
// legal question.
//
// A statute mention is bound to a Section/Article reference only when the text
// between them is at most three connector words (of, the, under, in, per) and
// punctuation, on either side of the reference: "Section 302 of BNS",
// "Section 302, BNS", "BNS Section 302" and "Article 14 of the Constitution"
// all bind. A kind gets a hint only if every bound mention of that kind names
// the same statute; otherwise resolution runs across all statutes.
package parser

import (
	"regexp"
	"strings"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
)

const numberExpr = `\d+(?:[A-Za-z]\b)?(?:\(\w+\))*`

var (
	numberPattern = regexp.MustCompile(numberExpr)

	// keyword, then one number or a list "302, 304 and 307"
	referencePattern = regexp.MustCompile(`(?i)\b(sections?|sec\.|sec|articles?|art\.)\s*(` +
		numberExpr + `(?:\s*(?:,|&|\band\b|\bor\b)\s*` + numberExpr + `)*)`)
)

var connectors = map[string]struct{}{
	"of": {}, "the": {}, "under": {}, "in": {}, "per": {},
}

const maxConnectorWords = 3

type reference struct {
	kind    model.ProvisionKind
	numbers []string
	start   int
	end     int
}

// Parse never fails; text without recognizable references yields empty sets.
func Parse(raw string) model.ParsedQuery {
	refs := findReferences(raw)
	mentions := findStatutes(raw)

	var sections, articles []string
	sectionHints := map[string]struct{}{}
	articleHints := map[string]struct{}{}

	for _, ref := range refs {
		bound := boundStatute(raw, ref, mentions)
		switch ref.kind {
		case model.KindSection:
			sections = append(sections, ref.numbers...)
			if bound != "" {
				sectionHints[bound] = struct{}{}
			}
		case model.KindArticle:
			articles = append(articles, ref.numbers...)
			if bound != "" {
				articleHints[bound] = struct{}{}
			}
		}
	}

	var explicit []string
	for _, m := range explicitIDPattern.FindAllString(raw, -1) {
		explicit = append(explicit, m)
	}

	return model.NewParsedQuery(raw, sections, articles, explicit, single(sectionHints), single(articleHints))
}

func findReferences(text string) []reference {
	var refs []reference
	for _, loc := range referencePattern.FindAllStringSubmatchIndex(text, -1) {
		keyword := strings.ToLower(text[loc[2]:loc[3]])
		kind := model.KindSection
		if strings.HasPrefix(keyword, "art") {
			kind = model.KindArticle
		}

		var numbers []string
		for _, n := range numberPattern.FindAllString(text[loc[4]:loc[5]], -1) {
			numbers = append(numbers, NormalizeNumber(n))
		}
		refs = append(refs, reference{kind: kind, numbers: numbers, start: loc[0], end: loc[1]})
	}
	return refs
}

// boundStatute returns the statute adjacent to ref, or "" when none or when
// two different statutes sit on either side of it.
func boundStatute(text string, ref reference, mentions []span) string {
	var before, after string
	for _, m := range mentions {
		switch {
		case m.end <= ref.start && isConnectorGap(text[m.end:ref.start]):
			before = m.statute
		case m.start >= ref.end && after == "" && isConnectorGap(text[ref.end:m.start]):
			after = m.statute
		}
	}
	switch {
	case before == "":
		return after
	case after == "" || after == before:
		return before
	default:
		return ""
	}
}

func isConnectorGap(gap string) bool {
	gap = strings.ToLower(strings.ReplaceAll(gap, "'s", " "))
	words := strings.FieldsFunc(gap, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', ',', '(', ')', '[', ']', ':', ';', '-':
			return true
		}
		return false
	})
	if len(words) > maxConnectorWords {
		return false
	}
	for _, w := range words {
		if _, ok := connectors[w]; !ok {
			return false
		}
	}
	return true
}

// NormalizeNumber strips leading zeros from the numeric head and upper-cases a
// letter suffix ("021a(1)" -> "21A(1)"). Sub-parts are kept verbatim.
func NormalizeNumber(n string) string {
	i := 0
	for i < len(n) && n[i] >= '0' && n[i] <= '9' {
		i++
	}
	head := strings.TrimLeft(n[:i], "0")
	if head == "" && i > 0 {
		head = "0"
	}
	rest := n[i:]
	if rest != "" && rest[0] != '(' {
		rest = strings.ToUpper(rest[:1]) + rest[1:]
	}
	return head + rest
}

// BaseNumber drops sub-parts: "302(1)" -> "302".
func BaseNumber(n string) string {
	if i := strings.IndexByte(n, '('); i > 0 {
		return n[:i]
	}
	return n
}

func single(set map[string]struct{}) string {
	if len(set) != 1 {
		return ""
	}
	for k := range set {
		return k
	}
	return ""
}
