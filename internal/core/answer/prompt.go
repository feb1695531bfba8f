package answer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
)

const (
	sectionLabel = "[SECTION FROM KNOWLEDGE GRAPH]"
	articleLabel = "[ARTICLE FROM KNOWLEDGE GRAPH]"
	casesLabel   = "[CASES CITING THESE PROVISIONS]"

	noContext = "No legal context was retrieved."
)

// Canonical answer headings, in order.
const (
	HeadingSummary        = "## Summary"
	HeadingApplicableLaws = "## Applicable laws / provisions"
	HeadingCaseLaw        = "## Relevant case law (if any)"
	HeadingRecommendation = "## Recommendation / next steps"
)

const DefaultSystemPrompt = "You are a legal research assistant for Indian law. " +
	"Answer the user's question using ONLY the provided context (cases, sections, constitutional articles). " +
	"Cite the relevant section_id, article_id, or case_id in your answer. " +
	"Always include the parent Act name when citing sections or articles (e.g. 'Section 302, BNS (Bharatiya Nyaya Sanhita)' or 'Article 14, Constitution of India'). " +
	"Under 'Applicable laws / provisions', you MUST list and cite every section_id and article_id from the context that is relevant to the question, with their Act name. " +
	"Only if the context truly contains no sections or articles may you state that no applicable laws were provided. " +
	"Do not fabricate citations or legal provisions not present in the context. " +
	"Structure your answer with these markdown headings: " + HeadingSummary + ", " + HeadingApplicableLaws + ", " +
	HeadingCaseLaw + ", " + HeadingRecommendation + ". " +
	"Use brief bullets or short paragraphs under each. " +
	"Do not include or repeat internal labels like " + articleLabel + " or " + sectionLabel + " in your answer; " +
	"cite sources by article_id, section_id, or case_id with their Act (e.g. BNS_Sec_41, Constitution_Art_14).\n"

// Limits caps how much context reaches the prompt.
type Limits struct {
	MaxGraphChars   int
	MaxSnippetChars int
	MaxSnippets     int
}

// BuildContext renders graph metadata ahead of the retrieved passages.
func BuildContext(md model.GraphMetadata, chunks []model.RetrievedChunk, l Limits) string {
	graph := graphBlock(md, l.MaxGraphChars)
	retrieved := retrievalBlock(chunks, l)
	if graph == "" {
		return retrieved
	}
	if retrieved == noContext {
		return graph
	}
	return graph + "\n\n" + retrieved
}

func BuildUserPrompt(query, context string) string {
	return "User question:\n" + strings.TrimSpace(query) + "\n\n" +
		"Relevant legal context (cases, sections, articles):\n" + context + "\n\n" +
		"Reply using ONLY the context above, in the structured format with the four headings. " +
		"Cite the section_id, article_id, or case_id you relied on."
}

func graphBlock(md model.GraphMetadata, maxChars int) string {
	var lines []string
	add := func(label string, p model.Provision) {
		lines = append(lines, label+" "+p.ID)
		if act := actDisplay(p.StatuteID, p.StatuteName); act != "" {
			lines = append(lines, "Applicable Act: "+act)
		}
		if text := strings.TrimSpace(p.Text); text != "" {
			lines = append(lines, truncate(text, maxChars))
		}
		lines = append(lines, "")
	}
	for _, p := range md.Articles {
		add(articleLabel, p)
	}
	for _, p := range md.Sections {
		add(sectionLabel, p)
	}
	if len(md.Cases) > 0 {
		refs := make([]string, 0, len(md.Cases))
		for _, c := range md.Cases {
			if c.Year > 0 {
				refs = append(refs, fmt.Sprintf("%s (%d)", c.ID, c.Year))
			} else {
				refs = append(refs, c.ID)
			}
		}
		lines = append(lines, casesLabel+" "+strings.Join(refs, ", "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

type sourceGroup struct {
	sourceType model.SourceType
	sourceID   string
	best       model.RetrievedChunk
}

// retrievalBlock emits one snippet per source, best source first.
func retrievalBlock(chunks []model.RetrievedChunk, l Limits) string {
	index := map[string]int{}
	var groups []sourceGroup
	for _, ch := range chunks {
		key := string(ch.SourceType) + "\x00" + ch.SourceID
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, sourceGroup{sourceType: ch.SourceType, sourceID: ch.SourceID, best: ch})
			continue
		}
		if ch.Score > groups[i].best.Score {
			groups[i].best = ch
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].best.Score > groups[j].best.Score })

	var lines []string
	for i, g := range groups {
		if l.MaxSnippets > 0 && i >= l.MaxSnippets {
			break
		}
		lines = append(lines,
			fmt.Sprintf("[%s] %s (max_score=%.3f)", strings.ToUpper(string(g.sourceType)), g.sourceID, g.best.Score),
			truncate(strings.TrimSpace(g.best.Text), l.MaxSnippetChars),
			"")
	}
	if len(lines) == 0 {
		return noContext
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func actDisplay(id, name string) string {
	switch {
	case id != "" && name != "" && id != name:
		return fmt.Sprintf("%s (%s)", name, id)
	case name != "":
		return name
	default:
		return id
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
