package parser

import (
	"regexp"
	"sort"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
)

// Canonical statute identifiers as stored on (:Act {act_id}).
const (
	StatuteBNS          = "BNS"
	StatuteBNSS         = "BNSS"
	StatuteBSA          = "BSA"
	StatuteConstitution = "Constitution"
)

type statuteAlias struct {
	id      string
	pattern *regexp.Regexp
}

// Longer spellings come first so they win overlap resolution.
var statuteAliases = []statuteAlias{
	{StatuteBNSS, regexp.MustCompile(`(?i)\bbharatiya\s+naga?r?ik\s+suraksha\s+sanhita\b`)},
	{StatuteBNS, regexp.MustCompile(`(?i)\bbharatiya\s+nyaya\s+sanhita\b`)},
	{StatuteBSA, regexp.MustCompile(`(?i)\bbharatiya\s+sakshya\s+adhiniyam\b`)},
	{StatuteConstitution, regexp.MustCompile(`(?i)\b(?:constitution\s+of\s+india|indian\s+constitution)\b`)},
	{StatuteBNSS, regexp.MustCompile(`(?i)\bBNSS\b`)},
	{StatuteBNS, regexp.MustCompile(`(?i)\bBNS\b`)},
	{StatuteBSA, regexp.MustCompile(`(?i)\bBSA\b`)},
	{StatuteConstitution, regexp.MustCompile(`(?i)\bconstitution\b`)},
}

var explicitIDPattern = regexp.MustCompile(`\b(BNSS|BNS|BSA)_Sec_(` + numberExpr + `)|\b(Constitution)_Art_(` + numberExpr + `)`)

type span struct {
	start, end int
	statute    string
}

// findStatutes returns non-overlapping statute mentions ordered by position.
func findStatutes(text string) []span {
	var found []span
	for _, alias := range statuteAliases {
		for _, loc := range alias.pattern.FindAllStringIndex(text, -1) {
			candidate := span{start: loc[0], end: loc[1], statute: alias.id}
			overlaps := false
			for _, f := range found {
				if candidate.start < f.end && f.start < candidate.end {
					overlaps = true
					break
				}
			}
			if !overlaps {
				found = append(found, candidate)
			}
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })
	return found
}

// ProvisionID builds the canonical node id, e.g. BNS_Sec_302 or Constitution_Art_14.
func ProvisionID(statuteID string, kind model.ProvisionKind, number string) string {
	if kind == model.KindArticle {
		return statuteID + "_Art_" + number
	}
	return statuteID + "_Sec_" + number
}

// ExplicitRef is a fully-qualified identifier split into its parts.
type ExplicitRef struct {
	ID        string
	StatuteID string
	Kind      model.ProvisionKind
	Number    string
}

// SplitProvisionID reverses ProvisionID for the statutes the graph knows.
func SplitProvisionID(id string) (ExplicitRef, bool) {
	m := explicitIDPattern.FindStringSubmatch(id)
	if m == nil || m[0] != id {
		return ExplicitRef{}, false
	}
	if m[1] != "" {
		return ExplicitRef{ID: id, StatuteID: m[1], Kind: model.KindSection, Number: m[2]}, true
	}
	return ExplicitRef{ID: id, StatuteID: m[3], Kind: model.KindArticle, Number: m[4]}, true
}
