package model

// ProvisionKind distinguishes the two citable provision labels in the graph.
type ProvisionKind string

const (
	KindSection ProvisionKind = "section"
	KindArticle ProvisionKind = "article"
)

// Provision is a resolved (:Section) or (:Article) node with its parent Act.
type Provision struct {
	ID          string        `json:"id"`
	Kind        ProvisionKind `json:"kind"`
	Number      string        `json:"number"`
	StatuteID   string        `json:"statute_id"`
	StatuteName string        `json:"statute_name"`
	Text        string        `json:"text"`
}

// Statute is an (:Act) node.
type Statute struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CaseRef is a (:Case) node reached over a CITES edge.
type CaseRef struct {
	ID   string `json:"id"`
	Year int    `json:"year,omitempty"`
}

// CaseDetail backs the cited-cases panel of the UI.
type CaseDetail struct {
	ID      string `json:"id"`
	Year    int    `json:"year,omitempty"`
	Snippet string `json:"snippet"`
}
