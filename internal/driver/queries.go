package driver

const (
	// $act_id may be null to resolve across every Act.
	SectionsByNumberQuery = `
		MATCH (s:Section)-[:IN_ACT]->(a:Act)
		WHERE s.section_number IN $nums
		  AND ($act_id IS NULL OR a.act_id = $act_id)
		RETURN s.section_id AS id,
		       s.section_number AS number,
		       a.act_id AS act_id,
		       a.act_name AS act_name,
		       s.full_text AS full_text
		ORDER BY id
	`

	ArticlesByNumberQuery = `
		MATCH (ar:Article)-[:IN_ACT]->(a:Act)
		WHERE ar.article_number IN $nums
		  AND ($act_id IS NULL OR a.act_id = $act_id)
		RETURN ar.article_id AS id,
		       ar.article_number AS number,
		       a.act_id AS act_id,
		       a.act_name AS act_name,
		       ar.full_text AS full_text
		ORDER BY id
	`

	CasesCitingQuery = `
		MATCH (c:Case)-[:CITES]->(t)
		WHERE coalesce(t.section_id, t.article_id) IN $ids
		RETURN DISTINCT c.case_id AS case_id,
		                c.year AS year
		ORDER BY case_id
	`

	CaseDetailsQuery = `
		MATCH (c:Case)
		WHERE c.case_id IN $ids
		RETURN c.case_id AS case_id,
		       c.year AS year,
		       c.judgment_text AS judgment_text
		ORDER BY case_id
	`
)

var IndexQueries = []string{
	"CREATE INDEX section_number IF NOT EXISTS FOR (s:Section) ON (s.section_number)",
	"CREATE INDEX section_id IF NOT EXISTS FOR (s:Section) ON (s.section_id)",
	"CREATE INDEX article_number IF NOT EXISTS FOR (ar:Article) ON (ar.article_number)",
	"CREATE INDEX article_id IF NOT EXISTS FOR (ar:Article) ON (ar.article_id)",
	"CREATE INDEX act_id IF NOT EXISTS FOR (a:Act) ON (a.act_id)",
	"CREATE INDEX case_id IF NOT EXISTS FOR (c:Case) ON (c.case_id)",
}
