package vectorstore

import "fmt"

// schemaSQL returns the DDL for the chunk table and its vec0 companion.
// vec_chunks.id mirrors chunks.id.
func schemaSQL(dim int) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS chunks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    chunk_id TEXT NOT NULL UNIQUE,
    source_type TEXT NOT NULL CHECK (source_type IN ('case', 'section', 'article')),
    source_id TEXT NOT NULL,
    text TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source_type, source_id);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
    id INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine
);
`, dim)
}
