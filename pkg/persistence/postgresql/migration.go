package postgresql

// migrations returns the ordered schema migrations for the designer tables.
// The full wire document is kept as jsonb; the filterable attributes are
// lifted into columns.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS transformations (
				id TEXT PRIMARY KEY,
				revision_group_id TEXT NOT NULL,
				name TEXT NOT NULL,
				category TEXT NOT NULL,
				version_tag TEXT NOT NULL,
				state TEXT NOT NULL,
				type TEXT NOT NULL,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
				CONSTRAINT transformations_group_tag_unique UNIQUE (revision_group_id, version_tag)
			);

			CREATE INDEX IF NOT EXISTS idx_transformations_group ON transformations (revision_group_id);
			CREATE INDEX IF NOT EXISTS idx_transformations_state ON transformations (state);
			CREATE INDEX IF NOT EXISTS idx_transformations_type ON transformations (type);
			CREATE INDEX IF NOT EXISTS idx_transformations_category ON transformations (category);

			CREATE TABLE IF NOT EXISTS wirings (
				transformation_id TEXT PRIMARY KEY,
				document JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			);
		`,
	}
}
