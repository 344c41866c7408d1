package database

// schema is applied by DB.Migrate. ttl is in seconds; NULL never expires.
const schema = `
	CREATE TABLE IF NOT EXISTS access_tokens (
		namespace VARCHAR(255) NOT NULL DEFAULT 'global',
		key VARCHAR(255) NOT NULL,
		value TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
		version INTEGER DEFAULT 1,
		ttl INTEGER,
		PRIMARY KEY (namespace, key)
	);

	CREATE INDEX IF NOT EXISTS idx_access_tokens_namespace_updated ON access_tokens(namespace, updated_at);
`
