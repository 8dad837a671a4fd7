// Package cache implements the namespaced artifact cache described in
// spec §4.3: a local embedded database providing transactional writes and
// per-entry TTL, used to cache domain lookups, enriched company
// properties, extracted 10-K fields, and embeddings.
//
// Grounded in original_source/.../sqlite_cache.go (SQLite embedding
// cache) and domain_status_graph/cache.py (namespaced get/set/delete/
// clear_namespace/count/keys/stats), generalized to an arbitrary
// namespace+key surface and backed by modernc.org/sqlite — the
// pure-Go SQLite driver used elsewhere in the example pack
// (ehrlich-b-wingthing, theRebelliousNerd-codenerd) for exactly this
// "embedded database with transactional writes" role.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// TTL presets from spec §4.3.
const (
	TTLNegative          = 7 * 24 * time.Hour
	TTLDomainPositive    = 30 * 24 * time.Hour
	TTLExtractedPositive = 365 * 24 * time.Hour
)

// Namespaces used by the pipeline.
const (
	NSCompanyDomains    = "company_domains"
	NSCompanyProperties = "company_properties"
	NS10KExtracted      = "10k_extracted"
	NSEmbeddings        = "embeddings"
)

// Cache is a namespaced, TTL-aware key-value store backed by SQLite.
// Writes are serialized through a single *sql.DB connection (SQLite only
// allows one writer at a time); the busy_timeout pragma gives concurrent
// callers a bounded wait instead of an immediate "database is locked"
// error, satisfying the >=30s lock-timeout requirement in spec §4.3.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	db.SetMaxOpenConns(1) // serialize writers, per spec's single-writer-lock contract

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			namespace  TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER,
			PRIMARY KEY (namespace, key)
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_entries_ns ON entries(namespace)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache index: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached value for (ns, key), or (nil, false) if absent or
// expired. Expired rows are lazily deleted on read.
func (c *Cache) Get(ns, key string) ([]byte, bool) {
	var value []byte
	var expiresAt sql.NullInt64
	row := c.db.QueryRow(`SELECT value, expires_at FROM entries WHERE namespace = ? AND key = ?`, ns, key)
	if err := row.Scan(&value, &expiresAt); err != nil {
		return nil, false
	}
	if expiresAt.Valid && time.Now().Unix() > expiresAt.Int64 {
		_, _ = c.db.Exec(`DELETE FROM entries WHERE namespace = ? AND key = ?`, ns, key)
		return nil, false
	}
	return value, true
}

// Set stores value under (ns, key). A zero ttl means the entry never
// expires; a negative ttl stores an entry that is already expired.
func (c *Cache) Set(ns, key string, value []byte, ttl time.Duration) error {
	now := time.Now()
	var expiresAt any
	if ttl != 0 {
		expiresAt = now.Add(ttl).Unix()
	}
	_, err := c.db.Exec(`
		INSERT INTO entries (namespace, key, value, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at, expires_at = excluded.expires_at
	`, ns, key, value, now.Unix(), expiresAt)
	if err != nil {
		return fmt.Errorf("cache set %s/%s: %w", ns, key, err)
	}
	return nil
}

// Delete removes (ns, key) if present.
func (c *Cache) Delete(ns, key string) error {
	_, err := c.db.Exec(`DELETE FROM entries WHERE namespace = ? AND key = ?`, ns, key)
	return err
}

// ClearNamespace removes every entry in ns.
func (c *Cache) ClearNamespace(ns string) error {
	_, err := c.db.Exec(`DELETE FROM entries WHERE namespace = ?`, ns)
	return err
}

// Count returns the number of live (non-expired) entries in ns. If ns is
// empty, counts across all namespaces.
func (c *Cache) Count(ns string) (int, error) {
	now := time.Now().Unix()
	var n int
	var err error
	if ns == "" {
		err = c.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE expires_at IS NULL OR expires_at > ?`, now).Scan(&n)
	} else {
		err = c.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE namespace = ? AND (expires_at IS NULL OR expires_at > ?)`, ns, now).Scan(&n)
	}
	return n, err
}

// Keys returns up to limit live keys in ns (all namespaces if ns is
// empty). limit <= 0 means unbounded.
func (c *Cache) Keys(ns string, limit int) ([]string, error) {
	now := time.Now().Unix()
	var rows *sql.Rows
	var err error
	switch {
	case ns == "" && limit <= 0:
		rows, err = c.db.Query(`SELECT key FROM entries WHERE expires_at IS NULL OR expires_at > ?`, now)
	case ns == "":
		rows, err = c.db.Query(`SELECT key FROM entries WHERE expires_at IS NULL OR expires_at > ? LIMIT ?`, now, limit)
	case limit <= 0:
		rows, err = c.db.Query(`SELECT key FROM entries WHERE namespace = ? AND (expires_at IS NULL OR expires_at > ?)`, ns, now)
	default:
		rows, err = c.db.Query(`SELECT key FROM entries WHERE namespace = ? AND (expires_at IS NULL OR expires_at > ?) LIMIT ?`, ns, now, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Stats summarizes cache occupancy per namespace.
type Stats struct {
	TotalEntries int
	ByNamespace  map[string]int
}

// Stats reports the live entry count, overall and per namespace.
func (c *Cache) Stats() (Stats, error) {
	now := time.Now().Unix()
	rows, err := c.db.Query(`
		SELECT namespace, COUNT(*) FROM entries
		WHERE expires_at IS NULL OR expires_at > ?
		GROUP BY namespace`, now)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	stats := Stats{ByNamespace: make(map[string]int)}
	for rows.Next() {
		var ns string
		var n int
		if err := rows.Scan(&ns, &n); err != nil {
			return Stats{}, err
		}
		stats.ByNamespace[ns] = n
		stats.TotalEntries += n
	}
	return stats, rows.Err()
}
