// Package graph implements the labeled-property-graph loader from spec
// §4.7: constraint/index provisioning, batched idempotent node and
// relationship upserts, and the security contracts that keep untrusted
// strings out of interpolated Cypher.
//
// Grounded in original_source/public_company_graph/neo4j/constraints.py
// (constraint/index statements), ingest/loaders.py (UNWIND-batched MERGE
// with "SET n += row, n.loaded_at = datetime()"), and utils/security.py's
// validation posture, ported to github.com/neo4j/neo4j-go-driver/v5 — a
// named driver per SPEC_FULL §6 (the graph engine is an external
// collaborator per spec §1; no pack example talks to Neo4j, so this one
// package isn't pack-grounded beyond the query shapes above).
package graph

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"edgarkg/pkg/model"
)

// reRelType is the allow-list gate every relationship type must pass
// before it is string-interpolated into a Cypher statement (spec §4.7,
// §8).
var reRelType = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// reProperty gates property/key names used for interpolation (e.g. a
// node's key property), distinct from relationship/node values, which
// are always passed as query parameters.
var reProperty = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// allowedLabels is the fixed node-label allow-list from spec §4.7.
var allowedLabels = map[string]bool{
	"Domain":     true,
	"Company":    true,
	"Chunk":      true,
	"Document":   true,
	"Technology": true,
}

// ValidateRelType reports whether t is safe to interpolate into a Cypher
// relationship pattern.
func ValidateRelType(t model.RelationshipType) error {
	if !reRelType.MatchString(string(t)) {
		return fmt.Errorf("relationship type %q fails the ^[A-Z][A-Z0-9_]*$ allow-list gate", t)
	}
	return nil
}

// ValidateLabel reports whether label is one of the fixed node labels.
func ValidateLabel(label string) error {
	if !allowedLabels[label] {
		return fmt.Errorf("label %q is not in the allow-list {Domain, Company, Chunk, Document, Technology}", label)
	}
	return nil
}

// ValidateProperty reports whether name is safe to interpolate as a
// property accessor.
func ValidateProperty(name string) error {
	if !reProperty.MatchString(name) {
		return fmt.Errorf("property name %q fails the ^[a-zA-Z_][a-zA-Z0-9_]*$ gate", name)
	}
	return nil
}

// CleanProperties strips empty strings and nil values from props so a
// MERGE's "SET n += row" never overwrites a previously populated
// attribute with an empty one (spec §4.7).
func CleanProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
		}
		out[k] = v
	}
	return out
}

// Store wraps a Neo4j driver session factory with the batched, validated
// write operations the rest of the pipeline needs.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// Open connects to uri with basic auth, verifying connectivity before
// returning.
func Open(ctx context.Context, uri, user, password, database string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return &Store{driver: driver, database: database}, nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

// Driver exposes the underlying Neo4j driver for collaborators that need
// read-only query shapes this package doesn't provide (pkg/rag's vector
// search and multi-hop graph expansion).
func (s *Store) Driver() neo4j.DriverWithContext { return s.driver }

// Database returns the configured database name (possibly empty, meaning
// the server default).
func (s *Store) Database() string { return s.database }

// NewSession opens a session against the store's database, for
// collaborators running their own read queries.
func (s *Store) NewSession(ctx context.Context) neo4j.SessionWithContext {
	return s.session(ctx)
}

// constraintStatements are run at startup, ported verbatim (in intent)
// from constraints.py's create_domain_constraints /
// create_technology_constraints / create_company_constraints /
// create_document_constraints.
var constraintStatements = []string{
	`CREATE CONSTRAINT domain_final_domain IF NOT EXISTS FOR (d:Domain) REQUIRE d.final_domain IS UNIQUE`,
	`CREATE CONSTRAINT technology_name IF NOT EXISTS FOR (t:Technology) REQUIRE t.name IS UNIQUE`,
	`CREATE CONSTRAINT company_cik IF NOT EXISTS FOR (c:Company) REQUIRE c.cik IS UNIQUE`,
	`CREATE CONSTRAINT document_doc_id IF NOT EXISTS FOR (d:Document) REQUIRE d.doc_id IS UNIQUE`,
	`CREATE CONSTRAINT chunk_chunk_id IF NOT EXISTS FOR (c:Chunk) REQUIRE c.chunk_id IS UNIQUE`,
	`CREATE INDEX company_ticker IF NOT EXISTS FOR (c:Company) ON (c.ticker)`,
	`CREATE INDEX company_sector IF NOT EXISTS FOR (c:Company) ON (c.sector)`,
	`CREATE INDEX company_industry IF NOT EXISTS FOR (c:Company) ON (c.industry)`,
	`CREATE INDEX company_sic_code IF NOT EXISTS FOR (c:Company) ON (c.sic_code)`,
	`CREATE INDEX company_naics_code IF NOT EXISTS FOR (c:Company) ON (c.naics_code)`,
	`CREATE INDEX company_filing_date IF NOT EXISTS FOR (c:Company) ON (c.filing_date)`,
	"CREATE VECTOR INDEX chunk_embedding_vector IF NOT EXISTS FOR (c:Chunk) ON (c.embedding) " +
		"OPTIONS {indexConfig: {`vector.dimensions`: 1536, `vector.similarity_function`: 'cosine'}}",
}

// EnsureConstraints provisions every uniqueness constraint, secondary
// index, and the Chunk vector index named in spec §4.7. Each statement
// is idempotent ("IF NOT EXISTS"), so re-running this at the top of
// every stage is safe.
func (s *Store) EnsureConstraints(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	for _, stmt := range constraintStatements {
		if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, stmt, nil)
		}); err != nil {
			return fmt.Errorf("ensure constraint/index: %w", err)
		}
	}
	return nil
}

const defaultNodeBatch = 1000

// UpsertNodes MERGEs batch (a slice of already-cleaned property maps,
// each carrying keyProperty) onto label nodes, batchSize rows at a time
// (spec default 1000). label and keyProperty are validated before any
// interpolation; every value is passed as a parameter.
func (s *Store) UpsertNodes(ctx context.Context, label, keyProperty string, batch []map[string]any, batchSize int) error {
	if err := ValidateLabel(label); err != nil {
		return err
	}
	if err := ValidateProperty(keyProperty); err != nil {
		return err
	}
	if batchSize <= 0 {
		batchSize = defaultNodeBatch
	}

	query := fmt.Sprintf(
		`UNWIND $batch AS row MERGE (n:%s {%s: row.%s}) SET n += row, n.loaded_at = datetime()`,
		label, keyProperty, keyProperty,
	)

	session := s.session(ctx)
	defer session.Close(ctx)

	for start := 0; start < len(batch); start += batchSize {
		end := start + batchSize
		if end > len(batch) {
			end = len(batch)
		}
		chunk := batch[start:end]
		if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"batch": chunk})
		}); err != nil {
			return fmt.Errorf("upsert %s nodes [%d:%d]: %w", label, start, end, err)
		}
	}
	return nil
}

// RelationshipRow is one edge to upsert between two already-loaded nodes.
type RelationshipRow struct {
	FromKey    any
	ToKey      any
	Properties map[string]any
}

const defaultEdgeBatch = 5000

// UpsertRelationships MERGEs relType edges from (fromLabel, fromKey) to
// (toLabel, toKey) nodes, batchSize rows at a time (spec default 5000).
// relType and both labels/key properties are validated before
// interpolation.
func (s *Store) UpsertRelationships(ctx context.Context, relType model.RelationshipType, fromLabel, fromKeyProp, toLabel, toKeyProp string, rows []RelationshipRow, batchSize int) error {
	if err := ValidateRelType(relType); err != nil {
		return err
	}
	if err := ValidateLabel(fromLabel); err != nil {
		return err
	}
	if err := ValidateLabel(toLabel); err != nil {
		return err
	}
	if err := ValidateProperty(fromKeyProp); err != nil {
		return err
	}
	if err := ValidateProperty(toKeyProp); err != nil {
		return err
	}
	if batchSize <= 0 {
		batchSize = defaultEdgeBatch
	}

	query := fmt.Sprintf(
		`UNWIND $batch AS row
		 MATCH (a:%s {%s: row.from})
		 MATCH (b:%s {%s: row.to})
		 MERGE (a)-[r:%s]->(b)
		 SET r += row.props, r.loaded_at = datetime()`,
		fromLabel, fromKeyProp, toLabel, toKeyProp, string(relType),
	)

	session := s.session(ctx)
	defer session.Close(ctx)

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := make([]map[string]any, 0, end-start)
		for _, r := range rows[start:end] {
			batch = append(batch, map[string]any{
				"from":  r.FromKey,
				"to":    r.ToKey,
				"props": CleanProperties(r.Properties),
			})
		}
		if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"batch": batch})
		}); err != nil {
			return fmt.Errorf("upsert %s relationships [%d:%d]: %w", relType, start, end, err)
		}
	}
	return nil
}

const defaultDeleteBatch = 10000

// DeleteRelationships removes every edge of relType, batchSize at a time
// (spec default 10000), looping until none remain. Used by the
// similarity engine's delete-then-insert recompute.
func (s *Store) DeleteRelationships(ctx context.Context, relType model.RelationshipType, batchSize int) error {
	if err := ValidateRelType(relType); err != nil {
		return err
	}
	if batchSize <= 0 {
		batchSize = defaultDeleteBatch
	}

	query := fmt.Sprintf(
		`MATCH ()-[r:%s]->() WITH r LIMIT $limit DELETE r RETURN count(r) AS deleted`,
		string(relType),
	)

	session := s.session(ctx)
	defer session.Close(ctx)

	for {
		result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			res, err := tx.Run(ctx, query, map[string]any{"limit": batchSize})
			if err != nil {
				return nil, err
			}
			record, err := res.Single(ctx)
			if err != nil {
				return int64(0), nil
			}
			deleted, _ := record.Get("deleted")
			n, _ := deleted.(int64)
			return n, nil
		})
		if err != nil {
			return fmt.Errorf("delete %s relationships: %w", relType, err)
		}
		if n, _ := result.(int64); n == 0 {
			return nil
		}
	}
}

// WriteSimilarityPairs deletes all existing edges of relType and writes
// pairs bidirectionally (spec §4.9: "delete all existing edges of that
// type, then batch-write both directions per pair"). pairs must already
// be canonicalized (keyA < keyB); each is written as two directed edges
// sharing the same score/metric/computed_at.
func (s *Store) WriteSimilarityPairs(ctx context.Context, relType model.RelationshipType, nodeLabel, keyProperty string, pairs []model.SimilarityEdge, batchSize int) error {
	if err := ValidateRelType(relType); err != nil {
		return err
	}
	if err := ValidateLabel(nodeLabel); err != nil {
		return err
	}
	if err := ValidateProperty(keyProperty); err != nil {
		return err
	}
	if batchSize <= 0 {
		batchSize = defaultEdgeBatch
	}

	if err := s.DeleteRelationships(ctx, relType, defaultDeleteBatch); err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		`UNWIND $batch AS row
		 MATCH (a:%[1]s {%[2]s: row.key1})
		 MATCH (b:%[1]s {%[2]s: row.key2})
		 WHERE a <> b
		 MERGE (a)-[r1:%[3]s]->(b)
		 SET r1.score = row.score, r1.metric = row.metric, r1.computed_at = row.computed_at
		 MERGE (b)-[r2:%[3]s]->(a)
		 SET r2.score = row.score, r2.metric = row.metric, r2.computed_at = row.computed_at`,
		nodeLabel, keyProperty, string(relType),
	)

	session := s.session(ctx)
	defer session.Close(ctx)

	for start := 0; start < len(pairs); start += batchSize {
		end := start + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		batch := make([]map[string]any, 0, end-start)
		for _, p := range pairs[start:end] {
			batch = append(batch, map[string]any{
				"key1":        p.KeyA,
				"key2":        p.KeyB,
				"score":       p.Score,
				"metric":      p.Metric,
				"computed_at": p.ComputedAt.Format(time.RFC3339),
			})
		}
		if _, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"batch": batch})
		}); err != nil {
			return fmt.Errorf("write %s similarity pairs [%d:%d]: %w", relType, start, end, err)
		}
	}
	return nil
}
