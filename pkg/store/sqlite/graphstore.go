// Package sqlite persists knowledge graphs in per-strategy SQLite
// databases with vector search through the sqlite-vec extension. One
// Store is bound to one strategy directory and writes a single graph.db
// file inside it.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/OFFIS-RIT/trellis/pkg/common"
	"github.com/OFFIS-RIT/trellis/pkg/logger"
	"github.com/OFFIS-RIT/trellis/pkg/store"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

const (
	dbFileName        = "graph.db"
	embeddingBatch    = 64
	defaultDimensions = 1536
)

// Store implements store.GraphStore on an embedded SQLite database. Chunk
// embeddings are computed once at save time through the configured
// Embedder, so a reloaded graph answers vector queries without touching
// the corpus or the embedding model again.
//
// A Store should be created using NewStore.
type Store struct {
	dir      string
	path     string
	embedder store.Embedder
	dims     int

	mu sync.Mutex
	db *sql.DB
}

// NewStoreParams defines the configuration parameters for creating a new
// Store.
//
// Dir is the strategy's storage directory; it is created on the first
// Save. Embedder computes chunk embeddings at save time and may be nil
// for stores that only read. EmbeddingDimensions pins the width of the
// vector table and must match the embedder's output width.
type NewStoreParams struct {
	Dir                 string
	Embedder            store.Embedder
	EmbeddingDimensions int
}

// NewStore creates a Store bound to the given strategy directory. No
// files are touched until Save or Load is called.
func NewStore(params NewStoreParams) *Store {
	dims := params.EmbeddingDimensions
	if dims <= 0 {
		dims = defaultDimensions
	}

	return &Store{
		dir:      params.Dir,
		path:     filepath.Join(params.Dir, dbFileName),
		embedder: params.Embedder,
		dims:     dims,
	}
}

// Save writes the graph to the strategy directory, replacing whatever was
// persisted there before. Chunk embeddings are generated in batches and
// stored alongside the graph so queries never re-embed the corpus.
func (s *Store) Save(ctx context.Context, graph *common.Graph) error {
	if graph == nil {
		return errors.New("cannot save a nil graph")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory '%s': %w", s.dir, err)
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(s.path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to replace prior graph database: %w", err)
		}
	}

	db, err := openDatabase(s.path)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schemaSQL(s.dims)); err != nil {
		db.Close()
		return fmt.Errorf("failed to create graph schema: %w", err)
	}
	s.db = db

	if err := s.insertGraph(ctx, graph); err != nil {
		return err
	}
	if err := s.insertEmbeddings(ctx, graph.Chunks); err != nil {
		return err
	}

	logger.Info("[Store] Graph persisted",
		"strategy", graph.Strategy,
		"dir", s.dir,
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
		"chunks", len(graph.Chunks))
	return nil
}

// Load reads the whole persisted graph back. A missing database yields
// store.ErrNotFound; any other failure means the storage directory is
// unusable for this session.
func (s *Store) Load(ctx context.Context) (*common.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.openLocked()
	if err != nil {
		return nil, err
	}

	var strategy string
	err = db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'strategy'").Scan(&strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph metadata: %w", err)
	}

	graph := &common.Graph{Strategy: common.Strategy(strategy)}
	if graph.Nodes, err = s.loadNodes(ctx, db); err != nil {
		return nil, err
	}
	if graph.Edges, err = s.loadEdges(ctx, db); err != nil {
		return nil, err
	}
	if graph.Chunks, err = s.loadChunks(ctx, db); err != nil {
		return nil, err
	}
	return graph, nil
}

// Close releases the database handle. The Store can be reused; the next
// operation reopens the file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Store) closeLocked() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// openLocked returns the open database handle, opening the persisted file
// if needed. The caller must hold s.mu.
func (s *Store) openLocked() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s'", store.ErrNotFound, s.dir)
		}
		return nil, fmt.Errorf("failed to access graph database '%s': %w", s.path, err)
	}

	db, err := openDatabase(s.path)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

// database returns the handle for read operations, opening it on demand.
func (s *Store) database() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func openDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open graph database '%s': %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open graph database '%s': %w", path, err)
	}
	return db, nil
}

func (s *Store) insertGraph(ctx context.Context, graph *common.Graph) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO meta (key, value) VALUES ('strategy', ?)",
			graph.Strategy.String()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO meta (key, value) VALUES ('embedding_dimensions', ?)",
			fmt.Sprint(s.dims)); err != nil {
			return err
		}

		nodeStmt, err := tx.PrepareContext(ctx,
			"INSERT INTO nodes (id, name, label, description, chunk_ids) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer nodeStmt.Close()
		for _, node := range graph.Nodes {
			chunkIDs, err := json.Marshal(node.ChunkIDs)
			if err != nil {
				return err
			}
			if _, err := nodeStmt.ExecContext(ctx,
				node.ID, node.Name, node.Label, node.Description, string(chunkIDs)); err != nil {
				return fmt.Errorf("failed to save node '%s': %w", node.Name, err)
			}
		}

		edgeStmt, err := tx.PrepareContext(ctx,
			"INSERT INTO edges (id, source, target, label, description, strength, inferred, chunk_ids) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer edgeStmt.Close()
		for _, edge := range graph.Edges {
			chunkIDs, err := json.Marshal(edge.ChunkIDs)
			if err != nil {
				return err
			}
			if _, err := edgeStmt.ExecContext(ctx,
				edge.ID, edge.Source, edge.Target, edge.Label, edge.Description,
				edge.Strength, edge.Inferred, string(chunkIDs)); err != nil {
				return fmt.Errorf("failed to save edge '%s': %w", edge.ID, err)
			}
		}

		chunkStmt, err := tx.PrepareContext(ctx,
			"INSERT INTO chunks (id, file_id, path, page, sentence_start, sentence_end, text) VALUES (?, ?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer chunkStmt.Close()
		for _, chunk := range graph.Chunks {
			if _, err := chunkStmt.ExecContext(ctx,
				chunk.ID, chunk.FileID, chunk.Path, chunk.Page,
				chunk.Start, chunk.End, chunk.Text); err != nil {
				return fmt.Errorf("failed to save chunk '%s': %w", chunk.ID, err)
			}
		}
		return nil
	})
}

// insertEmbeddings embeds the chunk texts in batches and fills the vector
// table. Without an embedder the graph persists fine but vector search
// over it returns nothing.
func (s *Store) insertEmbeddings(ctx context.Context, chunks []*common.Chunk) error {
	if s.embedder == nil || len(chunks) == 0 {
		return nil
	}

	return store.ChunkRange(len(chunks), embeddingBatch, func(start, end int) error {
		batch := chunks[start:end]
		inputs := make([][]byte, len(batch))
		for i, chunk := range batch {
			inputs[i] = []byte(chunk.Text)
		}

		embeddings, err := s.embedder.GenerateEmbeddings(ctx, inputs)
		if err != nil {
			return fmt.Errorf("failed to embed chunks: %w", err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedding batch size mismatch: got %d want %d", len(embeddings), len(batch))
		}

		return s.inTx(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx,
				"INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)")
			if err != nil {
				return err
			}
			defer stmt.Close()
			for i, chunk := range batch {
				if len(embeddings[i]) != s.dims {
					return fmt.Errorf("embedding width mismatch for chunk '%s': got %d want %d",
						chunk.ID, len(embeddings[i]), s.dims)
				}
				if _, err := stmt.ExecContext(ctx, chunk.ID, serializeFloat32(embeddings[i])); err != nil {
					return fmt.Errorf("failed to save embedding for chunk '%s': %w", chunk.ID, err)
				}
			}
			return nil
		})
	})
}

func (s *Store) loadNodes(ctx context.Context, db *sql.DB) ([]*common.Node, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, label, description, chunk_ids FROM nodes ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*common.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func (s *Store) loadEdges(ctx context.Context, db *sql.DB) ([]*common.Edge, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, source, target, label, description, strength, inferred, chunk_ids FROM edges ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}
	defer rows.Close()

	var edges []*common.Edge
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

func (s *Store) loadChunks(ctx context.Context, db *sql.DB) ([]*common.Chunk, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, file_id, path, page, sentence_start, sentence_end, text FROM chunks ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	defer rows.Close()

	var chunks []*common.Chunk
	for rows.Next() {
		chunk := &common.Chunk{}
		if err := rows.Scan(&chunk.ID, &chunk.FileID, &chunk.Path, &chunk.Page,
			&chunk.Start, &chunk.End, &chunk.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*common.Node, error) {
	node := &common.Node{}
	var chunkIDs string
	if err := row.Scan(&node.ID, &node.Name, &node.Label, &node.Description, &chunkIDs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(chunkIDs), &node.ChunkIDs); err != nil {
		return nil, fmt.Errorf("corrupt chunk references on node '%s': %w", node.ID, err)
	}
	return node, nil
}

func scanEdge(row rowScanner) (*common.Edge, error) {
	edge := &common.Edge{}
	var chunkIDs string
	if err := row.Scan(&edge.ID, &edge.Source, &edge.Target, &edge.Label,
		&edge.Description, &edge.Strength, &edge.Inferred, &chunkIDs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(chunkIDs), &edge.ChunkIDs); err != nil {
		return nil, fmt.Errorf("corrupt chunk references on edge '%s': %w", edge.ID, err)
	}
	return edge, nil
}
