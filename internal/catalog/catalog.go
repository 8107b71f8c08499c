// Package catalog persists discovered heads in PostgreSQL, keyed by the hash
// of their list-format block, with an in-memory layer in front.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"head-hunter/internal/head"
	"head-hunter/internal/headlist"
	"head-hunter/internal/textutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// DB is the subset of *pgxpool.Pool the catalog uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS heads (
		hash       TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		block      TEXT NOT NULL,
		source     TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS heads_name_idx ON heads (name)`,
}

const (
	insertHead = `INSERT INTO heads (hash, name, block, source) VALUES ($1, $2, $3, $4)
		ON CONFLICT (hash) DO NOTHING`
	selectHead  = `SELECT hash, block, source FROM heads WHERE hash = $1`
	selectHeads = `SELECT hash, block, source FROM heads ORDER BY name, hash`
)

// Entry is one stored head.
type Entry struct {
	Hash   string
	Block  string
	Source string
	Spec   head.Spec
}

// Catalog provides in-memory + PostgreSQL-backed storage for heads.
type Catalog struct {
	db     DB
	mu     sync.RWMutex
	memory map[string]Entry // hash → entry
}

// New creates a catalog backed by db.
func New(db DB) *Catalog {
	return &Catalog{
		db:     db,
		memory: make(map[string]Entry),
	}
}

// Key returns the catalog hash of s and the list block it was computed from.
func Key(s head.Spec) (hash, block string, err error) {
	block, err = headlist.Dump(s)
	if err != nil {
		return "", "", err
	}
	return textutil.Hash(block), block, nil
}

// EnsureSchema creates the heads table if needed.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	log.Info().Msg("Catalog schema ensured")
	return nil
}

// Put stores s, reporting whether it was new. A head already in the catalog
// keeps the source it was first seen in.
func (c *Catalog) Put(ctx context.Context, s head.Spec, source string) (bool, error) {
	hash, block, err := Key(s)
	if err != nil {
		return false, err
	}

	c.mu.RLock()
	_, known := c.memory[hash]
	c.mu.RUnlock()
	if known {
		return false, nil
	}

	tag, err := c.db.Exec(ctx, insertHead, hash, s.Name, block, source)
	if err != nil {
		return false, fmt.Errorf("catalog put %q: %w", textutil.Truncate(s.Name, 32), err)
	}

	c.mu.Lock()
	c.memory[hash] = Entry{Hash: hash, Block: block, Source: source, Spec: s}
	c.mu.Unlock()

	return tag.RowsAffected() > 0, nil
}

// Upsert stores every head found in source and returns how many were new.
func (c *Catalog) Upsert(ctx context.Context, heads []head.Spec, source string) (int, error) {
	inserted := 0
	for _, s := range heads {
		ok, err := c.Put(ctx, s, source)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	log.Info().Int("inserted", inserted).Int("total", len(heads)).Str("source", source).Msg("Upserted heads")
	return inserted, nil
}

// Get looks up a head by hash.
func (c *Catalog) Get(ctx context.Context, hash string) (Entry, bool, error) {
	c.mu.RLock()
	if e, ok := c.memory[hash]; ok {
		c.mu.RUnlock()
		return e, true, nil
	}
	c.mu.RUnlock()

	var e Entry
	err := c.db.QueryRow(ctx, selectHead, hash).Scan(&e.Hash, &e.Block, &e.Source)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("catalog get: %w", err)
	}
	if e.Spec, err = decodeBlock(e.Block); err != nil {
		return Entry{}, false, err
	}

	c.mu.Lock()
	c.memory[hash] = e
	c.mu.Unlock()

	return e, true, nil
}

// List returns every stored head ordered by name.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.Query(ctx, selectHeads)
	if err != nil {
		return nil, fmt.Errorf("list heads: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Hash, &e.Block, &e.Source); err != nil {
			return nil, fmt.Errorf("scan head: %w", err)
		}
		if e.Spec, err = decodeBlock(e.Block); err != nil {
			log.Warn().Err(err).Str("hash", e.Hash).Msg("Skipping unreadable catalog entry")
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list heads: %w", err)
	}
	return entries, nil
}

// Preload loads all stored heads into memory.
func (c *Catalog) Preload(ctx context.Context) error {
	entries, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("preload catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range entries {
		c.memory[e.Hash] = e
	}

	log.Info().Int("count", len(entries)).Msg("Preloaded head catalog")
	return nil
}

// Specs returns the head models of entries.
func Specs(entries []Entry) []head.Spec {
	specs := make([]head.Spec, len(entries))
	for i, e := range entries {
		specs[i] = e.Spec
	}
	return specs
}

func decodeBlock(block string) (head.Spec, error) {
	specs, err := headlist.Loads(block)
	if err != nil {
		return head.Spec{}, err
	}
	if len(specs) != 1 {
		return head.Spec{}, fmt.Errorf("catalog block holds %d heads", len(specs))
	}
	return specs[0], nil
}
