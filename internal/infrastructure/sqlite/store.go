// Package sqlite persiste el estado del backend en memoria en una tabla SQLite, un blob JSON por colección.
// El snapshot se escribe dentro del commit de cada transacción: si SQLite falla, la transacción se descarta.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // driver sqlite en Go puro

	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/infrastructure/memory"
)

const (
	bucketArticles  = "articles"
	bucketMovements = "movements"
	bucketSettings  = "settings"
	bucketUsers     = "users"
	bucketMeta      = "meta"
)

type meta struct {
	NextArticleID int64 `json:"nextArticleId"`
}

// Store base SQLite que respalda a un memory.DB.
type Store struct {
	db   *sql.DB
	mem  *memory.DB
	path string
}

// Open abre (o crea) el archivo, carga el estado y engancha la persistencia al commit.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "farmacia.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("crear directorios: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// un solo escritor; el lock real lo lleva memory.DB
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("crear tabla state: %w", err)
	}
	s := &Store{db: db, path: path}
	snap, err := s.load(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.mem = memory.NewFromSnapshot(snap)
	s.mem.SetCommitHook(s.persist)
	return s, nil
}

func (s *Store) load(ctx context.Context) (memory.Snapshot, error) {
	var snap memory.Snapshot
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return snap, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return snap, fmt.Errorf("scan: %w", err)
		}
		var target any
		var m meta
		switch bucket {
		case bucketArticles:
			target = &snap.Articles
		case bucketMovements:
			target = &snap.Movements
		case bucketSettings:
			target = &snap.Settings
		case bucketUsers:
			target = &snap.Users
		case bucketMeta:
			target = &m
		default:
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return snap, fmt.Errorf("decodificar %s: %w", bucket, err)
		}
		if bucket == bucketMeta {
			snap.NextArticleID = m.NextArticleID
		}
	}
	return snap, rows.Err()
}

// persist escribe todas las colecciones en una transacción SQLite.
func (s *Store) persist(ctx context.Context, snap memory.Snapshot) (retErr error) {
	payloads := map[string]any{
		bucketArticles:  snap.Articles,
		bucketMovements: snap.Movements,
		bucketSettings:  snap.Settings,
		bucketUsers:     snap.Users,
		bucketMeta:      meta{NextArticleID: snap.NextArticleID},
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for bucket, v := range payloads {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("codificar %s: %w", bucket, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
			bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// TxRunner runner transaccional sobre el estado persistido.
func (s *Store) TxRunner() *memory.TxRunner { return memory.NewTxRunner(s.mem) }

// Repositories repositorios sin transacción (cada escritura persiste).
func (s *Store) Repositories() ledger.Repositories { return memory.Repositories(s.mem) }

// Path ruta del archivo.
func (s *Store) Path() string { return s.path }

// Close cierra la base.
func (s *Store) Close() error { return s.db.Close() }
