// Package credentials is the gateway's local encrypted key-value store for
// per-session backend credentials (the "token" and "user" keys).
package credentials

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
	_ "modernc.org/sqlite"

	apperrors "mytrade/internal/errors"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (namespace, key)
)`

type Store struct {
	db   *sql.DB
	aead cipherAEAD
}

type cipherAEAD interface {
	NonceSize() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// Open opens (creating if needed) the sqlite file at path. Values are sealed
// with a key derived from secret, so rotating the secret invalidates every
// stored credential.
func Open(path, secret string) (*Store, error) {
	if secret == "" {
		return nil, errors.New("credentials secret must not be empty")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open credentials db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate credentials db: %w", err)
	}

	aead, err := deriveAEAD(secret)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, aead: aead}, nil
}

func deriveAEAD(secret string) (cipherAEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("mytrade credentials v1"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive credentials key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init credentials cipher: %w", err)
	}
	return aead, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Put(ctx context.Context, namespace, key string, value []byte) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return apperrors.NewInternalError("generating nonce", err)
	}
	sealed := s.aead.Seal(nonce, nonce, value, additionalData(namespace, key))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, sealed, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing credential %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("credential %s not found", key))
	}
	if err != nil {
		return nil, fmt.Errorf("loading credential %s/%s: %w", namespace, key, err)
	}

	nonceSize := s.aead.NonceSize()
	if len(sealed) < nonceSize {
		return nil, apperrors.NewInternalError("credential is truncated", nil)
	}
	plain, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], additionalData(namespace, key))
	if err != nil {
		return nil, apperrors.NewInternalError("credential cannot be decrypted", err)
	}
	return plain, nil
}

// Delete removes every key of the namespace.
func (s *Store) Delete(ctx context.Context, namespace string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("deleting credentials of %s: %w", namespace, err)
	}
	return nil
}

// PurgeOlderThan drops credentials not refreshed since cutoff and returns
// how many rows went away.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE updated_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging credentials: %w", err)
	}
	return res.RowsAffected()
}

// additionalData binds a ciphertext to its row so values cannot be swapped
// between sessions.
func additionalData(namespace, key string) []byte {
	return []byte(namespace + "\x00" + key)
}
