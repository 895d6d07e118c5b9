package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mytrade/internal/domain"
)

const defaultHistoryLimit = 100

const auditSchema = `
	CREATE TABLE IF NOT EXISTS OrderActions (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId VARCHAR(64) NOT NULL,
		action VARCHAR(50) NOT NULL,
		fromStatus VARCHAR(50) NOT NULL,
		toStatus VARCHAR(50),
		actorId VARCHAR(64) NOT NULL,
		actorRole VARCHAR(20) NOT NULL,
		reason TEXT,
		outcome VARCHAR(30) NOT NULL,
		traceId VARCHAR(36) NOT NULL,
		createdAt DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		INDEX idx_order (orderId),
		INDEX idx_actor (actorId)
	)`

type MySQLAuditRepository struct {
	db *sql.DB
}

func NewMySQLAuditRepository(db *sql.DB) *MySQLAuditRepository {
	return &MySQLAuditRepository{db: db}
}

// EnsureSchema creates the OrderActions table when it does not exist yet.
func (r *MySQLAuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("creating OrderActions table: %w", err)
	}
	return nil
}

func (r *MySQLAuditRepository) Insert(ctx context.Context, action domain.OrderAction) (uint64, error) {
	query := `
		INSERT INTO OrderActions (orderId, action, fromStatus, toStatus, actorId, actorRole,
		                          reason, outcome, traceId, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := action.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, query,
		action.OrderID, action.Action, string(action.FromStatus), nullableString(string(action.ToStatus)),
		action.ActorID, string(action.ActorRole), nullableString(action.Reason),
		action.Outcome, action.TraceID, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint64(id), nil
}

// FindByOrderID returns the newest entries first. A limit <= 0 falls back to
// the default page size.
func (r *MySQLAuditRepository) FindByOrderID(ctx context.Context, orderID string, limit int) ([]domain.OrderAction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT id, orderId, action, fromStatus, toStatus, actorId, actorRole,
		       reason, outcome, traceId, createdAt
		FROM OrderActions
		WHERE orderId = ?
		ORDER BY createdAt DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying order actions: %w", err)
	}
	defer rows.Close()

	actions := []domain.OrderAction{}
	for rows.Next() {
		var (
			a          domain.OrderAction
			fromStatus string
			toStatus   sql.NullString
			actorRole  string
			reason     sql.NullString
		)
		if err := rows.Scan(
			&a.ID, &a.OrderID, &a.Action, &fromStatus, &toStatus, &a.ActorID, &actorRole,
			&reason, &a.Outcome, &a.TraceID, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning order action: %w", err)
		}
		a.FromStatus = domain.Status(fromStatus)
		a.ToStatus = domain.Status(toStatus.String)
		a.ActorRole = domain.Role(actorRole)
		a.Reason = reason.String
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order actions: %w", err)
	}

	return actions, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NopAuditRepository stands in when no database is configured. History
// reads come back empty.
type NopAuditRepository struct{}

func (NopAuditRepository) Insert(context.Context, domain.OrderAction) (uint64, error) {
	return 0, nil
}

func (NopAuditRepository) FindByOrderID(context.Context, string, int) ([]domain.OrderAction, error) {
	return []domain.OrderAction{}, nil
}
