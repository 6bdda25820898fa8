package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"botusage/internal/events"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/sony/gobreaker"
)

// firstSeenBatch bounds the IN list of a single first-seen lookup
const firstSeenBatch = 500

// mysqlDupKeyName is ER_DUP_KEYNAME, raised when an index already exists
const mysqlDupKeyName = 1061

// Store reads bot lifecycle events and per-project spend limits
type Store struct {
	db      *sqlx.DB
	retry   RetryConfig
	breaker *gobreaker.CircuitBreaker
}

type eventRow struct {
	ID          string         `db:"id"`
	EventType   string         `db:"event_type"`
	BotID       sql.NullString `db:"bot_id"`
	WorkspaceID sql.NullString `db:"workspace_id"`
	Payload     []byte         `db:"payload"`
	OccurredAt  time.Time      `db:"occurred_at"`
}

type firstSeenRow struct {
	UserID    string    `db:"user_id"`
	FirstSeen time.Time `db:"first_seen"`
}

// NewStore creates a store over an open connection
func NewStore(db *sqlx.DB, retry RetryConfig) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required for event store")
	}
	return &Store{db: db, retry: retry, breaker: newBreaker("event-store")}, nil
}

// Migrate creates the event and budget tables if they don't exist
func (s *Store) Migrate(ctx context.Context) error {
	mysqlDB := s.db.DriverName() == driverMySQL
	payloadType, ifNotExists := "JSONB", "IF NOT EXISTS "
	if mysqlDB {
		// MySQL has no CREATE INDEX IF NOT EXISTS
		payloadType, ifNotExists = "JSON", ""
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS bot_events (
			id VARCHAR(64) PRIMARY KEY,
			project_id VARCHAR(64) NOT NULL,
			event_type VARCHAR(50) NOT NULL,
			bot_id VARCHAR(64),
			workspace_id VARCHAR(64),
			user_id VARCHAR(128),
			payload ` + payloadType + ` NOT NULL,
			occurred_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS project_budgets (
			project_id VARCHAR(64) PRIMARY KEY,
			spend_limit DECIMAL(12, 4) NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	indexes := []string{
		`CREATE INDEX ` + ifNotExists + `idx_bot_events_project_time ON bot_events(project_id, occurred_at)`,
		`CREATE INDEX ` + ifNotExists + `idx_bot_events_project_user ON bot_events(project_id, user_id)`,
	}

	for _, query := range tables {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
	}
	for _, query := range indexes {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			if mysqlDB && isDuplicateKeyName(err) {
				continue
			}
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}
	return nil
}

func isDuplicateKeyName(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDupKeyName
}

// FetchEvents returns every event of the project with from <= occurred_at < to
func (s *Store) FetchEvents(ctx context.Context, projectID string, from, to time.Time) ([]events.Raw, error) {
	query := s.db.Rebind(`
		SELECT id, event_type, bot_id, workspace_id, payload, occurred_at
		FROM bot_events
		WHERE project_id = ? AND occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at
	`)

	rows, err := guardedRead(ctx, s, func() ([]eventRow, error) {
		var rows []eventRow
		err := ExecuteReadOnlyQuery(ctx, s.db, &rows, query, projectID, from.UTC(), to.UTC())
		return rows, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	raws := make([]events.Raw, 0, len(rows))
	for _, r := range rows {
		raws = append(raws, events.Raw{
			ID:          r.ID,
			Type:        r.EventType,
			Timestamp:   r.OccurredAt.UTC(),
			BotID:       r.BotID.String,
			WorkspaceID: r.WorkspaceID.String,
			Payload:     json.RawMessage(r.Payload),
		})
	}
	return raws, nil
}

// FetchConversationSample returns the metrics of the project's most recent
// completed conversation, or nil when the project has none
func (s *Store) FetchConversationSample(ctx context.Context, projectID string) (*events.ConversationMetrics, error) {
	query := s.db.Rebind(`
		SELECT payload
		FROM bot_events
		WHERE project_id = ? AND event_type = ?
		ORDER BY occurred_at DESC
		LIMIT 1
	`)

	payload, err := guardedRead(ctx, s, func() ([]byte, error) {
		var payload []byte
		err := ExecuteReadOnlyQuerySingle(ctx, s.db, &payload, query, projectID, string(events.KindConversationCompleted))
		return payload, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation sample: %w", err)
	}

	var body struct {
		Metrics *events.ConversationMetrics `json:"metrics"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("failed to decode conversation sample: %w", err)
	}
	return body.Metrics, nil
}

// FirstSeen returns the earliest event time of each user across the project's
// full history. Users without events are absent from the result.
func (s *Store) FirstSeen(ctx context.Context, projectID string, userIDs []string) (map[string]time.Time, error) {
	seen := make(map[string]time.Time, len(userIDs))

	for start := 0; start < len(userIDs); start += firstSeenBatch {
		end := start + firstSeenBatch
		if end > len(userIDs) {
			end = len(userIDs)
		}

		query, args, err := sqlx.In(`
			SELECT user_id, MIN(occurred_at) AS first_seen
			FROM bot_events
			WHERE project_id = ? AND user_id IN (?)
			GROUP BY user_id
		`, projectID, userIDs[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to build first-seen query: %w", err)
		}
		query = s.db.Rebind(query)

		rows, err := guardedRead(ctx, s, func() ([]firstSeenRow, error) {
			var rows []firstSeenRow
			err := ExecuteReadOnlyQuery(ctx, s.db, &rows, query, args...)
			return rows, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch first-seen dates: %w", err)
		}
		for _, r := range rows {
			seen[r.UserID] = r.FirstSeen.UTC()
		}
	}
	return seen, nil
}

// FetchSpendLimit returns the project's stored monthly spend limit
func (s *Store) FetchSpendLimit(ctx context.Context, projectID string) (float64, bool, error) {
	query := s.db.Rebind(`SELECT spend_limit FROM project_budgets WHERE project_id = ?`)

	limit, err := guardedRead(ctx, s, func() (float64, error) {
		var limit float64
		err := ExecuteReadOnlyQuerySingle(ctx, s.db, &limit, query, projectID)
		return limit, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch spend limit: %w", err)
	}
	return limit, true, nil
}

// SaveSpendLimit creates or replaces the project's monthly spend limit
func (s *Store) SaveSpendLimit(ctx context.Context, projectID string, limit float64) error {
	query := `
		INSERT INTO project_budgets (project_id, spend_limit, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (project_id) DO UPDATE SET
			spend_limit = EXCLUDED.spend_limit,
			updated_at = CURRENT_TIMESTAMP
	`
	if s.db.DriverName() == driverMySQL {
		query = `
		INSERT INTO project_budgets (project_id, spend_limit, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON DUPLICATE KEY UPDATE
			spend_limit = VALUES(spend_limit),
			updated_at = CURRENT_TIMESTAMP
	`
	}

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), projectID, limit); err != nil {
		return fmt.Errorf("failed to save spend limit: %w", err)
	}
	return nil
}

// InsertEvent stores a classified event. Events whose id is already stored
// are skipped and reported as not inserted.
func (s *Store) InsertEvent(ctx context.Context, projectID string, raw events.Raw, userID string) (bool, error) {
	query := `
		INSERT INTO bot_events (id, project_id, event_type, bot_id, workspace_id, user_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`
	if s.db.DriverName() == driverMySQL {
		query = `
		INSERT IGNORE INTO bot_events (id, project_id, event_type, bot_id, workspace_id, user_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	}

	result, err := s.db.ExecContext(ctx, s.db.Rebind(query),
		raw.ID, projectID, raw.Type,
		nullString(raw.BotID), nullString(raw.WorkspaceID), nullString(userID),
		[]byte(raw.Payload), raw.Timestamp.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read insert result: %w", err)
	}
	return affected > 0, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
