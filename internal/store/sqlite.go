package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lushmoments/lush-chat/internal/domain"
	"github.com/lushmoments/lush-chat/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		linked_user_id TEXT,
		handled_by_agent INTEGER NOT NULL DEFAULT 1,
		transferred_to_human INTEGER NOT NULL DEFAULT 0,
		transfer_reason TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_linked_user ON sessions(linked_user_id) WHERE linked_user_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(session_id),
		sender TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, timestamp);

	CREATE TABLE IF NOT EXISTS packages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		price REAL NOT NULL,
		is_popular INTEGER NOT NULL DEFAULT 0,
		display_order INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS package_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		package_id INTEGER NOT NULL REFERENCES packages(id),
		item_text TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS enhancements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		starting_price REAL NOT NULL,
		category TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		is_available INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS themes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS gallery_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS testimonials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_name TEXT NOT NULL,
		event_type TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		rating REAL NOT NULL DEFAULT 5
	);
	CREATE TABLE IF NOT EXISTS faqs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func scanSession(row interface{ Scan(...any) error }) (*domain.Session, error) {
	var sess domain.Session
	var linkedUserID sql.NullString
	var transferReason sql.NullString
	var handled, transferred int
	var createdAt int64

	err := row.Scan(
		&sess.SessionID, &linkedUserID, &handled, &transferred,
		&transferReason, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if linkedUserID.Valid {
		sess.LinkedUserID = &linkedUserID.String
	}
	if transferReason.Valid {
		sess.TransferReason = &transferReason.String
	}
	sess.HandledByAgent = handled != 0
	sess.TransferredToHuman = transferred != 0
	sess.CreatedAt = time.Unix(createdAt, 0)

	return &sess, nil
}

const sessionColumns = `session_id, linked_user_id, handled_by_agent, transferred_to_human, transfer_reason, created_at`

// GetSession retrieves a session by id.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE session_id = ?`
	sess, err := scanSession(s.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}
	return sess, nil
}

// EnsureSession returns the session for the given id, creating it with
// defaults if absent. INSERT OR IGNORE keeps concurrent connects for the
// same id from racing.
func (s *SQLiteStore) EnsureSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		INSERT OR IGNORE INTO sessions (session_id, handled_by_agent, transferred_to_human, created_at)
		VALUES (?, 1, 0, ?)`
	if _, err := s.db.ExecContext(ctx, query, sessionID, time.Now().Unix()); err != nil {
		return nil, fmt.Errorf("ensure session: %w", err)
	}

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session %s missing after ensure", sessionID)
	}
	return sess, nil
}

// LinkUser binds a session to a user id, first write wins. The WHERE clause
// makes re-links and cross-user links silent no-ops rather than errors.
func (s *SQLiteStore) LinkUser(ctx context.Context, sessionID, userID string) error {
	query := `UPDATE sessions SET linked_user_id = ? WHERE session_id = ? AND linked_user_id IS NULL`
	result, err := s.db.ExecContext(ctx, query, userID, sessionID)
	if err != nil {
		return fmt.Errorf("link session to user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Debug("LinkUser was a no-op", "session_id", sessionID, "user_id", userID)
	}
	return nil
}

// TransferToHuman flips both handoff flags and records the reason in one
// statement. The transferred_to_human guard makes the transition one-way:
// no observer can ever see the flags disagree or a session move back.
func (s *SQLiteStore) TransferToHuman(ctx context.Context, sessionID, reason string) error {
	query := `
		UPDATE sessions
		SET transferred_to_human = 1, handled_by_agent = 0, transfer_reason = ?
		WHERE session_id = ? AND transferred_to_human = 0`

	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		_, err := s.db.ExecContext(ctx, query, reason, sessionID)
		if err == nil {
			return nil
		}
		lastErr = err
		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("TransferToHuman hit SQLITE_BUSY, retrying",
				"session_id", sessionID,
				"attempt", i+1,
				"delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}
	return fmt.Errorf("transfer session to human: %w", lastErr)
}

// ListUserSessions returns all sessions linked to a user.
func (s *SQLiteStore) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE linked_user_id = ? ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query user sessions: %w", err)
	}
	defer closeRows(rows, "user sessions")

	var sessions []*domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user session row: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user sessions: %w", err)
	}
	return sessions, nil
}

// AppendMessage appends one entry to the message log. Entries are immutable;
// there is deliberately no update or delete counterpart.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if !msg.Sender.Valid() {
		return fmt.Errorf("append message: invalid sender kind %q", msg.Sender)
	}

	query := `INSERT INTO chat_messages (id, session_id, sender, message, timestamp) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID, msg.SessionID, string(msg.Sender), msg.Message, msg.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryMessages(ctx context.Context, query string, args ...any) ([]*domain.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer closeRows(rows, "messages")

	var msgs []*domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		var sender string
		var ts int64
		if err := rows.Scan(&msg.ID, &msg.SessionID, &sender, &msg.Message, &ts); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.Sender = domain.SenderKind(sender)
		msg.Timestamp = time.Unix(0, ts)
		msgs = append(msgs, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, nil
}

// ListMessages returns a session's full log, oldest first. Equal timestamps
// fall back to insertion order via rowid.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, sender, message, timestamp
		FROM chat_messages WHERE session_id = ?
		ORDER BY timestamp, rowid`
	return s.queryMessages(ctx, query, sessionID)
}

// RecentMessages returns the last n entries, oldest first.
func (s *SQLiteStore) RecentMessages(ctx context.Context, sessionID string, n int) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, sender, message, timestamp FROM (
			SELECT id, session_id, sender, message, timestamp, rowid AS rid
			FROM chat_messages WHERE session_id = ?
			ORDER BY timestamp DESC, rid DESC
			LIMIT ?
		) ORDER BY timestamp, rid`
	return s.queryMessages(ctx, query, sessionID, n)
}

// CountMessages returns the number of log entries for a session.
func (s *SQLiteStore) CountMessages(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE session_id = ?`, sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Warn("failed to close rows", "query", what, "error", err)
	}
}
