package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Database struct {
	db  *sql.DB
	now func() time.Time
}

var globalDB *Database

// Open creates the SQLite database at dbPath and its schema.
func Open(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	d := &Database{db: db, now: time.Now}
	if err := d.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return d, nil
}

// Initialize opens the database and installs it as the global instance.
func Initialize(dbPath string) error {
	d, err := Open(dbPath)
	if err != nil {
		return err
	}
	globalDB = d
	return nil
}

// GetDB returns the global database, or nil before Initialize.
func GetDB() *Database {
	return globalDB
}

func IsConnected() bool {
	if globalDB == nil || globalDB.db == nil {
		return false
	}
	return globalDB.db.Ping() == nil
}

func Close() error {
	if globalDB == nil {
		return nil
	}
	return globalDB.Close()
}

func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *Database) createTables() error {
	_, err := d.db.Exec(`
	CREATE TABLE IF NOT EXISTS moderation_actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		target_id TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_moderation_actions_guild
		ON moderation_actions(guild_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_moderation_actions_target
		ON moderation_actions(guild_id, target_id);
	`)
	return err
}

// RecordAction stores a and fills in its ID and CreatedAt.
func (d *Database) RecordAction(a *ModerationAction) error {
	if a.CreatedAt == 0 {
		a.CreatedAt = d.now().Unix()
	}

	res, err := d.db.Exec(`
		INSERT INTO moderation_actions (guild_id, kind, actor_id, target_id, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.GuildID, string(a.Kind), a.ActorID, a.TargetID, a.Outcome, a.Detail, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert moderation action: %w", err)
	}

	a.ID, err = res.LastInsertId()
	return err
}

// RecentActions returns the newest actions first.
func (d *Database) RecentActions(guildID string, limit int) ([]*ModerationAction, error) {
	rows, err := d.db.Query(`
		SELECT id, guild_id, kind, actor_id, target_id, outcome, detail, created_at
		FROM moderation_actions
		WHERE guild_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActions(rows)
}

// ActionsForTarget returns every action against targetID, newest first.
func (d *Database) ActionsForTarget(guildID, targetID string) ([]*ModerationAction, error) {
	rows, err := d.db.Query(`
		SELECT id, guild_id, kind, actor_id, target_id, outcome, detail, created_at
		FROM moderation_actions
		WHERE guild_id = ? AND target_id = ?
		ORDER BY created_at DESC, id DESC`, guildID, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActions(rows)
}

func (d *Database) CountByOutcome(guildID string) (map[string]int, error) {
	rows, err := d.db.Query(`
		SELECT outcome, COUNT(*) FROM moderation_actions
		WHERE guild_id = ? GROUP BY outcome`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

func scanActions(rows *sql.Rows) ([]*ModerationAction, error) {
	var actions []*ModerationAction
	for rows.Next() {
		a := &ModerationAction{}
		var kind string
		if err := rows.Scan(&a.ID, &a.GuildID, &kind, &a.ActorID, &a.TargetID, &a.Outcome, &a.Detail, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = ActionKind(kind)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
