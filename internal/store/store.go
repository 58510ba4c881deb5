// Package store persists character records and player profiles in SQLite.
// Characters are stored as JSON documents keyed by (user_id, id); profiles
// are one row per user.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tatianab/daydream/internal/models"
)

// ErrNotFound is returned when a character or profile row does not exist.
var ErrNotFound = errors.New("store: not found")

const schema = `
CREATE TABLE IF NOT EXISTS characters (
	user_id    TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, id)
);

CREATE TABLE IF NOT EXISTS player_profiles (
	user_id         TEXT PRIMARY KEY,
	total_player_xp INTEGER NOT NULL DEFAULT 0,
	player_level    INTEGER NOT NULL DEFAULT 1,
	has_seen_intro  INTEGER NOT NULL DEFAULT 0
);
`

// Profile is the per-user account state shared by all of that user's
// characters.
type Profile struct {
	UserID       string
	TotalXP      int
	Level        int
	HasSeenIntro bool
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCharacter upserts the full character document.
func (s *Store) SaveCharacter(ctx context.Context, ch *models.Character) error {
	data, err := models.EncodeDocument(ch)
	if err != nil {
		return fmt.Errorf("encoding character %s: %w", ch.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO characters (user_id, id, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		ch.UserID, ch.ID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving character %s: %w", ch.ID, err)
	}
	return nil
}

// Character loads one character document.
func (s *Store) Character(ctx context.Context, userID, id string) (*models.Character, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM characters WHERE user_id = ? AND id = ?`, userID, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading character %s: %w", id, err)
	}
	ch, err := models.DecodeDocument([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decoding character %s: %w", id, err)
	}
	return ch, nil
}

// Characters lists a user's characters, most recently played first.
func (s *Store) Characters(ctx context.Context, userID string) ([]*models.Character, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM characters WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing characters for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []*models.Character
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		ch, err := models.DecodeDocument([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("decoding character document: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// DeleteCharacter removes one character document.
func (s *Store) DeleteCharacter(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM characters WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting character %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Profile loads a user's profile, creating the default row on first access.
func (s *Store) Profile(ctx context.Context, userID string) (Profile, error) {
	if err := s.ensureProfile(ctx, userID); err != nil {
		return Profile{}, err
	}
	p := Profile{UserID: userID}
	var seen int
	err := s.db.QueryRowContext(ctx,
		`SELECT total_player_xp, player_level, has_seen_intro FROM player_profiles WHERE user_id = ?`,
		userID).Scan(&p.TotalXP, &p.Level, &seen)
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile for %s: %w", userID, err)
	}
	p.HasSeenIntro = seen != 0
	return p, nil
}

// AddPlayerXP atomically increments a user's lifetime XP, applying at most
// one level-up per call. The threshold for the next level is level*100.
func (s *Store) AddPlayerXP(ctx context.Context, userID string, xp int) (Profile, bool, error) {
	if err := s.ensureProfile(ctx, userID); err != nil {
		return Profile{}, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Profile{}, false, fmt.Errorf("beginning xp transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE player_profiles SET total_player_xp = total_player_xp + ? WHERE user_id = ?`,
		xp, userID); err != nil {
		return Profile{}, false, fmt.Errorf("incrementing xp for %s: %w", userID, err)
	}

	var total, level int
	if err := tx.QueryRowContext(ctx,
		`SELECT total_player_xp, player_level FROM player_profiles WHERE user_id = ?`,
		userID).Scan(&total, &level); err != nil {
		return Profile{}, false, fmt.Errorf("reading profile for %s: %w", userID, err)
	}

	leveled := false
	if total >= level*100 {
		level++
		leveled = true
		if _, err := tx.ExecContext(ctx,
			`UPDATE player_profiles SET player_level = ? WHERE user_id = ?`, level, userID); err != nil {
			return Profile{}, false, fmt.Errorf("updating level for %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Profile{}, false, fmt.Errorf("committing xp transaction: %w", err)
	}

	p, err := s.Profile(ctx, userID)
	return p, leveled, err
}

// SetHasSeenIntro records that the one-time Storyteller introduction was
// shown.
func (s *Store) SetHasSeenIntro(ctx context.Context, userID string, seen bool) error {
	if err := s.ensureProfile(ctx, userID); err != nil {
		return err
	}
	v := 0
	if seen {
		v = 1
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE player_profiles SET has_seen_intro = ? WHERE user_id = ?`, v, userID)
	if err != nil {
		return fmt.Errorf("updating intro flag for %s: %w", userID, err)
	}
	return nil
}

func (s *Store) ensureProfile(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO player_profiles (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("ensuring profile for %s: %w", userID, err)
	}
	return nil
}
