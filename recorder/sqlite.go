package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fortresslabs/fortress/journal"
	"github.com/fortresslabs/fortress/market"
	"github.com/fortresslabs/fortress/zone"
)

// SQLite persists ticks, candles, option-chain snapshots, zone sets and
// fill mirrors to a local SQLite database.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (or creates) the database and runs migrations.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the loops write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", path)
	return &SQLite{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp   INTEGER NOT NULL,
	symbol      TEXT NOT NULL,
	ltp         REAL,
	volume      INTEGER,
	oi          REAL
);
CREATE INDEX IF NOT EXISTS idx_ticks_ts ON ticks(timestamp);

CREATE TABLE IF NOT EXISTS candles (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp   INTEGER NOT NULL,
	symbol      TEXT NOT NULL,
	open        REAL,
	high        REAL,
	low         REAL,
	close       REAL,
	volume      REAL,
	UNIQUE(symbol, timestamp)
);

CREATE TABLE IF NOT EXISTS option_chain_snapshots (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp    INTEGER NOT NULL,
	underlying   TEXT NOT NULL,
	symbol       TEXT,
	expiry       TEXT,
	strike       REAL,
	option_type  TEXT,
	oi           REAL,
	change_in_oi REAL,
	ltp          REAL,
	volume       INTEGER,
	iv           REAL
);
CREATE INDEX IF NOT EXISTS idx_chain_ts ON option_chain_snapshots(timestamp);

CREATE TABLE IF NOT EXISTS zones (
	recorded_at INTEGER NOT NULL,
	zone_id     TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	type        TEXT,
	timeframe   TEXT,
	range_high  REAL,
	range_low   REAL,
	status      TEXT,
	note        TEXT
);

CREATE TABLE IF NOT EXISTS fills (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp    INTEGER NOT NULL,
	symbol       TEXT NOT NULL,
	side         TEXT NOT NULL,
	qty          INTEGER NOT NULL,
	price        REAL NOT NULL,
	tag          TEXT,
	realized_pnl REAL
);
CREATE INDEX IF NOT EXISTS idx_fills_ts ON fills(timestamp);
`

func (r *SQLite) RecordTick(t market.Tick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO ticks (timestamp, symbol, ltp, volume, oi) VALUES (?,?,?,?,?)`,
		t.Time.Unix(), t.Symbol, t.LTP, t.Volume, t.OI)
	return err
}

func (r *SQLite) RecordCandle(c market.Candle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO candles
		(timestamp, symbol, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)`,
		c.Time.Unix(), c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume)
	return err
}

func (r *SQLite) RecordOptionChain(underlying string, chain []market.OptionQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO option_chain_snapshots
		(timestamp, underlying, symbol, expiry, strike, option_type, oi, change_in_oi, ltp, volume, iv)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, q := range chain {
		if _, err := stmt.Exec(now, underlying, q.Symbol, q.Expiry, q.Strike,
			string(q.Type), q.OI, q.ChangeInOI, q.LTP, q.Volume, q.IV); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLite) RecordZones(zones []zone.Zone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO zones
		(recorded_at, zone_id, symbol, type, timeframe, range_high, range_low, status, note)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, z := range zones {
		if _, err := stmt.Exec(now, z.ID, z.Symbol, string(z.Type), z.Timeframe,
			z.RangeHigh, z.RangeLow, z.Status, z.Note); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLite) RecordFill(e journal.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fills
		(timestamp, symbol, side, qty, price, tag, realized_pnl)
		VALUES (?,?,?,?,?,?,?)`,
		e.Time.Unix(), e.Symbol, string(e.Side), e.Qty, e.Price, e.Tag, e.RealizedPL)
	return err
}

func (r *SQLite) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
