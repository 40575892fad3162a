package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var header = []string{"timestamp", "symbol", "side", "qty", "price", "tag", "realized_pnl"}

// ErrBadRecord marks a trade-log row that cannot be parsed during replay.
var ErrBadRecord = errors.New("bad trade log record")

// CSV is an append-only trade log backed by a CSV file. The file is
// created with its header row if absent; existing contents are never
// rewritten. Callers (the broker) serialize access.
type CSV struct {
	path string
	f    *os.File
	w    *csv.Writer
}

// NewCSV opens the trade log at path for appending, writing the header
// row when the file is new or empty.
func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trade log: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat trade log: %w", err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write trade log header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("write trade log header: %w", err)
		}
	}

	return &CSV{path: path, f: f, w: w}, nil
}

// Append writes one fill and flushes it to the file. On error nothing is
// considered recorded and the caller must not mutate its state.
func (l *CSV) Append(e Entry) error {
	rec := []string{
		e.Time.UTC().Format(time.RFC3339),
		e.Symbol,
		string(e.Side),
		strconv.FormatInt(e.Qty, 10),
		f(e.Price),
		e.Tag,
		f(e.RealizedPL),
	}
	if err := l.w.Write(rec); err != nil {
		return fmt.Errorf("append trade log: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("append trade log: %w", err)
	}
	return nil
}

// Replay reads the log front-to-back through a separate read handle and
// calls fn for each fill in file order. A missing file replays nothing.
func (l *CSV) Replay(fn func(Entry) error) error {
	rf, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open trade log for replay: %w", err)
	}
	defer rf.Close()

	r := csv.NewReader(rf)
	r.FieldsPerRecord = -1

	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read trade log: %w", err)
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == header[0] {
				continue
			}
		}
		e, err := parseEntry(rec)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}

func (l *CSV) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return err
	}
	return l.f.Close()
}

func parseEntry(rec []string) (Entry, error) {
	if len(rec) != len(header) {
		return Entry{}, fmt.Errorf("%w: %d fields, want %d", ErrBadRecord, len(rec), len(header))
	}

	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: timestamp %q", ErrBadRecord, rec[0])
	}
	side := Side(rec[2])
	if side != Buy && side != Sell {
		return Entry{}, fmt.Errorf("%w: side %q", ErrBadRecord, rec[2])
	}
	qty, err := strconv.ParseInt(rec[3], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: qty %q", ErrBadRecord, rec[3])
	}
	price, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: price %q", ErrBadRecord, rec[4])
	}
	pnl, err := strconv.ParseFloat(rec[6], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: realized_pnl %q", ErrBadRecord, rec[6])
	}

	return Entry{
		Time:       ts,
		Symbol:     rec[1],
		Side:       side,
		Qty:        qty,
		Price:      price,
		Tag:        rec[5],
		RealizedPL: pnl,
	}, nil
}

// f formats floats with the shortest representation that parses back to
// the same value, so replayed entry prices match in-memory state bit for
// bit.
func f(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
