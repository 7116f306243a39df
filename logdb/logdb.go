// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb persists contract events in sqlite and answers filter queries.
package logdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/pledge/log"
	"github.com/vechain/pledge/pledge"
)

var logger = log.WithContext("pkg", "logdb")

const insertEventQuery = "INSERT OR REPLACE INTO event(seq, callID, callTime, caller, address, name, subject, amount, data) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)"

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (*LogDB, error) {
	return open(path, path+"?_journal_mode=WAL&_busy_timeout=5000")
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection serializes writers and keeps an in-memory db alive
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Insert writes the events of one committed call atomically.
func (db *LogDB) Insert(info *CallInfo, events []*pledge.Event) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := db.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return err
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for i, ev := range events {
		data, err := encodeData(ev.Data)
		if err != nil {
			tx.Rollback()
			return err
		}
		amount := ev.Amount
		if amount == nil {
			amount = new(big.Int)
		}
		if _, err := tx.Stmt(stmt).Exec(
			newSequence(info.Number, uint32(i)),
			info.ID.Bytes(),
			info.Time,
			info.Caller.Bytes(),
			ev.Address.Bytes(),
			ev.Name,
			ev.Subject.Bytes(),
			amount.Bytes(),
			data,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricInsertedEvents().Add(int64(len(events)))
	logger.Trace("events inserted", "call", info.ID, "number", info.Number, "count", len(events))
	return nil
}

// NewestCallNumber returns the number of the newest call with events, and false if the db is empty.
func (db *LogDB) NewestCallNumber() (uint32, bool, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, false, err
	}
	if !seq.Valid {
		return 0, false, nil
	}
	return sequence(seq.Int64).CallNumber(), true, nil
}

// FilterEvents returns the events matching filter.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT seq, callID, callTime, caller, address, name, subject, amount, data FROM event"
	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	if filter.Range != nil {
		if filter.Range.Unit == Time {
			args = append(args, filter.Range.From)
			stmt += " AND callTime >= ?"
			if filter.Range.To >= filter.Range.From {
				args = append(args, filter.Range.To)
				stmt += " AND callTime <= ?"
			}
		} else {
			from, to := clampCallNumber(filter.Range.From), clampCallNumber(filter.Range.To)
			args = append(args, newSequence(from, 0))
			stmt += " AND seq >= ?"
			if filter.Range.To >= filter.Range.From {
				args = append(args, newSequence(to, math.MaxInt32))
				stmt += " AND seq <= ?"
			}
		}
	}
	if filter.CallID != nil {
		args = append(args, filter.CallID.Bytes())
		stmt += " AND callID = ?"
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ?"
		}
		if criteria.Name != nil {
			args = append(args, *criteria.Name)
			stmt += " AND name = ?"
		}
		if criteria.Subject != nil {
			args = append(args, criteria.Subject.Bytes())
			stmt += " AND subject = ?"
		}
		stmt += " )"
		if i == len(filter.CriteriaSet)-1 {
			stmt += " )"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq      int64
			callID   []byte
			callTime uint64
			caller   []byte
			address  []byte
			name     string
			subject  []byte
			amount   []byte
			data     []byte
		)
		if err := rows.Scan(
			&seq,
			&callID,
			&callTime,
			&caller,
			&address,
			&name,
			&subject,
			&amount,
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			CallID:     pledge.BytesToBytes32(callID),
			CallNumber: sequence(seq).CallNumber(),
			Index:      sequence(seq).Index(),
			CallTime:   callTime,
			Caller:     pledge.BytesToAddress(caller),
			Address:    pledge.BytesToAddress(address),
			Name:       name,
			Subject:    pledge.BytesToAddress(subject),
			Amount:     new(big.Int).SetBytes(amount),
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &event.Data); err != nil {
				return nil, errors.Wrap(err, "decode event data")
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func encodeData(data map[string]string) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return json.Marshal(data)
}

func clampCallNumber(n uint64) uint32 {
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}
