// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb journals committed operations in SQLite, for audits, event
// queries and the subscription feed.
package logdb

import (
	"context"
	"database/sql"
	"math/big"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/fleek"
)

const opTableSchema = `CREATE TABLE IF NOT EXISTS op (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id BLOB(16) NOT NULL,
	ts INTEGER NOT NULL,
	instance BLOB(20) NOT NULL,
	kind TEXT NOT NULL,
	account BLOB(20) NOT NULL,
	amount BLOB,
	totalStaked BLOB,
	rewardRate BLOB
);

CREATE INDEX IF NOT EXISTS op_ts ON op(ts);
CREATE INDEX IF NOT EXISTS op_instance ON op(instance);
CREATE INDEX IF NOT EXISTS op_account ON op(account);`

// LogDB is the operations journal.
type LogDB struct {
	path string
	db   *sql.DB
}

// New creates or opens the journal at the given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open logdb")
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(opTableSchema); err != nil {
		return nil, errors.Wrap(err, "init logdb schema")
	}
	return &LogDB{path, db}, nil
}

// NewMem creates a journal in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close closes the journal.
func (db *LogDB) Close() {
	db.db.Close()
}

// Path returns the journal file path.
func (db *LogDB) Path() string {
	return db.path
}

// MaxSeq returns the highest assigned sequence, 0 if the journal is empty.
func (db *LogDB) MaxSeq() (uint64, error) {
	row := db.db.QueryRow("SELECT IFNULL(MAX(seq), 0) FROM op")
	var seq uint64
	if err := row.Scan(&seq); err != nil {
		return 0, errors.Wrap(err, "query max seq")
	}
	return seq, nil
}

// Append journals the operation and returns it with Seq and ID assigned.
func (db *LogDB) Append(op *Op) (*Op, error) {
	id := uuid.NewRandom()
	res, err := db.db.Exec(
		"INSERT INTO op(id, ts, instance, kind, account, amount, totalStaked, rewardRate) VALUES(?,?,?,?,?,?,?,?)",
		[]byte(id),
		op.Time,
		op.Instance.Bytes(),
		op.Kind,
		op.Account.Bytes(),
		bigValue(op.Amount),
		bigValue(op.TotalStaked),
		bigValue(op.RewardRate),
	)
	if err != nil {
		return nil, errors.Wrap(err, "append op")
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "append op")
	}

	recorded := *op
	recorded.Seq = uint64(seq)
	recorded.ID = id.String()
	return &recorded, nil
}

// Filter queries journal rows matching the filter.
func (db *LogDB) Filter(ctx context.Context, filter *Filter) ([]*Op, error) {
	if filter == nil {
		return db.query(ctx, "SELECT * FROM op")
	}
	var args []interface{}
	stmt := "SELECT * FROM op WHERE 1"
	if filter.Range != nil {
		condition := "seq"
		if filter.Range.Unit == Time {
			condition = "ts"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ?"
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Instance != nil {
			args = append(args, criteria.Instance.Bytes())
			stmt += " AND instance = ?"
		}
		if criteria.Account != nil {
			args = append(args, criteria.Account.Bytes())
			stmt += " AND account = ?"
		}
		if criteria.Kind != "" {
			args = append(args, criteria.Kind)
			stmt += " AND kind = ?"
		}
		stmt += ")"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += ")"
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
	return db.query(ctx, stmt, args...)
}

func (db *LogDB) query(ctx context.Context, stmt string, args ...interface{}) ([]*Op, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query ops")
	}
	defer rows.Close()

	var ops []*Op
	for rows.Next() {
		var (
			seq         uint64
			id          []byte
			ts          uint64
			instance    []byte
			kind        string
			account     []byte
			amount      []byte
			totalStaked []byte
			rewardRate  []byte
		)
		if err := rows.Scan(&seq, &id, &ts, &instance, &kind, &account, &amount, &totalStaked, &rewardRate); err != nil {
			return nil, errors.Wrap(err, "scan op")
		}
		ops = append(ops, &Op{
			Seq:         seq,
			ID:          uuid.UUID(id).String(),
			Time:        ts,
			Instance:    fleek.BytesToAddress(instance),
			Kind:        kind,
			Account:     fleek.BytesToAddress(account),
			Amount:      bigScan(amount),
			TotalStaked: bigScan(totalStaked),
			RewardRate:  bigScan(rewardRate),
		})
	}
	return ops, rows.Err()
}

// bigValue encodes a big.Int column value; nil stays NULL.
func bigValue(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	// zero encodes to a single zero byte so it round-trips distinct from NULL
	if v.Sign() == 0 {
		return []byte{0}
	}
	return v.Bytes()
}

func bigScan(raw []byte) *big.Int {
	if raw == nil {
		return nil
	}
	v := new(big.Int).SetBytes(raw)
	if v.Sign() == 0 {
		// SetBytes leaves a non-canonical zero; decode to the same
		// representation big.NewInt(0) has
		return new(big.Int)
	}
	return v
}
