// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

func nullIfEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

// exportedOp is the journal row layout on the backup stream.
type exportedOp struct {
	Seq         uint64
	ID          []byte
	Time        uint64
	Instance    []byte
	Kind        string
	Account     []byte
	Amount      []byte
	TotalStaked []byte
	RewardRate  []byte
}

// Export streams the whole journal to w as snappy-compressed RLP rows,
// ordered by sequence. onRow, if not nil, is called after each exported row.
func (db *LogDB) Export(ctx context.Context, w io.Writer, onRow func(n uint64)) (uint64, error) {
	rows, err := db.db.QueryContext(ctx, "SELECT * FROM op ORDER BY seq ASC")
	if err != nil {
		return 0, errors.Wrap(err, "export ops")
	}
	defer rows.Close()

	zw := snappy.NewBufferedWriter(w)
	var n uint64
	for rows.Next() {
		var row exportedOp
		if err := rows.Scan(
			&row.Seq, &row.ID, &row.Time, &row.Instance, &row.Kind,
			&row.Account, &row.Amount, &row.TotalStaked, &row.RewardRate,
		); err != nil {
			return n, errors.Wrap(err, "scan op")
		}
		if err := rlp.Encode(zw, &row); err != nil {
			return n, errors.Wrap(err, "encode op")
		}
		n++
		if onRow != nil {
			onRow(n)
		}
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}
	}
	if err := rows.Err(); err != nil {
		return n, err
	}
	return n, zw.Close()
}

// Import appends rows from a stream produced by Export, preserving sequence
// numbers. The journal must not already contain rows at or above the
// stream's first sequence.
func (db *LogDB) Import(ctx context.Context, r io.Reader, onRow func(n uint64)) (uint64, error) {
	stream := rlp.NewStream(snappy.NewReader(r), 0)

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "import ops")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO op(seq, id, ts, instance, kind, account, amount, totalStaked, rewardRate) VALUES(?,?,?,?,?,?,?,?,?)")
	if err != nil {
		return 0, errors.Wrap(err, "import ops")
	}
	defer stmt.Close()

	var n uint64
	for {
		var row exportedOp
		if err := stream.Decode(&row); err != nil {
			if err == io.EOF {
				break
			}
			return n, errors.Wrap(err, "decode op")
		}
		if len(row.ID) != 16 {
			return n, errors.New("malformed op id")
		}
		// rlp reads NULL columns back as empty strings
		if _, err := stmt.Exec(
			row.Seq, row.ID, row.Time, row.Instance, row.Kind,
			row.Account, nullIfEmpty(row.Amount), nullIfEmpty(row.TotalStaked), nullIfEmpty(row.RewardRate),
		); err != nil {
			return n, errors.Wrap(err, "insert op")
		}
		n++
		if onRow != nil {
			onRow(n)
		}
	}
	return n, tx.Commit()
}
