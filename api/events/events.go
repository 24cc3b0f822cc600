// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events serves filtered queries over the operations journal.
package events

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/api/utils"
	"github.com/fleek-platform/fleek-contracts/logdb"
)

type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter logdb.Filter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if filter.Range != nil && filter.Range.To != 0 && filter.Range.From > filter.Range.To {
		return utils.BadRequest(fmt.Errorf("range.to must be greater than or equal to range.from"))
	}
	// reject null elements in CriteriaSet; {} decodes to the catch-all
	// criteria and is handled by the filter engine
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	if filter.Options == nil {
		// query one row beyond the limit to detect a truncated result
		filter.Options = &logdb.Options{
			Offset: 0,
			Limit:  e.limit + 1,
		}
	}

	ops, err := e.db.Filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	if len(ops) > int(e.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered operations exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}

	return utils.WriteJSON(w, ops)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /logs/op").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
