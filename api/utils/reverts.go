// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"net/http"

	"github.com/fleek-platform/fleek-contracts/contracts/reverts"
)

// ConvertOpError maps typed contract reverts onto client errors. A revert is
// the caller's fault and never an internal failure; anything untyped stays a
// plain 500.
func ConvertOpError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, reverts.ErrUnauthorized):
		return Forbidden(err)
	case errors.Is(err, reverts.ErrBusy):
		return HTTPError(err, http.StatusServiceUnavailable)
	case reverts.IsRevert(err):
		return BadRequest(err)
	}
	return err
}
