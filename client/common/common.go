// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package common holds the pieces shared by the HTTP and websocket clients.
package common

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNot200Status  = errors.New("not 200 status code")
	ErrUnexpectedMsg = errors.New("unexpected message format")
)

// EventWrapper is used to return errors from the websocket alongside the
// data.
type EventWrapper[T any] struct {
	Data  T
	Error error
}
