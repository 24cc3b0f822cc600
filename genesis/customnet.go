// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
)

// NewCustomNet creates a genesis from a user-supplied JSON config.
func NewCustomNet(r io.Reader) (*Genesis, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var config Config
	if err := decoder.Decode(&config); err != nil {
		return nil, errors.Wrap(err, "parse genesis config")
	}
	return New(&config)
}

// NewCustomNetFromFile creates a genesis from a JSON config file.
func NewCustomNetFromFile(path string) (*Genesis, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis config")
	}
	defer file.Close()
	return NewCustomNet(file)
}
