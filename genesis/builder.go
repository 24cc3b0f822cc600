// Copyright (c) 2025 The Fleek developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/fleek-platform/fleek-contracts/state"
)

// Builder collects the calls that seed a fresh deployment's state.
type Builder struct {
	calls []func(*state.State) error
}

// State appends a call that mutates the genesis state.
func (b *Builder) State(fn func(*state.State) error) *Builder {
	b.calls = append(b.calls, fn)
	return b
}

// Build runs the collected calls against the given state. The caller commits
// the resulting stage.
func (b *Builder) Build(st *state.State) error {
	for _, fn := range b.calls {
		if err := fn(st); err != nil {
			return errors.Wrap(err, "genesis build")
		}
	}
	return nil
}
