// Copyright 2025 OpenAnchor Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

// Op identifies a registry operation
type Op int

const (
	OpRegister Op = iota
	OpUpdate
	OpDelete
	OpSetUpdateInterval
	OpSetEnabled
	OpSetOpenIDURL
	OpPropose
	OpTally
	OpAdvanceRound
)

func (o Op) String() string {
	switch o {
	case OpRegister:
		return "register"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpSetUpdateInterval:
		return "set_update_interval"
	case OpSetEnabled:
		return "set_enabled"
	case OpSetOpenIDURL:
		return "set_open_id_url"
	case OpPropose:
		return "propose"
	case OpTally:
		return "tally"
	case OpAdvanceRound:
		return "advance_round"
	default:
		return "unknown"
	}
}

// Command is the explicit envelope for a registry operation: the op code,
// the caller identity, and the operation arguments. Unused arguments are
// ignored by ops that do not take them.
type Command struct {
	Op        Op
	Caller    string
	Domain    string
	OpenIDURL *string
	Jwks      []byte
	Interval  *uint64
	Enabled   bool
	Url       string
}

// Dispatch resolves a command to its handler. Authorization is checked by
// each handler against the authority policy before any state is touched.
func (r *Registry) Dispatch(cmd Command) error {
	switch cmd.Op {
	case OpRegister:
		return r.Register(
			cmd.Caller,
			cmd.Domain,
			cmd.OpenIDURL,
			cmd.Jwks,
			cmd.Interval,
		)
	case OpUpdate:
		return r.Update(
			cmd.Caller,
			cmd.Domain,
			cmd.OpenIDURL,
			cmd.Jwks,
			cmd.Interval,
			cmd.Enabled,
		)
	case OpDelete:
		return r.Delete(cmd.Caller, cmd.Domain)
	case OpSetUpdateInterval:
		return r.SetUpdateInterval(cmd.Caller, cmd.Domain, cmd.Interval)
	case OpSetEnabled:
		return r.SetEnabled(cmd.Caller, cmd.Domain, cmd.Enabled)
	case OpSetOpenIDURL:
		return r.SetOpenIDURL(cmd.Caller, cmd.Domain, cmd.Url)
	case OpPropose:
		return r.Propose(cmd.Caller, cmd.Domain, cmd.Jwks)
	case OpTally:
		return r.Tally(cmd.Caller, cmd.Domain)
	case OpAdvanceRound:
		return r.AdvanceRound(cmd.Caller)
	default:
		return ErrUnknownCommand
	}
}
