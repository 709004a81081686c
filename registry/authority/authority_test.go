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

package authority

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyMembership(t *testing.T) {
	p := NewPolicy(
		[]string{"registrar-1"},
		[]string{"val-1", "val-2"},
	)

	assert.True(t, p.AuthorizeRegistrar("registrar-1"))
	assert.False(t, p.AuthorizeRegistrar("val-1"))
	assert.False(t, p.AuthorizeRegistrar("stranger"))

	assert.True(t, p.AuthorizeVoter("val-1"))
	assert.True(t, p.AuthorizeVoter("val-2"))
	assert.False(t, p.AuthorizeVoter("registrar-1"))
	assert.Equal(t, 2, p.Voters())
}

func TestEmptyPolicy(t *testing.T) {
	p := NewPolicy(nil, nil)
	assert.False(t, p.AuthorizeRegistrar("anyone"))
	assert.False(t, p.AuthorizeVoter("anyone"))
}
