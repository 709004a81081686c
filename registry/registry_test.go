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

import (
	"fmt"
	"testing"

	"github.com/openanchor-io/anchord/database"
	"github.com/openanchor-io/anchord/event"
	"github.com/openanchor-io/anchord/jwks"
	"github.com/openanchor-io/anchord/registry/authority"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRegistrar = "registrar-1"
	testVoter1    = "val-1"
	testVoter2    = "val-2"
	testVoter3    = "val-3"
	testDomain    = "example.com"
)

var (
	testJwksA = []byte(`{"keys":[{"kid":"key-a","kty":"RSA"}]}`)
	testJwksB = []byte(`{"keys":[{"kid":"key-b","kty":"RSA"}]}`)
	testJwksC = []byte(`{"keys":[{"kid":"key-c","kty":"RSA"}]}`)
)

func testVoters(n int) []string {
	voters := make([]string, 0, n)
	for i := range n {
		voters = append(voters, fmt.Sprintf("val-%d", i+1))
	}
	return voters
}

func newTestRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	db, err := database.New(database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	cfg.Database = db
	if cfg.Authority == nil {
		cfg.Authority = authority.NewPolicy(
			[]string{testRegistrar},
			testVoters(8),
		)
	}
	r, err := New(cfg)
	require.NoError(t, err)
	return r
}

func canonical(t *testing.T, content []byte) []byte {
	t.Helper()
	c, err := jwks.Canonicalize(content)
	require.NoError(t, err)
	return c
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry(t, Config{})

	url := "https://example.com/.well-known/openid-configuration"
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, &url, testJwksA, nil),
	)
	err := r.Register(testRegistrar, testDomain, nil, testJwksB, nil)
	assert.ErrorIs(t, err, ErrIssuerExists)

	// First registration's state is untouched
	issuer, err := r.GetIssuer(testDomain)
	require.NoError(t, err)
	require.NotNil(t, issuer.OpenIDURL)
	assert.Equal(t, url, *issuer.OpenIDURL)
	active, err := r.ActiveJwks(testDomain)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, testJwksA), active)
}

func TestRegisterUnauthorized(t *testing.T) {
	r := newTestRegistry(t, Config{})
	err := r.Register("stranger", testDomain, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	err = r.Register(testVoter1, testDomain, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRegisterValidation(t *testing.T) {
	r := newTestRegistry(t, Config{MaxDomainLen: 10, MaxJwksLen: 16})

	err := r.Register(testRegistrar, "", nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidDomain)

	err = r.Register(testRegistrar, "far-too-long.example.com", nil, nil, nil)
	assert.ErrorIs(t, err, ErrDomainTooLong)

	err = r.Register(
		testRegistrar,
		"exam.com",
		nil,
		[]byte(`{"keys":[{"kid":"a"}]}`),
		nil,
	)
	assert.ErrorIs(t, err, ErrJwksTooLong)

	err = r.Register(testRegistrar, "exam.com", nil, []byte(`{"key": "value"`), nil)
	assert.ErrorIs(t, err, jwks.ErrInvalidJson)

	// Nothing was committed by the rejected attempts
	_, err = r.GetIssuer("exam.com")
	assert.ErrorIs(t, err, ErrIssuerNotFound)
}

func TestIntervalClamp(t *testing.T) {
	r := newTestRegistry(
		t,
		Config{MinUpdateInterval: 10, MaxUpdateInterval: 1000},
	)

	for _, tc := range []struct {
		proposed uint64
		stored   uint64
	}{
		{proposed: 1, stored: 10},
		{proposed: 10, stored: 10},
		{proposed: 500, stored: 500},
		{proposed: 1000, stored: 1000},
		{proposed: 99999, stored: 1000},
	} {
		domain := fmt.Sprintf("clamp-%d.example", tc.proposed)
		proposed := tc.proposed
		require.NoError(
			t,
			r.Register(testRegistrar, domain, nil, nil, &proposed),
		)
		issuer, err := r.GetIssuer(domain)
		require.NoError(t, err)
		require.NotNil(t, issuer.IntervalUpdate)
		assert.Equal(t, tc.stored, *issuer.IntervalUpdate)
	}
}

func TestUpdateFullReplace(t *testing.T) {
	r := newTestRegistry(t, Config{})

	url := "https://example.com/oidc"
	interval := uint64(600)
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, &url, testJwksA, &interval),
	)

	// Absent inputs clear stored values, including the active JWKS
	require.NoError(
		t,
		r.Update(testRegistrar, testDomain, nil, nil, nil, false),
	)

	issuer, err := r.GetIssuer(testDomain)
	require.NoError(t, err)
	assert.Nil(t, issuer.OpenIDURL)
	assert.Nil(t, issuer.IntervalUpdate)
	assert.False(t, issuer.IsEnabled)

	active, err := r.ActiveJwks(testDomain)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestUpdateMissingIssuer(t *testing.T) {
	r := newTestRegistry(t, Config{})
	err := r.Update(testRegistrar, testDomain, nil, nil, nil, true)
	assert.ErrorIs(t, err, ErrIssuerNotFound)
}

func TestSetEnabledNoOp(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	r := newTestRegistry(t, Config{EventBus: bus})

	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, nil, nil),
	)

	_, ch := bus.Subscribe(event.IssuerEnabledChangedEventType)

	// Registered issuers are enabled, so this is a no-op
	require.NoError(t, r.SetEnabled(testRegistrar, testDomain, true))
	select {
	case <-ch:
		t.Fatal("unexpected event for no-op enabled change")
	default:
	}

	require.NoError(t, r.SetEnabled(testRegistrar, testDomain, false))
	issuer, err := r.GetIssuer(testDomain)
	require.NoError(t, err)
	assert.False(t, issuer.IsEnabled)
}

func TestSetOpenIDURLNoOp(t *testing.T) {
	r := newTestRegistry(t, Config{})

	url := "https://example.com/oidc"
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, &url, nil, nil),
	)

	// Unchanged URL is a no-op
	require.NoError(t, r.SetOpenIDURL(testRegistrar, testDomain, url))

	newUrl := "https://example.com/oidc2"
	require.NoError(t, r.SetOpenIDURL(testRegistrar, testDomain, newUrl))
	issuer, err := r.GetIssuer(testDomain)
	require.NoError(t, err)
	require.NotNil(t, issuer.OpenIDURL)
	assert.Equal(t, newUrl, *issuer.OpenIDURL)
}

func TestProposeVoteUniqueness(t *testing.T) {
	r := newTestRegistry(t, Config{})

	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, nil, nil),
	)
	require.NoError(t, r.Propose(testVoter1, testDomain, testJwksA))

	// Same voter, different content: still rejected
	err := r.Propose(testVoter1, testDomain, testJwksB)
	assert.ErrorIs(t, err, ErrAlreadyProposed)
}

func TestProposeUnauthorizedVoter(t *testing.T) {
	r := newTestRegistry(t, Config{})
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, nil, nil),
	)
	err := r.Propose("stranger", testDomain, testJwksA)
	assert.ErrorIs(t, err, ErrVoterNotAuthorized)
}

func TestProposeMissingIssuer(t *testing.T) {
	r := newTestRegistry(t, Config{})
	err := r.Propose(testVoter1, "missing.example", testJwksA)
	assert.ErrorIs(t, err, ErrIssuerNotFound)
}

func TestProposeMissingIssuerBeforeValidation(t *testing.T) {
	r := newTestRegistry(t, Config{})
	// A malformed document for an unknown domain reports the missing
	// issuer, not the JSON error
	err := r.Propose(testVoter1, "missing.example", []byte(`{"key": "value"`))
	assert.ErrorIs(t, err, ErrIssuerNotFound)
	assert.NotErrorIs(t, err, jwks.ErrInvalidJson)
}

func TestProposeCapacity(t *testing.T) {
	capacity := 4
	r := newTestRegistry(t, Config{
		MaxProposersPerIssuer: uint(capacity),
		Authority: authority.NewPolicy(
			[]string{testRegistrar},
			testVoters(capacity+1),
		),
	})
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, nil, nil),
	)

	for i := range capacity {
		voter := fmt.Sprintf("val-%d", i+1)
		require.NoError(t, r.Propose(voter, testDomain, testJwksA))
	}
	err := r.Propose(
		fmt.Sprintf("val-%d", capacity+1),
		testDomain,
		testJwksA,
	)
	assert.ErrorIs(t, err, ErrMaxProposers)
}

func TestProposeMalformedJsonLeavesNoTrace(t *testing.T) {
	r := newTestRegistry(t, Config{})
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, nil, nil),
	)

	err := r.Propose(testVoter1, testDomain, []byte(`{"key": "value"`))
	assert.ErrorIs(t, err, jwks.ErrInvalidJson)

	// No proposer entry, no counter, and the voter can still propose
	counters, err := r.db.GetVoteCounters(testDomain, nil)
	require.NoError(t, err)
	assert.Len(t, counters, 0)
	has, err := r.db.HasProposer(testDomain, testVoter1, nil)
	require.NoError(t, err)
	assert.False(t, has)
	require.NoError(t, r.Propose(testVoter1, testDomain, testJwksA))
}

func TestCrossDomainDedup(t *testing.T) {
	r := newTestRegistry(t, Config{})

	otherDomain := "other.example"
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, nil, nil),
	)
	require.NoError(
		t,
		r.Register(testRegistrar, otherDomain, nil, nil, nil),
	)

	// Byte-different but canonically identical documents
	docA := []byte(`{"keys": [{"kid": "a", "kty": "RSA"}]}`)
	docB := []byte(`{"keys":[{"kty":"RSA","kid":"a"}]}`)
	require.NoError(t, r.Propose(testVoter1, testDomain, docA))
	require.NoError(t, r.Propose(testVoter1, otherDomain, docB))

	hash := jwks.ContentHash(canonical(t, docA))

	// One blob, referenced by both domains' counters
	content, err := r.db.GetJwksContent(hash.Bytes(), nil)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, docA), content)

	for _, domain := range []string{testDomain, otherDomain} {
		counters, err := r.db.GetVoteCounters(domain, nil)
		require.NoError(t, err)
		require.Len(t, counters, 1)
		assert.Equal(t, hash.Bytes(), counters[0].ContentHash)
		assert.Equal(t, uint64(1), counters[0].Count)
	}
}

func TestTallyStrictMax(t *testing.T) {
	r := newTestRegistry(t, Config{})
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, nil, nil),
	)

	// B gets two votes, A and C one each
	require.NoError(t, r.Propose(testVoter1, testDomain, testJwksA))
	require.NoError(t, r.Propose(testVoter2, testDomain, testJwksB))
	require.NoError(t, r.Propose(testVoter3, testDomain, testJwksB))
	require.NoError(t, r.Propose("val-4", testDomain, testJwksC))

	require.NoError(t, r.Tally(testRegistrar, testDomain))

	active, err := r.ActiveJwks(testDomain)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, testJwksB), active)
}

func TestTallyTieKeepsOneCandidate(t *testing.T) {
	r := newTestRegistry(t, Config{})
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, nil, nil),
	)

	// Two hashes tied at two votes each
	require.NoError(t, r.Propose(testVoter1, testDomain, testJwksA))
	require.NoError(t, r.Propose(testVoter2, testDomain, testJwksA))
	require.NoError(t, r.Propose(testVoter3, testDomain, testJwksB))
	require.NoError(t, r.Propose("val-4", testDomain, testJwksB))

	require.NoError(t, r.Tally(testRegistrar, testDomain))

	active, err := r.ActiveJwks(testDomain)
	require.NoError(t, err)
	// The winner is one of the tied candidates, never a third value
	assert.Contains(
		t,
		[][]byte{canonical(t, testJwksA), canonical(t, testJwksB)},
		active,
	)
}

func TestTallyZeroProposalsClearsActive(t *testing.T) {
	r := newTestRegistry(t, Config{})
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, testJwksA, nil),
	)

	require.NoError(t, r.Tally(testRegistrar, testDomain))

	active, err := r.ActiveJwks(testDomain)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestTallyMissingIssuer(t *testing.T) {
	r := newTestRegistry(t, Config{})
	err := r.Tally(testRegistrar, "missing.example")
	assert.ErrorIs(t, err, ErrIssuerNotFound)
}

func TestEndToEndRegisterWithJwks(t *testing.T) {
	r := newTestRegistry(t, Config{})
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, testJwksA, nil),
	)
	active, err := r.ActiveJwks(testDomain)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, testJwksA), active)
}

func TestEndToEndProposalsBeatRegistrationJwks(t *testing.T) {
	r := newTestRegistry(t, Config{})
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, testJwksA, nil),
	)

	// The registration-time document received no votes
	require.NoError(t, r.Propose(testVoter1, testDomain, testJwksB))
	require.NoError(t, r.Propose(testVoter2, testDomain, testJwksB))
	require.NoError(t, r.Tally(testRegistrar, testDomain))

	active, err := r.ActiveJwks(testDomain)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, testJwksB), active)
}

func TestEndToEndDeleteCascades(t *testing.T) {
	r := newTestRegistry(t, Config{})
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, testJwksA, nil),
	)
	require.NoError(t, r.Propose(testVoter1, testDomain, testJwksB))

	require.NoError(t, r.Delete(testRegistrar, testDomain))

	_, err := r.GetIssuer(testDomain)
	assert.ErrorIs(t, err, ErrIssuerNotFound)
	_, err = r.ActiveJwks(testDomain)
	assert.ErrorIs(t, err, ErrIssuerNotFound)

	counters, err := r.db.GetVoteCounters(testDomain, nil)
	require.NoError(t, err)
	assert.Len(t, counters, 0)
	count, err := r.db.CountProposers(testDomain, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestAdvanceRoundResetsState(t *testing.T) {
	r := newTestRegistry(t, Config{})
	otherDomain := "other.example"
	require.NoError(
		t,
		r.Register(testRegistrar, testDomain, nil, nil, nil),
	)
	require.NoError(
		t,
		r.Register(testRegistrar, otherDomain, nil, nil, nil),
	)
	require.NoError(t, r.Propose(testVoter1, testDomain, testJwksA))
	require.NoError(t, r.Propose(testVoter2, testDomain, testJwksA))
	require.NoError(t, r.Propose(testVoter1, otherDomain, testJwksB))

	require.NoError(t, r.AdvanceRound(testRegistrar))

	// Winners installed
	active, err := r.ActiveJwks(testDomain)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, testJwksA), active)
	active, err = r.ActiveJwks(otherDomain)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, testJwksB), active)

	// Proposer lists and counters reset so the next round starts from zero
	for _, domain := range []string{testDomain, otherDomain} {
		count, err := r.db.CountProposers(domain, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
		counters, err := r.db.GetVoteCounters(domain, nil)
		require.NoError(t, err)
		assert.Len(t, counters, 0)
	}

	// Voters may propose again after the reset
	require.NoError(t, r.Propose(testVoter1, testDomain, testJwksC))
}

func TestAdvanceRoundUnauthorized(t *testing.T) {
	r := newTestRegistry(t, Config{})
	err := r.AdvanceRound(testVoter1)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestDispatch(t *testing.T) {
	r := newTestRegistry(t, Config{})

	require.NoError(t, r.Dispatch(Command{
		Op:     OpRegister,
		Caller: testRegistrar,
		Domain: testDomain,
		Jwks:   testJwksA,
	}))
	require.NoError(t, r.Dispatch(Command{
		Op:     OpPropose,
		Caller: testVoter1,
		Domain: testDomain,
		Jwks:   testJwksB,
	}))
	require.NoError(t, r.Dispatch(Command{
		Op:     OpTally,
		Caller: testRegistrar,
		Domain: testDomain,
	}))

	active, err := r.ActiveJwks(testDomain)
	require.NoError(t, err)
	assert.Equal(t, canonical(t, testJwksB), active)

	err = r.Dispatch(Command{Op: Op(99), Caller: testRegistrar})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
