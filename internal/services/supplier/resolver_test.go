package supplier

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropsync/internal/logger"
)

type fakeQuerier struct {
	responses map[string]error // country -> error (nil = success)
	calls     []string
}

func (f *fakeQuerier) QueryProduct(ctx context.Context, productID, country, currency, language string) (*Listing, error) {
	f.calls = append(f.calls, country)
	if err, ok := f.responses[country]; ok && err != nil {
		return nil, err
	}
	return &Listing{
		ProductID:    productID,
		Country:      country,
		Title:        "Listing " + country,
		ImageCount:   4,
		VariantCount: 2,
	}, nil
}

type countingPacer struct {
	pauses int
}

func (p *countingPacer) Pause(ctx context.Context) error {
	p.pauses++
	return ctx.Err()
}

func rejected(code string) error {
	return &Error{Code: code, Message: "rejected"}
}

func newTestResolver(q productQuerier, pacer Pacer, countries ...string) *Resolver {
	return NewResolver(q, countries, "EUR", "en", pacer, logger.New("error"))
}

func TestResolver_ShortCircuitsOnFirstSuccess(t *testing.T) {
	querier := &fakeQuerier{responses: map[string]error{
		"A": rejected("DELIVERY_NOT_SUPPORT"),
		// B succeeds
		"C": nil,
	}}
	pacer := &countingPacer{}
	resolver := newTestResolver(querier, pacer, "A", "B", "C")

	resolution, err := resolver.Resolve(context.Background(), "42")
	require.NoError(t, err)
	require.True(t, resolution.Found())

	assert.Equal(t, "B", resolution.Listing.Country)
	assert.Equal(t, []string{"A", "B"}, querier.calls, "C must never be probed")
	assert.Len(t, resolution.Attempts, 2)
	assert.Equal(t, ProbeRejected, resolution.Attempts[0].Outcome)
	assert.Equal(t, ProbeFound, resolution.Attempts[1].Outcome)
}

func TestResolver_ExhaustionIsNotAnError(t *testing.T) {
	querier := &fakeQuerier{responses: map[string]error{
		"A": rejected("DELIVERY_NOT_SUPPORT"),
		"B": rejected("OUT_OF_STOCK"),
		"C": rejected("DELIVERY_NOT_SUPPORT"),
	}}
	resolver := newTestResolver(querier, &countingPacer{}, "A", "B", "C")

	resolution, err := resolver.Resolve(context.Background(), "42")
	require.NoError(t, err)
	assert.False(t, resolution.Found())
	assert.Len(t, resolution.Attempts, 3, "one attempt record per candidate")
	for _, attempt := range resolution.Attempts {
		assert.Equal(t, ProbeRejected, attempt.Outcome)
	}
}

func TestResolver_PacesBetweenProbesOnly(t *testing.T) {
	querier := &fakeQuerier{responses: map[string]error{
		"A": rejected("X"),
		"B": rejected("X"),
		"C": rejected("X"),
	}}
	pacer := &countingPacer{}
	resolver := newTestResolver(querier, pacer, "A", "B", "C")

	_, err := resolver.Resolve(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 2, pacer.pauses, "no pause before the first probe")
}

func TestResolver_TerminalErrorAborts(t *testing.T) {
	querier := &fakeQuerier{responses: map[string]error{
		"A": rejected("InvalidSignature"),
	}}
	resolver := newTestResolver(querier, &countingPacer{}, "A", "B")

	_, err := resolver.Resolve(context.Background(), "42")
	require.Error(t, err)
	assert.Equal(t, []string{"A"}, querier.calls)
}

func TestResolver_AuthExpiryAborts(t *testing.T) {
	querier := &fakeQuerier{responses: map[string]error{
		"A": fmt.Errorf("%w: refresh rejected", ErrAuthExpired),
	}}
	resolver := newTestResolver(querier, &countingPacer{}, "A", "B")

	_, err := resolver.Resolve(context.Background(), "42")
	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.Equal(t, []string{"A"}, querier.calls)
}

func TestResolver_TransportFailureContinues(t *testing.T) {
	querier := &fakeQuerier{responses: map[string]error{
		"A": fmt.Errorf("dial tcp: connection refused"),
	}}
	resolver := newTestResolver(querier, &countingPacer{}, "A", "B")

	resolution, err := resolver.Resolve(context.Background(), "42")
	require.NoError(t, err)
	require.True(t, resolution.Found())
	assert.Equal(t, "B", resolution.Listing.Country)
	assert.Equal(t, ProbeTransport, resolution.Attempts[0].Outcome)
}

func TestResolver_CancellationStopsAtProbeBoundary(t *testing.T) {
	querier := &fakeQuerier{responses: map[string]error{
		"A": rejected("X"),
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := newTestResolver(querier, &countingPacer{}, "A", "B")
	_, err := resolver.Resolve(ctx, "42")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"A"}, querier.calls, "the in-flight probe completes, the next never starts")
}
