package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Collectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.VoteCast(OutcomeRecorded)
	p.VoteCast(OutcomeRecorded)
	p.VoteCast(OutcomeDuplicate)
	p.VoteCast(OutcomeRateLimited)
	p.LedgerCall("cast_vote", time.Millisecond, nil)
	p.LedgerCall("cast_vote", time.Millisecond, errors.New("boom"))
	p.BroadcastDropped(3)
	p.BroadcastDropped(0)
	p.ConnectionOpened()
	p.ConnectionOpened()
	p.ConnectionClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(p.votes.WithLabelValues(OutcomeRecorded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.votes.WithLabelValues(OutcomeDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.votes.WithLabelValues("rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.ledgerErrs.WithLabelValues("cast_vote")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.dropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.connections))
}

func TestNewPrometheus_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)
	_, err = NewPrometheus(reg)
	require.Error(t, err)
}
