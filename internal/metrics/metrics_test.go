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

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Statement("character", "items", "insert")
		c.Commit("character", time.Millisecond, nil)
		c.Repair("corrupt")
		c.Load("ok")
		c.Deferred()
		c.SetOnline(3)
	})
	assert.Nil(t, New(nil))
}

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	require.NotNil(t, c)

	c.Statement("character", "items", "insert")
	c.Statement("character", "items", "insert")
	c.Commit("session", time.Millisecond, errors.New("boom"))
	c.Repair("orphaned")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.statements.WithLabelValues("character", "items", "insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commits.WithLabelValues("session", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.repairs.WithLabelValues("orphaned")))
}
