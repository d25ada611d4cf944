package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/farmacia-stock/internal/infrastructure/metrics"
)

func TestLedger_CuentaMutaciones(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewLedger(reg)

	m.ObserveMutation("movement.add", "ok", 3*time.Millisecond)
	m.ObserveMutation("movement.add", "INSUFFICIENT_STOCK", time.Millisecond)
	m.ObserveMutation("movement.add", "ok", time.Millisecond)
	m.SetStockLevels(4, 1, 0)

	// una serie por (op, outcome)
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "farmacia_ledger_mutations_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "farmacia_stock_low_articles"))
}

func TestHTTP_Registra(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewHTTP(reg)
	m.Observe("GET", "/api/stock", 200, time.Millisecond)
	m.Observe("GET", "/api/stock", 200, time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "farmacia_http_requests_total"))
}
