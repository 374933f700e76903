package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.AccountsFetched.Add(3)
	m.DecodeFailures.WithLabelValues("size_mismatch").Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.AccountsFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeFailures.WithLabelValues("size_mismatch")))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["test_scan_accounts_fetched_total"])
	assert.True(t, names["test_scan_decode_failures_total"])
}

func TestRecordScanRun(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.ScanRunsTotal.WithLabelValues("success"))

	RecordScanRun("success", 1.5, 4242, 1700000000)

	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.ScanRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 4242.0, testutil.ToFloat64(DefaultMetrics.LastScanSlot))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(DefaultMetrics.LastSuccessfulScan))
}

func TestWriteTextfile(t *testing.T) {
	RecordAccountsFetched(2)
	RecordZeroPrice()

	path := filepath.Join(t.TempDir(), "binscan.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dlmm_binscan_scan_accounts_fetched_total")
	assert.Contains(t, string(data), "dlmm_binscan_scan_zero_price_bin_arrays_total")
}
