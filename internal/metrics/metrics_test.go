package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(OperationCount.WithLabelValues("add", "ok"))
	errBefore := testutil.ToFloat64(OperationCount.WithLabelValues("add", "error"))

	RecordOperation("add", nil)
	RecordOperation("add", errors.New("boom"))
	RecordOperation("add", nil)

	require.Equal(t, okBefore+2, testutil.ToFloat64(OperationCount.WithLabelValues("add", "ok")))
	require.Equal(t, errBefore+1, testutil.ToFloat64(OperationCount.WithLabelValues("add", "error")))
}

func TestSetCollectionSize(t *testing.T) {
	SetCollectionSize(7)
	require.Equal(t, 7.0, testutil.ToFloat64(CollectionSize))
}

func TestRecordImport(t *testing.T) {
	before := testutil.ToFloat64(ImportedCount.WithLabelValues("skipped"))
	RecordImport(3, 2)
	require.Equal(t, before+2, testutil.ToFloat64(ImportedCount.WithLabelValues("skipped")))
}

func TestHistogramsCollect(t *testing.T) {
	RecordStoreDuration("save", time.Now().Add(-3*time.Millisecond))
	RecordHTTPRequestDuration("GET", "/health", "200", time.Millisecond)

	require.Positive(t, testutil.CollectAndCount(StoreDuration))
	require.Positive(t, testutil.CollectAndCount(HTTPRequestDuration))
}
