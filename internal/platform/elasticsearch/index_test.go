package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"maatram_portal_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCluster answers the handful of endpoints the event index uses.
type fakeCluster struct {
	mu        sync.Mutex
	indexed   map[string]map[string]interface{}
	created   bool
	lastQuery map[string]interface{}
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"version":{"number":"8.13.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)
	case r.Method == http.MethodHead && r.URL.Path == "/"+EventsIndexName:
		if f.created {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && r.URL.Path == "/"+EventsIndexName:
		f.created = true
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	case strings.HasPrefix(r.URL.Path, "/"+EventsIndexName+"/_doc/"):
		var doc map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.indexed[strings.TrimPrefix(r.URL.Path, "/"+EventsIndexName+"/_doc/")] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case r.URL.Path == "/"+EventsIndexName+"/_search":
		_ = json.NewDecoder(r.Body).Decode(&f.lastQuery)
		_, _ = io.WriteString(w, `{"hits":{"hits":[{"_id":"e2"},{"_id":"e1"}]}}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unexpected request"}`)
	}
}

func newTestIndex(t *testing.T) (*EventIndex, *fakeCluster) {
	t.Helper()
	cluster := &fakeCluster{indexed: make(map[string]map[string]interface{})}
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.Config{ElasticsearchURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, client)
	return NewEventIndex(client, zap.NewNop()), cluster
}

func TestNewClient_DisabledWithoutURL(t *testing.T) {
	client, err := NewClient(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.Nil(t, NewEventIndex(client, zap.NewNop()))
}

func TestEventIndex_EnsureIndex(t *testing.T) {
	idx, cluster := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.EnsureIndex(ctx))
	assert.True(t, cluster.created)
	// Second call sees the existing index.
	require.NoError(t, idx.EnsureIndex(ctx))
}

func TestEventIndex_IndexAndSearch(t *testing.T) {
	idx, cluster := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, "e1", map[string]interface{}{"title": "Beach Cleanup"}))
	assert.Equal(t, "Beach Cleanup", cluster.indexed["e1"]["title"])

	ids, err := idx.Search(ctx, "beach", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e1"}, ids)
	assert.EqualValues(t, 10, cluster.lastQuery["size"])
}
