package resultstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	consul "github.com/hashicorp/consul/api"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConsul implements just enough of the agent's KV and transaction endpoints.
type fakeConsul struct {
	kv   map[string][]byte
	txns int
	lock sync.Mutex
}

func (f *fakeConsul) handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/kv/{key:.*}", func(w http.ResponseWriter, req *http.Request) {
		prefix := mux.Vars(req)["key"]
		f.lock.Lock()
		var pairs consul.KVPairs
		for k, v := range f.kv {
			if strings.HasPrefix(k, prefix) {
				pairs = append(pairs, &consul.KVPair{Key: k, Value: v})
			}
		}
		f.lock.Unlock()
		if len(pairs) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pairs)
	}).Methods(http.MethodGet)
	r.HandleFunc("/v1/txn", func(w http.ResponseWriter, req *http.Request) {
		var ops []*consul.TxnOp
		if err := json.NewDecoder(req.Body).Decode(&ops); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.lock.Lock()
		f.txns++
		for _, op := range ops {
			switch op.KV.Verb {
			case consul.KVSet:
				f.kv[op.KV.Key] = op.KV.Value
			case consul.KVDeleteTree:
				for k := range f.kv {
					if strings.HasPrefix(k, op.KV.Key) {
						delete(f.kv, k)
					}
				}
			}
		}
		f.lock.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(consul.TxnResponse{})
	}).Methods(http.MethodPut)
	return r
}

func TestConsulStore(t *testing.T) {
	fake := &fakeConsul{kv: map[string][]byte{"other/key": []byte("x")}}
	httphelpers.WithServer(fake.handler(), func(server *httptest.Server) {
		ctx := context.Background()
		store, err := NewConsulStore(strings.TrimPrefix(server.URL, "http://"), "ci")
		require.NoError(t, err)

		suppressions, err := store.LoadSuppressions(ctx)
		require.NoError(t, err)
		assert.Len(t, suppressions, 0)

		var failures []string
		for i := 0; i < 70; i++ {
			failures = append(failures, "rest/xml/test "+string(rune('a'+i%26)))
		}
		require.NoError(t, store.RecordRun(ctx, RunRecord{ID: "run-1", Failures: failures}))
		assert.Equal(t, 2, fake.txns)

		suppressions, err = store.LoadSuppressions(ctx)
		require.NoError(t, err)
		assert.Equal(t, failures, suppressions)
		assert.Contains(t, fake.kv, "ci/runs/run-1")

		require.NoError(t, store.RecordRun(ctx, RunRecord{ID: "run-2", Failures: []string{"deployment"}}))
		suppressions, err = store.LoadSuppressions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"deployment"}, suppressions)
		assert.Equal(t, []byte("x"), fake.kv["other/key"])
		assert.NoError(t, store.Close())
	})
}
