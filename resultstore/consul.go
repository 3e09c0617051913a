package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	consul "github.com/hashicorp/consul/api"
)

// consul is limited to 64 operations per transaction
const consulMaxTxnOps = 64

// ConsulStore keeps the suppression list under <namespace>/suppressions, one key per test, and
// each run record as JSON under <namespace>/runs/<id>.
type ConsulStore struct {
	consul    *consul.Client
	namespace string
}

// NewConsulStore connects to the agent at address, or to the default agent address if it is empty.
func NewConsulStore(address, namespace string) (*ConsulStore, error) {
	config := consul.DefaultConfig()
	if address != "" {
		config.Address = address
	}
	client, err := consul.NewClient(config)
	if err != nil {
		return nil, err
	}
	return &ConsulStore{consul: client, namespace: namespace}, nil
}

func (c *ConsulStore) suppressionsPrefix() string { return c.namespace + "/suppressions/" }

func (c *ConsulStore) LoadSuppressions(ctx context.Context) ([]string, error) {
	pairs, _, err := c.consul.KV().List(c.suppressionsPrefix(), (&consul.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list failed for %s: %w", c.suppressionsPrefix(), err)
	}
	// keys are zero-padded positions, so List returns them in recorded order
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, string(p.Value))
	}
	return cleanSuppressions(lines), nil
}

func (c *ConsulStore) RecordRun(ctx context.Context, run RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	ops := consul.KVTxnOps{
		{Verb: consul.KVDeleteTree, Key: c.suppressionsPrefix()},
	}
	for i, id := range run.Failures {
		ops = append(ops, &consul.KVTxnOp{
			Verb:  consul.KVSet,
			Key:   fmt.Sprintf("%s%06d", c.suppressionsPrefix(), i),
			Value: []byte(id),
		})
	}
	ops = append(ops, &consul.KVTxnOp{Verb: consul.KVSet, Key: c.namespace + "/runs/" + run.ID, Value: data})
	return batchOperations(ctx, c.consul.KV(), ops)
}

// batchOperations applies ops in as many transactions as needed. The delete of the old list goes
// in the first batch, so a failure part way leaves a prefix of the new list in place.
func batchOperations(ctx context.Context, kv *consul.KV, ops consul.KVTxnOps) error {
	opts := (&consul.QueryOptions{}).WithContext(ctx)
	for i := 0; i < len(ops); {
		j := i + consulMaxTxnOps
		if j > len(ops) {
			j = len(ops)
		}
		ok, resp, _, err := kv.Txn(ops[i:j], opts)
		if err != nil {
			return err
		}
		if !ok {
			errs := make([]string, 0, len(resp.Errors))
			for _, te := range resp.Errors {
				errs = append(errs, te.What)
			}
			return fmt.Errorf("consul transaction failed: %s", strings.Join(errs, ", "))
		}
		i = j
	}
	return nil
}

func (c *ConsulStore) Close() error { return nil }
