// Package store adapts the remote real-time key-value store to a
// path-oriented contract: JSON values addressed by slash-separated paths,
// with change notification on every path and its ancestors. The store is the
// durable source of truth; conflicting concurrent writes resolve by last
// writer wins.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Store is the remote store contract. All operations cross a network
// boundary and may fail with errs.ErrStoreUnavailable; none are retried.
type Store interface {
	// Write overwrites the JSON value at path. A nil value deletes the path.
	Write(ctx context.Context, path string, value any) error

	// Read fetches the value at path. If no exact value exists it assembles
	// the subtree below path into a nested JSON object (child key segments
	// become object keys). Returns (nil, nil) when the path has never been
	// written.
	Read(ctx context.Context, path string) (json.RawMessage, error)

	// Subscribe invokes fn once immediately with the current value when one
	// is present, then again with the latest value after every change to the
	// path or its subtree, until the returned cancel function is called.
	// Intermediate values may be coalesced; only the latest is guaranteed.
	Subscribe(ctx context.Context, path string, fn func(json.RawMessage)) (func(), error)

	// Append writes value under a fresh, lexicographically increasing child
	// key of path. Ordering across devices follows store arrival order.
	Append(ctx context.Context, path string, value any) error

	Close()
}

// autoKeySeq breaks ties between keys generated within one millisecond.
var autoKeySeq atomic.Uint64

// autoKey returns a child key that sorts after all keys this process
// generated earlier: zero-padded unix milliseconds, a zero-padded sequence
// number, and a random suffix to distinguish processes.
func autoKey() string {
	return fmt.Sprintf("%013d-%010d-%s", time.Now().UnixMilli(), autoKeySeq.Add(1), uuid.NewString()[:8])
}

// notifyPaths returns the channels to publish on after a change to path:
// the path itself and every ancestor below the top-level collection, so a
// subscriber of sessions/{id}/members observes member writes and a
// subscriber of sessions/{id} observes everything in the session.
func notifyPaths(path string) []string {
	segs := strings.Split(path, "/")
	out := make([]string, 0, len(segs)-1)
	for i := len(segs); i >= 2; i-- {
		out = append(out, strings.Join(segs[:i], "/"))
	}
	return out
}

// assembleSubtree nests flat (relative path, value) pairs into a JSON
// object: child key segments become object keys, so a parent path read
// yields the whole subtree.
func assembleSubtree(entries map[string]json.RawMessage) (json.RawMessage, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	root := make(map[string]any)
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, rel := range keys {
		segs := strings.Split(rel, "/")
		node := root
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		node[segs[len(segs)-1]] = entries[rel]
	}
	return json.Marshal(root)
}
