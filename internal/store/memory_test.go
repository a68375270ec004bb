package store

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"testing"
)

func TestMemoryWriteReadRoundtrip(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	in := map[string]any{"active": true, "memberCount": float64(2)}
	if err := s.Write(ctx, "sessions/ABC123", in); err != nil {
		t.Fatalf("Write: %v", err)
	}
	raw, err := s.Read(ctx, "sessions/ABC123")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("roundtrip: got %v, want %v", out, in)
	}
}

func TestMemoryReadAbsent(t *testing.T) {
	t.Parallel()
	s := NewMemory()

	raw, err := s.Read(context.Background(), "sessions/NOPE")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if raw != nil {
		t.Errorf("Read absent: got %s, want nil", raw)
	}
}

func TestMemoryDelete(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	if err := s.Write(ctx, "sessions/ABC123/cue", map[string]string{"text": "X2 Ref"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write(ctx, "sessions/ABC123/cue", nil); err != nil {
		t.Fatalf("Write nil: %v", err)
	}
	raw, err := s.Read(ctx, "sessions/ABC123/cue")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if raw != nil {
		t.Errorf("Read deleted: got %s, want nil", raw)
	}
}

func TestMemorySubtreeAssembly(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	if err := s.Write(ctx, "sessions/ABC123/members/dev-a", map[string]string{"role": "lead"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write(ctx, "sessions/ABC123/members/dev-b", map[string]string{"role": "band"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := s.Read(ctx, "sessions/ABC123/members")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var members map[string]map[string]string
	if err := json.Unmarshal(raw, &members); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("members: got %d entries, want 2", len(members))
	}
	if members["dev-a"]["role"] != "lead" || members["dev-b"]["role"] != "band" {
		t.Errorf("members: got %v", members)
	}
}

func TestMemoryExactValueWinsOverSubtree(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	meta := map[string]any{"active": true}
	if err := s.Write(ctx, "sessions/ABC123", meta); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write(ctx, "sessions/ABC123/cue", map[string]string{"text": "hi"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := s.Read(ctx, "sessions/ABC123")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, hasCue := out["cue"]; hasCue {
		t.Errorf("exact read returned assembled subtree: %v", out)
	}
	if out["active"] != true {
		t.Errorf("meta: got %v", out)
	}
}

func TestMemorySubscribeInitialValue(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	if err := s.Write(ctx, "sessions/ABC123/cue", map[string]string{"text": "hi"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got []json.RawMessage
	cancel, err := s.Subscribe(ctx, "sessions/ABC123/cue", func(raw json.RawMessage) {
		got = append(got, raw)
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	if len(got) != 1 {
		t.Fatalf("initial deliveries: got %d, want 1", len(got))
	}
}

func TestMemorySubscribeSeesChanges(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	var got []string
	cancel, err := s.Subscribe(ctx, "sessions/ABC123/cue", func(raw json.RawMessage) {
		var c map[string]string
		_ = json.Unmarshal(raw, &c)
		got = append(got, c["text"])
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	// No value yet, so no initial delivery.
	if len(got) != 0 {
		t.Fatalf("deliveries before write: got %d, want 0", len(got))
	}
	if err := s.Write(ctx, "sessions/ABC123/cue", map[string]string{"text": "first"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write(ctx, "sessions/ABC123/cue", map[string]string{"text": "second"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := []string{"first", "second"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("deliveries: got %v, want %v", got, want)
	}
}

func TestMemorySubscribeAncestorSeesChildWrites(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	var last json.RawMessage
	cancel, err := s.Subscribe(ctx, "sessions/ABC123/members", func(raw json.RawMessage) {
		last = raw
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	if err := s.Write(ctx, "sessions/ABC123/members/dev-a", map[string]string{"role": "band"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var members map[string]map[string]string
	if err := json.Unmarshal(last, &members); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if members["dev-a"]["role"] != "band" {
		t.Errorf("ancestor delivery: got %v", members)
	}
}

func TestMemorySubscribeCancel(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	calls := 0
	cancel, err := s.Subscribe(ctx, "sessions/ABC123/cue", func(json.RawMessage) {
		calls++
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()

	if err := s.Write(ctx, "sessions/ABC123/cue", map[string]string{"text": "hi"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if calls != 0 {
		t.Errorf("deliveries after cancel: got %d, want 0", calls)
	}
}

func TestMemoryAppendKeysIncrease(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	// Back-to-back appends land in the same millisecond; the sequence
	// component must still keep them in insertion order.
	texts := []string{"a", "b", "c", "d", "e"}
	for i, text := range texts {
		if err := s.Append(ctx, "sessions/ABC123/leadActions", map[string]string{"text": text}); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	raw, err := s.Read(ctx, "sessions/ABC123/leadActions")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var log map[string]map[string]string
	if err := json.Unmarshal(raw, &log); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(log) != len(texts) {
		t.Fatalf("entries: got %d, want %d", len(log), len(texts))
	}
	keys := make([]string, 0, len(log))
	for k := range log {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if log[k]["text"] != texts[i] {
			t.Errorf("key %d (%q): got %q, want %q", i, k, log[k]["text"], texts[i])
		}
	}
}

func TestNotifyPaths(t *testing.T) {
	t.Parallel()
	got := notifyPaths("sessions/ABC123/members/dev-a")
	want := []string{
		"sessions/ABC123/members/dev-a",
		"sessions/ABC123/members",
		"sessions/ABC123",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("notifyPaths: got %v, want %v", got, want)
	}
}

func TestAssembleSubtreeNesting(t *testing.T) {
	t.Parallel()
	entries := map[string]json.RawMessage{
		"members/dev-a": json.RawMessage(`{"role":"lead"}`),
		"cue":           json.RawMessage(`{"text":"hi"}`),
	}
	raw, err := assembleSubtree(entries)
	if err != nil {
		t.Fatalf("assembleSubtree: %v", err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := out["members"]; !ok {
		t.Errorf("missing nested members object: %s", raw)
	}
	if _, ok := out["cue"]; !ok {
		t.Errorf("missing cue: %s", raw)
	}
}
