package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"

	"github.com/silasdani/bandaid/internal/errs"
)

// ValkeyStore implements Store against a Valkey server. Values are JSON
// strings keyed by path; change notification rides pub/sub channels named
// after the path, published for the path and each ancestor on every write.
type ValkeyStore struct {
	client valkey.Client
	log    *zap.Logger
}

// NewValkey connects to the Valkey server and verifies the connection.
// Password is the session secret shared by all devices.
func NewValkey(ctx context.Context, addr, password string, db int, log *zap.Logger) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
		SelectDB:    db,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return &ValkeyStore{client: client, log: log}, nil
}

func (s *ValkeyStore) Write(ctx context.Context, path string, value any) error {
	if value == nil {
		if err := s.client.Do(ctx, s.client.B().Del().Key(path).Build()).Error(); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
		}
		return s.publish(ctx, path)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	if err := s.client.Do(ctx, s.client.B().Set().Key(path).Value(string(data)).Build()).Error(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return s.publish(ctx, path)
}

func (s *ValkeyStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	res := s.client.Do(ctx, s.client.B().Get().Key(path).Build())
	val, err := res.ToString()
	if err == nil {
		return json.RawMessage(val), nil
	}
	if !valkey.IsValkeyNil(err) {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return s.readSubtree(ctx, path)
}

// Subscribe establishes the pub/sub subscription before reading the current
// value. The SUBSCRIBE command completes only once the server confirms it, so
// a write racing with registration is seen either by the initial read or as a
// notification, never lost.
func (s *ValkeyStore) Subscribe(ctx context.Context, path string, fn func(json.RawMessage)) (func(), error) {
	dedicated, cancel := s.client.Dedicate()
	wait := dedicated.SetPubSubHooks(valkey.PubSubHooks{
		OnMessage: func(valkey.PubSubMessage) {
			latest, err := s.Read(ctx, path)
			if err != nil {
				s.log.Warn("store: re-read after change failed",
					zap.String("path", path), zap.Error(err))
				return
			}
			fn(latest)
		},
	})
	if err := dedicated.Do(ctx, dedicated.B().Subscribe().Channel(path).Build()).Error(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}

	if current, err := s.Read(ctx, path); err != nil {
		cancel()
		return nil, err
	} else if current != nil {
		fn(current)
	}

	go func() {
		if err := <-wait; err != nil && !errors.Is(err, valkey.ErrClosing) {
			s.log.Warn("store: subscription ended", zap.String("path", path), zap.Error(err))
		}
	}()
	return cancel, nil
}

func (s *ValkeyStore) Append(ctx context.Context, path string, value any) error {
	return s.Write(ctx, path+"/"+autoKey(), value)
}

func (s *ValkeyStore) Close() {
	s.client.Close()
}

// publish notifies the path's channel and every ancestor channel. Delivery
// is fire-and-forget; subscribers re-read the latest value themselves.
func (s *ValkeyStore) publish(ctx context.Context, path string) error {
	for _, ch := range notifyPaths(path) {
		if err := s.client.Do(ctx, s.client.B().Publish().Channel(ch).Message(path).Build()).Error(); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
		}
	}
	return nil
}

// readSubtree scans the keyspace below path and assembles the children into
// one nested JSON object, so a parent path read returns the whole subtree.
func (s *ValkeyStore) readSubtree(ctx context.Context, path string) (json.RawMessage, error) {
	prefix := path + "/"
	var keys []string
	cursor := uint64(0)
	for {
		res := s.client.Do(ctx, s.client.B().Scan().Cursor(cursor).Match(prefix+"*").Count(200).Build())
		entry, err := res.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
		}
		keys = append(keys, entry.Elements...)
		cursor = entry.Cursor
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(keys))
	unique := keys[:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, k)
	}

	res := s.client.Do(ctx, s.client.B().Mget().Key(unique...).Build())
	values, err := res.ToArray()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	entries := make(map[string]json.RawMessage, len(unique))
	for i, msg := range values {
		val, err := msg.ToString()
		if err != nil {
			continue // key deleted between scan and fetch
		}
		entries[strings.TrimPrefix(unique[i], prefix)] = json.RawMessage(val)
	}
	return assembleSubtree(entries)
}
