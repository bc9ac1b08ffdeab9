package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is returned by GetJSON when a stored value does not decode.
var ErrCorrupt = errors.New("kv: corrupt value")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, pairs map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// GetJSON decodes the value under key into dst. found is false when the key
// is absent, in which case dst is untouched.
func GetJSON(ctx context.Context, s Store, key string, dst any) (found bool, err error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// Encode marshals every value of pairs for use with SetMany.
func Encode(pairs map[string]any) (map[string][]byte, error) {
	out := make(map[string][]byte, len(pairs))
	for k, v := range pairs {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k] = raw
	}
	return out, nil
}
