package localstore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Schema describes the typed shape of one versioned blob key.
type Schema[T any] struct {
	Key     string
	Version int
	// Default builds the value used when the key is missing or unreadable.
	Default func() T
	// Migrate upgrades data written by an older version. Version 0 is a
	// bare JSON value written before envelopes existed. When nil, older
	// payloads are decoded as if they had the current shape.
	Migrate func(version int, raw json.RawMessage) (T, error)
	// Normalize fills nil nested values after decoding.
	Normalize func(T) T
}

type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

// Load reads and decodes the blob for schema. It always returns a usable value.
func Load[T any](a *Adapter, s Schema[T]) T {
	value, _ := Fetch(a, s)
	return value
}

// Fetch is Load that also reports whether the backend answered. A missing
// or undecodable blob still counts as read. Callers doing read-modify-write
// must not save when read is false, or they would replace data they never saw.
func Fetch[T any](a *Adapter, s Schema[T]) (value T, read bool) {
	raw, ok, err := a.read(s.Key)
	if err != nil {
		return s.fresh(), false
	}
	if !ok || raw == "" {
		return s.fresh(), true
	}
	decoded, err := s.decode([]byte(raw))
	if err != nil {
		a.logger.Warn("discarding unreadable local data", "key", s.Key, "error", err)
		return s.fresh(), true
	}
	return s.normalize(decoded), true
}

// Save encodes value with the current schema version and writes it.
func Save[T any](a *Adapter, s Schema[T], value T) {
	data, err := json.Marshal(value)
	if err != nil {
		a.logger.Warn("failed to encode local data", "key", s.Key, "error", err)
		return
	}
	payload, err := json.Marshal(envelope{Version: s.Version, Data: data})
	if err != nil {
		a.logger.Warn("failed to encode local data", "key", s.Key, "error", err)
		return
	}
	a.Write(s.Key, string(payload))
}

func (s Schema[T]) decode(raw []byte) (T, error) {
	var zero T
	version, data, err := splitEnvelope(raw)
	if err != nil {
		return zero, err
	}
	if version > s.Version {
		return zero, fmt.Errorf("unsupported version %d (current %d)", version, s.Version)
	}
	if version < s.Version && s.Migrate != nil {
		return s.Migrate(version, data)
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return zero, err
	}
	return value, nil
}

// splitEnvelope reports version 0 for payloads that are not wrapped.
func splitEnvelope(raw []byte) (int, json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return 0, nil, fmt.Errorf("invalid JSON")
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err == nil {
		rawVersion, hasVersion := probe["v"]
		data, hasData := probe["data"]
		if hasVersion && hasData && len(probe) == 2 {
			var version int
			if err := json.Unmarshal(rawVersion, &version); err != nil {
				return 0, nil, fmt.Errorf("invalid version: %w", err)
			}
			return version, data, nil
		}
	}
	return 0, trimmed, nil
}

func (s Schema[T]) fresh() T {
	if s.Default != nil {
		return s.normalize(s.Default())
	}
	var zero T
	return s.normalize(zero)
}

func (s Schema[T]) normalize(value T) T {
	if s.Normalize == nil {
		return value
	}
	return s.Normalize(value)
}
