package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/storepilot/internal/ir"
)

// JSON columns are stored as TEXT. Decoding goes through ir.DecodeJSON so
// integral numbers come back as int64 rather than float64.

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func marshalImages(images []any) (string, error) {
	if images == nil {
		images = []any{}
	}
	s, err := marshalJSON(images)
	if err != nil {
		return "", fmt.Errorf("marshal images: %w", err)
	}
	return s, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	s, err := marshalJSON(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return s, nil
}

func marshalSettings(settings map[string]any) (string, error) {
	if settings == nil {
		settings = map[string]any{}
	}
	s, err := marshalJSON(settings)
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}
	return s, nil
}

func unmarshalImages(data string) ([]any, error) {
	if data == "" {
		return []any{}, nil
	}
	v, err := ir.DecodeJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("unmarshal images: expected array, got %s", ir.TypeName(v))
	}
	return arr, nil
}

func unmarshalTags(data string) ([]string, error) {
	tags := []string{}
	if data == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(data), &tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return tags, nil
}

func unmarshalSettings(data string) (map[string]any, error) {
	if data == "" {
		return map[string]any{}, nil
	}
	v, err := ir.DecodeJSON([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unmarshal settings: expected object, got %s", ir.TypeName(v))
	}
	return m, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
