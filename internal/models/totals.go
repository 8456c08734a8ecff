package models

import (
	"bytes"
	"encoding/json"
)

// Total is one keyed aggregate.
type Total struct {
	Key   string
	Value float64
}

// Totals is an ordered key->value mapping. It encodes as a JSON object whose
// members keep slice order, so ranked and chronological results survive
// serialization.
type Totals []Total

func (t Totals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(item.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value stored under key.
func (t Totals) Get(key string) (float64, bool) {
	for _, item := range t {
		if item.Key == key {
			return item.Value, true
		}
	}
	return 0, false
}

func (t Totals) Keys() []string {
	keys := make([]string, len(t))
	for i, item := range t {
		keys[i] = item.Key
	}
	return keys
}

func (t Totals) Sum() float64 {
	sum := 0.0
	for _, item := range t {
		sum += item.Value
	}
	return sum
}
