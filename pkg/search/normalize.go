package search

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/kaptinlin/jsonrepair"
)

// ErrMalformedPayload is returned when a provider payload cannot be resolved
// into a structured mapping even after repair.
var ErrMalformedPayload = errors.New("malformed provider payload")

// Payload is the normalized form of a raw provider response. It is the
// resolved tagged union of the shapes a provider can return: a structured
// mapping, repairable text, or garbage (which never becomes a Payload —
// Normalize returns ErrMalformedPayload instead).
type Payload struct {
	// Answer is the provider's inline short answer, when requested.
	Answer string
	// Results holds the raw result objects in provider order. Entries that
	// were not objects are nil so callers can skip them individually.
	Results []map[string]any
	// ProviderError is the payload's error field, empty when absent.
	ProviderError string
	// Raw is the full normalized mapping, kept for diagnostics.
	Raw map[string]any
}

// Normalize resolves a raw provider payload. Payloads that are not a JSON
// object are run through jsonrepair first (providers occasionally return
// truncated or single-quoted JSON); whatever still fails to parse as an
// object yields ErrMalformedPayload with the parse failure attached.
func Normalize(raw json.RawMessage) (*Payload, error) {
	mapping, err := parseObject([]byte(raw))
	if err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(raw))
		if rerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		mapping, err = parseObject([]byte(repaired))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}

	p := &Payload{Raw: mapping}

	if answer, ok := mapping["answer"].(string); ok {
		p.Answer = answer
	}

	switch v := mapping["error"].(type) {
	case nil:
	case string:
		p.ProviderError = v
	default:
		p.ProviderError = fmt.Sprintf("%v", v)
	}

	if results, ok := mapping["results"].([]any); ok {
		p.Results = make([]map[string]any, len(results))
		for i, r := range results {
			if m, ok := r.(map[string]any); ok {
				p.Results[i] = m
			}
		}
	}

	return p, nil
}

func parseObject(data []byte) (map[string]any, error) {
	var mapping map[string]any
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, errors.New("payload is null")
	}
	return mapping, nil
}
