package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

// ScanRequestFromFields builds a ScanRequest from a decoded payload. Values
// may come from JSON (string, float64, json.Number), form posts (string) or a
// protobuf Struct. A present but non-integer signal or battery is rejected.
func ScanRequestFromFields(fields map[string]any) (types.ScanRequest, error) {
	var (
		req types.ScanRequest
		err error
	)
	if req.Tag, err = optionalString(fields, "tag"); err != nil {
		return types.ScanRequest{}, err
	}
	if req.TagID, err = optionalString(fields, "tag_id"); err != nil {
		return types.ScanRequest{}, err
	}
	if req.DeviceID, err = optionalString(fields, "device_id"); err != nil {
		return types.ScanRequest{}, err
	}
	if req.Signal, err = optionalInt(fields, "signal"); err != nil {
		return types.ScanRequest{}, err
	}
	if req.Battery, err = optionalInt(fields, "battery"); err != nil {
		return types.ScanRequest{}, err
	}
	return req, nil
}

// ParseCursor parses the delta-sync cursor. Blank means 0.
func ParseCursor(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, raw)
	}
	return n, nil
}

func optionalString(fields map[string]any, key string) (string, error) {
	switch v := fields[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string", ErrMalformedField, key)
	}
}

func optionalInt(fields map[string]any, key string) (*int, error) {
	malformed := fmt.Errorf("%w: %s must be an integer", ErrMalformedField, key)

	var n int64
	switch v := fields[key].(type) {
	case nil:
		return nil, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, malformed
		}
		n = parsed
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return nil, malformed
		}
		n = parsed
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, malformed
		}
		n = int64(v)
	case int:
		n = int64(v)
	case int64:
		n = v
	default:
		return nil, malformed
	}

	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, malformed
	}
	out := int(n)
	return &out, nil
}
