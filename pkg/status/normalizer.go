package status

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ISO8601Millis is the timestamp layout used for defaulted updatedAt values.
const ISO8601Millis = "2006-01-02T15:04:05.000Z"

// accessor reads one candidate value out of a payload. A nil result means absent.
type accessor struct {
	name string
	get  func(Payload) any
}

// Fallback chains, highest priority first.
var (
	statusChain = []accessor{
		{"status", field("status")},
		{"executionStatus", field("executionStatus")},
		{"state", field("state")},
	}
	updatedAtChain = []accessor{
		{"updatedAt", field("updatedAt")},
		{"swapDetails.updatedAt", path("swapDetails", "updatedAt")},
	}
	originAssetPath      = path("quoteResponse", "quoteRequest", "originAsset")
	destinationAssetPath = path("quoteResponse", "quoteRequest", "destinationAsset")
)

// StatusSources lists the payload fields consulted for status, in priority order.
func StatusSources() []string { return names(statusChain) }

// UpdatedAtSources lists the payload fields consulted for updatedAt, in priority order.
func UpdatedAtSources() []string { return names(updatedAtChain) }

// Normalizer turns heterogeneous upstream payloads into NormalizedExecutionStatus.
type Normalizer struct {
	// Now supplies the fallback updatedAt. Defaults to time.Now.
	Now func() time.Time
}

// NewNormalizer creates a normalizer using the wall clock
func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize normalizes p with the wall clock
func Normalize(p Payload) *NormalizedExecutionStatus {
	return NewNormalizer().Normalize(p)
}

// Normalize never fails: missing or mistyped fields take their documented defaults.
func (n *Normalizer) Normalize(p Payload) *NormalizedExecutionStatus {
	if p == nil {
		p = Payload{}
	}

	out := &NormalizedExecutionStatus{
		Status:           UnknownStatus,
		OriginAsset:      optionalString(originAssetPath(p)),
		DestinationAsset: optionalString(destinationAssetPath(p)),
		SwapDetails:      normalizeDetails(detailsSource(p)),
	}

	if v, ok := firstPresent(p, statusChain); ok {
		out.Status = coerceString(v)
	}

	if v, ok := firstPresent(p, updatedAtChain); ok {
		out.UpdatedAt = coerceString(v)
	} else {
		out.UpdatedAt = n.now().UTC().Format(ISO8601Millis)
	}

	return out
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// detailsSource picks swapDetails when present, otherwise the payload itself.
// A swapDetails value that is present but not an object yields no fields.
func detailsSource(p Payload) Payload {
	raw, ok := p["swapDetails"]
	if !ok || raw == nil {
		return p
	}
	if m, ok := asMap(raw); ok {
		return m
	}
	return Payload{}
}

func normalizeDetails(sd Payload) SwapDetails {
	return SwapDetails{
		AmountIn:                 orDefault(sd, "amountIn", nil),
		AmountInFormatted:        orDefault(sd, "amountInFormatted", nil),
		AmountInUsd:              orDefault(sd, "amountInUsd", nil),
		AmountOut:                orDefault(sd, "amountOut", nil),
		AmountOutFormatted:       orDefault(sd, "amountOutFormatted", nil),
		AmountOutUsd:             orDefault(sd, "amountOutUsd", nil),
		DepositedAmount:          orDefault(sd, "depositedAmount", nil),
		DepositedAmountFormatted: orDefault(sd, "depositedAmountFormatted", nil),
		DepositedAmountUsd:       orDefault(sd, "depositedAmountUsd", nil),
		DestinationChainTxHashes: list(sd, "destinationChainTxHashes"),
		IntentHashes:             list(sd, "intentHashes"),
		NearTxHashes:             list(sd, "nearTxHashes"),
		OriginChainTxHashes:      list(sd, "originChainTxHashes"),
		RefundedAmount:           orDefault(sd, "refundedAmount", "0"),
		RefundedAmountFormatted:  orDefault(sd, "refundedAmountFormatted", "0"),
		RefundedAmountUsd:        orDefault(sd, "refundedAmountUsd", "0"),
		Slippage:                 orDefault(sd, "slippage", nil),
	}
}

// firstPresent walks a chain and returns the first truthy value.
func firstPresent(p Payload, chain []accessor) (any, bool) {
	for _, a := range chain {
		if v := a.get(p); isPresent(v) {
			return v, true
		}
	}
	return nil, false
}

// isPresent treats nil, "", false and numeric zero as empty.
func isPresent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return t != "" && (err != nil || f != 0)
	case bool:
		return t
	case float64:
		return t != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32:
		return rv.Float() != 0
	default:
		return true
	}
}

// orDefault keeps any non-nil value, including 0 and "".
func orDefault(sd Payload, key string, def any) any {
	if v, ok := sd[key]; ok && v != nil {
		return v
	}
	return def
}

// list passes any slice or array through as []any; everything else is [].
func list(sd Payload, key string) []any {
	switch v := sd[key].(type) {
	case nil:
		return []any{}
	case []any:
		return v
	}

	rv := reflect.ValueOf(sd[key])
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func optionalString(v any) *string {
	if !isPresent(v) {
		return nil
	}
	s := coerceString(v)
	return &s
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any, []any, Payload:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func field(key string) func(Payload) any {
	return func(p Payload) any { return p[key] }
}

// path follows nested objects; any missing or non-object hop yields nil.
func path(keys ...string) func(Payload) any {
	return func(p Payload) any {
		var cur any = p
		for _, k := range keys {
			m, ok := asMap(cur)
			if !ok {
				return nil
			}
			cur = m[k]
		}
		return cur
	}
}

func asMap(v any) (Payload, bool) {
	switch m := v.(type) {
	case Payload:
		return m, m != nil
	case map[string]any:
		return Payload(m), m != nil
	case nil:
		return nil, false
	}

	// typed maps built in Go, e.g. map[string]string
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}
	out := make(Payload, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func names(chain []accessor) []string {
	out := make([]string, len(chain))
	for i, a := range chain {
		out[i] = a.name
	}
	return out
}
