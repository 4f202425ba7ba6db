package serialize

import (
	"fmt"
	"net/url"

	"golang.org/x/text/unicode/norm"

	"github.com/mkstack/mkstack/internal/stack"
)

// EncodeURLState encodes a configuration as the builder's shareable URL
// query string: one parameter per field, set members comma-joined, empty
// sets carried as the "none" sentinel so they survive the round trip.
//
// Parameter order follows url.Values.Encode (sorted by key); the decoder
// does not care.
func EncodeURLState(reg *stack.Registry, cfg stack.Config) string {
	vals := url.Values{}
	for _, f := range reg.Fields() {
		vals.Set(string(f.ID), cfg.ValueOf(f.ID).String())
	}
	return vals.Encode()
}

// DecodeURLState decodes a query string back into a full configuration.
// Values are NFC-normalized before domain validation so links pasted
// through normalizing transports still decode. Unknown parameters and
// out-of-domain values are rejected; missing fields take their defaults.
//
// For any resolver-stable s, DecodeURLState(EncodeURLState(s)) == s.
func DecodeURLState(reg *stack.Registry, query string) (stack.Config, error) {
	vals, err := url.ParseQuery(query)
	if err != nil {
		return stack.Config{}, fmt.Errorf("malformed state query: %w", err)
	}

	partial := make(map[stack.FieldID]stack.Value, len(vals))
	for key, vs := range vals {
		f, ok := reg.Lookup(stack.FieldID(key))
		if !ok {
			return stack.Config{}, fmt.Errorf("unknown state parameter %q", key)
		}
		raw := ""
		if len(vs) > 0 {
			raw = norm.NFC.String(vs[len(vs)-1])
		}
		partial[f.ID] = reg.ParseValue(f.ID, raw)
	}

	cfg, derrs := reg.Merge(partial)
	if len(derrs) > 0 {
		return stack.Config{}, fmt.Errorf("invalid state: %w", derrs[0])
	}
	return cfg, nil
}
