package models

// RawAddressPayload opaque reverse-geocoding provider response. The
// payload follows OSM Nominatim conventions: a JSON object carrying an
// "address" sub-object whose keys mix addr:* tags and generic fields.
type RawAddressPayload map[string]interface{}

// Address extracts the "address" sub-object. Returns false when the
// payload is empty, the field is missing or it is not an object.
func (p RawAddressPayload) Address() (map[string]interface{}, bool) {
	if len(p) == 0 {
		return nil, false
	}
	raw, exists := p["address"]
	if !exists {
		return nil, false
	}
	addr, ok := raw.(map[string]interface{})
	if !ok || len(addr) == 0 {
		return nil, false
	}
	return addr, true
}

// DisplayName returns the provider's display_name field if present
func (p RawAddressPayload) DisplayName() string {
	if raw, exists := p["display_name"]; exists {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}
