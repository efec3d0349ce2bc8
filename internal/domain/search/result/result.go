package result

// Hit is a single search hit. Identity and rank live in dedicated fields;
// everything the store returned for the point stays in the payload map.
// Payload keys named "id" or "score" are therefore plain attributes and can
// never shadow the hit's identifier or relevance score.
type Hit struct {
	id      string
	score   float64
	payload map[string]any
}

// New creates a search hit.
func New(id string, score float64, payload map[string]any) Hit {
	return Hit{id: id, score: score, payload: payload}
}

// ID returns the point identifier.
func (h *Hit) ID() string { return h.id }

// Score returns the relevance score, higher is more similar.
func (h *Hit) Score() float64 { return h.score }

// Payload returns the stored attributes of the point.
func (h *Hit) Payload() map[string]any { return h.payload }

// Attribute returns a single payload attribute and whether it is present.
func (h *Hit) Attribute(key string) (any, bool) {
	v, ok := h.payload[key]
	return v, ok
}
