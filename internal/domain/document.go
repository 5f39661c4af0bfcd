package domain

// Document is a raw JSON payload from the remote API. No schema is enforced
// at the transport boundary; shaping happens in the normalizer.
type Document map[string]any
