package contextkeys

// RequestId keys the per-request correlation id in a request context.
type RequestId struct{}

// IdentityKey keys the authenticated identity in a request context.
type IdentityKey struct{}
