// Package identity holds the thin client surface of the external identity
// provider. The tracker core only consumes opaque user/org ids; the single
// capability needed from the provider is mapping @handle tokens in comment
// text to user ids.
package identity

import "context"

// Resolver maps mention handles to external user ids. Handles without a
// matching user are simply absent from the result.
type Resolver interface {
	Resolve(ctx context.Context, handles []string) (map[string]string, error)
}

// StaticResolver is a fixed handle-to-id table for tests and local runs.
type StaticResolver map[string]string

func (r StaticResolver) Resolve(_ context.Context, handles []string) (map[string]string, error) {
	out := make(map[string]string, len(handles))
	for _, h := range handles {
		if id, ok := r[h]; ok {
			out[h] = id
		}
	}
	return out, nil
}
