package mock

import "github.com/fwojciec/corpus"

var _ corpus.Resolver = (*Resolver)(nil)

// Resolver is a mock implementation of corpus.Resolver.
type Resolver struct {
	ResolveFn func(item corpus.Item) (string, error)
}

func (r *Resolver) Resolve(item corpus.Item) (string, error) {
	return r.ResolveFn(item)
}
