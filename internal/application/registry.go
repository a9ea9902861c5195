package application

import (
	"fmt"

	"github.com/bnema/profile-sync/internal/domain"
	"github.com/bnema/profile-sync/internal/ports"
)

// Registry resolves a location string to the fetcher factory that can serve
// it. The factory list is fixed at construction; dispatch probes each
// factory's predicate in registration order and the first match wins.
type Registry struct {
	factories []ports.FetcherFactory
}

func NewRegistry(factories ...ports.FetcherFactory) *Registry {
	return &Registry{factories: factories}
}

// Find returns the first registered factory whose predicate accepts location.
func (r *Registry) Find(location string) (ports.FetcherFactory, error) {
	for _, factory := range r.factories {
		if factory.CanHandle(location) {
			return factory, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrNoHandler, location)
}
