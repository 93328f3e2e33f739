package adapters

import (
	"strings"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/domain"
)

type Registry struct {
	factories map[string]domain.AdapterFactory
}

func NewRegistry(factories ...domain.AdapterFactory) *Registry {
	registry := &Registry{factories: map[string]domain.AdapterFactory{}}
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		provider := strings.ToLower(strings.TrimSpace(factory.Provider()))
		if provider == "" {
			continue
		}
		registry.factories[provider] = factory
	}
	return registry
}

func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	_, ok := r.factories[provider]
	return ok
}

// Reference extracts the merchant reference from an unverified payload using
// the provider's stateless parser. Used to resolve the tenant before any
// adapter is constructed.
func (r *Registry) Reference(provider string, payload []byte) (string, error) {
	factory, err := r.factory(provider)
	if err != nil {
		return "", err
	}
	return factory.Reference(payload)
}

func (r *Registry) NewAdapter(provider string, cfg domain.AdapterConfig) (domain.Adapter, error) {
	factory, err := r.factory(provider)
	if err != nil {
		return nil, err
	}
	return factory.NewAdapter(cfg)
}

func (r *Registry) factory(provider string) (domain.AdapterFactory, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	factory, ok := r.factories[provider]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return factory, nil
}
