package wallet

import "strings"

// Registry picks the provider for a customer's OS family.
type Registry struct {
	apple  Provider
	google Provider
}

func NewRegistry(apple, google Provider) *Registry {
	return &Registry{apple: apple, google: google}
}

// For returns the Apple provider for "ios" and Google for anything else.
func (r *Registry) For(osFamily string) Provider {
	if strings.EqualFold(strings.TrimSpace(osFamily), "ios") {
		return r.apple
	}
	return r.google
}
