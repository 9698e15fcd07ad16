package payments

import (
	"context"
	"sync"
)

type ClientStub struct {
	mu                  sync.RWMutex
	preference          Preference
	createPreferenceErr error
	requests            []PreferenceRequest
}

func NewClientStub() *ClientStub {
	return &ClientStub{}
}

func (c *ClientStub) SetPreference(p Preference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preference = p
}

func (c *ClientStub) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createPreferenceErr = err
}

func (c *ClientStub) Requests() []PreferenceRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]PreferenceRequest, len(c.requests))
	copy(result, c.requests)
	return result
}

func (c *ClientStub) CreatePreference(_ context.Context, req PreferenceRequest) (Preference, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createPreferenceErr != nil {
		return Preference{}, c.createPreferenceErr
	}
	c.requests = append(c.requests, req)
	return c.preference, nil
}
