package main

import "sync"

// Registry tracks every live connection by id. Pure bookkeeping; room
// membership lives on the rooms themselves.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*ClientConn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*ClientConn)}
}

func (r *Registry) Add(c *ClientConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID()] = c
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

func (r *Registry) Get(id string) (*ClientConn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, exists := r.conns[id]
	return c, exists
}
