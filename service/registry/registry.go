package registry

import (
	"context"
	"sync"

	"lending/core"
)

// Registry in memory position registry
type Registry struct {
	mu     sync.RWMutex
	next   core.PositionID
	owners map[core.PositionID]string
}

// New empty registry, ids start at 1
func New() *Registry {
	return &Registry{
		next:   core.DeadPosition + 1,
		owners: make(map[core.PositionID]string),
	}
}

// Mint issues a new position id held by owner
func (r *Registry) Mint(ctx context.Context, owner string) core.PositionID {
	r.mu.Lock()
	defer r.mu.Unlock()

	pid := r.next
	r.next++
	r.owners[pid] = owner
	return pid
}

// Register records an already issued id, used when restoring state
func (r *Registry) Register(pid core.PositionID, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.owners[pid] = owner
	if pid >= r.next && !pid.Reserved() {
		r.next = pid + 1
	}
}

// Transfer hands the position to another holder
func (r *Registry) Transfer(ctx context.Context, pid core.PositionID, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[pid]
	if !ok {
		return core.ErrPositionNotFound
	}

	if owner != from {
		return core.ErrNotOwner
	}

	r.owners[pid] = to
	return nil
}

func (r *Registry) OwnerOf(ctx context.Context, pid core.PositionID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners[pid]
	if !ok {
		return "", core.ErrPositionNotFound
	}

	return owner, nil
}
