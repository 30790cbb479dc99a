package core

import (
	"fmt"

	"github.com/google/uuid"
)

// IdentifierPool hands out small integer ids, reusing released slots first.
// Each scene owns its own pool.
type IdentifierPool struct {
	owners []interface{}
}

func NewIdentifierPool() *IdentifierPool {
	return &IdentifierPool{owners: make([]interface{}, 0, 64)}
}

func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	length := uint32(len(p.owners))
	for i := uint32(0); i < length; i++ {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return i
		}
	}
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners)) - 1
}

func (p *IdentifierPool) Release(id uint32) error {
	if id >= uint32(len(p.owners)) {
		return fmt.Errorf("identifier: id '%d' out of range (max=%d). Nothing was done", id, len(p.owners))
	}
	p.owners[id] = nil
	return nil
}

func (p *IdentifierPool) Owner(id uint32) (interface{}, bool) {
	if id >= uint32(len(p.owners)) || p.owners[id] == nil {
		return nil, false
	}
	return p.owners[id], true
}

// NewRunID identifies one import run in logs, reports and metrics.
func NewRunID() string {
	return uuid.NewString()
}
