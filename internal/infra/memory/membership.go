package memory

import (
	"context"
	"sync"
)

// StaticMembership is an in-memory membership oracle keyed by group id.
type StaticMembership struct {
	mu     sync.RWMutex
	groups map[string]map[string]struct{}
}

func NewStaticMembership(groups map[string][]string) *StaticMembership {
	indexed := make(map[string]map[string]struct{}, len(groups))
	for groupID, members := range groups {
		set := make(map[string]struct{}, len(members))
		for _, userID := range members {
			set[userID] = struct{}{}
		}
		indexed[groupID] = set
	}
	return &StaticMembership{groups: indexed}
}

func (m *StaticMembership) IsMember(_ context.Context, userID, groupID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.groups[groupID][userID]
	return ok, nil
}

// Add enrolls a user into a group.
func (m *StaticMembership) Add(groupID, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.groups[groupID] == nil {
		m.groups[groupID] = make(map[string]struct{})
	}
	m.groups[groupID][userID] = struct{}{}
}
