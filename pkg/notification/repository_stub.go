package notification

import (
	"context"
	"sort"
)

// StubRepository is an in-memory Repository for tests.
type StubRepository struct {
	nextId        int64
	notifications map[int][]Notification
}

func NewStubRepository() *StubRepository {
	return &StubRepository{notifications: make(map[int][]Notification)}
}

func (r *StubRepository) Store(_ context.Context, tenantId int, n Notification) (int64, error) {
	r.nextId++
	n.Id = r.nextId
	r.notifications[tenantId] = append(r.notifications[tenantId], n)
	return n.Id, nil
}

func (r *StubRepository) List(_ context.Context, tenantId int) ([]Notification, error) {
	notifications := make([]Notification, len(r.notifications[tenantId]))
	copy(notifications, r.notifications[tenantId])
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r *StubRepository) CountUnread(_ context.Context, tenantId int) (int, error) {
	count := 0
	for _, n := range r.notifications[tenantId] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *StubRepository) MarkAllRead(_ context.Context, tenantId int) error {
	for i := range r.notifications[tenantId] {
		r.notifications[tenantId][i].Read = true
	}
	return nil
}
