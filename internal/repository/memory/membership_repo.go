package memory

import (
	"context"
	"fmt"

	"cv-tracker-backend/internal/domain"
)

type MembershipRepo struct {
	s *Store
}

func NewMembershipRepository(s *Store) *MembershipRepo {
	return &MembershipRepo{s: s}
}

// MutateCurriculumListas applies the mutation and updates both sides while
// holding the store lock. Nothing is written if any step fails.
func (r *MembershipRepo) MutateCurriculumListas(ctx context.Context, curriculumID string, mutate domain.MembershipMutation) (*domain.MembershipChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.curriculums[curriculumID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	current := append([]string{}, c.Listas...)

	next, err := mutate(append([]string{}, current...))
	if err != nil {
		return nil, err
	}
	next = domain.UniqueIDs(next)

	added, removed := domain.DiffMembership(current, next)
	change := &domain.MembershipChange{CurriculumID: curriculumID, Added: added, Removed: removed, Listas: next}
	if change.Empty() {
		change.Listas = current
		return change, nil
	}

	for _, id := range added {
		if _, ok := r.s.listas[id]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownLista, id)
		}
	}

	now := r.s.now()
	for _, id := range added {
		l := r.s.listas[id]
		if !contains(l.Curriculums, curriculumID) {
			l.Curriculums = append(l.Curriculums, curriculumID)
		}
		l.UpdatedAt = now
	}
	for _, id := range removed {
		if l, ok := r.s.listas[id]; ok {
			l.Curriculums = without(l.Curriculums, curriculumID)
			l.UpdatedAt = now
		}
	}
	c.Listas = append([]string{}, next...)
	c.UpdatedAt = now
	return change, nil
}

var _ domain.MembershipRepository = (*MembershipRepo)(nil)
