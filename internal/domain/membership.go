package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// MembershipChange describes one applied update of a curriculum's listas.
type MembershipChange struct {
	CurriculumID string   `json:"curriculum_id"`
	Added        []string `json:"added"`
	Removed      []string `json:"removed"`
	Listas       []string `json:"listas"`
}

// Empty reports whether nothing changed on either side.
func (m *MembershipChange) Empty() bool {
	return len(m.Added) == 0 && len(m.Removed) == 0
}

// CanonicalID returns the lowercase hyphenated form of a UUID so upper-case
// or braced input compares equal to stored ids. Other values are only
// trimmed.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}

// UniqueIDs canonicalizes ids and drops blanks and repeats, keeping
// first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = CanonicalID(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// DiffMembership returns the IDs present in next but not in current (added)
// and the ones present in current but not in next (removed).
func DiffMembership(current, next []string) (added, removed []string) {
	inCurrent := make(map[string]struct{}, len(current))
	for _, id := range current {
		inCurrent[CanonicalID(id)] = struct{}{}
	}
	inNext := make(map[string]struct{}, len(next))
	for _, id := range next {
		inNext[CanonicalID(id)] = struct{}{}
	}

	added = []string{}
	removed = []string{}
	for _, id := range UniqueIDs(next) {
		if _, ok := inCurrent[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range UniqueIDs(current) {
		if _, ok := inNext[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// MembershipMutation receives a curriculum's current listas and returns the
// set it should have afterwards.
type MembershipMutation func(current []string) ([]string, error)

// MembershipRepository applies a mutation to both sides of the relationship
// as one atomic unit. Every lista in the resulting set must exist
// (ErrUnknownLista otherwise) and a missing curriculum is ErrNotFound.
type MembershipRepository interface {
	MutateCurriculumListas(ctx context.Context, curriculumID string, mutate MembershipMutation) (*MembershipChange, error)
}

type MembershipUsecase interface {
	AssignListas(ctx context.Context, curriculumID string, listaIDs []string) (*MembershipChange, error)
	AddMember(ctx context.Context, listaID, curriculumID string) (*MembershipChange, error)
	RemoveMember(ctx context.Context, listaID, curriculumID string) (*MembershipChange, error)
}
