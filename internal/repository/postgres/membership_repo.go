package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"cv-tracker-backend/internal/domain"
)

type membershipRepo struct {
	db DB
}

func NewMembershipRepository(db DB) domain.MembershipRepository {
	return &membershipRepo{db: db}
}

// MutateCurriculumListas runs mutate against the locked curriculum row and
// writes both sides of the relationship before committing:
//  1. lock the curriculum and read its listas
//  2. compute the new set and the difference
//  3. lock the touched listas in id order and check the added ones exist
//  4. append/remove the curriculum id on the listas
//  5. overwrite the curriculum's own array
func (r *membershipRepo) MutateCurriculumListas(ctx context.Context, curriculumID string, mutate domain.MembershipMutation) (*domain.MembershipChange, error) {
	if !isUUID(curriculumID) {
		return nil, domain.ErrNotFound
	}
	curriculumID = domain.CanonicalID(curriculumID)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current []string
	err = tx.QueryRow(ctx, `SELECT listas FROM curriculums WHERE id = $1 FOR UPDATE`, curriculumID).
		Scan(pq.Array(&current))
	if err != nil {
		return nil, mapError(err)
	}
	current = domain.UniqueIDs(current)

	next, err := mutate(append([]string(nil), current...))
	if err != nil {
		return nil, err
	}
	next = domain.UniqueIDs(next)

	added, removed := domain.DiffMembership(current, next)
	change := &domain.MembershipChange{
		CurriculumID: curriculumID,
		Added:        added,
		Removed:      removed,
		Listas:       next,
	}
	if change.Empty() {
		change.Listas = current
		return change, nil
	}

	for _, id := range added {
		if !isUUID(id) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownLista, id)
		}
	}

	touched := sortedUnion(added, removed)
	rows, err := tx.Query(ctx, `SELECT id FROM listas WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`, pq.Array(touched))
	if err != nil {
		return nil, fmt.Errorf("lock listas: %w", err)
	}
	found := make(map[string]struct{}, len(touched))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		found[id] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range added {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownLista, id)
		}
	}

	if len(added) > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE listas SET curriculums = array_append(curriculums, $1::uuid), updated_at = NOW()
			WHERE id = ANY($2::uuid[]) AND NOT ($1::uuid = ANY(curriculums))`,
			curriculumID, pq.Array(added))
		if err != nil {
			return nil, fmt.Errorf("add to listas: %w", err)
		}
	}

	if len(removed) > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE listas SET curriculums = array_remove(curriculums, $1::uuid), updated_at = NOW()
			WHERE id = ANY($2::uuid[])`,
			curriculumID, pq.Array(removed))
		if err != nil {
			return nil, fmt.Errorf("remove from listas: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `UPDATE curriculums SET listas = $2::uuid[], updated_at = NOW() WHERE id = $1`,
		curriculumID, pq.Array(next))
	if err != nil {
		return nil, fmt.Errorf("update curriculum listas: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return change, nil
}
