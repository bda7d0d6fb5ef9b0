package usecase

import (
	"context"
	"errors"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/logger"
)

// membershipUsecase is the only writer of Curriculum.Listas and
// Lista.Curriculums outside the delete sweeps.
type membershipUsecase struct {
	repo      domain.MembershipRepository
	listaRepo domain.ListaRepository
	cache     domain.ListaCache
	events    domain.EventPublisher
}

func NewMembershipUsecase(
	repo domain.MembershipRepository,
	listaRepo domain.ListaRepository,
	cache domain.ListaCache,
	events domain.EventPublisher,
) domain.MembershipUsecase {
	return &membershipUsecase{repo: repo, listaRepo: listaRepo, cache: cache, events: events}
}

// AssignListas replaces the curriculum's listas with listaIDs.
func (u *membershipUsecase) AssignListas(ctx context.Context, curriculumID string, listaIDs []string) (*domain.MembershipChange, error) {
	target := domain.UniqueIDs(listaIDs)
	return u.apply(ctx, curriculumID, func(current []string) ([]string, error) {
		return target, nil
	})
}

func (u *membershipUsecase) AddMember(ctx context.Context, listaID, curriculumID string) (*domain.MembershipChange, error) {
	listaID = domain.CanonicalID(listaID)
	if err := u.ensureLista(ctx, listaID); err != nil {
		return nil, err
	}
	return u.apply(ctx, curriculumID, func(current []string) ([]string, error) {
		return append(current, listaID), nil
	})
}

func (u *membershipUsecase) RemoveMember(ctx context.Context, listaID, curriculumID string) (*domain.MembershipChange, error) {
	listaID = domain.CanonicalID(listaID)
	if err := u.ensureLista(ctx, listaID); err != nil {
		return nil, err
	}
	return u.apply(ctx, curriculumID, func(current []string) ([]string, error) {
		next := make([]string, 0, len(current))
		for _, id := range current {
			if domain.CanonicalID(id) != listaID {
				next = append(next, id)
			}
		}
		return next, nil
	})
}

func (u *membershipUsecase) apply(ctx context.Context, curriculumID string, mutate domain.MembershipMutation) (*domain.MembershipChange, error) {
	change, err := u.repo.MutateCurriculumListas(ctx, domain.CanonicalID(curriculumID), mutate)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownLista):
			return nil, apperror.NotFound("Lista no encontrada").WithDetails(map[string]string{"listas": err.Error()})
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound("Curriculum no encontrado")
		default:
			return nil, notFoundOr(err, "Curriculum no encontrado")
		}
	}

	if !change.Empty() {
		invalidateListas(ctx, u.cache)
		logger.FromContext(ctx).Info("Membership changed",
			"curriculum_id", change.CurriculumID, "added", change.Added, "removed", change.Removed)
		publish(ctx, u.events, domain.EventMembershipChanged, change)
	}
	return change, nil
}

func (u *membershipUsecase) ensureLista(ctx context.Context, listaID string) error {
	if _, err := u.listaRepo.GetByID(ctx, listaID); err != nil {
		return notFoundOr(err, "Lista no encontrada")
	}
	return nil
}
