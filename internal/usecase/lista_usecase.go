package usecase

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/logger"
	"cv-tracker-backend/pkg/validation"
)

type listaUsecase struct {
	repo           domain.ListaRepository
	curriculumRepo domain.CurriculumRepository
	cache          domain.ListaCache
	events         domain.EventPublisher
	validate       *validator.Validate
	sanitizer      *validation.Sanitizer
}

// NewListaUsecase wires the lista rules. cache may be nil, in which case
// every List call reads the repositories.
func NewListaUsecase(
	repo domain.ListaRepository,
	curriculumRepo domain.CurriculumRepository,
	cache domain.ListaCache,
	events domain.EventPublisher,
	validate *validator.Validate,
) domain.ListaUsecase {
	return &listaUsecase{
		repo:           repo,
		curriculumRepo: curriculumRepo,
		cache:          cache,
		events:         events,
		validate:       validate,
		sanitizer:      validation.NewSanitizer(),
	}
}

func (u *listaUsecase) Create(ctx context.Context, l *domain.Lista) (*domain.Lista, error) {
	l.ID = ""
	l.Curriculums = []string{}
	u.prepare(l)
	if err := u.validate.Struct(l); err != nil {
		return nil, apperror.Validation(validation.FieldErrors(err))
	}
	if err := u.ensureUnique(ctx, l.Cliente, l.Comentario, ""); err != nil {
		return nil, err
	}

	if err := u.repo.Create(ctx, l); err != nil {
		if errors.Is(err, domain.ErrDuplicateLista) {
			return nil, u.duplicateError(ctx, l.Cliente, l.Comentario)
		}
		return nil, apperror.Internal(err)
	}

	invalidateListas(ctx, u.cache)
	logger.FromContext(ctx).Info("Lista created", "lista_id", l.ID, "cliente", l.Cliente)
	publish(ctx, u.events, domain.EventListaCreated, l)
	return l, nil
}

func (u *listaUsecase) Get(ctx context.Context, id string) (*domain.ListaDetail, error) {
	l, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Lista no encontrada")
	}
	members, err := u.curriculumRepo.GetRefs(ctx, l.Curriculums)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.ListaDetail{Lista: *l, Curriculums: members}, nil
}

// List serves the populated listas from the cache when possible.
func (u *listaUsecase) List(ctx context.Context) ([]domain.ListaDetail, error) {
	if u.cache != nil {
		cached, ok, err := u.cache.Get(ctx)
		if err != nil {
			logger.FromContext(ctx).Warn("Listas cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}
	return u.loadAndCache(ctx)
}

// Reload drops the cached listas and rebuilds them from the repositories.
func (u *listaUsecase) Reload(ctx context.Context) ([]domain.ListaDetail, error) {
	invalidateListas(ctx, u.cache)
	return u.loadAndCache(ctx)
}

func (u *listaUsecase) Update(ctx context.Context, id string, patch *domain.ListaPatch) (*domain.Lista, error) {
	existing, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Lista no encontrada")
	}
	oldCliente, oldComentario := existing.Cliente, existing.Comentario

	if patch != nil {
		clean := *patch
		clean.Puesto = u.sanitizer.TextPtr(patch.Puesto)
		clean.Cliente = u.sanitizer.TextPtr(patch.Cliente)
		clean.Comentario = u.sanitizer.TextPtr(patch.Comentario)
		clean.Apply(existing)
	}
	existing.Normalize()
	if err := u.validate.Struct(existing); err != nil {
		return nil, apperror.Validation(validation.FieldErrors(err))
	}
	if existing.Cliente != oldCliente || existing.Comentario != oldComentario {
		if err := u.ensureUnique(ctx, existing.Cliente, existing.Comentario, existing.ID); err != nil {
			return nil, err
		}
	}

	if err := u.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, domain.ErrDuplicateLista) {
			return nil, u.duplicateError(ctx, existing.Cliente, existing.Comentario)
		}
		return nil, notFoundOr(err, "Lista no encontrada")
	}

	invalidateListas(ctx, u.cache)
	logger.FromContext(ctx).Info("Lista updated", "lista_id", existing.ID)
	publish(ctx, u.events, domain.EventListaUpdated, existing)
	return existing, nil
}

func (u *listaUsecase) Delete(ctx context.Context, id string) error {
	existing, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Lista no encontrada")
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Lista no encontrada")
	}

	invalidateListas(ctx, u.cache)
	logger.FromContext(ctx).Info("Lista deleted", "lista_id", id, "curriculums", len(existing.Curriculums))
	publish(ctx, u.events, domain.EventListaDeleted, map[string]any{"id": id, "curriculums": existing.Curriculums})
	return nil
}

// loadAndCache reads the generation before loading so a snapshot taken
// across a concurrent write is never stored.
func (u *listaUsecase) loadAndCache(ctx context.Context) ([]domain.ListaDetail, error) {
	generation, cacheable := int64(0), u.cache != nil
	if cacheable {
		var err error
		if generation, err = u.cache.Generation(ctx); err != nil {
			logger.FromContext(ctx).Warn("Listas cache generation read failed", "error", err)
			cacheable = false
		}
	}

	listas, err := u.repo.FetchAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	// one lookup for every member of every lista
	var memberIDs []string
	for _, l := range listas {
		memberIDs = append(memberIDs, l.Curriculums...)
	}
	refs, err := u.curriculumRepo.GetRefs(ctx, memberIDs)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	byID := make(map[string]domain.CurriculumRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	details := make([]domain.ListaDetail, 0, len(listas))
	for _, l := range listas {
		members := make([]domain.CurriculumRef, 0, len(l.Curriculums))
		for _, id := range l.Curriculums {
			if ref, ok := byID[id]; ok {
				members = append(members, ref)
			}
		}
		details = append(details, domain.ListaDetail{Lista: l, Curriculums: members})
	}

	if cacheable {
		stored, err := u.cache.Set(ctx, generation, details)
		switch {
		case err != nil:
			logger.FromContext(ctx).Warn("Listas cache write failed", "error", err)
		case !stored:
			logger.FromContext(ctx).Debug("Listas changed while loading, cache left empty")
		}
	}
	return details, nil
}

func (u *listaUsecase) prepare(l *domain.Lista) {
	l.Normalize()
	u.sanitizer.Fields(&l.Puesto, &l.Cliente, &l.Comentario)
}

func (u *listaUsecase) ensureUnique(ctx context.Context, cliente, comentario, selfID string) error {
	existing, err := u.repo.GetByClienteComentario(ctx, cliente, comentario)
	if err != nil {
		return apperror.Internal(err)
	}
	if existing != nil && existing.ID != selfID {
		return duplicateListaConflict(cliente, comentario, existing.ID)
	}
	return nil
}

// duplicateError builds the conflict after a unique violation raced past
// ensureUnique.
func (u *listaUsecase) duplicateError(ctx context.Context, cliente, comentario string) error {
	existingID := ""
	if existing, err := u.repo.GetByClienteComentario(ctx, cliente, comentario); err == nil && existing != nil {
		existingID = existing.ID
	}
	return duplicateListaConflict(cliente, comentario, existingID)
}

func duplicateListaConflict(cliente, comentario, existingID string) error {
	return apperror.Conflict("Ya existe una lista con el mismo cliente y comentario").
		WithDetails(domain.DuplicateLista{Cliente: cliente, Comentario: comentario, ExistingID: existingID})
}
