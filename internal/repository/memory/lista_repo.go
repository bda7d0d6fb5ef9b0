package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"cv-tracker-backend/internal/domain"
)

type ListaRepo struct {
	s *Store
}

func NewListaRepository(s *Store) *ListaRepo {
	return &ListaRepo{s: s}
}

func (r *ListaRepo) Create(ctx context.Context, l *domain.Lista) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.listas {
		if existing.Cliente == l.Cliente && existing.Comentario == l.Comentario {
			return domain.ErrDuplicateLista
		}
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	now := r.s.now()
	l.CreatedAt, l.UpdatedAt = now, now
	l.Curriculums = []string{}
	r.s.listas[l.ID] = cloneLista(l)
	r.s.nextSeq(l.ID)
	return nil
}

func (r *ListaRepo) GetByID(ctx context.Context, id string) (*domain.Lista, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.listas[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneLista(l), nil
}

func (r *ListaRepo) GetByClienteComentario(ctx context.Context, cliente, comentario string) (*domain.Lista, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, l := range r.s.listas {
		if l.Cliente == cliente && l.Comentario == comentario {
			return cloneLista(l), nil
		}
	}
	return nil, nil
}

func (r *ListaRepo) FetchAll(ctx context.Context) ([]domain.Lista, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Lista, 0, len(r.s.listas))
	for _, l := range r.s.listas {
		out = append(out, *cloneLista(l))
	}
	sort.Slice(out, func(i, j int) bool { return r.s.order[out[i].ID] > r.s.order[out[j].ID] })
	return out, nil
}

func (r *ListaRepo) GetRefs(ctx context.Context, ids []string) ([]domain.ListaRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	refs := []domain.ListaRef{}
	for _, id := range domain.UniqueIDs(ids) {
		if l, ok := r.s.listas[id]; ok {
			refs = append(refs, domain.ListaRef{ID: l.ID, Puesto: l.Puesto, Cliente: l.Cliente, Color: l.Color})
		}
	}
	return refs, nil
}

func (r *ListaRepo) Update(ctx context.Context, l *domain.Lista) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.listas[l.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.s.listas {
		if id != l.ID && other.Cliente == l.Cliente && other.Comentario == l.Comentario {
			return domain.ErrDuplicateLista
		}
	}

	updated := cloneLista(l)
	updated.Curriculums = append([]string{}, stored.Curriculums...)
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.s.now()
	r.s.listas[l.ID] = updated

	l.Curriculums = append([]string{}, stored.Curriculums...)
	l.CreatedAt, l.UpdatedAt = updated.CreatedAt, updated.UpdatedAt
	return nil
}

func (r *ListaRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.listas[id]; !ok {
		return domain.ErrNotFound
	}
	now := r.s.now()
	for _, c := range r.s.curriculums {
		if contains(c.Listas, id) {
			c.Listas = without(c.Listas, id)
			c.UpdatedAt = now
		}
	}
	delete(r.s.listas, id)
	delete(r.s.order, id)
	return nil
}

var _ domain.ListaRepository = (*ListaRepo)(nil)
