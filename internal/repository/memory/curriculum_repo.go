package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"cv-tracker-backend/internal/domain"
)

type CurriculumRepo struct {
	s *Store
}

func NewCurriculumRepository(s *Store) *CurriculumRepo {
	return &CurriculumRepo{s: s}
}

func (r *CurriculumRepo) Create(ctx context.Context, c *domain.Curriculum) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.curriculums {
		if existing.Celular == c.Celular {
			return domain.ErrDuplicateCelular
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	c.Listas = []string{}
	if c.Idiomas == nil {
		c.Idiomas = []string{}
	}
	r.s.curriculums[c.ID] = cloneCurriculum(c)
	r.s.nextSeq(c.ID)
	return nil
}

func (r *CurriculumRepo) GetByID(ctx context.Context, id string) (*domain.Curriculum, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.curriculums[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCurriculum(c), nil
}

func (r *CurriculumRepo) GetByCelular(ctx context.Context, celular string) (*domain.Curriculum, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.curriculums {
		if c.Celular == celular {
			return cloneCurriculum(c), nil
		}
	}
	return nil, nil
}

func (r *CurriculumRepo) FindByNombreApellido(ctx context.Context, nombre, apellido string) ([]domain.Curriculum, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Curriculum{}
	for _, c := range r.s.curriculums {
		if strings.EqualFold(c.Nombre, nombre) && strings.EqualFold(c.Apellido, apellido) {
			out = append(out, *cloneCurriculum(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.s.order[out[i].ID] > r.s.order[out[j].ID] })
	return out, nil
}

func (r *CurriculumRepo) Search(ctx context.Context, f domain.CurriculumFilter) ([]domain.Curriculum, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	matched := []domain.Curriculum{}
	for _, c := range r.s.curriculums {
		if q != "" {
			full := strings.ToLower(c.Nombre + " " + c.Apellido)
			if !strings.Contains(full, q) && !strings.Contains(c.Celular, q) && !strings.Contains(c.Email, q) {
				continue
			}
		}
		if (f.Rubro != "" && c.Rubro != f.Rubro) ||
			(f.Subrubro != "" && c.Subrubro != f.Subrubro) ||
			(f.Pais != "" && c.Pais != f.Pais) ||
			(f.Provincia != "" && c.Provincia != f.Provincia) ||
			(f.Calificacion != "" && c.Calificacion != f.Calificacion) {
			continue
		}
		if f.Puesto != "" && !strings.Contains(strings.ToLower(c.Puesto), strings.ToLower(f.Puesto)) {
			continue
		}
		if f.NoLlamar != nil && c.NoLlamar != *f.NoLlamar {
			continue
		}
		if f.ListaID != "" && !contains(c.Listas, f.ListaID) {
			continue
		}
		matched = append(matched, *cloneCurriculum(c))
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Apellido != b.Apellido {
			return a.Apellido < b.Apellido
		}
		if a.Nombre != b.Nombre {
			return a.Nombre < b.Nombre
		}
		return a.ID < b.ID
	})

	total := int64(len(matched))
	start := f.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

func (r *CurriculumRepo) GetRefs(ctx context.Context, ids []string) ([]domain.CurriculumRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	refs := []domain.CurriculumRef{}
	for _, id := range domain.UniqueIDs(ids) {
		if c, ok := r.s.curriculums[id]; ok {
			refs = append(refs, domain.CurriculumRef{
				ID: c.ID, Nombre: c.Nombre, Apellido: c.Apellido, Celular: c.Celular, Email: c.Email,
				Rubro: c.Rubro, Puesto: c.Puesto, Calificacion: c.Calificacion, NoLlamar: c.NoLlamar,
			})
		}
	}
	return refs, nil
}

func (r *CurriculumRepo) Update(ctx context.Context, c *domain.Curriculum) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.curriculums[c.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.s.curriculums {
		if id != c.ID && other.Celular == c.Celular {
			return domain.ErrDuplicateCelular
		}
	}

	updated := cloneCurriculum(c)
	updated.Listas = append([]string{}, stored.Listas...)
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.s.now()
	r.s.curriculums[c.ID] = updated

	c.Listas = append([]string{}, stored.Listas...)
	c.CreatedAt, c.UpdatedAt = updated.CreatedAt, updated.UpdatedAt
	return nil
}

// Delete sweeps the id from every lista and removes the curriculum under
// one lock.
func (r *CurriculumRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.curriculums[id]; !ok {
		return domain.ErrNotFound
	}
	now := r.s.now()
	for _, l := range r.s.listas {
		if contains(l.Curriculums, id) {
			l.Curriculums = without(l.Curriculums, id)
			l.UpdatedAt = now
		}
	}
	delete(r.s.curriculums, id)
	delete(r.s.order, id)
	return nil
}

var _ domain.CurriculumRepository = (*CurriculumRepo)(nil)
