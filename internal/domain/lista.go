package domain

import (
	"context"
	"strings"
	"time"
)

const DefaultListaColor = "#1E3A5F"

// Lista is a client shortlist. Curriculums holds member IDs and is only
// written by the membership service.
type Lista struct {
	ID          string     `json:"id"`
	Puesto      string     `json:"puesto" validate:"required,max=120"`
	Cliente     string     `json:"cliente" validate:"required,max=120"`
	Comentario  string     `json:"comentario" validate:"max=2000"`
	FechaLimite *time.Time `json:"fecha_limite,omitempty"`
	Color       string     `json:"color" validate:"omitempty,hex_color"`
	Curriculums []string   `json:"curriculums"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (l *Lista) Normalize() {
	l.Puesto = NormalizeText(l.Puesto)
	l.Cliente = NormalizeText(l.Cliente)
	l.Comentario = NormalizeText(l.Comentario)
	l.Color = strings.ToUpper(strings.TrimSpace(l.Color))
	if l.Color == "" {
		l.Color = DefaultListaColor
	}
	if l.Curriculums == nil {
		l.Curriculums = []string{}
	}
}

type ListaPatch struct {
	Puesto      *string    `json:"puesto"`
	Cliente     *string    `json:"cliente"`
	Comentario  *string    `json:"comentario"`
	FechaLimite *time.Time `json:"fecha_limite"`
	// ClearFechaLimite removes the deadline; FechaLimite wins when both are set.
	ClearFechaLimite bool    `json:"clear_fecha_limite"`
	Color            *string `json:"color"`
}

// Apply merges the patch over l, leaving Curriculums intact.
func (p *ListaPatch) Apply(l *Lista) {
	if p.Puesto != nil {
		l.Puesto = *p.Puesto
	}
	if p.Cliente != nil {
		l.Cliente = *p.Cliente
	}
	if p.Comentario != nil {
		l.Comentario = *p.Comentario
	}
	if p.ClearFechaLimite {
		l.FechaLimite = nil
	}
	if p.FechaLimite != nil {
		t := *p.FechaLimite
		l.FechaLimite = &t
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
}

// ListaRef is the populated form of a lista inside a Curriculum.
type ListaRef struct {
	ID      string `json:"id"`
	Puesto  string `json:"puesto"`
	Cliente string `json:"cliente"`
	Color   string `json:"color"`
}

// ListaDetail is a lista with its member curriculums populated.
type ListaDetail struct {
	Lista
	Curriculums []CurriculumRef `json:"curriculums"`
}

// DuplicateLista is the payload returned when cliente+comentario already exist.
type DuplicateLista struct {
	Cliente    string `json:"cliente"`
	Comentario string `json:"comentario"`
	ExistingID string `json:"existing_id"`
}

type ListaRepository interface {
	Create(ctx context.Context, l *Lista) error
	GetByID(ctx context.Context, id string) (*Lista, error)
	GetByClienteComentario(ctx context.Context, cliente, comentario string) (*Lista, error)
	FetchAll(ctx context.Context) ([]Lista, error)
	GetRefs(ctx context.Context, ids []string) ([]ListaRef, error)
	Update(ctx context.Context, l *Lista) error
	Delete(ctx context.Context, id string) error
}

// ListaCache holds the populated read-all result. Every Invalidate bumps a
// generation counter; Set only stores a snapshot loaded under the current
// generation and reports false when an invalidation landed in between.
type ListaCache interface {
	Get(ctx context.Context) ([]ListaDetail, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, generation int64, listas []ListaDetail) (bool, error)
	Invalidate(ctx context.Context) error
}

type ListaUsecase interface {
	Create(ctx context.Context, l *Lista) (*Lista, error)
	Get(ctx context.Context, id string) (*ListaDetail, error)
	List(ctx context.Context) ([]ListaDetail, error)
	Reload(ctx context.Context) ([]ListaDetail, error)
	Update(ctx context.Context, id string, patch *ListaPatch) (*Lista, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id, format string) ([]byte, string, error)
}
