package domain

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const (
	PaisArgentina    = "Argentina"
	RubroGastronomia = "Gastronomía"
)

// Calificacion values accepted on a curriculum.
var Calificaciones = []string{"excelente", "muy_bueno", "bueno", "regular", "malo"}

// Estudios values accepted on a curriculum.
var NivelesEstudio = []string{"primario", "secundario", "terciario", "universitario", "posgrado"}

// Curriculum is a candidate record. Listas holds the IDs of every Lista the
// candidate belongs to and is only written by the membership service.
type Curriculum struct {
	ID              string    `json:"id"`
	Nombre          string    `json:"nombre" validate:"required,max=80,valid_name"`
	Apellido        string    `json:"apellido" validate:"required,max=80,valid_name"`
	Email           string    `json:"email" validate:"omitempty,email,max=120"`
	Celular         string    `json:"celular" validate:"required,valid_phone"`
	FechaNacimiento string    `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
	Pais            string    `json:"pais" validate:"required,max=60"`
	Provincia       string    `json:"provincia" validate:"required_if=Pais Argentina,max=60"`
	Zona            string    `json:"zona" validate:"max=60"`
	Localidad       string    `json:"localidad" validate:"max=80"`
	Rubro           string    `json:"rubro" validate:"required,max=60"`
	Subrubro        string    `json:"subrubro" validate:"required_if=Rubro Gastronomía,max=60"`
	Puesto          string    `json:"puesto" validate:"max=80"`
	Calificacion    string    `json:"calificacion" validate:"omitempty,oneof=excelente muy_bueno bueno regular malo"`
	Estudios        string    `json:"estudios" validate:"omitempty,oneof=primario secundario terciario universitario posgrado"`
	Experiencia     string    `json:"experiencia" validate:"max=2000"`
	Idiomas         []string  `json:"idiomas" validate:"max=10,dive,max=40"`
	Comentarios     string    `json:"comentarios" validate:"max=2000"`
	NoLlamar        bool      `json:"no_llamar"`
	Archivo         string    `json:"archivo"`
	ArchivoTipo     string    `json:"archivo_tipo"`
	Listas          []string  `json:"listas"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NormalizeText trims s and composes it to NFC, so "Gastronomía" typed on
// a decomposing keyboard matches the constant.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Normalize trims and NFC-composes every text field and reduces the phone
// number to the digits (and leading +) that uniqueness is checked against.
func (c *Curriculum) Normalize() {
	for _, f := range []*string{
		&c.Nombre, &c.Apellido, &c.Email, &c.FechaNacimiento, &c.Pais, &c.Provincia,
		&c.Zona, &c.Localidad, &c.Rubro, &c.Subrubro, &c.Puesto, &c.Calificacion,
		&c.Estudios, &c.Experiencia, &c.Comentarios,
	} {
		*f = NormalizeText(*f)
	}
	c.Email = strings.ToLower(c.Email)
	c.Celular = NormalizeCelular(c.Celular)

	idiomas := make([]string, 0, len(c.Idiomas))
	for _, idioma := range c.Idiomas {
		if idioma = NormalizeText(idioma); idioma != "" {
			idiomas = append(idiomas, idioma)
		}
	}
	c.Idiomas = idiomas
	if c.Listas == nil {
		c.Listas = []string{}
	}
}

// NormalizeCelular strips spaces, dashes, dots and parentheses.
func NormalizeCelular(celular string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(celular) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			// keep it so the phone validator rejects the value
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CurriculumPatch carries the fields of a merge update. Nil means "keep".
type CurriculumPatch struct {
	Nombre          *string   `json:"nombre"`
	Apellido        *string   `json:"apellido"`
	Email           *string   `json:"email"`
	Celular         *string   `json:"celular"`
	FechaNacimiento *string   `json:"fecha_nacimiento"`
	Pais            *string   `json:"pais"`
	Provincia       *string   `json:"provincia"`
	Zona            *string   `json:"zona"`
	Localidad       *string   `json:"localidad"`
	Rubro           *string   `json:"rubro"`
	Subrubro        *string   `json:"subrubro"`
	Puesto          *string   `json:"puesto"`
	Calificacion    *string   `json:"calificacion"`
	Estudios        *string   `json:"estudios"`
	Experiencia     *string   `json:"experiencia"`
	Idiomas         *[]string `json:"idiomas"`
	Comentarios     *string   `json:"comentarios"`
	NoLlamar        *bool     `json:"no_llamar"`
}

// Apply merges the patch over c. Listas and the attachment are never touched.
func (p *CurriculumPatch) Apply(c *Curriculum) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Nombre, p.Nombre)
	set(&c.Apellido, p.Apellido)
	set(&c.Email, p.Email)
	set(&c.Celular, p.Celular)
	set(&c.FechaNacimiento, p.FechaNacimiento)
	set(&c.Pais, p.Pais)
	set(&c.Provincia, p.Provincia)
	set(&c.Zona, p.Zona)
	set(&c.Localidad, p.Localidad)
	set(&c.Rubro, p.Rubro)
	set(&c.Subrubro, p.Subrubro)
	set(&c.Puesto, p.Puesto)
	set(&c.Calificacion, p.Calificacion)
	set(&c.Estudios, p.Estudios)
	set(&c.Experiencia, p.Experiencia)
	set(&c.Comentarios, p.Comentarios)
	if p.Idiomas != nil {
		c.Idiomas = append([]string(nil), (*p.Idiomas)...)
	}
	if p.NoLlamar != nil {
		c.NoLlamar = *p.NoLlamar
	}
}

// CurriculumRef is the populated form of a curriculum inside a Lista.
type CurriculumRef struct {
	ID           string `json:"id"`
	Nombre       string `json:"nombre"`
	Apellido     string `json:"apellido"`
	Celular      string `json:"celular"`
	Email        string `json:"email"`
	Rubro        string `json:"rubro"`
	Puesto       string `json:"puesto"`
	Calificacion string `json:"calificacion"`
	NoLlamar     bool   `json:"no_llamar"`
}

// CurriculumDetail is a curriculum with its listas populated. The outer
// Listas field shadows the ID slice when encoded.
type CurriculumDetail struct {
	Curriculum
	Listas []ListaRef `json:"listas"`
}

type CurriculumFilter struct {
	Query        string
	Rubro        string
	Subrubro     string
	Puesto       string
	Pais         string
	Provincia    string
	Calificacion string
	NoLlamar     *bool
	ListaID      string
	Limit        int
	Offset       int
}

// Attachment is the raw upload that backs Curriculum.Archivo.
type Attachment struct {
	Filename string
	Data     []byte
}

// DuplicateReport answers the duplicates check. A phone match blocks
// creation; name matches are only a warning.
type DuplicateReport struct {
	Blocking     bool            `json:"blocking"`
	PhoneMatch   *CurriculumRef  `json:"celular_match,omitempty"`
	NameMatches  []CurriculumRef `json:"nombre_matches"`
	HasDuplicate bool            `json:"has_duplicate"`
}

type CurriculumRepository interface {
	Create(ctx context.Context, c *Curriculum) error
	GetByID(ctx context.Context, id string) (*Curriculum, error)
	GetByCelular(ctx context.Context, celular string) (*Curriculum, error)
	FindByNombreApellido(ctx context.Context, nombre, apellido string) ([]Curriculum, error)
	Search(ctx context.Context, filter CurriculumFilter) ([]Curriculum, int64, error)
	GetRefs(ctx context.Context, ids []string) ([]CurriculumRef, error)
	Update(ctx context.Context, c *Curriculum) error
	Delete(ctx context.Context, id string) error
}

type CurriculumUsecase interface {
	Create(ctx context.Context, c *Curriculum, att *Attachment) (*Curriculum, error)
	Get(ctx context.Context, id string) (*CurriculumDetail, error)
	Search(ctx context.Context, filter CurriculumFilter, page, pageSize int) ([]Curriculum, int64, error)
	Update(ctx context.Context, id string, patch *CurriculumPatch, att *Attachment) (*Curriculum, error)
	Delete(ctx context.Context, id string) error
	CheckDuplicates(ctx context.Context, nombre, apellido, celular string) (*DuplicateReport, error)
}
