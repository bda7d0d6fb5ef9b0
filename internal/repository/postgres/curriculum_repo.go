package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"cv-tracker-backend/internal/domain"
)

const curriculumColumns = `
	id, nombre, apellido, email, celular, fecha_nacimiento, pais, provincia,
	zona, localidad, rubro, subrubro, puesto, calificacion, estudios,
	experiencia, idiomas, comentarios, no_llamar, archivo, archivo_tipo,
	listas, created_at, updated_at`

type curriculumRepo struct {
	db DB
}

func NewCurriculumRepository(db DB) domain.CurriculumRepository {
	return &curriculumRepo{db: db}
}

func scanCurriculum(row pgx.Row) (*domain.Curriculum, error) {
	var c domain.Curriculum
	err := row.Scan(
		&c.ID, &c.Nombre, &c.Apellido, &c.Email, &c.Celular, &c.FechaNacimiento, &c.Pais, &c.Provincia,
		&c.Zona, &c.Localidad, &c.Rubro, &c.Subrubro, &c.Puesto, &c.Calificacion, &c.Estudios,
		&c.Experiencia, pq.Array(&c.Idiomas), &c.Comentarios, &c.NoLlamar, &c.Archivo, &c.ArchivoTipo,
		pq.Array(&c.Listas), &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Idiomas == nil {
		c.Idiomas = []string{}
	}
	if c.Listas == nil {
		c.Listas = []string{}
	}
	return &c, nil
}

func (r *curriculumRepo) Create(ctx context.Context, c *domain.Curriculum) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO curriculums (
			id, nombre, apellido, email, celular, fecha_nacimiento, pais, provincia,
			zona, localidad, rubro, subrubro, puesto, calificacion, estudios,
			experiencia, idiomas, comentarios, no_llamar, archivo, archivo_tipo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17::text[], $18, $19, $20, $21)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.Nombre, c.Apellido, c.Email, c.Celular, c.FechaNacimiento, c.Pais, c.Provincia,
		c.Zona, c.Localidad, c.Rubro, c.Subrubro, c.Puesto, c.Calificacion, c.Estudios,
		c.Experiencia, pq.Array(c.Idiomas), c.Comentarios, c.NoLlamar, c.Archivo, c.ArchivoTipo,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert curriculum: %w", mapError(err))
	}
	c.Listas = []string{}
	return nil
}

func (r *curriculumRepo) GetByID(ctx context.Context, id string) (*domain.Curriculum, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + curriculumColumns + ` FROM curriculums WHERE id = $1`
	c, err := scanCurriculum(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// GetByCelular returns nil, nil when the phone is free.
func (r *curriculumRepo) GetByCelular(ctx context.Context, celular string) (*domain.Curriculum, error) {
	query := `SELECT ` + curriculumColumns + ` FROM curriculums WHERE celular = $1`
	c, err := scanCurriculum(r.db.QueryRow(ctx, query, celular))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get curriculum by celular: %w", err)
	}
	return c, nil
}

// FindByNombreApellido matches case-insensitively on the (nombre, apellido)
// index.
func (r *curriculumRepo) FindByNombreApellido(ctx context.Context, nombre, apellido string) ([]domain.Curriculum, error) {
	query := `SELECT ` + curriculumColumns + ` FROM curriculums
		WHERE lower(nombre) = lower($1) AND lower(apellido) = lower($2)
		ORDER BY created_at DESC`
	return r.queryList(ctx, query, nombre, apellido)
}

func (r *curriculumRepo) Search(ctx context.Context, f domain.CurriculumFilter) ([]domain.Curriculum, int64, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg("%" + q + "%")
		where = append(where, fmt.Sprintf("(nombre || ' ' || apellido ILIKE %s OR celular LIKE %s OR email ILIKE %s)", p, p, p))
	}
	eq := map[string]string{
		"rubro":        f.Rubro,
		"subrubro":     f.Subrubro,
		"pais":         f.Pais,
		"provincia":    f.Provincia,
		"calificacion": f.Calificacion,
	}
	for _, col := range []string{"rubro", "subrubro", "pais", "provincia", "calificacion"} {
		if v := eq[col]; v != "" {
			where = append(where, fmt.Sprintf("%s = %s", col, arg(v)))
		}
	}
	if f.Puesto != "" {
		where = append(where, fmt.Sprintf("puesto ILIKE %s", arg("%"+f.Puesto+"%")))
	}
	if f.NoLlamar != nil {
		where = append(where, fmt.Sprintf("no_llamar = %s", arg(*f.NoLlamar)))
	}
	if f.ListaID != "" {
		if !isUUID(f.ListaID) {
			return []domain.Curriculum{}, 0, nil
		}
		where = append(where, fmt.Sprintf("%s::uuid = ANY(listas)", arg(f.ListaID)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM curriculums`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count curriculums: %w", err)
	}

	query := `SELECT ` + curriculumColumns + ` FROM curriculums` + clause +
		fmt.Sprintf(" ORDER BY apellido, nombre, id LIMIT %s OFFSET %s", arg(f.Limit), arg(f.Offset))
	items, err := r.queryList(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *curriculumRepo) GetRefs(ctx context.Context, ids []string) ([]domain.CurriculumRef, error) {
	refs := []domain.CurriculumRef{}
	ids = validIDs(ids)
	if len(ids) == 0 {
		return refs, nil
	}

	query := `SELECT id, nombre, apellido, celular, email, rubro, puesto, calificacion, no_llamar
		FROM curriculums WHERE id = ANY($1::uuid[])`
	rows, err := r.db.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get curriculum refs: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.CurriculumRef, len(ids))
	for rows.Next() {
		var ref domain.CurriculumRef
		if err := rows.Scan(&ref.ID, &ref.Nombre, &ref.Apellido, &ref.Celular, &ref.Email,
			&ref.Rubro, &ref.Puesto, &ref.Calificacion, &ref.NoLlamar); err != nil {
			return nil, err
		}
		byID[ref.ID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// keep the order of the membership array
	for _, id := range ids {
		if ref, ok := byID[id]; ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// Update writes every field except listas, which only the membership
// repository changes.
func (r *curriculumRepo) Update(ctx context.Context, c *domain.Curriculum) error {
	if !isUUID(c.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE curriculums SET
			nombre = $2, apellido = $3, email = $4, celular = $5, fecha_nacimiento = $6,
			pais = $7, provincia = $8, zona = $9, localidad = $10, rubro = $11, subrubro = $12,
			puesto = $13, calificacion = $14, estudios = $15, experiencia = $16,
			idiomas = $17::text[], comentarios = $18, no_llamar = $19, archivo = $20,
			archivo_tipo = $21, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at, listas`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.Nombre, c.Apellido, c.Email, c.Celular, c.FechaNacimiento,
		c.Pais, c.Provincia, c.Zona, c.Localidad, c.Rubro, c.Subrubro,
		c.Puesto, c.Calificacion, c.Estudios, c.Experiencia,
		pq.Array(c.Idiomas), c.Comentarios, c.NoLlamar, c.Archivo,
		c.ArchivoTipo,
	).Scan(&c.UpdatedAt, pq.Array(&c.Listas))
	if err != nil {
		return fmt.Errorf("update curriculum: %w", mapError(err))
	}
	if c.Listas == nil {
		c.Listas = []string{}
	}
	return nil
}

// Delete removes the curriculum from every lista and then deletes it, in one
// transaction. The curriculum row is locked first, like membership changes.
func (r *curriculumRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var listas []string
	err = tx.QueryRow(ctx, `SELECT listas FROM curriculums WHERE id = $1 FOR UPDATE`, id).Scan(pq.Array(&listas))
	if err != nil {
		return mapError(err)
	}

	if len(listas) > 0 {
		sorted := sortedUnion(listas, nil)
		if _, err := tx.Exec(ctx, `SELECT id FROM listas WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`, pq.Array(sorted)); err != nil {
			return fmt.Errorf("lock listas: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE listas SET curriculums = array_remove(curriculums, $1::uuid), updated_at = NOW()
		WHERE $1::uuid = ANY(curriculums)`, id)
	if err != nil {
		return fmt.Errorf("sweep listas: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM curriculums WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete curriculum: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *curriculumRepo) queryList(ctx context.Context, query string, args ...interface{}) ([]domain.Curriculum, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query curriculums: %w", err)
	}
	defer rows.Close()

	items := []domain.Curriculum{}
	for rows.Next() {
		c, err := scanCurriculum(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range domain.UniqueIDs(ids) {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}
