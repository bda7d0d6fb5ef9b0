package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"cv-tracker-backend/internal/domain"
)

const listaColumns = `id, puesto, cliente, comentario, fecha_limite, color, curriculums, created_at, updated_at`

type listaRepo struct {
	db DB
}

func NewListaRepository(db DB) domain.ListaRepository {
	return &listaRepo{db: db}
}

func scanLista(row pgx.Row) (*domain.Lista, error) {
	var l domain.Lista
	err := row.Scan(&l.ID, &l.Puesto, &l.Cliente, &l.Comentario, &l.FechaLimite, &l.Color,
		pq.Array(&l.Curriculums), &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if l.Curriculums == nil {
		l.Curriculums = []string{}
	}
	return &l, nil
}

func (r *listaRepo) Create(ctx context.Context, l *domain.Lista) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	query := `
		INSERT INTO listas (id, puesto, cliente, comentario, fecha_limite, color)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, l.ID, l.Puesto, l.Cliente, l.Comentario, l.FechaLimite, l.Color).
		Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert lista: %w", mapError(err))
	}
	l.Curriculums = []string{}
	return nil
}

func (r *listaRepo) GetByID(ctx context.Context, id string) (*domain.Lista, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	l, err := scanLista(r.db.QueryRow(ctx, `SELECT `+listaColumns+` FROM listas WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return l, nil
}

// GetByClienteComentario returns nil, nil when the pair is free.
func (r *listaRepo) GetByClienteComentario(ctx context.Context, cliente, comentario string) (*domain.Lista, error) {
	query := `SELECT ` + listaColumns + ` FROM listas WHERE cliente = $1 AND comentario = $2`
	l, err := scanLista(r.db.QueryRow(ctx, query, cliente, comentario))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lista by cliente: %w", err)
	}
	return l, nil
}

// FetchAll returns every lista, newest first.
func (r *listaRepo) FetchAll(ctx context.Context) ([]domain.Lista, error) {
	rows, err := r.db.Query(ctx, `SELECT `+listaColumns+` FROM listas ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("fetch listas: %w", err)
	}
	defer rows.Close()

	listas := []domain.Lista{}
	for rows.Next() {
		l, err := scanLista(rows)
		if err != nil {
			return nil, err
		}
		listas = append(listas, *l)
	}
	return listas, rows.Err()
}

func (r *listaRepo) GetRefs(ctx context.Context, ids []string) ([]domain.ListaRef, error) {
	refs := []domain.ListaRef{}
	ids = validIDs(ids)
	if len(ids) == 0 {
		return refs, nil
	}

	rows, err := r.db.Query(ctx, `SELECT id, puesto, cliente, color FROM listas WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get lista refs: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.ListaRef, len(ids))
	for rows.Next() {
		var ref domain.ListaRef
		if err := rows.Scan(&ref.ID, &ref.Puesto, &ref.Cliente, &ref.Color); err != nil {
			return nil, err
		}
		byID[ref.ID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if ref, ok := byID[id]; ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// Update writes the lista fields; curriculums is left to the membership
// repository.
func (r *listaRepo) Update(ctx context.Context, l *domain.Lista) error {
	if !isUUID(l.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE listas SET puesto = $2, cliente = $3, comentario = $4, fecha_limite = $5,
			color = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at, curriculums`

	err := r.db.QueryRow(ctx, query, l.ID, l.Puesto, l.Cliente, l.Comentario, l.FechaLimite, l.Color).
		Scan(&l.UpdatedAt, pq.Array(&l.Curriculums))
	if err != nil {
		return fmt.Errorf("update lista: %w", mapError(err))
	}
	if l.Curriculums == nil {
		l.Curriculums = []string{}
	}
	return nil
}

// Delete removes the lista id from every curriculum and deletes the lista
// in one transaction. Member curriculums are locked before the lista row,
// the same order membership changes use.
func (r *listaRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `SELECT id FROM curriculums WHERE $1::uuid = ANY(listas) ORDER BY id FOR UPDATE`, id)
	if err != nil {
		return fmt.Errorf("lock curriculums: %w", err)
	}

	var lockedID string
	if err := tx.QueryRow(ctx, `SELECT id FROM listas WHERE id = $1 FOR UPDATE`, id).Scan(&lockedID); err != nil {
		return mapError(err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE curriculums SET listas = array_remove(listas, $1::uuid), updated_at = NOW()
		WHERE $1::uuid = ANY(listas)`, id)
	if err != nil {
		return fmt.Errorf("sweep curriculums: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM listas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lista: %w", err)
	}

	return tx.Commit(ctx)
}
