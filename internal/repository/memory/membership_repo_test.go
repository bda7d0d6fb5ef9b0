package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/internal/repository/memory"
)

func seed(t *testing.T, store *memory.Store, listas int) (string, []string) {
	t.Helper()
	ctx := context.Background()
	c := &domain.Curriculum{Nombre: "Ana", Apellido: "Díaz", Celular: "1155550000", Pais: "Chile", Rubro: "Comercio"}
	require.NoError(t, memory.NewCurriculumRepository(store).Create(ctx, c))

	ids := make([]string, 0, listas)
	repo := memory.NewListaRepository(store)
	for i := 0; i < listas; i++ {
		l := &domain.Lista{Puesto: "Mozo", Cliente: "Acme", Comentario: fmt.Sprintf("turno %d", i)}
		require.NoError(t, repo.Create(ctx, l))
		ids = append(ids, l.ID)
	}
	return c.ID, ids
}

func TestMutateCurriculumListas(t *testing.T) {
	ctx := context.Background()

	t.Run("Should keep both sides consistent under concurrent mutations", func(t *testing.T) {
		store := memory.NewStore()
		curriculumID, listaIDs := seed(t, store, 8)
		repo := memory.NewMembershipRepository(store)

		var wg sync.WaitGroup
		for _, id := range listaIDs {
			id := id
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.MutateCurriculumListas(ctx, curriculumID, func(current []string) ([]string, error) {
					return append(current, id), nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		c, err := memory.NewCurriculumRepository(store).GetByID(ctx, curriculumID)
		require.NoError(t, err)
		assert.ElementsMatch(t, listaIDs, c.Listas)

		listas := memory.NewListaRepository(store)
		for _, id := range listaIDs {
			l, err := listas.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, []string{curriculumID}, l.Curriculums)
		}
	})

	t.Run("Should reject unknown listas without writing", func(t *testing.T) {
		store := memory.NewStore()
		curriculumID, listaIDs := seed(t, store, 1)
		repo := memory.NewMembershipRepository(store)

		_, err := repo.MutateCurriculumListas(ctx, curriculumID, func([]string) ([]string, error) {
			return []string{listaIDs[0], "missing"}, nil
		})
		assert.True(t, errors.Is(err, domain.ErrUnknownLista))

		l, err := memory.NewListaRepository(store).GetByID(ctx, listaIDs[0])
		require.NoError(t, err)
		assert.Empty(t, l.Curriculums)
	})

	t.Run("Should propagate mutation errors", func(t *testing.T) {
		store := memory.NewStore()
		curriculumID, _ := seed(t, store, 0)
		boom := errors.New("boom")

		_, err := memory.NewMembershipRepository(store).MutateCurriculumListas(ctx, curriculumID, func([]string) ([]string, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Should answer ErrNotFound for an unknown curriculum", func(t *testing.T) {
		store := memory.NewStore()
		_, err := memory.NewMembershipRepository(store).MutateCurriculumListas(ctx, "missing", func(c []string) ([]string, error) {
			return c, nil
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestListaRepoUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewListaRepository(memory.NewStore())

	require.NoError(t, repo.Create(ctx, &domain.Lista{Puesto: "Mozo", Cliente: "Acme", Comentario: ""}))
	err := repo.Create(ctx, &domain.Lista{Puesto: "Cajero", Cliente: "Acme", Comentario: ""})
	assert.ErrorIs(t, err, domain.ErrDuplicateLista)

	found, err := repo.GetByClienteComentario(ctx, "Acme", "otro")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCurriculumRepoDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCurriculumRepository(memory.NewStore())

	require.NoError(t, repo.Create(ctx, &domain.Curriculum{Nombre: "Ana", Celular: "1155550000"}))
	err := repo.Create(ctx, &domain.Curriculum{Nombre: "Eva", Celular: "1155550000"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCelular)
}
