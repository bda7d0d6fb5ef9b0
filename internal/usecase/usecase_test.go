package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/internal/repository/memory"
	"cv-tracker-backend/internal/usecase"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/events"
	"cv-tracker-backend/pkg/security"
	"cv-tracker-backend/pkg/storage"
	"cv-tracker-backend/pkg/validation"
)

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockListaCache counts invalidations and serves whatever was last stored.
type MockListaCache struct {
	mock.Mock
}

func (m *MockListaCache) Get(ctx context.Context) ([]domain.ListaDetail, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.ListaDetail), args.Bool(1), args.Error(2)
}
func (m *MockListaCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockListaCache) Set(ctx context.Context, generation int64, listas []domain.ListaDetail) (bool, error) {
	args := m.Called(ctx, generation, listas)
	return args.Bool(0), args.Error(1)
}
func (m *MockListaCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// generationCache is an in-process ListaCache with the same generation rules
// as the Redis one.
type generationCache struct {
	mu         sync.Mutex
	generation int64
	listas     []domain.ListaDetail
	ok         bool
}

func newGenerationCache() *generationCache { return &generationCache{} }

func (g *generationCache) Get(ctx context.Context) ([]domain.ListaDetail, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.listas, g.ok, nil
}
func (g *generationCache) Generation(ctx context.Context) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generation, nil
}
func (g *generationCache) Set(ctx context.Context, generation int64, listas []domain.ListaDetail) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if generation != g.generation {
		return false, nil
	}
	g.listas, g.ok = listas, true
	return true, nil
}
func (g *generationCache) Invalidate(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listas, g.ok = nil, false
	g.generation++
	return nil
}

// pausingRefs blocks GetRefs until release is closed.
type pausingRefs struct {
	domain.CurriculumRepository
	reached chan struct{}
	release chan struct{}
}

func (p *pausingRefs) GetRefs(ctx context.Context, ids []string) ([]domain.CurriculumRef, error) {
	close(p.reached)
	<-p.release
	return p.CurriculumRepository.GetRefs(ctx, ids)
}

var pdfAttachment = func() *domain.Attachment {
	return &domain.Attachment{Filename: "cv.pdf", Data: []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF")}
}

type fixture struct {
	store        *memory.Store
	files        *storage.LocalStore
	recorder     *events.Recorder
	curriculumUC domain.CurriculumUsecase
	listaUC      domain.ListaUsecase
	membershipUC domain.MembershipUsecase
}

func newFixture(t *testing.T, cache domain.ListaCache) *fixture {
	t.Helper()
	store := memory.NewStore()
	files, err := storage.NewLocalStore(t.TempDir(), "http://localhost/files")
	require.NoError(t, err)

	recorder := &events.Recorder{}
	validate := validation.New()
	attachments := usecase.NewAttachmentService(files, 5<<20, 0, security.NewNopSecurityLogger())

	curriculums := memory.NewCurriculumRepository(store)
	listas := memory.NewListaRepository(store)

	return &fixture{
		store:        store,
		files:        files,
		recorder:     recorder,
		curriculumUC: usecase.NewCurriculumUsecase(curriculums, listas, attachments, cache, recorder, validate),
		listaUC:      usecase.NewListaUsecase(listas, curriculums, cache, recorder, validate),
		membershipUC: usecase.NewMembershipUsecase(memory.NewMembershipRepository(store), listas, cache, recorder),
	}
}

func validCurriculum() *domain.Curriculum {
	return &domain.Curriculum{
		Nombre:       "Lucía",
		Apellido:     "Pérez",
		Celular:      "+54 11 5555-1234",
		Pais:         "Chile",
		Rubro:        "Comercio",
		Puesto:       "Cajera",
		Calificacion: "bueno",
	}
}

func (f *fixture) createCurriculum(t *testing.T, mutate func(c *domain.Curriculum)) *domain.Curriculum {
	t.Helper()
	c := validCurriculum()
	if mutate != nil {
		mutate(c)
	}
	created, err := f.curriculumUC.Create(context.Background(), c, pdfAttachment())
	require.NoError(t, err)
	return created
}

func (f *fixture) createLista(t *testing.T, cliente, comentario string) *domain.Lista {
	t.Helper()
	created, err := f.listaUC.Create(context.Background(), &domain.Lista{Puesto: "Mozo", Cliente: cliente, Comentario: comentario})
	require.NoError(t, err)
	return created
}

func appErr(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	var ae *apperror.AppError
	require.True(t, errors.As(err, &ae), "expected *apperror.AppError, got %v", err)
	return ae
}

func TestCurriculumCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should normalize the phone and store the attachment", func(t *testing.T) {
		f := newFixture(t, nil)
		created := f.createCurriculum(t, nil)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "+541155551234", created.Celular)
		assert.Equal(t, "application/pdf", created.ArchivoTipo)
		assert.True(t, strings.HasPrefix(created.Archivo, "http://localhost/files/curriculums/"))
		assert.Empty(t, created.Listas)
		assert.Equal(t, []string{domain.EventCurriculumCreated}, f.recorder.Names())
	})

	t.Run("Should answer 409 for a taken phone even when the payload is invalid", func(t *testing.T) {
		f := newFixture(t, nil)
		first := f.createCurriculum(t, nil)

		dup := &domain.Curriculum{Celular: "+54 (11) 5555.1234"}
		_, err := f.curriculumUC.Create(ctx, dup, nil)
		require.Error(t, err)

		ae := appErr(t, err)
		assert.Equal(t, http.StatusConflict, ae.Code)
		assert.Equal(t, map[string]string{"celular": "+541155551234", "existing_id": first.ID}, ae.Details)
	})

	t.Run("Should require provincia only for Argentina", func(t *testing.T) {
		f := newFixture(t, nil)

		_, err := f.curriculumUC.Create(ctx, func() *domain.Curriculum {
			c := validCurriculum()
			c.Pais = domain.PaisArgentina
			return c
		}(), pdfAttachment())
		ae := appErr(t, err)
		assert.Equal(t, http.StatusBadRequest, ae.Code)
		assert.Contains(t, ae.Details, "provincia")

		c := validCurriculum()
		c.Pais = "Chile"
		c.Provincia = ""
		_, err = f.curriculumUC.Create(ctx, c, pdfAttachment())
		assert.NoError(t, err)
	})

	t.Run("Should require subrubro for Gastronomía", func(t *testing.T) {
		f := newFixture(t, nil)
		c := validCurriculum()
		c.Rubro = domain.RubroGastronomia

		_, err := f.curriculumUC.Create(ctx, c, pdfAttachment())
		ae := appErr(t, err)
		assert.Equal(t, http.StatusBadRequest, ae.Code)
		assert.Contains(t, ae.Details, "subrubro")
	})

	t.Run("Should require subrubro when the rubro arrives decomposed", func(t *testing.T) {
		f := newFixture(t, nil)
		c := validCurriculum()
		c.Rubro = "Gastronomi\u0301a"

		_, err := f.curriculumUC.Create(ctx, c, pdfAttachment())
		ae := appErr(t, err)
		assert.Equal(t, http.StatusBadRequest, ae.Code)
		assert.Contains(t, ae.Details, "subrubro")
	})

	t.Run("Should require an attachment", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.curriculumUC.Create(ctx, validCurriculum(), nil)
		ae := appErr(t, err)
		assert.Equal(t, map[string]string{"archivo": "Archivo: Campo obligatorio"}, ae.Details)
	})

	t.Run("Should reject an attachment whose content does not match the extension", func(t *testing.T) {
		f := newFixture(t, nil)
		att := pdfAttachment()
		att.Filename = "cv.docx"

		_, err := f.curriculumUC.Create(ctx, validCurriculum(), att)
		ae := appErr(t, err)
		assert.Equal(t, http.StatusBadRequest, ae.Code)
		assert.Equal(t, map[string]string{"archivo": "Archivo: El contenido no coincide con la extensión"}, ae.Details)
	})

	t.Run("Should ignore client supplied listas", func(t *testing.T) {
		f := newFixture(t, nil)
		created := f.createCurriculum(t, func(c *domain.Curriculum) {
			c.Listas = []string{"forged"}
		})
		assert.Empty(t, created.Listas)
	})
}

func TestCurriculumUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should merge the patch and keep listas", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		l := f.createLista(t, "Acme", "")
		_, err := f.membershipUC.AssignListas(ctx, c.ID, []string{l.ID})
		require.NoError(t, err)

		puesto := "Encargada"
		updated, err := f.curriculumUC.Update(ctx, c.ID, &domain.CurriculumPatch{Puesto: &puesto}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Encargada", updated.Puesto)
		assert.Equal(t, "Lucía", updated.Nombre)
		assert.Equal(t, []string{l.ID}, updated.Listas)
		assert.Equal(t, c.Archivo, updated.Archivo)
	})

	t.Run("Should reject a phone owned by another curriculum", func(t *testing.T) {
		f := newFixture(t, nil)
		first := f.createCurriculum(t, nil)
		second := f.createCurriculum(t, func(c *domain.Curriculum) { c.Celular = "1144445555" })

		_, err := f.curriculumUC.Update(ctx, second.ID, &domain.CurriculumPatch{Celular: &first.Celular}, nil)
		ae := appErr(t, err)
		assert.Equal(t, http.StatusConflict, ae.Code)
	})

	t.Run("Should leave text fields outside the patch untouched", func(t *testing.T) {
		f := newFixture(t, nil)
		stored := validCurriculum()
		stored.Normalize()
		stored.Comentarios = "usar <b> en negrita"
		stored.Experiencia = "Pérez &amp; Hijos"
		require.NoError(t, memory.NewCurriculumRepository(f.store).Create(ctx, stored))

		noLlamar := true
		updated, err := f.curriculumUC.Update(ctx, stored.ID, &domain.CurriculumPatch{NoLlamar: &noLlamar}, nil)
		require.NoError(t, err)
		assert.True(t, updated.NoLlamar)
		assert.Equal(t, "usar <b> en negrita", updated.Comentarios)
		assert.Equal(t, "Pérez &amp; Hijos", updated.Experiencia)

		again, err := f.curriculumUC.Update(ctx, stored.ID, &domain.CurriculumPatch{NoLlamar: &noLlamar}, nil)
		require.NoError(t, err)
		assert.Equal(t, "usar <b> en negrita", again.Comentarios)
	})

	t.Run("Should sanitize text sent in the patch", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)

		comentarios := "<i>llamar</i> por la tarde"
		updated, err := f.curriculumUC.Update(ctx, c.ID, &domain.CurriculumPatch{Comentarios: &comentarios}, nil)
		require.NoError(t, err)
		assert.Equal(t, "llamar por la tarde", updated.Comentarios)
		assert.Equal(t, "<i>llamar</i> por la tarde", comentarios)
	})

	t.Run("Should answer 404 for an unknown curriculum", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.curriculumUC.Update(ctx, "missing", &domain.CurriculumPatch{}, nil)
		assert.Equal(t, http.StatusNotFound, appErr(t, err).Code)
	})
}

func TestCurriculumDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should remove the curriculum from every lista", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		a := f.createLista(t, "Acme", "turno noche")
		b := f.createLista(t, "Globex", "")
		_, err := f.membershipUC.AssignListas(ctx, c.ID, []string{a.ID, b.ID})
		require.NoError(t, err)

		require.NoError(t, f.curriculumUC.Delete(ctx, c.ID))

		for _, id := range []string{a.ID, b.ID} {
			detail, err := f.listaUC.Get(ctx, id)
			require.NoError(t, err)
			assert.Empty(t, detail.Lista.Curriculums)
			assert.Empty(t, detail.Curriculums)
		}
		_, err = f.curriculumUC.Get(ctx, c.ID)
		assert.Equal(t, http.StatusNotFound, appErr(t, err).Code)
		assert.Contains(t, f.recorder.Names(), domain.EventCurriculumDeleted)
	})

	t.Run("Should delete the stored attachment", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		key, ok := f.files.KeyFromURL(c.Archivo)
		require.True(t, ok)
		assert.FileExists(t, f.files.BaseDir()+"/"+key)

		require.NoError(t, f.curriculumUC.Delete(ctx, c.ID))
		assert.NoFileExists(t, f.files.BaseDir()+"/"+key)
	})
}

func TestCurriculumSearchAndDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.createCurriculum(t, func(c *domain.Curriculum) { c.Nombre, c.Apellido, c.Celular = "Ana", "Zapata", "1100000001" })
	f.createCurriculum(t, func(c *domain.Curriculum) { c.Nombre, c.Apellido, c.Celular = "Bruno", "Acosta", "1100000002" })
	f.createCurriculum(t, func(c *domain.Curriculum) {
		c.Nombre, c.Apellido, c.Celular, c.Rubro, c.Subrubro = "Carla", "Acosta", "1100000003", domain.RubroGastronomia, "Cocina"
	})

	t.Run("Should sort by apellido and nombre and paginate", func(t *testing.T) {
		items, total, err := f.curriculumUC.Search(ctx, domain.CurriculumFilter{}, 1, 2)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.Len(t, items, 2)
		assert.Equal(t, "Bruno", items[0].Nombre)
		assert.Equal(t, "Carla", items[1].Nombre)

		items, _, err = f.curriculumUC.Search(ctx, domain.CurriculumFilter{}, 2, 2)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Zapata", items[0].Apellido)
	})

	t.Run("Should filter by rubro", func(t *testing.T) {
		items, total, err := f.curriculumUC.Search(ctx, domain.CurriculumFilter{Rubro: domain.RubroGastronomia}, 0, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "Carla", items[0].Nombre)
	})

	t.Run("Should block on a phone match and warn on name matches", func(t *testing.T) {
		report, err := f.curriculumUC.CheckDuplicates(ctx, "ana", "zapata", "11-0000-0002")
		require.NoError(t, err)
		assert.True(t, report.Blocking)
		assert.True(t, report.HasDuplicate)
		require.NotNil(t, report.PhoneMatch)
		assert.Equal(t, "Bruno", report.PhoneMatch.Nombre)
		require.Len(t, report.NameMatches, 1)
		assert.Equal(t, "Ana", report.NameMatches[0].Nombre)
	})

	t.Run("Should not block on a name match alone", func(t *testing.T) {
		report, err := f.curriculumUC.CheckDuplicates(ctx, "Bruno", "Acosta", "")
		require.NoError(t, err)
		assert.False(t, report.Blocking)
		assert.True(t, report.HasDuplicate)
	})

	t.Run("Should require celular or both names", func(t *testing.T) {
		_, err := f.curriculumUC.CheckDuplicates(ctx, "Ana", "", "")
		assert.Equal(t, http.StatusBadRequest, appErr(t, err).Code)
	})
}

func TestListaCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should default and uppercase the color", func(t *testing.T) {
		f := newFixture(t, nil)
		l := f.createLista(t, "Acme", "")
		assert.Equal(t, domain.DefaultListaColor, l.Color)

		other, err := f.listaUC.Create(ctx, &domain.Lista{Puesto: "Mozo", Cliente: "Acme", Comentario: "x", Color: "#a1b2c3"})
		require.NoError(t, err)
		assert.Equal(t, "#A1B2C3", other.Color)
	})

	t.Run("Should answer 409 with the existing lista for a repeated cliente and comentario", func(t *testing.T) {
		f := newFixture(t, nil)
		first := f.createLista(t, "Acme", "turno noche")

		_, err := f.listaUC.Create(ctx, &domain.Lista{Puesto: "Cajero", Cliente: " Acme ", Comentario: "turno noche"})
		ae := appErr(t, err)
		assert.Equal(t, http.StatusConflict, ae.Code)
		assert.Equal(t, domain.DuplicateLista{Cliente: "Acme", Comentario: "turno noche", ExistingID: first.ID}, ae.Details)
	})

	t.Run("Should allow the same cliente with a different comentario", func(t *testing.T) {
		f := newFixture(t, nil)
		f.createLista(t, "Acme", "turno noche")
		_, err := f.listaUC.Create(ctx, &domain.Lista{Puesto: "Mozo", Cliente: "Acme", Comentario: "turno día"})
		assert.NoError(t, err)
	})

	t.Run("Should reject an invalid color", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.listaUC.Create(ctx, &domain.Lista{Puesto: "Mozo", Cliente: "Acme", Color: "red"})
		ae := appErr(t, err)
		assert.Contains(t, ae.Details, "color")
	})
}

func TestListaUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a := f.createLista(t, "Acme", "uno")
	b := f.createLista(t, "Acme", "dos")

	t.Run("Should keep the stored comentario when only the color changes", func(t *testing.T) {
		stored := &domain.Lista{Puesto: "Mozo", Cliente: "Initech", Comentario: "turno &lt;noche&gt;", Color: domain.DefaultListaColor}
		require.NoError(t, memory.NewListaRepository(f.store).Create(ctx, stored))

		color := "#ff0000"
		updated, err := f.listaUC.Update(ctx, stored.ID, &domain.ListaPatch{Color: &color})
		require.NoError(t, err)
		assert.Equal(t, "#FF0000", updated.Color)
		assert.Equal(t, "turno &lt;noche&gt;", updated.Comentario)
	})

	t.Run("Should reject a rename onto another lista", func(t *testing.T) {
		comentario := "uno"
		_, err := f.listaUC.Update(ctx, b.ID, &domain.ListaPatch{Comentario: &comentario})
		ae := appErr(t, err)
		assert.Equal(t, http.StatusConflict, ae.Code)
		assert.Equal(t, a.ID, ae.Details.(domain.DuplicateLista).ExistingID)
	})

	t.Run("Should set and clear the deadline", func(t *testing.T) {
		deadline := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
		updated, err := f.listaUC.Update(ctx, a.ID, &domain.ListaPatch{FechaLimite: &deadline})
		require.NoError(t, err)
		require.NotNil(t, updated.FechaLimite)
		assert.True(t, deadline.Equal(*updated.FechaLimite))

		updated, err = f.listaUC.Update(ctx, a.ID, &domain.ListaPatch{ClearFechaLimite: true})
		require.NoError(t, err)
		assert.Nil(t, updated.FechaLimite)
	})
}

func TestListaDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should remove the lista from every member curriculum", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		keep := f.createLista(t, "Acme", "uno")
		gone := f.createLista(t, "Acme", "dos")
		_, err := f.membershipUC.AssignListas(ctx, c.ID, []string{keep.ID, gone.ID})
		require.NoError(t, err)

		require.NoError(t, f.listaUC.Delete(ctx, gone.ID))

		detail, err := f.curriculumUC.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{keep.ID}, detail.Curriculum.Listas)
		require.Len(t, detail.Listas, 1)
		assert.Equal(t, keep.ID, detail.Listas[0].ID)
	})

	t.Run("Should answer 404 twice", func(t *testing.T) {
		f := newFixture(t, nil)
		l := f.createLista(t, "Acme", "")
		require.NoError(t, f.listaUC.Delete(ctx, l.ID))
		assert.Equal(t, http.StatusNotFound, appErr(t, f.listaUC.Delete(ctx, l.ID)).Code)
	})
}

func TestListaCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Should serve a cache hit without reading the repositories", func(t *testing.T) {
		cache := new(MockListaCache)
		cached := []domain.ListaDetail{{Lista: domain.Lista{ID: "cached"}}}
		cache.On("Get", mock.Anything).Return(cached, true, nil).Once()

		f := newFixture(t, cache)
		listas, err := f.listaUC.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, cached, listas)
		cache.AssertExpectations(t)
	})

	t.Run("Should populate the cache on a miss", func(t *testing.T) {
		cache := new(MockListaCache)
		cache.On("Invalidate", mock.Anything).Return(nil)
		cache.On("Get", mock.Anything).Return(nil, false, nil).Once()
		cache.On("Generation", mock.Anything).Return(int64(3), nil).Once()
		cache.On("Set", mock.Anything, int64(3), mock.MatchedBy(func(listas []domain.ListaDetail) bool {
			return len(listas) == 1 && listas[0].Cliente == "Acme"
		})).Return(true, nil).Once()

		f := newFixture(t, cache)
		f.createLista(t, "Acme", "")
		listas, err := f.listaUC.List(ctx)
		require.NoError(t, err)
		assert.Len(t, listas, 1)
		cache.AssertExpectations(t)
	})

	t.Run("Should fall back to the repositories when the cache fails", func(t *testing.T) {
		cache := new(MockListaCache)
		cache.On("Invalidate", mock.Anything).Return(nil)
		cache.On("Get", mock.Anything).Return(nil, false, errors.New("redis down"))
		cache.On("Generation", mock.Anything).Return(int64(0), errors.New("redis down"))

		f := newFixture(t, cache)
		f.createLista(t, "Acme", "")
		listas, err := f.listaUC.List(ctx)
		require.NoError(t, err)
		assert.Len(t, listas, 1)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should not store a snapshot loaded across a membership write", func(t *testing.T) {
		cache := newGenerationCache()
		f := newFixture(t, cache)
		c := f.createCurriculum(t, nil)
		l := f.createLista(t, "Acme", "")

		refs := &pausingRefs{
			CurriculumRepository: memory.NewCurriculumRepository(f.store),
			reached:              make(chan struct{}),
			release:              make(chan struct{}),
		}
		slowUC := usecase.NewListaUsecase(memory.NewListaRepository(f.store), refs, cache, f.recorder, validation.New())

		done := make(chan []domain.ListaDetail, 1)
		go func() {
			listas, err := slowUC.List(ctx)
			assert.NoError(t, err)
			done <- listas
		}()

		<-refs.reached
		_, err := f.membershipUC.AssignListas(ctx, c.ID, []string{l.ID})
		require.NoError(t, err)
		close(refs.release)

		stale := <-done
		require.Len(t, stale, 1)
		assert.Empty(t, stale[0].Curriculums)

		listas, err := f.listaUC.List(ctx)
		require.NoError(t, err)
		require.Len(t, listas, 1)
		require.Len(t, listas[0].Curriculums, 1)
		assert.Equal(t, c.ID, listas[0].Curriculums[0].ID)
	})

	t.Run("Should store a snapshot when nothing changed while loading", func(t *testing.T) {
		cache := newGenerationCache()
		f := newFixture(t, cache)
		f.createLista(t, "Acme", "")

		_, err := f.listaUC.List(ctx)
		require.NoError(t, err)
		cached, ok, err := cache.Get(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Len(t, cached, 1)
	})

	t.Run("Should invalidate on membership changes", func(t *testing.T) {
		cache := new(MockListaCache)
		cache.On("Invalidate", mock.Anything).Return(nil)

		f := newFixture(t, cache)
		c := f.createCurriculum(t, nil)
		l := f.createLista(t, "Acme", "")
		before := len(cache.Calls)

		_, err := f.membershipUC.AddMember(ctx, l.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, before+1, len(cache.Calls))
	})
}

func TestMembership(t *testing.T) {
	ctx := context.Background()

	t.Run("Should match upper-case lista ids to the stored ones", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		l := f.createLista(t, "Acme", "")

		change, err := f.membershipUC.AssignListas(ctx, strings.ToUpper(c.ID), []string{strings.ToUpper(l.ID)})
		require.NoError(t, err)
		assert.Equal(t, []string{l.ID}, change.Added)
		assert.Empty(t, change.Removed)

		change, err = f.membershipUC.AddMember(ctx, strings.ToUpper(l.ID), c.ID)
		require.NoError(t, err)
		assert.True(t, change.Empty())

		change, err = f.membershipUC.RemoveMember(ctx, strings.ToUpper(l.ID), c.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{l.ID}, change.Removed)
	})

	t.Run("Should keep both sides in sync when reassigning", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		a := f.createLista(t, "Acme", "a")
		b := f.createLista(t, "Acme", "b")

		change, err := f.membershipUC.AssignListas(ctx, c.ID, []string{a.ID, b.ID, a.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, b.ID}, change.Added)
		assert.Empty(t, change.Removed)

		change, err = f.membershipUC.AssignListas(ctx, c.ID, []string{b.ID})
		require.NoError(t, err)
		assert.Empty(t, change.Added)
		assert.Equal(t, []string{a.ID}, change.Removed)
		assert.Equal(t, []string{b.ID}, change.Listas)

		la, err := f.listaUC.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, la.Lista.Curriculums)

		lb, err := f.listaUC.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{c.ID}, lb.Lista.Curriculums)
		require.Len(t, lb.Curriculums, 1)
		assert.Equal(t, "Lucía", lb.Curriculums[0].Nombre)
	})

	t.Run("Should not write anything when a lista is unknown", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		a := f.createLista(t, "Acme", "a")

		_, err := f.membershipUC.AssignListas(ctx, c.ID, []string{a.ID, "missing"})
		ae := appErr(t, err)
		assert.Equal(t, http.StatusNotFound, ae.Code)
		assert.Equal(t, "Lista no encontrada", ae.Message)

		la, err := f.listaUC.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, la.Lista.Curriculums)
		detail, err := f.curriculumUC.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, detail.Curriculum.Listas)
	})

	t.Run("Should add and remove single members", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		l := f.createLista(t, "Acme", "")

		change, err := f.membershipUC.AddMember(ctx, l.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{l.ID}, change.Added)

		// adding twice is a no-op
		change, err = f.membershipUC.AddMember(ctx, l.ID, c.ID)
		require.NoError(t, err)
		assert.True(t, change.Empty())

		change, err = f.membershipUC.RemoveMember(ctx, l.ID, c.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{l.ID}, change.Removed)
		assert.Empty(t, change.Listas)
	})

	t.Run("Should answer 404 for unknown curriculum or lista", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		l := f.createLista(t, "Acme", "")

		_, err := f.membershipUC.AddMember(ctx, "missing", c.ID)
		assert.Equal(t, "Lista no encontrada", appErr(t, err).Message)

		_, err = f.membershipUC.AddMember(ctx, l.ID, "missing")
		assert.Equal(t, "Curriculum no encontrado", appErr(t, err).Message)
	})

	t.Run("Should publish only effective changes", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.createCurriculum(t, nil)
		l := f.createLista(t, "Acme", "")

		_, err := f.membershipUC.AssignListas(ctx, c.ID, []string{l.ID})
		require.NoError(t, err)
		_, err = f.membershipUC.AssignListas(ctx, c.ID, []string{l.ID})
		require.NoError(t, err)

		assert.Equal(t, []string{
			domain.EventCurriculumCreated,
			domain.EventListaCreated,
			domain.EventMembershipChanged,
		}, f.recorder.Names())
	})
}

func TestListaExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	c := f.createCurriculum(t, func(c *domain.Curriculum) { c.NoLlamar = true })
	l := f.createLista(t, "Acme SA", "")
	_, err := f.membershipUC.AddMember(ctx, l.ID, c.ID)
	require.NoError(t, err)

	t.Run("Should export csv with a header and one row per member", func(t *testing.T) {
		data, filename, err := f.listaUC.Export(ctx, l.ID, "csv")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filename, "lista_acme_sa_mozo_"))
		assert.True(t, strings.HasSuffix(filename, ".csv"))

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "NOMBRE,APELLIDO,CELULAR"))
		assert.Equal(t, "Lucía,Pérez,+541155551234,,Comercio,Cajera,bueno,SI", lines[1])
	})

	t.Run("Should default to xlsx", func(t *testing.T) {
		data, filename, err := f.listaUC.Export(ctx, l.ID, "")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".xlsx"))
		// xlsx is a zip container
		assert.Equal(t, []byte("PK"), data[:2])
	})

	t.Run("Should reject other formats", func(t *testing.T) {
		_, _, err := f.listaUC.Export(ctx, l.ID, "pdf")
		assert.Equal(t, http.StatusBadRequest, appErr(t, err).Code)
	})

	t.Run("Should answer 404 for an unknown lista", func(t *testing.T) {
		_, _, err := f.listaUC.Export(ctx, "missing", "csv")
		assert.Equal(t, http.StatusNotFound, appErr(t, err).Code)
	})
}

func TestAuthSignIn(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	hash, err := security.HashPassword("correct-horse")
	require.NoError(t, err)
	user := &domain.User{ID: "u1", Email: "ana@example.com", Role: domain.RoleRecruiter, PasswordHash: hash}

	t.Run("Should answer 404 for an unknown email", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound)
		uc := usecase.NewAuthUsecase(repo, tokens)

		_, err := uc.SignIn(ctx, " Nobody@Example.com ", "whatever")
		ae := appErr(t, err)
		assert.Equal(t, http.StatusNotFound, ae.Code)
		assert.Equal(t, "Usuario no encontrado", ae.Message)
		repo.AssertExpectations(t)
	})

	t.Run("Should answer 400 for a wrong password", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
		uc := usecase.NewAuthUsecase(repo, tokens)

		_, err := uc.SignIn(ctx, user.Email, "wrong")
		ae := appErr(t, err)
		assert.Equal(t, http.StatusBadRequest, ae.Code)
		assert.Equal(t, "Contraseña incorrecta", ae.Message)
	})

	t.Run("Should fail validation on empty credentials", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(new(MockUserRepo), tokens)
		_, err := uc.SignIn(ctx, "", "")
		assert.Equal(t, http.StatusBadRequest, appErr(t, err).Code)
	})

	t.Run("Should issue a token for the user", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
		uc := usecase.NewAuthUsecase(repo, tokens)

		result, err := uc.SignIn(ctx, user.Email, "correct-horse")
		require.NoError(t, err)
		assert.Equal(t, user, result.User)

		claims, err := tokens.Parse(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Subject)
		assert.Equal(t, domain.RoleRecruiter, claims.Role)
	})
}

func TestAuthRegister(t *testing.T) {
	ctx := context.Background()
	tokens := security.NewTokenIssuer("test-secret", time.Hour)

	t.Run("Should default the role and hash the password", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
		uc := usecase.NewAuthUsecase(repo, tokens)

		user, err := uc.Register(ctx, "Ana@Example.com", "Ana", "password123", "")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.Equal(t, domain.RoleRecruiter, user.Role)
		assert.NotEqual(t, "password123", user.PasswordHash)
	})

	t.Run("Should map a duplicate email to 409", func(t *testing.T) {
		repo := new(MockUserRepo)
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateEmail)
		uc := usecase.NewAuthUsecase(repo, tokens)

		_, err := uc.Register(ctx, "ana@example.com", "Ana", "password123", domain.RoleAdmin)
		assert.Equal(t, http.StatusConflict, appErr(t, err).Code)
	})

	t.Run("Should reject short passwords and unknown roles", func(t *testing.T) {
		uc := usecase.NewAuthUsecase(new(MockUserRepo), tokens)
		_, err := uc.Register(ctx, "ana@example.com", "Ana", "short", "")
		assert.Equal(t, http.StatusBadRequest, appErr(t, err).Code)

		_, err = uc.Register(ctx, "ana@example.com", "Ana", "password123", "owner")
		assert.Equal(t, http.StatusBadRequest, appErr(t, err).Code)
	})
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("Should report degraded when a dependency fails", func(t *testing.T) {
		uc := usecase.NewHealthUsecase(map[string]usecase.HealthCheckFunc{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("down") },
		})
		status, ok := uc.Check(ctx)
		assert.False(t, ok)
		assert.Equal(t, map[string]string{"status": "degraded", "database": "ok", "redis": "unavailable"}, status)
	})

	t.Run("Should be healthy without checks", func(t *testing.T) {
		status, ok := usecase.NewHealthUsecase(nil).Check(ctx)
		assert.True(t, ok)
		assert.Equal(t, "ok", status["status"])
	})
}
