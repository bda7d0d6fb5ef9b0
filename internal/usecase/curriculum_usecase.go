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

type curriculumUsecase struct {
	repo        domain.CurriculumRepository
	listaRepo   domain.ListaRepository
	attachments *AttachmentService
	listaCache  domain.ListaCache
	events      domain.EventPublisher
	validate    *validator.Validate
	sanitizer   *validation.Sanitizer
}

func NewCurriculumUsecase(
	repo domain.CurriculumRepository,
	listaRepo domain.ListaRepository,
	attachments *AttachmentService,
	listaCache domain.ListaCache,
	events domain.EventPublisher,
	validate *validator.Validate,
) domain.CurriculumUsecase {
	return &curriculumUsecase{
		repo:        repo,
		listaRepo:   listaRepo,
		attachments: attachments,
		listaCache:  listaCache,
		events:      events,
		validate:    validate,
		sanitizer:   validation.NewSanitizer(),
	}
}

func (u *curriculumUsecase) Create(ctx context.Context, c *domain.Curriculum, att *domain.Attachment) (*domain.Curriculum, error) {
	c.ID = ""
	c.Archivo, c.ArchivoTipo = "", ""
	c.Listas = []string{}
	u.prepare(c)

	// A taken phone is a conflict whatever the rest of the payload says
	if c.Celular != "" {
		if err := u.ensureCelularFree(ctx, c.Celular, ""); err != nil {
			return nil, err
		}
	}

	if err := u.validate.Struct(c); err != nil {
		return nil, apperror.Validation(validation.FieldErrors(err))
	}

	url, mime, err := u.attachments.Save(ctx, att)
	if err != nil {
		return nil, err
	}
	c.Archivo, c.ArchivoTipo = url, mime

	if err := u.repo.Create(ctx, c); err != nil {
		u.attachments.Remove(ctx, url)
		if errors.Is(err, domain.ErrDuplicateCelular) {
			return nil, celularConflict(c.Celular, "")
		}
		return nil, apperror.Internal(err)
	}

	logger.FromContext(ctx).Info("Curriculum created", "curriculum_id", c.ID)
	publish(ctx, u.events, domain.EventCurriculumCreated, c)
	return c, nil
}

func (u *curriculumUsecase) Get(ctx context.Context, id string) (*domain.CurriculumDetail, error) {
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Curriculum no encontrado")
	}
	listas, err := u.listaRepo.GetRefs(ctx, c.Listas)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.CurriculumDetail{Curriculum: *c, Listas: listas}, nil
}

func (u *curriculumUsecase) Search(ctx context.Context, filter domain.CurriculumFilter, page, pageSize int) ([]domain.Curriculum, int64, error) {
	page, pageSize = domain.NormalizePage(page, pageSize)
	for _, f := range []*string{&filter.Query, &filter.Rubro, &filter.Subrubro, &filter.Puesto, &filter.Pais, &filter.Provincia} {
		*f = domain.NormalizeText(*f)
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	items, total, err := u.repo.Search(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

// Update merges patch over the stored record and re-validates the result.
// Listas never change here.
func (u *curriculumUsecase) Update(ctx context.Context, id string, patch *domain.CurriculumPatch, att *domain.Attachment) (*domain.Curriculum, error) {
	existing, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Curriculum no encontrado")
	}
	oldCelular, oldArchivo := existing.Celular, existing.Archivo

	// only incoming text is sanitized; stored fields the patch leaves out
	// keep their bytes
	if patch != nil {
		clean := *patch
		clean.Experiencia = u.sanitizer.TextPtr(patch.Experiencia)
		clean.Comentarios = u.sanitizer.TextPtr(patch.Comentarios)
		clean.Apply(existing)
	}
	existing.Normalize()

	if existing.Celular != oldCelular && existing.Celular != "" {
		if err := u.ensureCelularFree(ctx, existing.Celular, existing.ID); err != nil {
			return nil, err
		}
	}
	if err := u.validate.Struct(existing); err != nil {
		return nil, apperror.Validation(validation.FieldErrors(err))
	}

	var newArchivo string
	if att != nil {
		url, mime, err := u.attachments.Save(ctx, att)
		if err != nil {
			return nil, err
		}
		newArchivo = url
		existing.Archivo, existing.ArchivoTipo = url, mime
	}

	if err := u.repo.Update(ctx, existing); err != nil {
		if newArchivo != "" {
			u.attachments.Remove(ctx, newArchivo)
		}
		if errors.Is(err, domain.ErrDuplicateCelular) {
			return nil, celularConflict(existing.Celular, "")
		}
		return nil, notFoundOr(err, "Curriculum no encontrado")
	}
	if newArchivo != "" && oldArchivo != "" {
		u.attachments.Remove(ctx, oldArchivo)
	}

	// member names are embedded in the cached listas
	invalidateListas(ctx, u.listaCache)
	logger.FromContext(ctx).Info("Curriculum updated", "curriculum_id", existing.ID)
	publish(ctx, u.events, domain.EventCurriculumUpdated, existing)
	return existing, nil
}

func (u *curriculumUsecase) Delete(ctx context.Context, id string) error {
	existing, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Curriculum no encontrado")
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Curriculum no encontrado")
	}
	if existing.Archivo != "" {
		u.attachments.Remove(ctx, existing.Archivo)
	}

	invalidateListas(ctx, u.listaCache)
	logger.FromContext(ctx).Info("Curriculum deleted", "curriculum_id", id, "listas", len(existing.Listas))
	publish(ctx, u.events, domain.EventCurriculumDeleted, map[string]any{"id": id, "listas": existing.Listas})
	return nil
}

// CheckDuplicates reports a phone match as blocking and name matches as
// warnings.
func (u *curriculumUsecase) CheckDuplicates(ctx context.Context, nombre, apellido, celular string) (*domain.DuplicateReport, error) {
	celular = domain.NormalizeCelular(celular)
	nombre, apellido = u.sanitizer.Text(nombre), u.sanitizer.Text(apellido)
	if celular == "" && (nombre == "" || apellido == "") {
		return nil, apperror.BadRequest("Indique celular o nombre y apellido")
	}

	report := &domain.DuplicateReport{NameMatches: []domain.CurriculumRef{}}
	if celular != "" {
		match, err := u.repo.GetByCelular(ctx, celular)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if match != nil {
			ref := toRef(match)
			report.PhoneMatch = &ref
			report.Blocking = true
		}
	}
	if nombre != "" && apellido != "" {
		matches, err := u.repo.FindByNombreApellido(ctx, nombre, apellido)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		for i := range matches {
			report.NameMatches = append(report.NameMatches, toRef(&matches[i]))
		}
	}
	report.HasDuplicate = report.PhoneMatch != nil || len(report.NameMatches) > 0
	return report, nil
}

func (u *curriculumUsecase) prepare(c *domain.Curriculum) {
	c.Normalize()
	u.sanitizer.Fields(&c.Experiencia, &c.Comentarios)
}

func (u *curriculumUsecase) ensureCelularFree(ctx context.Context, celular, selfID string) error {
	existing, err := u.repo.GetByCelular(ctx, celular)
	if err != nil {
		return apperror.Internal(err)
	}
	if existing != nil && existing.ID != selfID {
		return celularConflict(celular, existing.ID)
	}
	return nil
}

func celularConflict(celular, existingID string) error {
	details := map[string]string{"celular": celular}
	if existingID != "" {
		details["existing_id"] = existingID
	}
	return apperror.Conflict("El celular ya está registrado").WithDetails(details)
}

func toRef(c *domain.Curriculum) domain.CurriculumRef {
	return domain.CurriculumRef{
		ID:           c.ID,
		Nombre:       c.Nombre,
		Apellido:     c.Apellido,
		Celular:      c.Celular,
		Email:        c.Email,
		Rubro:        c.Rubro,
		Puesto:       c.Puesto,
		Calificacion: c.Calificacion,
		NoLlamar:     c.NoLlamar,
	}
}
