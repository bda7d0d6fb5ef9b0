package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-tracker-backend/internal/delivery/http/response"
	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/apperror"
	"cv-tracker-backend/pkg/storage"
)

// Form fields accepted on multipart create/update when no "datos" JSON part
// is sent.
var curriculumFormFields = []string{
	"nombre", "apellido", "email", "celular", "fecha_nacimiento", "pais", "provincia",
	"zona", "localidad", "rubro", "subrubro", "puesto", "calificacion", "estudios",
	"experiencia", "comentarios",
}

type CurriculumHandler struct {
	curriculumUC   domain.CurriculumUsecase
	membershipUC   domain.MembershipUsecase
	maxUploadBytes int64
}

func NewCurriculumHandler(protected *gin.RouterGroup, curriculumUC domain.CurriculumUsecase, membershipUC domain.MembershipUsecase, maxUploadBytes int64) {
	handler := &CurriculumHandler{
		curriculumUC:   curriculumUC,
		membershipUC:   membershipUC,
		maxUploadBytes: maxUploadBytes,
	}

	curriculums := protected.Group("/curriculums")
	{
		curriculums.GET("", handler.Search)
		curriculums.POST("", handler.Create)
		curriculums.GET("/duplicates", handler.CheckDuplicates)
		curriculums.GET("/:id", handler.Get)
		curriculums.PUT("/:id", handler.Update)
		curriculums.DELETE("/:id", handler.Delete)
		curriculums.PUT("/:id/listas", handler.AssignListas)
	}
}

// attachmentEnvelope carries the attachment of a JSON request as a data URI.
type attachmentEnvelope struct {
	Archivo       string `json:"archivo"`
	ArchivoNombre string `json:"archivo_nombre"`
}

type AssignListasRequest struct {
	Listas []string `json:"listas" binding:"required"`
}

// Create godoc
// @Summary      Create a curriculum
// @Description  JSON body with "archivo" as a base64 data URI, or multipart with an "archivo" file and either a "datos" JSON part or plain form fields
// @Tags         curriculums
// @Accept       json,mpfd
// @Produce      json
// @Param        curriculum  body      domain.Curriculum  true  "Curriculum"
// @Success      201  {object}  response.Response{data=domain.Curriculum}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /curriculums [post]
// @Security     BearerAuth
func (h *CurriculumHandler) Create(c *gin.Context) {
	var curriculum domain.Curriculum
	att, err := h.bindPayload(c, &curriculum)
	if err != nil {
		c.Error(err)
		return
	}

	created, err := h.curriculumUC.Create(c.Request.Context(), &curriculum, att)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Curriculum creado", created)
}

// Get godoc
// @Summary      Get a curriculum
// @Description  Returns the curriculum with its listas populated
// @Tags         curriculums
// @Produce      json
// @Param        id   path      string  true  "Curriculum ID"
// @Success      200  {object}  response.Response{data=domain.CurriculumDetail}
// @Failure      404  {object}  response.Response
// @Router       /curriculums/{id} [get]
// @Security     BearerAuth
func (h *CurriculumHandler) Get(c *gin.Context) {
	detail, err := h.curriculumUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Curriculum", detail)
}

// Search godoc
// @Summary      Search curriculums
// @Tags         curriculums
// @Produce      json
// @Param        q             query  string  false  "Nombre or apellido"
// @Param        rubro         query  string  false  "Rubro"
// @Param        subrubro      query  string  false  "Subrubro"
// @Param        puesto        query  string  false  "Puesto"
// @Param        pais          query  string  false  "País"
// @Param        provincia     query  string  false  "Provincia"
// @Param        calificacion  query  string  false  "Calificación"
// @Param        no_llamar     query  bool    false  "No llamar"
// @Param        lista_id      query  string  false  "Only members of this lista"
// @Param        page          query  int     false  "Page (default 1)"
// @Param        page_size     query  int     false  "Page size (default 20, max 100)"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.Curriculum]}
// @Router       /curriculums [get]
// @Security     BearerAuth
func (h *CurriculumHandler) Search(c *gin.Context) {
	noLlamar, err := optionalBool(c.Query("no_llamar"))
	if err != nil {
		c.Error(apperror.BadRequest("no_llamar debe ser true o false"))
		return
	}

	filter := domain.CurriculumFilter{
		Query:        strings.TrimSpace(c.Query("q")),
		Rubro:        c.Query("rubro"),
		Subrubro:     c.Query("subrubro"),
		Puesto:       c.Query("puesto"),
		Pais:         c.Query("pais"),
		Provincia:    c.Query("provincia"),
		Calificacion: c.Query("calificacion"),
		NoLlamar:     noLlamar,
		ListaID:      c.Query("lista_id"),
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.curriculumUC.Search(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	page, pageSize = domain.NormalizePage(page, pageSize)
	response.Success(c, http.StatusOK, "Curriculums", domain.NewPaginatedResult(items, total, page, pageSize))
}

// Update godoc
// @Summary      Update a curriculum
// @Description  Merges the given fields over the stored record. Listas are not changed here.
// @Tags         curriculums
// @Accept       json,mpfd
// @Produce      json
// @Param        id     path      string                  true  "Curriculum ID"
// @Param        patch  body      domain.CurriculumPatch  true  "Fields to change"
// @Success      200  {object}  response.Response{data=domain.Curriculum}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /curriculums/{id} [put]
// @Security     BearerAuth
func (h *CurriculumHandler) Update(c *gin.Context) {
	var patch domain.CurriculumPatch
	att, err := h.bindPayload(c, &patch)
	if err != nil {
		c.Error(err)
		return
	}

	updated, err := h.curriculumUC.Update(c.Request.Context(), c.Param("id"), &patch, att)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Curriculum actualizado", updated)
}

// Delete godoc
// @Summary      Delete a curriculum
// @Description  Also removes the curriculum from every lista
// @Tags         curriculums
// @Produce      json
// @Param        id   path      string  true  "Curriculum ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /curriculums/{id} [delete]
// @Security     BearerAuth
func (h *CurriculumHandler) Delete(c *gin.Context) {
	if err := h.curriculumUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Curriculum eliminado", nil)
}

// CheckDuplicates godoc
// @Summary      Check for duplicate candidates
// @Description  A celular match blocks creation; nombre+apellido matches are warnings
// @Tags         curriculums
// @Produce      json
// @Param        nombre    query  string  false  "Nombre"
// @Param        apellido  query  string  false  "Apellido"
// @Param        celular   query  string  false  "Celular"
// @Success      200  {object}  response.Response{data=domain.DuplicateReport}
// @Failure      400  {object}  response.Response
// @Router       /curriculums/duplicates [get]
// @Security     BearerAuth
func (h *CurriculumHandler) CheckDuplicates(c *gin.Context) {
	report, err := h.curriculumUC.CheckDuplicates(c.Request.Context(), c.Query("nombre"), c.Query("apellido"), c.Query("celular"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Verificación de duplicados", report)
}

// AssignListas godoc
// @Summary      Set the listas of a curriculum
// @Description  Replaces the curriculum's listas and updates both sides of the relationship
// @Tags         curriculums
// @Accept       json
// @Produce      json
// @Param        id      path      string               true  "Curriculum ID"
// @Param        listas  body      AssignListasRequest  true  "Lista IDs"
// @Success      200  {object}  response.Response{data=domain.MembershipChange}
// @Failure      404  {object}  response.Response
// @Router       /curriculums/{id}/listas [put]
// @Security     BearerAuth
func (h *CurriculumHandler) AssignListas(c *gin.Context) {
	var req AssignListasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	change, err := h.membershipUC.AssignListas(c.Request.Context(), c.Param("id"), req.Listas)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Listas actualizadas", change)
}

// bindPayload decodes a JSON or multipart curriculum body into target and
// returns the attachment, if any.
func (h *CurriculumHandler) bindPayload(c *gin.Context, target any) (*domain.Attachment, error) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return h.bindMultipart(c, target)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, bodyError(err)
	}
	if err := decodeJSON(body, target); err != nil {
		return nil, err
	}

	var env attachmentEnvelope
	if err := json.Unmarshal(body, &env); err != nil || strings.TrimSpace(env.Archivo) == "" {
		return nil, nil
	}
	mime, data, err := storage.DecodeDataURI(env.Archivo)
	if err != nil {
		return nil, apperror.Validation(map[string]string{"archivo": "Archivo: Formato inválido, se espera un data URI en base64"})
	}
	return &domain.Attachment{Filename: attachmentName(env.ArchivoNombre, mime), Data: data}, nil
}

func (h *CurriculumHandler) bindMultipart(c *gin.Context, target any) (*domain.Attachment, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, bodyError(err)
	}

	if datos := form.Value["datos"]; len(datos) > 0 {
		if err := decodeJSON([]byte(datos[0]), target); err != nil {
			return nil, err
		}
	} else {
		fields, err := formFields(form)
		if err != nil {
			return nil, err
		}
		raw, _ := json.Marshal(fields)
		if err := decodeJSON(raw, target); err != nil {
			return nil, err
		}
	}

	files := form.File["archivo"]
	if len(files) == 0 {
		return nil, nil
	}
	return readAttachment(files[0])
}

// formFields maps plain multipart fields onto their JSON shape. Absent
// fields stay absent so updates keep the stored value.
func formFields(form *multipart.Form) (map[string]any, error) {
	fields := map[string]any{}
	for _, name := range curriculumFormFields {
		if values, ok := form.Value[name]; ok && len(values) > 0 {
			fields[name] = values[0]
		}
	}

	if values, ok := form.Value["idiomas"]; ok {
		var idiomas []string
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					idiomas = append(idiomas, part)
				}
			}
		}
		if idiomas == nil {
			idiomas = []string{}
		}
		fields["idiomas"] = idiomas
	}

	if values, ok := form.Value["no_llamar"]; ok && len(values) > 0 {
		noLlamar, err := optionalBool(values[0])
		if err != nil {
			return nil, apperror.Validation(map[string]string{"no_llamar": "No llamar: Debe ser true o false"})
		}
		if noLlamar != nil {
			fields["no_llamar"] = *noLlamar
		}
	}
	return fields, nil
}

func readAttachment(fh *multipart.FileHeader) (*domain.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperror.BadRequest("No se pudo leer el archivo")
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, bodyError(err)
	}
	return &domain.Attachment{Filename: fh.Filename, Data: buf.Bytes()}, nil
}

func decodeJSON(body []byte, target any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return apperror.BadRequest("Cuerpo de la solicitud vacío")
	}
	if err := json.Unmarshal(body, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperror.Validation(map[string]string{typeErr.Field: "Tipo de dato inválido"})
		}
		return apperror.BadRequest("JSON inválido")
	}
	return nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.New(http.StatusRequestEntityTooLarge, "La solicitud supera el tamaño máximo permitido", nil)
	}
	return apperror.BadRequest("Cuerpo de la solicitud inválido")
}

// attachmentName gives data-URI uploads a filename whose extension matches
// the declared MIME type, so the content check has something to compare.
func attachmentName(name, mime string) string {
	if name != "" {
		return name
	}
	switch mime {
	case "image/jpeg":
		return "archivo.jpg"
	case "image/png":
		return "archivo.png"
	case "image/gif":
		return "archivo.gif"
	case "image/webp":
		return "archivo.webp"
	case "application/pdf":
		return "archivo.pdf"
	case "application/msword":
		return "archivo.doc"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "archivo.docx"
	}
	return ""
}
