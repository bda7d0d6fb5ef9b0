package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cv-tracker-backend/internal/delivery/http/response"
	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/pkg/apperror"
)

var fechaLimiteLayouts = []string{"2006-01-02", time.RFC3339}

type ListaHandler struct {
	listaUC      domain.ListaUsecase
	membershipUC domain.MembershipUsecase
}

func NewListaHandler(protected *gin.RouterGroup, listaUC domain.ListaUsecase, membershipUC domain.MembershipUsecase) {
	handler := &ListaHandler{listaUC: listaUC, membershipUC: membershipUC}

	listas := protected.Group("/listas")
	{
		listas.GET("", handler.List)
		listas.POST("", handler.Create)
		listas.POST("/cache/reload", handler.Reload)
		listas.GET("/:id", handler.Get)
		listas.PUT("/:id", handler.Update)
		listas.DELETE("/:id", handler.Delete)
		listas.GET("/:id/export", handler.Export)
		listas.POST("/:id/curriculums/:curriculumId", handler.AddMember)
		listas.DELETE("/:id/curriculums/:curriculumId", handler.RemoveMember)
	}
}

type CreateListaRequest struct {
	Puesto      string `json:"puesto" binding:"required"`
	Cliente     string `json:"cliente" binding:"required"`
	Comentario  string `json:"comentario"`
	FechaLimite string `json:"fecha_limite"`
	Color       string `json:"color"`
}

// UpdateListaRequest fields are optional. An empty fecha_limite clears the
// deadline.
type UpdateListaRequest struct {
	Puesto      *string `json:"puesto"`
	Cliente     *string `json:"cliente"`
	Comentario  *string `json:"comentario"`
	FechaLimite *string `json:"fecha_limite"`
	Color       *string `json:"color"`
}

// List godoc
// @Summary      List listas
// @Description  Newest first, with members populated
// @Tags         listas
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.ListaDetail}
// @Router       /listas [get]
// @Security     BearerAuth
func (h *ListaHandler) List(c *gin.Context) {
	listas, err := h.listaUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Listas", listas)
}

// Reload godoc
// @Summary      Reload listas
// @Description  Drops the cached listas and rebuilds them from the database
// @Tags         listas
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.ListaDetail}
// @Router       /listas/cache/reload [post]
// @Security     BearerAuth
func (h *ListaHandler) Reload(c *gin.Context) {
	listas, err := h.listaUC.Reload(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Listas recargadas", listas)
}

// Create godoc
// @Summary      Create a lista
// @Tags         listas
// @Accept       json
// @Produce      json
// @Param        lista  body      CreateListaRequest  true  "Lista"
// @Success      201  {object}  response.Response{data=domain.Lista}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response{error=domain.DuplicateLista}
// @Router       /listas [post]
// @Security     BearerAuth
func (h *ListaHandler) Create(c *gin.Context) {
	var req CreateListaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	fecha, err := parseFechaLimite(req.FechaLimite)
	if err != nil {
		c.Error(err)
		return
	}

	lista := &domain.Lista{
		Puesto:      req.Puesto,
		Cliente:     req.Cliente,
		Comentario:  req.Comentario,
		FechaLimite: fecha,
		Color:       req.Color,
	}
	created, err := h.listaUC.Create(c.Request.Context(), lista)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Lista creada", created)
}

// Get godoc
// @Summary      Get a lista
// @Tags         listas
// @Produce      json
// @Param        id   path      string  true  "Lista ID"
// @Success      200  {object}  response.Response{data=domain.ListaDetail}
// @Failure      404  {object}  response.Response
// @Router       /listas/{id} [get]
// @Security     BearerAuth
func (h *ListaHandler) Get(c *gin.Context) {
	lista, err := h.listaUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Lista", lista)
}

// Update godoc
// @Summary      Update a lista
// @Description  Merges the given fields; members are kept
// @Tags         listas
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Lista ID"
// @Param        lista  body      UpdateListaRequest  true  "Fields to change"
// @Success      200  {object}  response.Response{data=domain.Lista}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /listas/{id} [put]
// @Security     BearerAuth
func (h *ListaHandler) Update(c *gin.Context) {
	var req UpdateListaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindingError(err))
		return
	}

	patch := &domain.ListaPatch{
		Puesto:     req.Puesto,
		Cliente:    req.Cliente,
		Comentario: req.Comentario,
		Color:      req.Color,
	}
	if req.FechaLimite != nil {
		fecha, err := parseFechaLimite(*req.FechaLimite)
		if err != nil {
			c.Error(err)
			return
		}
		patch.FechaLimite = fecha
		patch.ClearFechaLimite = fecha == nil
	}

	updated, err := h.listaUC.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Lista actualizada", updated)
}

// Delete godoc
// @Summary      Delete a lista
// @Description  Also removes the lista from every member curriculum
// @Tags         listas
// @Produce      json
// @Param        id   path      string  true  "Lista ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /listas/{id} [delete]
// @Security     BearerAuth
func (h *ListaHandler) Delete(c *gin.Context) {
	if err := h.listaUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Lista eliminada", nil)
}

// AddMember godoc
// @Summary      Add a curriculum to a lista
// @Tags         listas
// @Produce      json
// @Param        id            path  string  true  "Lista ID"
// @Param        curriculumId  path  string  true  "Curriculum ID"
// @Success      200  {object}  response.Response{data=domain.MembershipChange}
// @Failure      404  {object}  response.Response
// @Router       /listas/{id}/curriculums/{curriculumId} [post]
// @Security     BearerAuth
func (h *ListaHandler) AddMember(c *gin.Context) {
	change, err := h.membershipUC.AddMember(c.Request.Context(), c.Param("id"), c.Param("curriculumId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Curriculum agregado a la lista", change)
}

// RemoveMember godoc
// @Summary      Remove a curriculum from a lista
// @Tags         listas
// @Produce      json
// @Param        id            path  string  true  "Lista ID"
// @Param        curriculumId  path  string  true  "Curriculum ID"
// @Success      200  {object}  response.Response{data=domain.MembershipChange}
// @Failure      404  {object}  response.Response
// @Router       /listas/{id}/curriculums/{curriculumId} [delete]
// @Security     BearerAuth
func (h *ListaHandler) RemoveMember(c *gin.Context) {
	change, err := h.membershipUC.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("curriculumId"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Curriculum quitado de la lista", change)
}

// Export godoc
// @Summary      Export lista members
// @Description  Downloads the members of the lista as Excel or CSV
// @Tags         listas
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv
// @Param        id      path   string  true   "Lista ID"
// @Param        format  query  string  false  "Export format (xlsx, csv). Default: xlsx"
// @Success      200  {file}    binary
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /listas/{id}/export [get]
// @Security     BearerAuth
func (h *ListaHandler) Export(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "xlsx")))

	data, filename, err := h.listaUC.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// parseFechaLimite accepts a plain date or an RFC3339 timestamp. Empty
// means no deadline.
func parseFechaLimite(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range fechaLimiteLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperror.Validation(map[string]string{"fecha_limite": "Fecha límite: Formato inválido, use AAAA-MM-DD"})
}
