package handlers

import (
	"net/http"

	"tutorias_backend/internal/models"
	"tutorias_backend/internal/services"
	"tutorias_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type TutoriaHandler struct {
	*BaseHandler
	tutoriaService services.TutoriaService
}

func NewTutoriaHandler(base *BaseHandler, tutoriaService services.TutoriaService) *TutoriaHandler {
	return &TutoriaHandler{
		BaseHandler:    base,
		tutoriaService: tutoriaService,
	}
}

func (h *TutoriaHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	tutorias := rg.Group("/tutorias")
	tutorias.Use(authMW)
	{
		tutorias.POST("", h.Solicitar)
		tutorias.GET("/solicitudes", h.Solicitudes)
		tutorias.GET("/historial", h.Historial)
		tutorias.GET("/reporte", h.Reporte)
		tutorias.POST("/:id/responder", h.Responder)
		tutorias.POST("/:id/resumen", h.Resumen)
		tutorias.PATCH("/:id/cancelar", h.Cancelar)
	}
}

var accionMessages = map[models.AccionTutoria]string{
	models.AccionAceptar:   "Tutoría aceptada exitosamente",
	models.AccionRechazar:  "Tutoría rechazada exitosamente",
	models.AccionFinalizar: "Tutoría finalizada exitosamente",
}

func (h *TutoriaHandler) Solicitar(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	var req dto.SolicitarTutoriaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tutoria, err := h.tutoriaService.Solicitar(h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Tutoría solicitada exitosamente",
		"tutoria": tutoria,
	})
}

func (h *TutoriaHandler) Solicitudes(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	solicitudes, err := h.tutoriaService.SolicitudesPendientes(h.GetDB(c), p)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Solicitudes obtenidas exitosamente",
		"solicitudes": solicitudes,
	})
}

func (h *TutoriaHandler) Responder(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	id, ok := h.paramUint(c, "id")
	if !ok {
		return
	}
	var req dto.ResponderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tutoria, accion, err := h.tutoriaService.Responder(h.GetDB(c), p, id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": accionMessages[accion],
		"tutoria": tutoria,
	})
}

func (h *TutoriaHandler) Resumen(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	id, ok := h.paramUint(c, "id")
	if !ok {
		return
	}
	var req dto.ResumenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tutoria, err := h.tutoriaService.RegistrarResumen(h.GetDB(c), p, id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Resumen registrado exitosamente",
		"tutoria": tutoria,
	})
}

func (h *TutoriaHandler) Cancelar(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	id, ok := h.paramUint(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tutoria, err := h.tutoriaService.Cancelar(h.GetDB(c), p, id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Tutoría cancelada exitosamente",
		"tutoria": tutoria,
	})
}

func (h *TutoriaHandler) Historial(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	historial, err := h.tutoriaService.Historial(h.GetDB(c), p)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Historial obtenido exitosamente",
		"historiales": historial,
	})
}

func (h *TutoriaHandler) Reporte(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	q := dto.ReporteQuery{
		Desde: c.Query("desde"),
		Hasta: c.Query("hasta"),
	}

	reporte, err := h.tutoriaService.Reporte(h.GetDB(c), p, &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Reporte generado exitosamente",
		"periodo":      reporte.Periodo,
		"estadisticas": reporte.Estadisticas,
		"tutorias":     reporte.Tutorias,
	})
}
