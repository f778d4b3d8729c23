package handlers

import (
	"net/http"

	"tutorias_backend/internal/services"
	"tutorias_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type EstudianteHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewEstudianteHandler(base *BaseHandler, profileService services.ProfileService) *EstudianteHandler {
	return &EstudianteHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *EstudianteHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	estudiantes := rg.Group("/estudiantes")
	estudiantes.Use(authMW)
	{
		estudiantes.GET("/perfil", h.GetPerfil)
		estudiantes.PUT("/perfil", h.UpdatePerfil)
		estudiantes.POST("/perfil", h.CreatePerfil)
	}
}

func (h *EstudianteHandler) GetPerfil(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	estudiante, err := h.profileService.GetEstudianteProfile(h.GetDB(c), p)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Perfil obtenido exitosamente",
		"estudiante": estudiante,
	})
}

func (h *EstudianteHandler) UpdatePerfil(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	var req dto.UpdateEstudianteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	estudiante, err := h.profileService.UpdateEstudianteProfile(h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Perfil actualizado exitosamente",
		"estudiante": estudiante,
	})
}

func (h *EstudianteHandler) CreatePerfil(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateEstudianteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	estudiante, err := h.profileService.CreateEstudianteProfile(h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Perfil creado exitosamente",
		"estudiante": estudiante,
	})
}
