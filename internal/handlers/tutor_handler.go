package handlers

import (
	"net/http"

	"tutorias_backend/internal/services"
	"tutorias_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// TutorHandler - справочник тьюторов, их слоты и собственный профиль тьютора.
type TutorHandler struct {
	*BaseHandler
	profileService services.ProfileService
	horarioService services.HorarioService
}

func NewTutorHandler(base *BaseHandler, profileService services.ProfileService, horarioService services.HorarioService) *TutorHandler {
	return &TutorHandler{
		BaseHandler:    base,
		profileService: profileService,
		horarioService: horarioService,
	}
}

func (h *TutorHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	tutores := rg.Group("/tutores")
	{
		// Публичные
		tutores.GET("", h.ListTutores)
		tutores.GET("/:tutorId/horarios", h.ListHorarios)
		tutores.GET("/:tutorId/perfil", h.GetPublicPerfil)

		// Только тьютор
		protected := tutores.Group("")
		protected.Use(authMW)
		{
			protected.POST("/horarios", h.CreateHorario)
			protected.GET("/perfil", h.GetPerfil)
			protected.PUT("/perfil", h.UpdatePerfil)
			protected.POST("/perfil", h.CreatePerfil)
		}
	}
}

func (h *TutorHandler) ListTutores(c *gin.Context) {
	tutores, err := h.profileService.ListTutores(h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Tutores obtenidos exitosamente",
		"tutores": tutores,
	})
}

func (h *TutorHandler) ListHorarios(c *gin.Context) {
	tutorID, ok := h.paramUint(c, "tutorId")
	if !ok {
		return
	}

	horarios, err := h.horarioService.ListDisponibles(h.GetDB(c), tutorID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Horarios obtenidos exitosamente",
		"horarios": horarios,
	})
}

func (h *TutorHandler) GetPublicPerfil(c *gin.Context) {
	tutorID, ok := h.paramUint(c, "tutorId")
	if !ok {
		return
	}

	tutor, err := h.profileService.GetPublicTutor(h.GetDB(c), tutorID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Perfil del tutor obtenido exitosamente",
		"tutor":   tutor,
	})
}

func (h *TutorHandler) CreateHorario(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateHorarioRequest
	if !h.BindJSON(c, &req) {
		return
	}

	horario, err := h.horarioService.CreateHorario(h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Horario creado exitosamente",
		"horario": horario,
	})
}

func (h *TutorHandler) GetPerfil(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	tutor, err := h.profileService.GetTutorProfile(h.GetDB(c), p)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Perfil obtenido exitosamente",
		"tutor":   tutor,
	})
}

func (h *TutorHandler) UpdatePerfil(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	var req dto.UpdateTutorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tutor, err := h.profileService.UpdateTutorProfile(h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Perfil actualizado exitosamente",
		"tutor":   tutor,
	})
}

func (h *TutorHandler) CreatePerfil(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}
	var req dto.CreateTutorRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tutor, err := h.profileService.CreateTutorProfile(h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Perfil creado exitosamente",
		"tutor":   tutor,
	})
}
