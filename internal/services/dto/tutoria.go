package dto

import "tutorias_backend/internal/models"

type CreateHorarioRequest struct {
	Fecha string `json:"fecha" validate:"required,is-fecha"`
	Hora  string `json:"hora" validate:"required,is-hora"`
}

// SolicitarTutoriaRequest - запрос студента на тьюторию
type SolicitarTutoriaRequest struct {
	TutorID   uint   `json:"tutorId" validate:"required"`
	Fecha     string `json:"fecha" validate:"required,is-fecha"`
	Hora      string `json:"hora" validate:"required,is-hora"`
	HorarioID *uint  `json:"horarioId" validate:"omitempty,min=1"`
}

type ResponderRequest struct {
	Accion string `json:"accion" validate:"required,is-accion"`
}

type ResumenRequest struct {
	Resumen string `json:"resumen" validate:"required,max=5000"`
}

type CancelarRequest struct {
	Motivo string `json:"motivo" validate:"max=1000"`
}

// ReporteQuery - границы включительные, формат YYYY-MM-DD
type ReporteQuery struct {
	Desde string `form:"desde" validate:"omitempty,is-fecha"`
	Hasta string `form:"hasta" validate:"omitempty,is-fecha"`
}

type Periodo struct {
	Desde *string `json:"desde"`
	Hasta *string `json:"hasta"`
}

// Estadisticas - разбивка по estado; total равен числу тьюторий в отчете
type Estadisticas struct {
	Total       int64 `json:"total"`
	Pendientes  int64 `json:"pendientes"`
	Aceptadas   int64 `json:"aceptadas"`
	Finalizadas int64 `json:"finalizadas"`
	Rechazadas  int64 `json:"rechazadas"`
	Canceladas  int64 `json:"canceladas"`
}

// NewEstadisticas считает по тем же строкам, что уходят в ответ.
func NewEstadisticas(tutorias []models.Tutoria) Estadisticas {
	e := Estadisticas{Total: int64(len(tutorias))}
	for _, t := range tutorias {
		switch t.Estado {
		case models.TutoriaPendiente:
			e.Pendientes++
		case models.TutoriaAceptada:
			e.Aceptadas++
		case models.TutoriaFinalizada:
			e.Finalizadas++
		case models.TutoriaRechazada:
			e.Rechazadas++
		case models.TutoriaCancelada:
			e.Canceladas++
		}
	}
	return e
}

type ReporteResponse struct {
	Periodo      Periodo          `json:"periodo"`
	Estadisticas Estadisticas     `json:"estadisticas"`
	Tutorias     []models.Tutoria `json:"tutorias"`
}
