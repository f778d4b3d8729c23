package models

import "fmt"

type Rol string
type HorarioEstado string
type TutoriaEstado string
type AccionTutoria string

const (
	RolEstudiante Rol = "estudiante"
	RolTutor      Rol = "tutor"

	HorarioDisponible HorarioEstado = "disponible"
	HorarioOcupado    HorarioEstado = "ocupado"
	HorarioReservado  HorarioEstado = "reservado"
	HorarioCompletado HorarioEstado = "completado"
	HorarioCancelado  HorarioEstado = "cancelado"

	TutoriaPendiente  TutoriaEstado = "pendiente"
	TutoriaAceptada   TutoriaEstado = "aceptada"
	TutoriaRechazada  TutoriaEstado = "rechazada"
	TutoriaCancelada  TutoriaEstado = "cancelada"
	TutoriaFinalizada TutoriaEstado = "finalizada"

	AccionAceptar   AccionTutoria = "aceptar"
	AccionRechazar  AccionTutoria = "rechazar"
	AccionFinalizar AccionTutoria = "finalizar"
)

// ParseRol возвращает ошибку для любой роли кроме estudiante/tutor.
func ParseRol(s string) (Rol, error) {
	switch Rol(s) {
	case RolEstudiante, RolTutor:
		return Rol(s), nil
	default:
		return "", fmt.Errorf("unknown rol %q", s)
	}
}

func ParseAccion(s string) (AccionTutoria, error) {
	switch AccionTutoria(s) {
	case AccionAceptar, AccionRechazar, AccionFinalizar:
		return AccionTutoria(s), nil
	default:
		return "", fmt.Errorf("unknown accion %q", s)
	}
}

// HoldsSlot: в этих состояниях слот тьютории остается ocupado.
func (e TutoriaEstado) HoldsSlot() bool {
	return e == TutoriaPendiente || e == TutoriaAceptada
}

// CanTransitionTo - строгий граф переходов:
// pendiente -> aceptada | rechazada | cancelada, aceptada -> finalizada | cancelada.
// rechazada, cancelada и finalizada конечные.
func (e TutoriaEstado) CanTransitionTo(next TutoriaEstado) bool {
	switch e {
	case TutoriaPendiente:
		return next == TutoriaAceptada || next == TutoriaRechazada || next == TutoriaCancelada
	case TutoriaAceptada:
		return next == TutoriaFinalizada || next == TutoriaCancelada
	default:
		return false
	}
}
