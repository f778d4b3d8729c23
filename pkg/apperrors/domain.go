package apperrors

import (
	"net/http"
)

// ErrInvalidStatus - фабрика для невалидных статусов (400)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Auth ---

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Correo ya registrado",
	http.StatusBadRequest,
)

// ErrInvalidCredentials одинаков для неизвестного correo и неверного пароля.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Credenciales inválidas",
	http.StatusBadRequest,
)

var ErrTokenMissing = New(
	CodeUnauthorized,
	"auth",
	"Token no proporcionado",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Token inválido o expirado",
	http.StatusUnauthorized,
)

var ErrUserNoLongerExists = New(
	CodeUnauthorized,
	"auth",
	"Usuario no existe",
	http.StatusUnauthorized,
)

var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"auth",
	"Rol inválido",
	http.StatusBadRequest,
)

var ErrOnlyStudents = New(
	CodeForbidden,
	"auth",
	"Solo los estudiantes pueden realizar esta acción",
	http.StatusForbidden,
)

var ErrOnlyTutors = New(
	CodeForbidden,
	"auth",
	"Solo los tutores pueden realizar esta acción",
	http.StatusForbidden,
)

// --- Profiles ---

var ErrEstudianteNotFound = New(
	CodeNotFound,
	"profile",
	"Perfil de estudiante no encontrado",
	http.StatusNotFound,
)

var ErrTutorNotFound = New(
	CodeNotFound,
	"profile",
	"Tutor no encontrado",
	http.StatusNotFound,
)

var ErrProfileAlreadyExists = New(
	CodeAlreadyExists,
	"profile",
	"El perfil ya existe",
	http.StatusBadRequest,
)

// --- Horarios ---

var ErrHorarioNoDisponible = New(
	CodeSlotUnavailable,
	"horario",
	"Horario no disponible",
	http.StatusBadRequest,
)

// --- Tutorias ---

var ErrTutoriaNotFound = New(
	CodeNotFound,
	"tutoria",
	"Tutoría no encontrada",
	http.StatusNotFound,
)

var ErrNotTutoriaOwner = New(
	CodeForbidden,
	"tutoria",
	"No tienes permiso sobre esta tutoría",
	http.StatusForbidden,
)

var ErrAccionInvalida = New(
	CodeValidationFailed,
	"tutoria",
	"Acción no válida",
	http.StatusBadRequest,
)

var ErrTutoriaYaRespondida = ErrInvalidStatus(
	"tutoria",
	"Solo se pueden responder tutorías pendientes",
)

var ErrTutoriaNoCancelable = ErrInvalidStatus(
	"tutoria",
	"Solo se pueden cancelar tutorías pendientes o aceptadas",
)

var ErrTutoriaNoFinalizable = ErrInvalidStatus(
	"tutoria",
	"Solo se pueden finalizar tutorías aceptadas",
)

var ErrResumenRequerido = New(
	CodeValidationFailed,
	"tutoria",
	"El resumen es obligatorio",
	http.StatusBadRequest,
)

var ErrTutoriaEstadoCambiado = ErrInvalidStatus(
	"tutoria",
	"La tutoría cambió de estado, intente de nuevo",
)
