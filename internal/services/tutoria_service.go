package services

import (
	"errors"
	"strings"

	"tutorias_backend/internal/logger"
	"tutorias_backend/internal/models"
	"tutorias_backend/internal/repositories"
	"tutorias_backend/internal/services/dto"
	"tutorias_backend/internal/validator"
	"tutorias_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// LifecyclePolicy - переключатели спорных правил жизненного цикла.
// Нулевое значение: finalizar из любого состояния, тьютор отменяет любую тьюторию.
type LifecyclePolicy struct {
	// StrictFinalize: finalizar только из aceptada, resumen только из aceptada/finalizada
	StrictFinalize bool
	// TutorCancelRequiresOwnership: тьютор отменяет только свои тьютории
	TutorCancelRequiresOwnership bool
	// ReleaseSlotOnFinalize: при finalizar слот возвращается в disponible
	ReleaseSlotOnFinalize bool
}

// canFinalize: без StrictFinalize finalizar разрешен из любого состояния,
// со StrictFinalize действует строгий граф переходов.
func (p LifecyclePolicy) canFinalize(from models.TutoriaEstado) bool {
	if !p.StrictFinalize {
		return true
	}
	return from.CanTransitionTo(models.TutoriaFinalizada)
}

type TutoriaService interface {
	Solicitar(db *gorm.DB, p *dto.Principal, req *dto.SolicitarTutoriaRequest) (*models.Tutoria, error)
	SolicitudesPendientes(db *gorm.DB, p *dto.Principal) ([]models.Tutoria, error)
	Responder(db *gorm.DB, p *dto.Principal, tutoriaID uint, req *dto.ResponderRequest) (*models.Tutoria, models.AccionTutoria, error)
	RegistrarResumen(db *gorm.DB, p *dto.Principal, tutoriaID uint, req *dto.ResumenRequest) (*models.Tutoria, error)
	Cancelar(db *gorm.DB, p *dto.Principal, tutoriaID uint, req *dto.CancelarRequest) (*models.Tutoria, error)
	Historial(db *gorm.DB, p *dto.Principal) ([]models.Tutoria, error)
	Reporte(db *gorm.DB, p *dto.Principal, q *dto.ReporteQuery) (*dto.ReporteResponse, error)
}

type TutoriaServiceImpl struct {
	tutoriaRepo repositories.TutoriaRepository
	horarioRepo repositories.HorarioRepository
	profileRepo repositories.ProfileRepository
	validator   *validator.Validator
	policy      LifecyclePolicy
}

func NewTutoriaService(
	tutoriaRepo repositories.TutoriaRepository,
	horarioRepo repositories.HorarioRepository,
	profileRepo repositories.ProfileRepository,
	v *validator.Validator,
	policy LifecyclePolicy,
) TutoriaService {
	return &TutoriaServiceImpl{
		tutoriaRepo: tutoriaRepo,
		horarioRepo: horarioRepo,
		profileRepo: profileRepo,
		validator:   v,
		policy:      policy,
	}
}

// Solicitar создает тьюторию в состоянии pendiente. Если указан horarioId,
// слот занимается в той же транзакции условным UPDATE.
func (s *TutoriaServiceImpl) Solicitar(db *gorm.DB, p *dto.Principal, req *dto.SolicitarTutoriaRequest) (*models.Tutoria, error) {
	estudiante, err := requireEstudiante(db, s.profileRepo, p)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	fecha, hora, err := normalizeFechaHora(req.Fecha, req.Hora)
	if err != nil {
		return nil, err
	}

	exists, err := s.profileRepo.TutorExists(db, req.TutorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !exists {
		return nil, apperrors.ErrTutorNotFound
	}

	tutoria := &models.Tutoria{
		EstudianteID: estudiante.ID,
		TutorID:      req.TutorID,
		Fecha:        fecha,
		Hora:         hora,
		Estado:       models.TutoriaPendiente,
	}
	if req.HorarioID != nil && *req.HorarioID != 0 {
		id := *req.HorarioID
		tutoria.HorarioID = &id
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if tutoria.HasSlot() {
			if err := s.horarioRepo.Occupy(tx, *tutoria.HorarioID, req.TutorID); err != nil {
				return err
			}
		}
		return s.tutoriaRepo.Create(tx, tutoria)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrHorarioUnavailable) {
			return nil, apperrors.ErrHorarioNoDisponible
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "tutoria requested",
		"tutoria_id", tutoria.ID,
		"estudiante_id", estudiante.ID,
		"tutor_id", req.TutorID,
		"horario_id", tutoria.HorarioID,
	)
	return tutoria, nil
}

func (s *TutoriaServiceImpl) SolicitudesPendientes(db *gorm.DB, p *dto.Principal) ([]models.Tutoria, error) {
	tutor, err := requireTutor(db, s.profileRepo, p)
	if err != nil {
		return nil, err
	}

	tutorias, err := s.tutoriaRepo.Find(db, repositories.TutoriaFilter{
		TutorID:        tutor.ID,
		Estado:         models.TutoriaPendiente,
		WithEstudiante: true,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return nonNil(tutorias), nil
}

// Responder: aceptar/rechazar только из pendiente; finalizar зависит от policy.
func (s *TutoriaServiceImpl) Responder(db *gorm.DB, p *dto.Principal, tutoriaID uint, req *dto.ResponderRequest) (*models.Tutoria, models.AccionTutoria, error) {
	if err := requireRol(p, models.RolTutor); err != nil {
		return nil, "", err
	}

	accion, err := models.ParseAccion(strings.TrimSpace(req.Accion))
	if err != nil {
		return nil, "", apperrors.ErrAccionInvalida
	}

	tutoria, err := s.findOwnedByTutor(db, p, tutoriaID)
	if err != nil {
		return nil, "", err
	}

	ctx := ctxOf(db)
	from := tutoria.Estado

	switch accion {
	case models.AccionAceptar:
		if !from.CanTransitionTo(models.TutoriaAceptada) {
			return nil, "", apperrors.ErrTutoriaYaRespondida
		}
		err = s.tutoriaRepo.UpdateEstado(db, tutoria.ID, from, models.TutoriaAceptada, nil)

	case models.AccionRechazar:
		if !from.CanTransitionTo(models.TutoriaRechazada) {
			return nil, "", apperrors.ErrTutoriaYaRespondida
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := s.tutoriaRepo.UpdateEstado(tx, tutoria.ID, from, models.TutoriaRechazada, nil); err != nil {
				return err
			}
			return s.releaseSlot(tx, tutoria)
		})

	case models.AccionFinalizar:
		if !s.policy.canFinalize(from) {
			return nil, "", apperrors.ErrTutoriaNoFinalizable
		}
		err = s.finalize(db, tutoria, nil)

	default:
		return nil, "", apperrors.ErrAccionInvalida
	}
	if err != nil {
		return nil, "", mapTutoriaErr(err)
	}

	logger.CtxInfo(ctx, "tutoria answered", "tutoria_id", tutoria.ID, "accion", accion, "from", from)
	updated, err := s.reload(db, tutoria.ID)
	return updated, accion, err
}

// RegistrarResumen сохраняет резюме и переводит тьюторию в finalizada.
func (s *TutoriaServiceImpl) RegistrarResumen(db *gorm.DB, p *dto.Principal, tutoriaID uint, req *dto.ResumenRequest) (*models.Tutoria, error) {
	if err := requireRol(p, models.RolTutor); err != nil {
		return nil, err
	}

	resumen := strings.TrimSpace(req.Resumen)
	if resumen == "" {
		return nil, apperrors.ErrResumenRequerido
	}
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	tutoria, err := s.findOwnedByTutor(db, p, tutoriaID)
	if err != nil {
		return nil, err
	}

	// повторный resumen на finalizada перезаписывает текст
	if tutoria.Estado != models.TutoriaFinalizada && !s.policy.canFinalize(tutoria.Estado) {
		return nil, apperrors.ErrTutoriaNoFinalizable
	}

	if err := s.finalize(db, tutoria, map[string]interface{}{"resumen": resumen}); err != nil {
		return nil, mapTutoriaErr(err)
	}

	logger.CtxInfo(ctxOf(db), "tutoria summary recorded", "tutoria_id", tutoria.ID, "from", tutoria.Estado)
	return s.reload(db, tutoria.ID)
}

// Cancelar: студент отменяет только свои тьютории; тьютор - в зависимости от policy.
func (s *TutoriaServiceImpl) Cancelar(db *gorm.DB, p *dto.Principal, tutoriaID uint, req *dto.CancelarRequest) (*models.Tutoria, error) {
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	tutoria, err := s.tutoriaRepo.FindByID(db, tutoriaID)
	if err != nil {
		if errors.Is(err, repositories.ErrTutoriaNotFound) {
			return nil, apperrors.ErrTutoriaNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	switch p.Rol {
	case models.RolEstudiante:
		estudiante, err := requireEstudiante(db, s.profileRepo, p)
		if err != nil {
			return nil, err
		}
		if tutoria.EstudianteID != estudiante.ID {
			return nil, apperrors.ErrNotTutoriaOwner
		}
	case models.RolTutor:
		if s.policy.TutorCancelRequiresOwnership {
			tutor, err := requireTutor(db, s.profileRepo, p)
			if err != nil {
				return nil, err
			}
			if tutoria.TutorID != tutor.ID {
				return nil, apperrors.ErrNotTutoriaOwner
			}
		}
	default:
		return nil, apperrors.ErrInvalidUserRole
	}

	if !tutoria.Estado.CanTransitionTo(models.TutoriaCancelada) {
		return nil, apperrors.ErrTutoriaNoCancelable
	}

	var extra map[string]interface{}
	if motivo := strings.TrimSpace(req.Motivo); motivo != "" {
		extra = map[string]interface{}{"motivo_cancelacion": motivo}
	}

	from := tutoria.Estado
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.tutoriaRepo.UpdateEstado(tx, tutoria.ID, from, models.TutoriaCancelada, extra); err != nil {
			return err
		}
		return s.releaseSlot(tx, tutoria)
	})
	if err != nil {
		return nil, mapTutoriaErr(err)
	}

	logger.CtxInfo(ctxOf(db), "tutoria cancelled", "tutoria_id", tutoria.ID, "from", from, "by", p.Rol)
	return s.reload(db, tutoria.ID)
}

// Historial - все тьютории вызывающего, новые первыми, с профилем второй стороны.
func (s *TutoriaServiceImpl) Historial(db *gorm.DB, p *dto.Principal) ([]models.Tutoria, error) {
	var filter repositories.TutoriaFilter

	switch p.Rol {
	case models.RolEstudiante:
		estudiante, err := requireEstudiante(db, s.profileRepo, p)
		if err != nil {
			return nil, err
		}
		filter = repositories.TutoriaFilter{EstudianteID: estudiante.ID, WithTutor: true, Descending: true}
	case models.RolTutor:
		tutor, err := requireTutor(db, s.profileRepo, p)
		if err != nil {
			return nil, err
		}
		filter = repositories.TutoriaFilter{TutorID: tutor.ID, WithEstudiante: true, Descending: true}
	default:
		return nil, apperrors.ErrInvalidUserRole
	}

	tutorias, err := s.tutoriaRepo.Find(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return nonNil(tutorias), nil
}

// Reporte: границы desde/hasta включительные и применяются независимо.
func (s *TutoriaServiceImpl) Reporte(db *gorm.DB, p *dto.Principal, q *dto.ReporteQuery) (*dto.ReporteResponse, error) {
	tutor, err := requireTutor(db, s.profileRepo, p)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.validator, q); err != nil {
		return nil, err
	}

	filter := repositories.TutoriaFilter{
		TutorID:        tutor.ID,
		WithEstudiante: true,
		Descending:     true,
	}
	var periodo dto.Periodo
	if q.Desde != "" {
		desde, err := models.NormalizeFecha(q.Desde)
		if err != nil {
			return nil, apperrors.ValidationError(map[string]string{"desde": "Fecha inválida, formato YYYY-MM-DD"})
		}
		filter.Desde = desde
		periodo.Desde = &desde
	}
	if q.Hasta != "" {
		hasta, err := models.NormalizeFecha(q.Hasta)
		if err != nil {
			return nil, apperrors.ValidationError(map[string]string{"hasta": "Fecha inválida, formato YYYY-MM-DD"})
		}
		filter.Hasta = hasta
		periodo.Hasta = &hasta
	}

	tutorias, err := s.tutoriaRepo.Find(db, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	tutorias = nonNil(tutorias)

	return &dto.ReporteResponse{
		Periodo:      periodo,
		Estadisticas: dto.NewEstadisticas(tutorias),
		Tutorias:     tutorias,
	}, nil
}

// --- хелперы ---

func (s *TutoriaServiceImpl) findOwnedByTutor(db *gorm.DB, p *dto.Principal, tutoriaID uint) (*models.Tutoria, error) {
	tutoria, err := s.tutoriaRepo.FindByID(db, tutoriaID)
	if err != nil {
		if errors.Is(err, repositories.ErrTutoriaNotFound) {
			return nil, apperrors.ErrTutoriaNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	tutor, err := requireTutor(db, s.profileRepo, p)
	if err != nil {
		return nil, err
	}
	if tutoria.TutorID != tutor.ID {
		return nil, apperrors.ErrNotTutoriaOwner
	}
	return tutoria, nil
}

// finalize переводит в finalizada из текущего состояния; слот освобождается
// только при ReleaseSlotOnFinalize.
func (s *TutoriaServiceImpl) finalize(db *gorm.DB, tutoria *models.Tutoria, extra map[string]interface{}) error {
	from := tutoria.Estado
	release := s.policy.ReleaseSlotOnFinalize && from.HoldsSlot()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := s.tutoriaRepo.UpdateEstado(tx, tutoria.ID, from, models.TutoriaFinalizada, extra); err != nil {
			return err
		}
		if release {
			return s.releaseSlot(tx, tutoria)
		}
		return nil
	})
}

func (s *TutoriaServiceImpl) releaseSlot(tx *gorm.DB, tutoria *models.Tutoria) error {
	if !tutoria.HasSlot() {
		return nil
	}
	released, err := s.horarioRepo.Release(tx, *tutoria.HorarioID)
	if err != nil {
		return err
	}
	if !released {
		logger.CtxWarn(ctxOf(tx), "horario was not ocupado on release", "horario_id", *tutoria.HorarioID, "tutoria_id", tutoria.ID)
	}
	return nil
}

func (s *TutoriaServiceImpl) reload(db *gorm.DB, id uint) (*models.Tutoria, error) {
	tutoria, err := s.tutoriaRepo.FindByID(db, id)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return tutoria, nil
}

func requireRol(p *dto.Principal, want models.Rol) error {
	switch p.Rol {
	case models.RolTutor, models.RolEstudiante:
		if p.Rol == want {
			return nil
		}
		if want == models.RolTutor {
			return apperrors.ErrOnlyTutors
		}
		return apperrors.ErrOnlyStudents
	default:
		return apperrors.ErrInvalidUserRole
	}
}

func mapTutoriaErr(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTutoriaStale):
		return apperrors.ErrTutoriaEstadoCambiado
	case errors.Is(err, repositories.ErrTutoriaNotFound):
		return apperrors.ErrTutoriaNotFound
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.InternalError(err)
}

func nonNil(t []models.Tutoria) []models.Tutoria {
	if t == nil {
		return []models.Tutoria{}
	}
	return t
}
