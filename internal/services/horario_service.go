package services

import (
	"tutorias_backend/internal/logger"
	"tutorias_backend/internal/models"
	"tutorias_backend/internal/repositories"
	"tutorias_backend/internal/services/dto"
	"tutorias_backend/internal/validator"
	"tutorias_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type HorarioService interface {
	CreateHorario(db *gorm.DB, p *dto.Principal, req *dto.CreateHorarioRequest) (*models.Horario, error)
	ListDisponibles(db *gorm.DB, tutorID uint) ([]models.Horario, error)
}

type HorarioServiceImpl struct {
	horarioRepo repositories.HorarioRepository
	profileRepo repositories.ProfileRepository
	validator   *validator.Validator
}

func NewHorarioService(
	horarioRepo repositories.HorarioRepository,
	profileRepo repositories.ProfileRepository,
	v *validator.Validator,
) HorarioService {
	return &HorarioServiceImpl{
		horarioRepo: horarioRepo,
		profileRepo: profileRepo,
		validator:   v,
	}
}

func (s *HorarioServiceImpl) CreateHorario(db *gorm.DB, p *dto.Principal, req *dto.CreateHorarioRequest) (*models.Horario, error) {
	tutor, err := requireTutor(db, s.profileRepo, p)
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

	horario := &models.Horario{
		TutorID: tutor.ID,
		Fecha:   fecha,
		Hora:    hora,
		Estado:  models.HorarioDisponible,
	}
	if err := s.horarioRepo.Create(db, horario); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "horario created", "horario_id", horario.ID, "tutor_id", tutor.ID, "fecha", fecha, "hora", hora)
	return horario, nil
}

// ListDisponibles - публичный список свободных слотов тьютора.
func (s *HorarioServiceImpl) ListDisponibles(db *gorm.DB, tutorID uint) ([]models.Horario, error) {
	exists, err := s.profileRepo.TutorExists(db, tutorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !exists {
		return nil, apperrors.ErrTutorNotFound
	}

	horarios, err := s.horarioRepo.ListDisponiblesByTutor(db, tutorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if horarios == nil {
		horarios = []models.Horario{}
	}
	return horarios, nil
}

func normalizeFechaHora(fecha, hora string) (string, string, error) {
	f, err := models.NormalizeFecha(fecha)
	if err != nil {
		return "", "", apperrors.ValidationError(map[string]string{"fecha": "Fecha inválida, formato YYYY-MM-DD"})
	}
	h, err := models.NormalizeHora(hora)
	if err != nil {
		return "", "", apperrors.ValidationError(map[string]string{"hora": "Hora inválida, formato HH:MM"})
	}
	return f, h, nil
}
