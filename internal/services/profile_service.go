package services

import (
	"errors"
	"time"

	"tutorias_backend/internal/cache"
	"tutorias_backend/internal/logger"
	"tutorias_backend/internal/models"
	"tutorias_backend/internal/repositories"
	"tutorias_backend/internal/services/dto"
	"tutorias_backend/internal/validator"
	"tutorias_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ProfileService interface {
	// Tutor
	GetTutorProfile(db *gorm.DB, p *dto.Principal) (*models.Tutor, error)
	CreateTutorProfile(db *gorm.DB, p *dto.Principal, req *dto.CreateTutorRequest) (*models.Tutor, error)
	UpdateTutorProfile(db *gorm.DB, p *dto.Principal, req *dto.UpdateTutorRequest) (*models.Tutor, error)

	// Estudiante
	GetEstudianteProfile(db *gorm.DB, p *dto.Principal) (*models.Estudiante, error)
	CreateEstudianteProfile(db *gorm.DB, p *dto.Principal, req *dto.CreateEstudianteRequest) (*models.Estudiante, error)
	UpdateEstudianteProfile(db *gorm.DB, p *dto.Principal, req *dto.UpdateEstudianteRequest) (*models.Estudiante, error)

	// Публичный справочник
	ListTutores(db *gorm.DB) ([]models.Tutor, error)
	GetPublicTutor(db *gorm.DB, tutorID uint) (*models.Tutor, error)
}

type ProfileServiceImpl struct {
	profileRepo repositories.ProfileRepository
	validator   *validator.Validator
	cache       cache.Cache
	cacheTTL    time.Duration
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	v *validator.Validator,
	c cache.Cache,
	cacheTTL time.Duration,
) ProfileService {
	return &ProfileServiceImpl{
		profileRepo: profileRepo,
		validator:   v,
		cache:       c,
		cacheTTL:    cacheTTL,
	}
}

// ==========================
// Tutor
// ==========================

func (s *ProfileServiceImpl) GetTutorProfile(db *gorm.DB, p *dto.Principal) (*models.Tutor, error) {
	return requireTutor(db, s.profileRepo, p)
}

func (s *ProfileServiceImpl) CreateTutorProfile(db *gorm.DB, p *dto.Principal, req *dto.CreateTutorRequest) (*models.Tutor, error) {
	switch p.Rol {
	case models.RolTutor:
	case models.RolEstudiante:
		return nil, apperrors.ErrOnlyTutors
	default:
		return nil, apperrors.ErrInvalidUserRole
	}
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	tutor := &models.Tutor{
		UsuarioID:    p.UserID,
		Especialidad: req.Especialidad,
		Descripcion:  req.Descripcion,
	}
	if err := s.profileRepo.CreateTutor(db, tutor); err != nil {
		if errors.Is(err, repositories.ErrProfileExists) {
			return nil, apperrors.ErrProfileAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	s.invalidateTutor(db, tutor.ID)
	return s.reloadTutor(db, p.UserID)
}

// UpdateTutorProfile меняет только переданные непустые поля.
func (s *ProfileServiceImpl) UpdateTutorProfile(db *gorm.DB, p *dto.Principal, req *dto.UpdateTutorRequest) (*models.Tutor, error) {
	tutor, err := requireTutor(db, s.profileRepo, p)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Especialidad != nil && *req.Especialidad != "" {
		fields["especialidad"] = *req.Especialidad
	}
	if req.Descripcion != nil && *req.Descripcion != "" {
		fields["descripcion"] = *req.Descripcion
	}

	if err := s.profileRepo.UpdateTutor(db, tutor, fields); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.invalidateTutor(db, tutor.ID)
	logger.CtxInfo(ctxOf(db), "tutor profile updated", "tutor_id", tutor.ID, "fields", len(fields))
	return s.reloadTutor(db, p.UserID)
}

func (s *ProfileServiceImpl) reloadTutor(db *gorm.DB, userID uint) (*models.Tutor, error) {
	tutor, err := s.profileRepo.FindTutorByUserID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return tutor, nil
}

// ==========================
// Estudiante
// ==========================

func (s *ProfileServiceImpl) GetEstudianteProfile(db *gorm.DB, p *dto.Principal) (*models.Estudiante, error) {
	return requireEstudiante(db, s.profileRepo, p)
}

func (s *ProfileServiceImpl) CreateEstudianteProfile(db *gorm.DB, p *dto.Principal, req *dto.CreateEstudianteRequest) (*models.Estudiante, error) {
	switch p.Rol {
	case models.RolEstudiante:
	case models.RolTutor:
		return nil, apperrors.ErrOnlyStudents
	default:
		return nil, apperrors.ErrInvalidUserRole
	}
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	intereses, err := encodeIntereses(req.Intereses)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	estudiante := &models.Estudiante{
		UsuarioID:      p.UserID,
		NivelAcademico: req.NivelAcademico,
		Intereses:      intereses,
	}
	if err := s.profileRepo.CreateEstudiante(db, estudiante); err != nil {
		if errors.Is(err, repositories.ErrProfileExists) {
			return nil, apperrors.ErrProfileAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}
	return s.reloadEstudiante(db, p.UserID)
}

func (s *ProfileServiceImpl) UpdateEstudianteProfile(db *gorm.DB, p *dto.Principal, req *dto.UpdateEstudianteRequest) (*models.Estudiante, error) {
	estudiante, err := requireEstudiante(db, s.profileRepo, p)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(s.validator, req); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.NivelAcademico != nil && *req.NivelAcademico != "" {
		fields["nivel_academico"] = *req.NivelAcademico
	}
	if req.Intereses != nil {
		intereses, err := encodeIntereses(req.Intereses)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		fields["intereses"] = intereses
	}

	if err := s.profileRepo.UpdateEstudiante(db, estudiante, fields); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.reloadEstudiante(db, p.UserID)
}

func (s *ProfileServiceImpl) reloadEstudiante(db *gorm.DB, userID uint) (*models.Estudiante, error) {
	estudiante, err := s.profileRepo.FindEstudianteByUserID(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return estudiante, nil
}

// ==========================
// Публичный справочник (кэшируется)
// ==========================

func (s *ProfileServiceImpl) ListTutores(db *gorm.DB) ([]models.Tutor, error) {
	ctx := ctxOf(db)

	var tutores []models.Tutor
	if err := s.cache.Get(ctx, cache.KeyTutoresList, &tutores); err == nil {
		return tutores, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.CtxWarn(ctx, "tutor directory cache read failed", "error", err)
	}

	tutores, err := s.profileRepo.ListTutores(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if tutores == nil {
		tutores = []models.Tutor{}
	}

	if err := s.cache.Set(ctx, cache.KeyTutoresList, tutores, s.cacheTTL); err != nil {
		logger.CtxWarn(ctx, "tutor directory cache write failed", "error", err)
	}
	return tutores, nil
}

func (s *ProfileServiceImpl) GetPublicTutor(db *gorm.DB, tutorID uint) (*models.Tutor, error) {
	ctx := ctxOf(db)
	key := cache.KeyTutorPerfil(tutorID)

	var cached models.Tutor
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	tutor, err := s.profileRepo.FindTutorByID(db, tutorID)
	if err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return nil, apperrors.ErrTutorNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.cache.Set(ctx, key, tutor, s.cacheTTL); err != nil {
		logger.CtxWarn(ctx, "tutor profile cache write failed", "error", err)
	}
	return tutor, nil
}

func (s *ProfileServiceImpl) invalidateTutor(db *gorm.DB, tutorID uint) {
	ctx := ctxOf(db)
	if err := s.cache.Delete(ctx, cache.KeyTutoresList, cache.KeyTutorPerfil(tutorID)); err != nil {
		logger.CtxWarn(ctx, "failed to invalidate tutor cache", "tutor_id", tutorID, "error", err)
	}
}
