package services

import (
	"context"
	"errors"

	"tutorias_backend/internal/models"
	"tutorias_backend/internal/repositories"
	"tutorias_backend/internal/services/dto"
	"tutorias_backend/internal/validator"
	"tutorias_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ctxOf достает context запроса, привязанный через db.WithContext.
func ctxOf(db *gorm.DB) context.Context {
	if db != nil && db.Statement != nil && db.Statement.Context != nil {
		return db.Statement.Context
	}
	return context.Background()
}

// validateRequest переводит ошибки валидатора в AppError (400).
func validateRequest(v *validator.Validator, req interface{}) error {
	if err := v.Validate(req); err != nil {
		var vErr *validator.ValidationError
		if errors.As(err, &vErr) {
			return apperrors.ValidationError(vErr.Errors)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// requireTutor проверяет роль и возвращает профиль тьютора вызывающего.
func requireTutor(db *gorm.DB, repo repositories.ProfileRepository, p *dto.Principal) (*models.Tutor, error) {
	switch p.Rol {
	case models.RolTutor:
	case models.RolEstudiante:
		return nil, apperrors.ErrOnlyTutors
	default:
		return nil, apperrors.ErrInvalidUserRole
	}

	tutor, err := repo.FindTutorByUserID(db, p.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return nil, apperrors.ErrTutorNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return tutor, nil
}

// requireEstudiante - то же для студента.
func requireEstudiante(db *gorm.DB, repo repositories.ProfileRepository, p *dto.Principal) (*models.Estudiante, error) {
	switch p.Rol {
	case models.RolEstudiante:
	case models.RolTutor:
		return nil, apperrors.ErrOnlyStudents
	default:
		return nil, apperrors.ErrInvalidUserRole
	}

	estudiante, err := repo.FindEstudianteByUserID(db, p.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrEstudianteNotFound) {
			return nil, apperrors.ErrEstudianteNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return estudiante, nil
}
