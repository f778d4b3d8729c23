package repositories

import (
	"errors"

	"tutorias_backend/internal/models"

	"gorm.io/gorm"
)

var ErrHorarioUnavailable = errors.New("horario is not available")

type HorarioRepository interface {
	Create(db *gorm.DB, horario *models.Horario) error
	ListDisponiblesByTutor(db *gorm.DB, tutorID uint) ([]models.Horario, error)
	// Occupy переводит disponible -> ocupado; если слот уже занят, ErrHorarioUnavailable.
	Occupy(db *gorm.DB, id, tutorID uint) error
	// Release возвращает ocupado -> disponible. Слот в другом состоянии не трогаем.
	Release(db *gorm.DB, id uint) (bool, error)
	// ExpireBefore закрывает свободные слоты с датой раньше fecha.
	ExpireBefore(db *gorm.DB, fecha string) (int64, error)
}

type HorarioRepositoryImpl struct{}

func NewHorarioRepository() HorarioRepository {
	return &HorarioRepositoryImpl{}
}

func (r *HorarioRepositoryImpl) Create(db *gorm.DB, horario *models.Horario) error {
	if horario.Estado == "" {
		horario.Estado = models.HorarioDisponible
	}
	return db.Create(horario).Error
}

func (r *HorarioRepositoryImpl) ListDisponiblesByTutor(db *gorm.DB, tutorID uint) ([]models.Horario, error) {
	var horarios []models.Horario
	err := db.Where("tutor_id = ? AND estado = ?", tutorID, models.HorarioDisponible).
		Order("fecha ASC").Order("hora ASC").
		Find(&horarios).Error
	return horarios, err
}

func (r *HorarioRepositoryImpl) Occupy(db *gorm.DB, id, tutorID uint) error {
	result := db.Model(&models.Horario{}).
		Where("id = ? AND tutor_id = ? AND estado = ?", id, tutorID, models.HorarioDisponible).
		Update("estado", models.HorarioOcupado)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrHorarioUnavailable
	}
	return nil
}

func (r *HorarioRepositoryImpl) Release(db *gorm.DB, id uint) (bool, error) {
	result := db.Model(&models.Horario{}).
		Where("id = ? AND estado = ?", id, models.HorarioOcupado).
		Update("estado", models.HorarioDisponible)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *HorarioRepositoryImpl) ExpireBefore(db *gorm.DB, fecha string) (int64, error) {
	result := db.Model(&models.Horario{}).
		Where("estado = ? AND fecha < ?", models.HorarioDisponible, fecha).
		Update("estado", models.HorarioCancelado)
	return result.RowsAffected, result.Error
}
