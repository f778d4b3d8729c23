package repositories

import (
	"errors"

	"tutorias_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTutoriaNotFound = errors.New("tutoria not found")
	// ErrTutoriaStale - состояние изменилось между чтением и записью
	ErrTutoriaStale = errors.New("tutoria estado changed concurrently")
)

// TutoriaFilter - выборка тьюторий одной стороны
type TutoriaFilter struct {
	EstudianteID uint
	TutorID      uint
	Estado       models.TutoriaEstado
	Desde        string
	Hasta        string
	// Descending сортирует по (fecha, hora) в обратном порядке
	Descending bool
	// WithEstudiante / WithTutor подгружают профиль другой стороны
	WithEstudiante bool
	WithTutor      bool
}

type TutoriaRepository interface {
	Create(db *gorm.DB, tutoria *models.Tutoria) error
	FindByID(db *gorm.DB, id uint) (*models.Tutoria, error)
	Find(db *gorm.DB, filter TutoriaFilter) ([]models.Tutoria, error)
	// UpdateEstado меняет состояние только если текущее равно from (оптимистичная проверка).
	UpdateEstado(db *gorm.DB, id uint, from, to models.TutoriaEstado, extra map[string]interface{}) error
}

type TutoriaRepositoryImpl struct{}

func NewTutoriaRepository() TutoriaRepository {
	return &TutoriaRepositoryImpl{}
}

func (r *TutoriaRepositoryImpl) Create(db *gorm.DB, tutoria *models.Tutoria) error {
	if tutoria.Estado == "" {
		tutoria.Estado = models.TutoriaPendiente
	}
	return db.Create(tutoria).Error
}

func (r *TutoriaRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Tutoria, error) {
	var tutoria models.Tutoria
	if err := db.First(&tutoria, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTutoriaNotFound
		}
		return nil, err
	}
	return &tutoria, nil
}

func (r *TutoriaRepositoryImpl) applyFilter(db *gorm.DB, filter TutoriaFilter) *gorm.DB {
	q := db.Model(&models.Tutoria{})
	if filter.EstudianteID != 0 {
		q = q.Where("estudiante_id = ?", filter.EstudianteID)
	}
	if filter.TutorID != 0 {
		q = q.Where("tutor_id = ?", filter.TutorID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Desde != "" {
		q = q.Where("fecha >= ?", filter.Desde)
	}
	if filter.Hasta != "" {
		q = q.Where("fecha <= ?", filter.Hasta)
	}
	return q
}

func (r *TutoriaRepositoryImpl) Find(db *gorm.DB, filter TutoriaFilter) ([]models.Tutoria, error) {
	q := r.applyFilter(db, filter)
	if filter.WithEstudiante {
		q = q.Preload("Estudiante").Preload("Estudiante.Usuario", selectPublicUser)
	}
	if filter.WithTutor {
		q = q.Preload("Tutor").Preload("Tutor.Usuario", selectPublicUser)
	}

	if filter.Descending {
		q = q.Order("fecha DESC").Order("hora DESC")
	} else {
		q = q.Order("fecha ASC").Order("hora ASC")
	}

	var tutorias []models.Tutoria
	err := q.Order("id ASC").Find(&tutorias).Error
	return tutorias, err
}

func (r *TutoriaRepositoryImpl) UpdateEstado(db *gorm.DB, id uint, from, to models.TutoriaEstado, extra map[string]interface{}) error {
	fields := map[string]interface{}{"estado": to}
	for k, v := range extra {
		fields[k] = v
	}

	result := db.Model(&models.Tutoria{}).
		Where("id = ? AND estado = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTutoriaStale
	}
	return nil
}
