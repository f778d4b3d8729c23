package repositories

import (
	"errors"

	"tutorias_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrEstudianteNotFound = errors.New("estudiante profile not found")
	ErrTutorNotFound      = errors.New("tutor profile not found")
	ErrProfileExists      = errors.New("profile already exists")
)

// публичные поля пользователя, подгружаемые вместе с профилем
func selectPublicUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "nombre", "correo")
}

type ProfileRepository interface {
	// Операции со студентами
	CreateEstudiante(db *gorm.DB, estudiante *models.Estudiante) error
	FindEstudianteByUserID(db *gorm.DB, userID uint) (*models.Estudiante, error)
	UpdateEstudiante(db *gorm.DB, estudiante *models.Estudiante, fields map[string]interface{}) error

	// Операции с тьюторами
	CreateTutor(db *gorm.DB, tutor *models.Tutor) error
	FindTutorByID(db *gorm.DB, id uint) (*models.Tutor, error)
	FindTutorByUserID(db *gorm.DB, userID uint) (*models.Tutor, error)
	TutorExists(db *gorm.DB, id uint) (bool, error)
	UpdateTutor(db *gorm.DB, tutor *models.Tutor, fields map[string]interface{}) error
	ListTutores(db *gorm.DB) ([]models.Tutor, error)
}

type ProfileRepositoryImpl struct{}

func NewProfileRepository() ProfileRepository {
	return &ProfileRepositoryImpl{}
}

// Операции со студентами

func (r *ProfileRepositoryImpl) CreateEstudiante(db *gorm.DB, estudiante *models.Estudiante) error {
	if err := db.Create(estudiante).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrProfileExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepositoryImpl) FindEstudianteByUserID(db *gorm.DB, userID uint) (*models.Estudiante, error) {
	var estudiante models.Estudiante
	err := db.Preload("Usuario", selectPublicUser).
		Where("usuario_id = ?", userID).First(&estudiante).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstudianteNotFound
		}
		return nil, err
	}
	return &estudiante, nil
}

func (r *ProfileRepositoryImpl) UpdateEstudiante(db *gorm.DB, estudiante *models.Estudiante, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := db.Model(&models.Estudiante{}).Where("id = ?", estudiante.ID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEstudianteNotFound
	}
	return nil
}

// Операции с тьюторами

func (r *ProfileRepositoryImpl) CreateTutor(db *gorm.DB, tutor *models.Tutor) error {
	if err := db.Create(tutor).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrProfileExists
		}
		return err
	}
	return nil
}

func (r *ProfileRepositoryImpl) FindTutorByID(db *gorm.DB, id uint) (*models.Tutor, error) {
	var tutor models.Tutor
	err := db.Preload("Usuario", selectPublicUser).First(&tutor, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTutorNotFound
		}
		return nil, err
	}
	return &tutor, nil
}

func (r *ProfileRepositoryImpl) FindTutorByUserID(db *gorm.DB, userID uint) (*models.Tutor, error) {
	var tutor models.Tutor
	err := db.Preload("Usuario", selectPublicUser).
		Where("usuario_id = ?", userID).First(&tutor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTutorNotFound
		}
		return nil, err
	}
	return &tutor, nil
}

func (r *ProfileRepositoryImpl) TutorExists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	err := db.Model(&models.Tutor{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *ProfileRepositoryImpl) UpdateTutor(db *gorm.DB, tutor *models.Tutor, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := db.Model(&models.Tutor{}).Where("id = ?", tutor.ID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTutorNotFound
	}
	return nil
}

func (r *ProfileRepositoryImpl) ListTutores(db *gorm.DB) ([]models.Tutor, error) {
	var tutores []models.Tutor
	err := db.Preload("Usuario", selectPublicUser).Order("id ASC").Find(&tutores).Error
	return tutores, err
}
