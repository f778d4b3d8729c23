package repositories

import (
	"errors"
	"strings"

	"tutorias_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id uint) (*models.User, error)
	FindByCorreo(db *gorm.DB, correo string) (*models.User, error)
	ExistsByCorreo(db *gorm.DB, correo string) (bool, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

// NormalizeCorreo: correo уникален без учета регистра и пробелов.
func NormalizeCorreo(correo string) string {
	return strings.ToLower(strings.TrimSpace(correo))
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	user.Correo = NormalizeCorreo(user.Correo)
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByCorreo(db *gorm.DB, correo string) (*models.User, error) {
	var user models.User
	err := db.Where("correo = ?", NormalizeCorreo(correo)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByCorreo(db *gorm.DB, correo string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("correo = ?", NormalizeCorreo(correo)).Count(&count).Error
	return count > 0, err
}
