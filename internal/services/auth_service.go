package services

import (
	"encoding/json"
	"errors"

	"tutorias_backend/internal/auth"
	"tutorias_backend/internal/cache"
	"tutorias_backend/internal/logger"
	"tutorias_backend/internal/models"
	"tutorias_backend/internal/repositories"
	"tutorias_backend/internal/services/dto"
	"tutorias_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuthService - единый сервис идентификации: регистрация, вход, проверка токена.
type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Authenticate(db *gorm.DB, token string) (*dto.Principal, error)
	GetCurrentUser(db *gorm.DB, p *dto.Principal) (*dto.UserResponse, error)
}

type AuthServiceImpl struct {
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
	tokens      *auth.TokenManager
	cache       cache.Cache
}

// хеш для выравнивания времени ответа, когда correo не найден
var dummyHash, _ = auth.HashPassword("tutorias-dummy-password")

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	tokens *auth.TokenManager,
	c cache.Cache,
) AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		tokens:      tokens,
		cache:       c,
	}
}

// Register создает пользователя и профиль его роли в одной транзакции.
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	ctx := ctxOf(db)

	rol, err := models.ParseRol(req.Rol)
	if err != nil {
		return nil, apperrors.ErrInvalidUserRole
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}

	exists, err := s.userRepo.ExistsByCorreo(db, req.Correo)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Nombre:       req.Nombre,
		Correo:       req.Correo,
		PasswordHash: hashed,
		Rol:          rol,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(tx, user); err != nil {
			return err
		}

		switch rol {
		case models.RolEstudiante:
			intereses, err := encodeIntereses(req.Intereses)
			if err != nil {
				return err
			}
			return s.profileRepo.CreateEstudiante(tx, &models.Estudiante{
				UsuarioID:      user.ID,
				NivelAcademico: req.Programa,
				Intereses:      intereses,
			})
		case models.RolTutor:
			return s.profileRepo.CreateTutor(tx, &models.Tutor{
				UsuarioID:    user.ID,
				Especialidad: req.Especialidad,
				Descripcion:  req.Descripcion,
			})
		default:
			return apperrors.ErrInvalidUserRole
		}
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperrors.InternalError(err)
	}

	if rol == models.RolTutor {
		if err := s.cache.Delete(ctx, cache.KeyTutoresList); err != nil {
			logger.CtxWarn(ctx, "failed to invalidate tutor directory", "error", err)
		}
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "rol", rol)
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// Login - неверный correo и неверный пароль дают одинаковый ответ.
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByCorreo(db, req.Correo)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			auth.CheckPasswordHash(req.Password, dummyHash)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Rol))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "user logged in", "user_id", user.ID)
	return &dto.LoginResponse{
		Message: "Login correcto",
		Token:   token,
		Usuario: dto.NewUserResponse(user),
	}, nil
}

// Authenticate проверяет токен и заново загружает пользователя.
func (s *AuthServiceImpl) Authenticate(db *gorm.DB, token string) (*dto.Principal, error) {
	if token == "" {
		return nil, apperrors.ErrTokenMissing
	}

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNoLongerExists
		}
		return nil, apperrors.InternalError(err)
	}

	rol, err := models.ParseRol(string(user.Rol))
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	return &dto.Principal{
		UserID: user.ID,
		Correo: user.Correo,
		Rol:    rol,
		Nombre: user.Nombre,
	}, nil
}

func (s *AuthServiceImpl) GetCurrentUser(db *gorm.DB, p *dto.Principal) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, p.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNoLongerExists
		}
		return nil, apperrors.InternalError(err)
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func encodeIntereses(intereses []string) (datatypes.JSON, error) {
	if len(intereses) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(intereses)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
