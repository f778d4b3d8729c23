package dto

import (
	"tutorias_backend/internal/models"
)

// Principal - пользователь, прошедший access gate: {id, correo, rol, nombre}
type Principal struct {
	UserID uint       `json:"id"`
	Correo string     `json:"correo"`
	Rol    models.Rol `json:"rol"`
	Nombre string     `json:"nombre"`
}

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Nombre   string `json:"nombre" validate:"required,max=120"`
	Correo   string `json:"correo" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Rol      string `json:"rol" validate:"required,is-rol"`

	// Поля estudiante
	Programa  string   `json:"programa,omitempty" validate:"max=120"`
	Intereses []string `json:"intereses,omitempty" validate:"max=20,dive,max=60"`

	// Поля tutor
	Especialidad string `json:"especialidad,omitempty" validate:"max=160"`
	Descripcion  string `json:"descripcion,omitempty"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Correo   string `json:"correo" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID     uint       `json:"id"`
	Nombre string     `json:"nombre"`
	Correo string     `json:"correo"`
	Rol    models.Rol `json:"rol"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Nombre: u.Nombre, Correo: u.Correo, Rol: u.Rol}
}

type RegisterResponse struct {
	Message string       `json:"message"`
	Usuario UserResponse `json:"usuario"`
}

type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	Usuario UserResponse `json:"usuario"`
}
