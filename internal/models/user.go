package models

import "gorm.io/datatypes"

type User struct {
	BaseModel
	Nombre       string `gorm:"size:120;not null" json:"nombre"`
	Correo       string `gorm:"size:160;uniqueIndex;not null" json:"correo"`
	PasswordHash string `gorm:"column:password;not null" json:"-"`
	Rol          Rol    `gorm:"type:varchar(20);not null" json:"rol,omitempty"`
}

func (User) TableName() string {
	return "usuarios"
}

type Estudiante struct {
	BaseModel
	UsuarioID      uint           `gorm:"uniqueIndex;not null" json:"usuario_id"`
	NivelAcademico string         `gorm:"size:120" json:"nivel_academico"`
	Intereses      datatypes.JSON `json:"intereses,omitempty"`

	Usuario *User `gorm:"foreignKey:UsuarioID" json:"usuario,omitempty"`
}

func (Estudiante) TableName() string {
	return "estudiantes"
}

type Tutor struct {
	BaseModel
	UsuarioID    uint   `gorm:"uniqueIndex;not null" json:"usuario_id"`
	Especialidad string `gorm:"size:160" json:"especialidad"`
	Descripcion  string `gorm:"type:text" json:"descripcion"`

	Usuario *User `gorm:"foreignKey:UsuarioID" json:"usuario,omitempty"`
}

func (Tutor) TableName() string {
	return "tutores"
}
