package models

type Horario struct {
	BaseModel
	TutorID uint          `gorm:"not null;index:idx_horarios_tutor_fecha" json:"tutor_id"`
	Fecha   string        `gorm:"type:varchar(10);not null;index:idx_horarios_tutor_fecha" json:"fecha"`
	Hora    string        `gorm:"type:varchar(8);not null" json:"hora"`
	Estado  HorarioEstado `gorm:"type:varchar(20);not null;default:'disponible'" json:"estado"`

	Tutor *Tutor `gorm:"foreignKey:TutorID" json:"-"`
}

func (Horario) TableName() string {
	return "horarios"
}

type Tutoria struct {
	BaseModel
	EstudianteID      uint          `gorm:"not null;index" json:"estudiante_id"`
	TutorID           uint          `gorm:"not null;index" json:"tutor_id"`
	HorarioID         *uint         `gorm:"index" json:"horario_id"`
	Fecha             string        `gorm:"type:varchar(10);not null;index" json:"fecha"`
	Hora              string        `gorm:"type:varchar(8);not null" json:"hora"`
	Estado            TutoriaEstado `gorm:"type:varchar(20);not null;default:'pendiente';index" json:"estado"`
	Resumen           *string       `gorm:"type:text" json:"resumen"`
	MotivoCancelacion *string       `gorm:"type:text" json:"motivo_cancelacion"`

	Estudiante *Estudiante `gorm:"foreignKey:EstudianteID" json:"estudiante,omitempty"`
	Tutor      *Tutor      `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	Horario    *Horario    `gorm:"foreignKey:HorarioID" json:"-"`
}

func (Tutoria) TableName() string {
	return "tutorias"
}

func (t *Tutoria) HasSlot() bool {
	return t.HorarioID != nil && *t.HorarioID != 0
}
