package dto

// UpdateTutorRequest - частичное обновление: пустые поля не меняются
type UpdateTutorRequest struct {
	Especialidad *string `json:"especialidad" validate:"omitempty,max=160"`
	Descripcion  *string `json:"descripcion"`
}

type CreateTutorRequest struct {
	Especialidad string `json:"especialidad" validate:"max=160"`
	Descripcion  string `json:"descripcion"`
}

type UpdateEstudianteRequest struct {
	NivelAcademico *string  `json:"nivel_academico" validate:"omitempty,max=120"`
	Intereses      []string `json:"intereses" validate:"omitempty,max=20,dive,max=60"`
}

type CreateEstudianteRequest struct {
	NivelAcademico string   `json:"nivel_academico" validate:"max=120"`
	Intereses      []string `json:"intereses" validate:"omitempty,max=20,dive,max=60"`
}
