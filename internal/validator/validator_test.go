package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotInput struct {
	Fecha  string `json:"fecha" validate:"required,is-fecha"`
	Hora   string `json:"hora" validate:"required,is-hora"`
	Rol    string `json:"rol" validate:"omitempty,is-rol"`
	Accion string `json:"accion" validate:"omitempty,is-accion"`
}

func TestValidate_CustomRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&slotInput{Fecha: "2024-01-10", Hora: "10:00", Rol: "tutor", Accion: "aceptar"}))
	assert.NoError(t, v.Validate(&slotInput{Fecha: "2024-01-10", Hora: "10:00:00"}))

	err := v.Validate(&slotInput{Fecha: "10/01/2024", Hora: "25:00", Rol: "admin", Accion: "borrar"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Len(t, vErr.Errors, 4)
	assert.Contains(t, vErr.Errors["fecha"], "YYYY-MM-DD")
	assert.Contains(t, vErr.Errors, "hora")
	assert.Contains(t, vErr.Errors, "rol")
	assert.Contains(t, vErr.Errors, "accion")
}

func TestValidate_RequiredUsesJSONNames(t *testing.T) {
	err := New().Validate(&slotInput{})

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Este campo es obligatorio", vErr.Errors["fecha"])
	assert.Equal(t, "Este campo es obligatorio", vErr.Errors["hora"])
}
