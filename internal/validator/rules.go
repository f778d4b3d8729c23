package validator

import (
	"log"

	"tutorias_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует кастомные правила валидации.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-rol", validateRol)
	mustRegister("is-fecha", validateFecha)
	mustRegister("is-hora", validateHora)
	mustRegister("is-accion", validateAccion)
}

// Пустые значения пропускаем: для этого есть 'required'.

func validateRol(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := models.ParseRol(value)
	return err == nil
}

func validateFecha(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := models.NormalizeFecha(value)
	return err == nil
}

func validateHora(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := models.NormalizeHora(value)
	return err == nil
}

func validateAccion(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := models.ParseAccion(value)
	return err == nil
}
