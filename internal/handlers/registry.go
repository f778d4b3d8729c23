package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler       *AuthHandler
	TutorHandler      *TutorHandler
	EstudianteHandler *EstudianteHandler
	TutoriaHandler    *TutoriaHandler
	HealthHandler     *HealthHandler
}
