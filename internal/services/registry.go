package services

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService    AuthService
	ProfileService ProfileService
	HorarioService HorarioService
	TutoriaService TutoriaService
}
