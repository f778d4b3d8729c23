package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// DBContextKey - ключ, по которому хранится *gorm.DB
	DBContextKey = contextKey("db")
	// PrincipalContextKey - аутентифицированный пользователь запроса
	PrincipalContextKey = contextKey("principal")
)
