// Package testutil содержит общие помощники для тестов: sqlite в памяти и фикстуры.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"tutorias_backend/database"
	"tutorias_backend/internal/auth"
	"tutorias_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const DefaultPassword = "password123"

var dbSeq atomic.Int64

// NewTestDB открывает отдельную sqlite базу в памяти и накатывает схему.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "не удалось открыть sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// одна connection: транзакции sqlite не конкурируют за блокировку
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "AutoMigrate не должен падать")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateUser создает пользователя с хешированным DefaultPassword.
func CreateUser(t *testing.T, db *gorm.DB, nombre, correo string, rol models.Rol) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(DefaultPassword)
	require.NoError(t, err)

	user := &models.User{
		Nombre:       nombre,
		Correo:       correo,
		PasswordHash: hash,
		Rol:          rol,
	}
	require.NoError(t, db.Create(user).Error, "не удалось создать пользователя %s", correo)
	return user
}

// CreateEstudiante создает пользователя-студента вместе с профилем.
func CreateEstudiante(t *testing.T, db *gorm.DB, correo string) (*models.User, *models.Estudiante) {
	t.Helper()

	user := CreateUser(t, db, "Estudiante "+correo, correo, models.RolEstudiante)
	estudiante := &models.Estudiante{UsuarioID: user.ID, NivelAcademico: "Ingeniería"}
	require.NoError(t, db.Create(estudiante).Error)
	return user, estudiante
}

// CreateTutor создает пользователя-тьютора вместе с профилем.
func CreateTutor(t *testing.T, db *gorm.DB, correo string) (*models.User, *models.Tutor) {
	t.Helper()

	user := CreateUser(t, db, "Tutor "+correo, correo, models.RolTutor)
	tutor := &models.Tutor{UsuarioID: user.ID, Especialidad: "Matemáticas", Descripcion: "Cálculo y álgebra"}
	require.NoError(t, db.Create(tutor).Error)
	return user, tutor
}

func CreateHorario(t *testing.T, db *gorm.DB, tutorID uint, fecha, hora string, estado models.HorarioEstado) *models.Horario {
	t.Helper()

	horario := &models.Horario{TutorID: tutorID, Fecha: fecha, Hora: hora, Estado: estado}
	require.NoError(t, db.Create(horario).Error)
	return horario
}

func CreateTutoria(t *testing.T, db *gorm.DB, estudianteID, tutorID uint, horarioID *uint, fecha, hora string, estado models.TutoriaEstado) *models.Tutoria {
	t.Helper()

	tutoria := &models.Tutoria{
		EstudianteID: estudianteID,
		TutorID:      tutorID,
		HorarioID:    horarioID,
		Fecha:        fecha,
		Hora:         hora,
		Estado:       estado,
	}
	require.NoError(t, db.Create(tutoria).Error)
	return tutoria
}

// HorarioEstado перечитывает состояние слота из базы.
func HorarioEstado(t *testing.T, db *gorm.DB, id uint) models.HorarioEstado {
	t.Helper()

	var h models.Horario
	require.NoError(t, db.First(&h, id).Error)
	return h.Estado
}

func CountTutorias(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Tutoria{}).Count(&n).Error)
	return n
}
