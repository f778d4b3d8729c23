package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tutorias_backend/internal/cache"
	"tutorias_backend/internal/config"
	"tutorias_backend/internal/logger"
	"tutorias_backend/internal/middleware"
	"tutorias_backend/internal/models"
	"tutorias_backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("test", io.Discard)
}

type testServer struct {
	Server *httptest.Server
	DB     *gorm.DB
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Database.DSN = "sqlite://memory"
	cfg.JWT.Secret = "test-secret"
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, c cache.Cache, limiter *middleware.LimiterStore) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	server := httptest.NewServer(SetupRouter(cfg, db, c, limiter))
	t.Cleanup(server.Close)

	return &testServer{Server: server, DB: db}
}

func (ts *testServer) send(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return res.StatusCode, out
}

func (ts *testServer) register(t *testing.T, nombre, correo, rol string, extra map[string]interface{}) uint {
	t.Helper()

	body := map[string]interface{}{
		"nombre":   nombre,
		"correo":   correo,
		"password": "secreto1",
		"rol":      rol,
	}
	for k, v := range extra {
		body[k] = v
	}
	status, resp := ts.send(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, status, resp)
	usuario := resp["usuario"].(map[string]interface{})
	return uint(usuario["id"].(float64))
}

func (ts *testServer) login(t *testing.T, correo string) string {
	t.Helper()

	status, resp := ts.send(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"correo": correo, "password": "secreto1",
	})
	require.Equal(t, http.StatusOK, status, resp)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (ts *testServer) tutorIDForUser(t *testing.T, userID uint) uint {
	t.Helper()
	var tutor models.Tutor
	require.NoError(t, ts.DB.Where("usuario_id = ?", userID).First(&tutor).Error)
	return tutor.ID
}

func idOf(t *testing.T, resp map[string]interface{}, key string) uint {
	t.Helper()
	obj, ok := resp[key].(map[string]interface{})
	require.True(t, ok, "missing %q in %v", key, resp)
	return uint(obj["id"].(float64))
}

// Полный сценарий: регистрация -> слот -> запрос -> aceptar -> resumen -> отчет.
func TestTutoriaFlow_EndToEnd(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil, nil)

	tutorUserID := ts.register(t, "Luis", "luis@test.com", "tutor", map[string]interface{}{
		"especialidad": "Matemáticas", "descripcion": "Cálculo",
	})
	ts.register(t, "Ana", "ana@test.com", "estudiante", map[string]interface{}{
		"programa": "Ingeniería", "intereses": []string{"cálculo"},
	})
	tutorToken := ts.login(t, "luis@test.com")
	estToken := ts.login(t, "ana@test.com")
	tutorID := ts.tutorIDForUser(t, tutorUserID)

	// слот
	status, resp := ts.send(t, http.MethodPost, "/api/tutores/horarios", tutorToken, map[string]interface{}{
		"fecha": "2025-03-10", "hora": "10:00",
	})
	require.Equal(t, http.StatusCreated, status, resp)
	horarioID := idOf(t, resp, "horario")

	status, resp = ts.send(t, http.MethodGet, fmt.Sprintf("/api/tutores/%d/horarios", tutorID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, resp["horarios"], 1)

	// запрос студента
	status, resp = ts.send(t, http.MethodPost, "/api/tutorias", estToken, map[string]interface{}{
		"tutorId": tutorID, "fecha": "2025-03-10", "hora": "10:00", "horarioId": horarioID,
	})
	require.Equal(t, http.StatusCreated, status, resp)
	assert.Equal(t, "Tutoría solicitada exitosamente", resp["message"])
	tutoriaID := idOf(t, resp, "tutoria")
	assert.Equal(t, models.HorarioOcupado, testutil.HorarioEstado(t, ts.DB, horarioID))

	// повторный запрос на тот же слот
	status, resp = ts.send(t, http.MethodPost, "/api/tutorias", estToken, map[string]interface{}{
		"tutorId": tutorID, "fecha": "2025-03-10", "hora": "10:00", "horarioId": horarioID,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Horario no disponible", resp["message"])

	status, resp = ts.send(t, http.MethodGet, fmt.Sprintf("/api/tutores/%d/horarios", tutorID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp["horarios"])

	// тьютор видит запрос
	status, resp = ts.send(t, http.MethodGet, "/api/tutorias/solicitudes", tutorToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp["solicitudes"], 1)

	// aceptar
	path := fmt.Sprintf("/api/tutorias/%d", tutoriaID)
	status, resp = ts.send(t, http.MethodPost, path+"/responder", tutorToken, map[string]interface{}{"accion": "aceptar"})
	require.Equal(t, http.StatusOK, status, resp)
	assert.Equal(t, "Tutoría aceptada exitosamente", resp["message"])

	// resumen
	status, resp = ts.send(t, http.MethodPost, path+"/resumen", tutorToken, map[string]interface{}{"resumen": "Límites"})
	require.Equal(t, http.StatusOK, status, resp)
	assert.Equal(t, "Resumen registrado exitosamente", resp["message"])
	tutoria := resp["tutoria"].(map[string]interface{})
	assert.Equal(t, "finalizada", tutoria["estado"])
	assert.Equal(t, models.HorarioOcupado, testutil.HorarioEstado(t, ts.DB, horarioID))

	// отмена финализированной невозможна
	status, _ = ts.send(t, http.MethodPatch, path+"/cancelar", estToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// история студента
	status, resp = ts.send(t, http.MethodGet, "/api/tutorias/historial", estToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp["historiales"], 1)

	// отчет
	status, resp = ts.send(t, http.MethodGet, "/api/tutorias/reporte?desde=2025-03-01&hasta=2025-03-31", tutorToken, nil)
	require.Equal(t, http.StatusOK, status, resp)
	stats := resp["estadisticas"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total"])
	assert.Equal(t, float64(1), stats["finalizadas"])
	periodo := resp["periodo"].(map[string]interface{})
	assert.Equal(t, "2025-03-01", periodo["desde"])
}

func TestRechazarAndCancel_ReleaseSlot(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil, nil)

	tutorUserID := ts.register(t, "Luis", "luis@test.com", "tutor", nil)
	ts.register(t, "Ana", "ana@test.com", "estudiante", nil)
	tutorToken := ts.login(t, "luis@test.com")
	estToken := ts.login(t, "ana@test.com")
	tutorID := ts.tutorIDForUser(t, tutorUserID)

	horario := testutil.CreateHorario(t, ts.DB, tutorID, "2025-06-01", "08:00:00", models.HorarioDisponible)
	solicitar := func() uint {
		status, resp := ts.send(t, http.MethodPost, "/api/tutorias", estToken, map[string]interface{}{
			"tutorId": tutorID, "fecha": horario.Fecha, "hora": "08:00", "horarioId": horario.ID,
		})
		require.Equal(t, http.StatusCreated, status, resp)
		return idOf(t, resp, "tutoria")
	}

	first := solicitar()
	status, resp := ts.send(t, http.MethodPost, fmt.Sprintf("/api/tutorias/%d/responder", first), tutorToken,
		map[string]interface{}{"accion": "rechazar"})
	require.Equal(t, http.StatusOK, status, resp)
	assert.Equal(t, "Tutoría rechazada exitosamente", resp["message"])
	assert.Equal(t, models.HorarioDisponible, testutil.HorarioEstado(t, ts.DB, horario.ID))

	second := solicitar()
	status, resp = ts.send(t, http.MethodPatch, fmt.Sprintf("/api/tutorias/%d/cancelar", second), estToken,
		map[string]interface{}{"motivo": "Viaje"})
	require.Equal(t, http.StatusOK, status, resp)
	tutoria := resp["tutoria"].(map[string]interface{})
	assert.Equal(t, "cancelada", tutoria["estado"])
	assert.Equal(t, "Viaje", tutoria["motivo_cancelacion"])
	assert.Equal(t, models.HorarioDisponible, testutil.HorarioEstado(t, ts.DB, horario.ID))
}

func TestAccessGate(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil, nil)
	ts.register(t, "Ana", "ana@test.com", "estudiante", nil)
	ts.register(t, "Luis", "luis@test.com", "tutor", nil)
	estToken := ts.login(t, "ana@test.com")
	tutorToken := ts.login(t, "luis@test.com")

	t.Run("no token", func(t *testing.T) {
		status, resp := ts.send(t, http.MethodGet, "/api/tutorias/historial", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Token no proporcionado", resp["message"])
	})

	t.Run("garbage token", func(t *testing.T) {
		status, _ := ts.send(t, http.MethodGet, "/api/auth/me", "abc.def.ghi", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("me", func(t *testing.T) {
		status, resp := ts.send(t, http.MethodGet, "/api/auth/me", estToken, nil)
		require.Equal(t, http.StatusOK, status)
		usuario := resp["usuario"].(map[string]interface{})
		assert.Equal(t, "ana@test.com", usuario["correo"])
		assert.Equal(t, "estudiante", usuario["rol"])
	})

	t.Run("student cannot create horario", func(t *testing.T) {
		status, resp := ts.send(t, http.MethodPost, "/api/tutores/horarios", estToken, map[string]interface{}{
			"fecha": "2025-03-10", "hora": "10:00",
		})
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", resp["code"])
	})

	t.Run("tutor cannot request tutoria", func(t *testing.T) {
		status, _ := ts.send(t, http.MethodPost, "/api/tutorias", tutorToken, map[string]interface{}{
			"tutorId": 1, "fecha": "2025-03-10", "hora": "10:00",
		})
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("student cannot see report", func(t *testing.T) {
		status, _ := ts.send(t, http.MethodGet, "/api/tutorias/reporte", estToken, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("bad id", func(t *testing.T) {
		status, _ := ts.send(t, http.MethodPost, "/api/tutorias/abc/responder", tutorToken, map[string]interface{}{"accion": "aceptar"})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil, nil)
	ts.register(t, "Ana", "ana@test.com", "estudiante", nil)

	t.Run("duplicate correo", func(t *testing.T) {
		status, resp := ts.send(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
			"nombre": "Ana 2", "correo": "ana@test.com", "password": "secreto1", "rol": "tutor",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, resp["message"], "ya registrado")
	})

	t.Run("invalid body", func(t *testing.T) {
		status, resp := ts.send(t, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
			"nombre": "", "correo": "no-es-correo", "password": "123", "rol": "admin",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		details := resp["details"].(map[string]interface{})
		assert.Contains(t, details, "correo")
		assert.Contains(t, details, "rol")
	})

	t.Run("wrong password", func(t *testing.T) {
		status, resp := ts.send(t, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
			"correo": "ana@test.com", "password": "incorrecta",
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Credenciales inválidas", resp["message"])
	})
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true
	ts := newTestServer(t, cfg, nil, middleware.NewLimiterStore(0.001, 2, time.Minute))

	body := map[string]interface{}{"correo": "nadie@test.com", "password": "secreto1"}
	for i := 0; i < 2; i++ {
		status, _ := ts.send(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusBadRequest, status)
	}
	status, resp := ts.send(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", resp["code"])

	// остальные маршруты не ограничены
	status, _ = ts.send(t, http.MethodGet, "/api/tutores", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestTutorDirectory_CachedInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cacheCfg := cache.DefaultConfig()
	cacheCfg.Addr = mr.Addr()
	redisCache, err := cache.NewRedisCache(cacheCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisCache.Close() })

	ts := newTestServer(t, testConfig(), redisCache, nil)
	tutorUserID := ts.register(t, "Luis", "luis@test.com", "tutor", map[string]interface{}{"especialidad": "Física"})
	tutorToken := ts.login(t, "luis@test.com")

	status, resp := ts.send(t, http.MethodGet, "/api/tutores", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, resp["tutores"], 1)
	assert.True(t, mr.Exists(cache.KeyTutoresList))

	tutorID := ts.tutorIDForUser(t, tutorUserID)
	status, _ = ts.send(t, http.MethodGet, fmt.Sprintf("/api/tutores/%d/perfil", tutorID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, mr.Exists(cache.KeyTutorPerfil(tutorID)))

	// обновление профиля сбрасывает кэш
	status, resp = ts.send(t, http.MethodPut, "/api/tutores/perfil", tutorToken, map[string]interface{}{"especialidad": "Química"})
	require.Equal(t, http.StatusOK, status, resp)
	assert.False(t, mr.Exists(cache.KeyTutoresList))
	assert.False(t, mr.Exists(cache.KeyTutorPerfil(tutorID)))

	status, resp = ts.send(t, http.MethodGet, fmt.Sprintf("/api/tutores/%d/perfil", tutorID), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Química", resp["tutor"].(map[string]interface{})["especialidad"])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil, nil)

	status, resp := ts.send(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", resp["database"])

	status, _ = ts.send(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
}
