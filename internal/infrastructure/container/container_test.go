package container

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deliveria/api/internal/infrastructure/http/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const configTemplate = `
app:
  name: deliveria
  environment: test
server:
  host: 127.0.0.1
  port: %d
admin:
  enabled: false
database:
  driver: sqlite
  dsn: ":memory:"
  seed: true
ai:
  enabled: false
rate_limit:
  enabled: false
monitoring:
  tracing_enabled: false
logging:
  level: %s
`

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func writeConfig(t *testing.T, path string, port int, level string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(configTemplate, port, level)), 0o600))
}

func call(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestApplicationGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	port := freePort(t)
	writeConfig(t, path, port, "warn")

	var (
		api   *server.Server
		level zap.AtomicLevel
	)
	app := fxtest.New(t,
		New(path),
		fx.Populate(&api, &level),
	)
	app.RequireStart()
	defer app.RequireStop()

	h := api.Handler()

	t.Run("catalog is seeded", func(t *testing.T) {
		rec := call(t, h, http.MethodGet, "/api/meals", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var meals []map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meals))
		assert.NotEmpty(t, meals)
	})

	t.Run("recommendations fall back without a gateway", func(t *testing.T) {
		rec := call(t, h, http.MethodPost, "/api/recommendations", map[string]interface{}{
			"preferences":          map[string]interface{}{"cuisine_type": "brasileira", "spice_level": 2},
			"dietary_restrictions": []string{},
			"calories_range":       []int{300, 700},
			"goals":                "saúde",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("order lifecycle", func(t *testing.T) {
		rec := call(t, h, http.MethodPost, "/api/users", map[string]interface{}{
			"email":    "cliente@example.com",
			"name":     "Cliente Teste",
			"password": "segredo123",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var created struct {
			ID uint `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

		rec = call(t, h, http.MethodGet, "/api/meals", nil)
		var meals []struct {
			ID uint `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meals))
		require.NotEmpty(t, meals)

		rec = call(t, h, http.MethodPost, "/api/orders", map[string]interface{}{
			"user_id":          created.ID,
			"delivery_address": "Rua das Flores, 123",
			"payment_method":   "pix",
			"items":            []map[string]interface{}{{"meal_id": meals[0].ID, "quantity": 2}},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var placed struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
		assert.Equal(t, "pending", placed.Status)

		rec = call(t, h, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", placed.ID), map[string]string{"status": "preparing"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = call(t, h, http.MethodGet, fmt.Sprintf("/api/users/%d/orders", created.ID), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"preparing"`)
	})

	t.Run("log level follows config reloads", func(t *testing.T) {
		require.Equal(t, zapcore.WarnLevel, level.Level())
		writeConfig(t, path, port, "debug")

		assert.Eventually(t, func() bool {
			return level.Level() == zapcore.DebugLevel
		}, 5*time.Second, 50*time.Millisecond)
	})
}

func TestApplicationGraphRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: oracle\n"), 0o600))

	app := fx.New(New(path), fx.NopLogger)
	assert.ErrorContains(t, app.Err(), "database.driver")
}
