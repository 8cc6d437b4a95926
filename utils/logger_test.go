package utils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cppla/membership/config"
)

func TestInitLogger_WritesRollingFile(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger, Sugar = prev, prev.Sugar() })

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, InitLogger(config.AppConfig{LogLevel: "info", LogPath: path}))

	Logger.Info("hello", zap.String("k", "v"))
	_ = Logger.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
	assert.Contains(t, string(b), `"k":"v"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("debug").String())
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "info", parseLevel("bogus").String())
	assert.Equal(t, "error", parseLevel("error").String())
}

func TestGinzapAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(Ginzap(logger, time.RFC3339, true), RecoveryWithZap(logger, false))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_EXCEPTION")

	assert.Equal(t, 1, logs.FilterMessage("[Recovery from panic]").Len())
	okEntries := logs.FilterMessage("/ok").All()
	require.Len(t, okEntries, 1)
	assert.Equal(t, "x=1", okEntries[0].ContextMap()["query"])
	assert.EqualValues(t, http.StatusOK, okEntries[0].ContextMap()["status"])
}
