package recovery

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// fakeLogger is a hand-written stand-in for logger.Logger that counts
// Error calls instead of recording call expectations.
type fakeLogger struct {
	errorCount int
}

func (f *fakeLogger) Debug(string, ...logger.Field) {}
func (f *fakeLogger) Info(string, ...logger.Field)  {}
func (f *fakeLogger) Warn(string, ...logger.Field)  {}
func (f *fakeLogger) Error(string, ...logger.Field) { f.errorCount++ }
func (f *fakeLogger) Fatal(string, ...logger.Field) {}
func (f *fakeLogger) WithFields(...logger.Field) logger.Logger {
	return f
}
func (f *fakeLogger) WithError(error) logger.Logger { return f }
func (f *fakeLogger) Sync() error                   { return nil }

func TestRecoveryHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := &fakeLogger{}
	contextLog := &fakeLogger{}

	router := gin.New()

	config := Config{
		DisableStackTrace: false,
		DisableRecovery:   false,
	}

	router.Use(Handler(log, config))

	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	router.GET("/panic-with-context-logger", func(c *gin.Context) {
		c.Set("logger", contextLog)
		panic("test panic with context logger")
	})

	router.GET("/no-panic", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	customHandlerCalled := false
	customConfig := Config{
		DisableStackTrace: true,
		DisableRecovery:   false,
		RecoveryHandler: func(c *gin.Context, err interface{}) {
			customHandlerCalled = true
			c.JSON(http.StatusServiceUnavailable, gin.H{"custom": "handler"})
		},
	}

	customRouter := gin.New()
	customRouter.Use(Handler(log, customConfig))
	customRouter.GET("/custom-handler", func(c *gin.Context) {
		panic("test panic with custom handler")
	})

	disabledRouter := gin.New()
	disabledRouter.Use(Handler(log, Config{DisableRecovery: true}))
	disabledRouter.GET("/disabled", func(c *gin.Context) {
		panic("this should crash")
	})

	tests := []struct {
		name           string
		router         *gin.Engine
		path           string
		expectPanic    bool
		expectStatus   int
		expectResponse string
	}{
		{
			name:           "Route with panic",
			router:         router,
			path:           "/panic",
			expectStatus:   http.StatusInternalServerError,
			expectResponse: `{"code":"INTERNAL_SERVER_ERROR","message":"Internal server error","status":500}`,
		},
		{
			name:           "With context logger",
			router:         router,
			path:           "/panic-with-context-logger",
			expectStatus:   http.StatusInternalServerError,
			expectResponse: `{"code":"INTERNAL_SERVER_ERROR","message":"Internal server error","status":500}`,
		},
		{
			name:           "No panic",
			router:         router,
			path:           "/no-panic",
			expectStatus:   http.StatusOK,
			expectResponse: `{"status":"success"}`,
		},
		{
			name:           "Custom handler",
			router:         customRouter,
			path:           "/custom-handler",
			expectStatus:   http.StatusServiceUnavailable,
			expectResponse: `{"custom":"handler"}`,
		},
		{
			name:        "Disabled recovery",
			router:      disabledRouter,
			path:        "/disabled",
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()

			if tt.expectPanic {
				assert.Panics(t, func() {
					tt.router.ServeHTTP(rec, req)
				})
				return
			}

			tt.router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectStatus, rec.Code)
			if tt.expectResponse != "" {
				assert.JSONEq(t, tt.expectResponse, rec.Body.String())
			}

			if tt.name == "Custom handler" {
				assert.True(t, customHandlerCalled)
			}
		})
	}

	// "/panic" and "/custom-handler" both log through log.
	assert.Equal(t, 2, log.errorCount)
	assert.Equal(t, 1, contextLog.errorCount)
}
