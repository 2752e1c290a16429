package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viksitkanpur/portal/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// unreachableDB opens a GORM handle against a dead address. Opening succeeds
// because pinging is disabled; every query then fails, which is what the
// failure-path tests need.
func unreachableDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=nobody dbname=nowhere sslmode=disable"), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)
	return db
}

func userContext(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", int64(7))
		c.Set("userName", "Test User")
		c.Set("userEmail", "t@x.com")
		c.Set("userRole", role)
	}
}

func TestStatusChangeAllowed(t *testing.T) {
	assert.True(t, statusChangeAllowed(model.StatusNotCompleted, model.StatusInProgress, false))
	assert.True(t, statusChangeAllowed(model.StatusInProgress, model.StatusCompleted, false))
	assert.False(t, statusChangeAllowed(model.StatusCompleted, model.StatusInProgress, false))
	assert.False(t, statusChangeAllowed(model.StatusInProgress, model.StatusNotCompleted, false))

	// assigning a worker reopens even a resolved complaint
	assert.True(t, statusChangeAllowed(model.StatusCompleted, model.StatusInProgress, true))
	assert.True(t, statusChangeAllowed(model.StatusNotCompleted, model.StatusInProgress, true))
	assert.False(t, statusChangeAllowed(model.StatusCompleted, model.StatusNotCompleted, true),
		"assignment only reopens to in-progress")
}

func TestListDatabaseFailureReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewProblemHandler(unreachableDB(t), nil, nil)

	r := gin.New()
	r.GET("/api/problems", userContext(model.RoleDepartmentHead), h.List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/problems", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestSubmitRejectsOversizedImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewProblemHandler(unreachableDB(t), nil, nil)

	r := gin.New()
	r.POST("/api/problems", userContext(model.RoleCitizen), h.Submit)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("payload", `{"others_text":"big photo","location":"x"}`))
	part, err := writer.CreateFormFile("image", "huge.jpg")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), maxImageBytes+1))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/problems", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
