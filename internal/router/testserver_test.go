package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/pkg/config"
	"github.com/PepegaBoss/foodgram-project-react/pkg/storage"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const pixel = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type testServer struct {
	t        *testing.T
	e        *echo.Echo
	db       *gorm.DB
	mediaDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	mediaDir := t.TempDir()
	images, err := storage.NewFileStore(mediaDir)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:       "test",
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
		PageSize:  10,
		Media:     config.Media{Backend: "fs", Dir: mediaDir, BaseURL: "/media/"},
		Redis:     config.Redis{CacheTTL: time.Minute},
	}
	e, err := New(Dependencies{Config: cfg, Postgres: db, Images: images})
	require.NoError(t, err)

	return &testServer{t: t, e: e, db: db, mediaDir: mediaDir}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Token "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// expect asserts the status and decodes the body into out when non-nil.
func (s *testServer) expect(rec *httptest.ResponseRecorder, status int, out any) {
	s.t.Helper()
	require.Equal(s.t, status, rec.Code, "body: %s", rec.Body.String())
	if out != nil {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out))
	}
}

type account struct {
	ID    uint
	Token string
}

func (s *testServer) signUp(username string) account {
	s.t.Helper()
	var user models.UserView
	s.expect(s.do(http.MethodPost, "/api/users", "", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": strings.ToUpper(username[:1]) + username[1:],
		"last_name":  "Cook",
		"password":   "s3cret-pass",
	}), http.StatusCreated, &user)

	var login struct {
		AuthToken string `json:"auth_token"`
	}
	s.expect(s.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "s3cret-pass",
	}), http.StatusOK, &login)
	require.NotEmpty(s.t, login.AuthToken)
	return account{ID: user.ID, Token: login.AuthToken}
}

type catalog struct {
	Tags        []models.Tag
	Ingredients []models.Ingredient
}

func (s *testServer) seedCatalog() catalog {
	s.t.Helper()
	c := catalog{
		Tags: []models.Tag{
			{Name: "Lunch", Color: "#00FF00", Slug: "lunch"},
			{Name: "Breakfast", Color: "#FF0000", Slug: "breakfast"},
			{Name: "Dinner", Color: "#0000FF", Slug: "dinner"},
		},
		Ingredients: []models.Ingredient{
			{Name: "flour", MeasurementUnit: "g"},
			{Name: "egg", MeasurementUnit: "pcs"},
			{Name: "milk", MeasurementUnit: "ml"},
		},
	}
	require.NoError(s.t, s.db.Create(&c.Tags).Error)
	require.NoError(s.t, s.db.Create(&c.Ingredients).Error)
	return c
}

type line struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

func recipeBody(name string, tags []uint, lines ...line) map[string]any {
	return map[string]any{
		"name":         name,
		"text":         name + " instructions",
		"cooking_time": 20,
		"image":        pixel,
		"tags":         tags,
		"ingredients":  lines,
	}
}

func (s *testServer) createRecipe(token string, body map[string]any) models.RecipeView {
	s.t.Helper()
	var view models.RecipeView
	s.expect(s.do(http.MethodPost, "/api/recipes", token, body), http.StatusCreated, &view)
	return view
}

// mediaFile maps an image URL back to its file in the media directory.
func (s *testServer) mediaFile(imageURL string) string {
	return filepath.Join(s.mediaDir, filepath.FromSlash(strings.TrimPrefix(imageURL, "/media/")))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *testServer) mediaFileCount() int {
	s.t.Helper()
	n := 0
	err := filepath.Walk(s.mediaDir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(s.t, err)
	return n
}

func urlf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
