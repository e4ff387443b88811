package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskquest-api/internal/constants"
	"github.com/yukikurage/taskquest-api/internal/database"
	"github.com/yukikurage/taskquest-api/internal/dto"
	"github.com/yukikurage/taskquest-api/internal/repository"
	"github.com/yukikurage/taskquest-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type handlerTestEnv struct {
	db     *gorm.DB
	store  *repository.Store
	svc    Services
	router *gin.Engine
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.AutoMigrate(db))

	store := repository.NewStore(db)
	membership := services.NewMembershipService(store)
	gate := services.NewAuthorizationGate(membership)
	progression := services.NewProgressionService(store, 3)

	svc := Services{
		Auth:        services.NewAuthService(store),
		User:        services.NewUserService(store),
		Workspace:   services.NewWorkspaceService(store, membership),
		Team:        services.NewTeamService(store, membership),
		Task:        services.NewTaskService(store, gate, progression, nil, nil, services.TaskConfig{AllowUnarchive: true, MaxRetries: 3}),
		Progression: progression,
		Message:     services.NewMessageService(store, membership),
	}

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, svc, nil)

	return handlerTestEnv{
		db:     db,
		store:  store,
		svc:    svc,
		router: r,
	}
}

// testClient carries the session cookie of one signed in user.
type testClient struct {
	env     handlerTestEnv
	cookies []*http.Cookie
	user    dto.UserDTO
}

func (env handlerTestEnv) anonymous() *testClient {
	return &testClient{env: env}
}

func (env handlerTestEnv) signup(t *testing.T, username string) *testClient {
	t.Helper()
	client := env.anonymous()
	w := client.do(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decode(t, w, &client.user)
	client.cookies = w.Result().Cookies()
	require.NotEmpty(t, client.cookies, "expected session cookie to be set")
	return client
}

func (c *testClient) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.env.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, w, &body)
	return body.Code
}
