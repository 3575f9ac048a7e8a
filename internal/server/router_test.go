package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/portfolio-site/internal/auth"
	"github.com/ayush/portfolio-site/internal/projects"
	"github.com/ayush/portfolio-site/internal/skills"
	"github.com/ayush/portfolio-site/internal/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mem := store.NewMemoryStore()
	authSvc := auth.NewService(mem, auth.NewSigner([]byte("router-test"), time.Hour), auth.NewMemoryRevocations(), auth.Options{
		AllowAdminRegistration: true,
		BcryptCost:             bcrypt.MinCost,
	})
	return NewRouter(Deps{
		Auth:        authSvc,
		Skills:      skills.NewService(mem),
		Projects:    projects.NewService(mem, nil),
		Logger:      zerolog.Nop(),
		CORSOrigins: []string{"http://localhost:3000"},
	})
}

type response struct {
	Code int
	Body []byte
}

func (r response) JSON(t *testing.T) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(r.Body, &out), string(r.Body))
	return out
}

func (r response) List(t *testing.T) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(r.Body, &out), string(r.Body))
	return out
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) response {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return response{Code: rec.Code, Body: rec.Body.Bytes()}
}

func register(t *testing.T, h http.Handler, username, password, role string) string {
	t.Helper()
	res := do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "password": password, "role": role,
	})
	require.Equal(t, http.StatusCreated, res.Code, string(res.Body))
	return res.JSON(t)["token"].(string)
}

func createSkill(t *testing.T, h http.Handler, token, name string) string {
	t.Helper()
	res := do(t, h, http.MethodPost, "/api/skills", token, map[string]string{
		"name": name, "level": "Advanced", "type": "backend",
	})
	require.Equal(t, http.StatusCreated, res.Code, string(res.Body))
	return res.JSON(t)["id"].(string)
}

func projectBody(skillIDs ...string) map[string]interface{} {
	return map[string]interface{}{
		"title":        "Portfolio",
		"companyName":  "Acme",
		"description":  "Personal site",
		"technologies": skillIDs,
		"startDate":    "2023-01-01",
		"endDate":      "2023-06-30",
	}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	res := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.JSON(t)["status"])
}

func TestAuthFlow(t *testing.T) {
	h := newTestRouter(t)

	res := do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret1", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, res.Code)
	body := res.JSON(t)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "admin", user["role"])
	assert.NotContains(t, string(res.Body), "password")

	res = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Invalid username or password", res.JSON(t)["message"])

	res = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "nobody", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, "Invalid username or password", res.JSON(t)["message"])

	res = do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusOK, res.Code)
	token := res.JSON(t)["token"].(string)

	res = do(t, h, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = do(t, h, http.MethodGet, "/api/auth/validate", token, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.JSON(t)["valid"])

	res = do(t, h, http.MethodGet, "/api/auth/validate", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Equal(t, false, res.JSON(t)["valid"])

	res = do(t, h, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, res.Code)

	res = do(t, h, http.MethodGet, "/api/auth/validate", token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRegister_Errors(t *testing.T) {
	h := newTestRouter(t)
	register(t, h, "alice", "secret1", "")

	res := do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "User already exists", res.JSON(t)["message"])

	res = do(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(t, h, http.MethodPost, "/api/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRoleGating(t *testing.T) {
	h := newTestRouter(t)
	admin := register(t, h, "alice", "secret1", "admin")
	user := register(t, h, "bob", "secret2", "user")
	skillID := createSkill(t, h, admin, "Go")

	res := do(t, h, http.MethodGet, "/api/skills", user, nil)
	assert.Equal(t, http.StatusOK, res.Code)
	res = do(t, h, http.MethodGet, "/api/skills/"+skillID, user, nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = do(t, h, http.MethodPost, "/api/skills", user, map[string]string{"name": "Rust", "level": "Beginner", "type": "systems"})
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "Forbidden - Admin access required", res.JSON(t)["message"])

	res = do(t, h, http.MethodDelete, "/api/skills/"+skillID, user, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = do(t, h, http.MethodGet, "/api/admin/dashboard", user, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = do(t, h, http.MethodGet, "/api/admin/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "alice", res.JSON(t)["user"].(map[string]interface{})["username"])

	res = do(t, h, http.MethodGet, "/api/users", admin, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.List(t), 2)
	assert.NotContains(t, string(res.Body), "password")
}

func TestSkillLifecycle(t *testing.T) {
	h := newTestRouter(t)
	admin := register(t, h, "alice", "secret1", "admin")

	id := createSkill(t, h, admin, "Go")

	res := do(t, h, http.MethodPost, "/api/skills", admin, map[string]interface{}{"name": "Py", "level": 3, "type": "x"})
	assert.Equal(t, http.StatusBadRequest, res.Code, "numeric levels are rejected")

	res = do(t, h, http.MethodPost, "/api/skills", admin, map[string]string{"name": "Go", "level": "Expert", "type": "x"})
	assert.Equal(t, http.StatusBadRequest, res.Code, "duplicate name")

	res = do(t, h, http.MethodPut, "/api/skills/"+id, admin, map[string]string{"name": "Go", "level": "Expert", "type": "backend"})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Expert", res.JSON(t)["level"])

	res = do(t, h, http.MethodPut, "/api/skills/nope", admin, map[string]string{"name": "Go", "level": "Expert", "type": "backend"})
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = do(t, h, http.MethodDelete, "/api/skills/"+id, admin, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotEmpty(t, res.JSON(t)["message"])

	res = do(t, h, http.MethodGet, "/api/skills", admin, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, res.List(t))

	res = do(t, h, http.MethodDelete, "/api/skills/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestProjectLifecycle(t *testing.T) {
	h := newTestRouter(t)
	admin := register(t, h, "alice", "secret1", "admin")
	user := register(t, h, "bob", "secret2", "")
	goID := createSkill(t, h, admin, "Go")

	res := do(t, h, http.MethodPost, "/api/projects", admin, projectBody(goID))
	require.Equal(t, http.StatusCreated, res.Code, string(res.Body))
	p := res.JSON(t)
	id := p["id"].(string)
	assert.EqualValues(t, 0, p["views"])
	assert.Equal(t, "2023-06-30T00:00:00Z", p["endDate"])
	techs := p["technologies"].([]interface{})
	require.Len(t, techs, 1)
	assert.Equal(t, "Go", techs[0].(map[string]interface{})["name"])

	res = do(t, h, http.MethodGet, "/api/projects", user, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.List(t), 1)

	res = do(t, h, http.MethodGet, "/api/projects/"+id, user, nil)
	assert.Equal(t, http.StatusOK, res.Code)
	res = do(t, h, http.MethodGet, "/api/projects/not-an-id", user, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	// skill in use
	res = do(t, h, http.MethodDelete, "/api/skills/"+goID, admin, nil)
	assert.Equal(t, http.StatusConflict, res.Code)

	// featured set is idempotent
	for i := 0; i < 2; i++ {
		res = do(t, h, http.MethodPatch, "/api/projects/"+id+"/toggle-featured", admin, map[string]bool{"isFeatured": true})
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, true, res.JSON(t)["isFeatured"])
	}
	res = do(t, h, http.MethodPatch, "/api/projects/"+id+"/toggle-featured", admin, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, false, res.JSON(t)["isFeatured"])

	// views are public
	res = do(t, h, http.MethodPost, "/api/projects/"+id+"/views", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 1, res.JSON(t)["views"])

	// ongoing project drops the end date
	body := projectBody(goID)
	body["isCurrent"] = true
	res = do(t, h, http.MethodPut, "/api/projects/"+id, admin, body)
	require.Equal(t, http.StatusOK, res.Code)
	updated := res.JSON(t)
	assert.Nil(t, updated["endDate"])
	assert.EqualValues(t, 1, updated["views"])

	res = do(t, h, http.MethodDelete, "/api/projects/"+id, user, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)
	res = do(t, h, http.MethodDelete, "/api/projects/"+id, admin, nil)
	require.Equal(t, http.StatusOK, res.Code)

	res = do(t, h, http.MethodDelete, "/api/skills/"+goID, admin, nil)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestProject_TemporalRules(t *testing.T) {
	h := newTestRouter(t)
	admin := register(t, h, "alice", "secret1", "admin")
	goID := createSkill(t, h, admin, "Go")

	body := projectBody(goID)
	body["endDate"] = "2022-12-31"
	res := do(t, h, http.MethodPost, "/api/projects", admin, body)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	body = projectBody(goID)
	delete(body, "endDate")
	res = do(t, h, http.MethodPost, "/api/projects", admin, body)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	body["isCurrent"] = true
	res = do(t, h, http.MethodPost, "/api/projects", admin, body)
	assert.Equal(t, http.StatusCreated, res.Code)

	res = do(t, h, http.MethodPost, "/api/projects", admin, projectBody())
	assert.Equal(t, http.StatusBadRequest, res.Code, "technologies required")
}

func TestProject_InvalidUpdateKeepsStoredProject(t *testing.T) {
	h := newTestRouter(t)
	admin := register(t, h, "alice", "secret1", "admin")
	goID := createSkill(t, h, admin, "Go")
	res := do(t, h, http.MethodPost, "/api/projects", admin, projectBody(goID))
	require.Equal(t, http.StatusCreated, res.Code)
	id := res.JSON(t)["id"].(string)

	backwards := projectBody(goID)
	backwards["title"] = "Changed"
	backwards["endDate"] = "2022-12-31"

	openEnded := projectBody(goID)
	openEnded["title"] = "Changed"
	openEnded["isCurrent"] = false
	delete(openEnded, "endDate")

	for name, body := range map[string]map[string]interface{}{
		"end before start":      backwards,
		"completed without end": openEnded,
	} {
		t.Run(name, func(t *testing.T) {
			res := do(t, h, http.MethodPut, "/api/projects/"+id, admin, body)
			assert.Equal(t, http.StatusBadRequest, res.Code)

			res = do(t, h, http.MethodGet, "/api/projects/"+id, admin, nil)
			require.Equal(t, http.StatusOK, res.Code)
			p := res.JSON(t)
			assert.Equal(t, "Portfolio", p["title"])
			assert.Equal(t, "2023-06-30T00:00:00Z", p["endDate"])
		})
	}
}

func TestProjectImage_WithoutStorage(t *testing.T) {
	h := newTestRouter(t)
	admin := register(t, h, "alice", "secret1", "admin")
	goID := createSkill(t, h, admin, "Go")
	res := do(t, h, http.MethodPost, "/api/projects", admin, projectBody(goID))
	require.Equal(t, http.StatusCreated, res.Code)
	id := res.JSON(t)["id"].(string)

	res = do(t, h, http.MethodGet, "/api/projects/"+id+"/image", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}
