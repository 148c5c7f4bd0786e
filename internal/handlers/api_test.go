package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/grouptask-dev/grouptask/db"
	"github.com/grouptask-dev/grouptask/internal/auth"
	"github.com/grouptask-dev/grouptask/internal/router"
	"github.com/grouptask-dev/grouptask/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "grouptask.db")), &gorm.Config{})
	require.NoError(t, err)

	db.DB = gdb
	require.NoError(t, db.MigrateDatabase())

	return router.NewRouter()
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

type authResponse struct {
	Token string             `json:"token"`
	User  types.UserResponse `json:"user"`
}

func signupGroup(t *testing.T, r http.Handler, username string) authResponse {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username":         username,
		"password":         "p1",
		"confirm_password": "p1",
		"manager_password": "mgr1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp authResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)

	return resp
}

func loginGroup(t *testing.T, r http.Handler, username, password string) authResponse {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp authResponse
	decode(t, w, &resp)

	return resp
}

func TestHealthCheck(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupValidation(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "acme",
		"password": "p1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	decode(t, w, &resp)
	assert.Equal(t, "All fields are required.", resp["error"])

	signupGroup(t, r, "acme")

	w = doJSON(t, r, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username":         "acme",
		"password":         "p2",
		"confirm_password": "p2",
		"manager_password": "mgr2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	r := setupAPI(t)

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, r, http.MethodGet, "/api/tasks", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, r, http.MethodPost, "/api/tasks", "", gin.H{"name": "X"}).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(t, r, http.MethodGet, "/api/tasks", "not-a-token", nil).Code)
}

func TestSignupGrantsManagerSession(t *testing.T) {
	r := setupAPI(t)

	resp := signupGroup(t, r, "acme")
	assert.Equal(t, types.RoleManager, resp.User.Role)

	// Fresh signup can create tasks right away
	w := doJSON(t, r, http.MethodPost, "/api/tasks", resp.Token, gin.H{
		"name":        "X",
		"date":        "2024-01-01",
		"assigned_to": "bob",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var task types.TaskResponse
	decode(t, w, &task)
	assert.Equal(t, types.StatusNotStarted, task.Status)
	assert.Equal(t, resp.User.ID, task.OwnerID)
}

func TestLoginDemotesToAssignee(t *testing.T) {
	r := setupAPI(t)

	signupGroup(t, r, "acme")
	login := loginGroup(t, r, "acme", "p1")

	assert.Equal(t, types.RoleAssignee, login.User.Role)

	w := doJSON(t, r, http.MethodPost, "/api/tasks", login.Token, gin.H{"name": "X"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		User types.UserResponse `json:"user"`
	}
	decode(t, w, &me)
	assert.Equal(t, types.RoleAssignee, me.User.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := setupAPI(t)

	signupGroup(t, r, "acme")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "acme",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]string
	decode(t, w, &resp)
	assert.Equal(t, "Invalid username or password.", resp["error"])
}

func TestRoleElevationFlow(t *testing.T) {
	r := setupAPI(t)

	signupGroup(t, r, "acme")
	login := loginGroup(t, r, "acme", "p1")

	w := doJSON(t, r, http.MethodPost, "/api/role", login.Token, gin.H{"role": "Manager"})
	require.Equal(t, http.StatusOK, w.Code)

	var change struct {
		Role                 string `json:"role"`
		ConfirmationRequired bool   `json:"confirmation_required"`
	}
	decode(t, w, &change)
	require.True(t, change.ConfirmationRequired)
	assert.Equal(t, types.RoleAssignee, change.Role)

	// Wrong manager password keeps the confirmation open
	w = doJSON(t, r, http.MethodPost, "/api/role/verify", login.Token, gin.H{"password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var failed map[string]string
	decode(t, w, &failed)
	assert.Equal(t, "Invalid password for Manager role.", failed["error"])

	w = doJSON(t, r, http.MethodPost, "/api/role/verify", login.Token, gin.H{"password": "mgr1"})
	require.Equal(t, http.StatusOK, w.Code)

	// Now a Manager: creating tasks works
	w = doJSON(t, r, http.MethodPost, "/api/tasks", login.Token, gin.H{"name": "X"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRoleElevationCancel(t *testing.T) {
	r := setupAPI(t)

	signupGroup(t, r, "acme")
	login := loginGroup(t, r, "acme", "p1")

	w := doJSON(t, r, http.MethodPost, "/api/role", login.Token, gin.H{"role": "Manager"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, "/api/role/pending", login.Token, nil).Code)

	// Nothing pending to verify anymore
	w = doJSON(t, r, http.MethodPost, "/api/role/verify", login.Token, gin.H{"password": "mgr1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskUpdatePolicyByRole(t *testing.T) {
	r := setupAPI(t)

	manager := signupGroup(t, r, "acme")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", manager.Token, gin.H{
		"name":        "X",
		"date":        "2024-01-01",
		"notes":       "n",
		"assigned_to": "bob",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var task types.TaskResponse
	decode(t, w, &task)

	// Assignee session: only status goes through
	login := loginGroup(t, r, "acme", "p1")

	w = doJSON(t, r, http.MethodPatch, "/api/tasks/"+itoa(task.ID), login.Token, gin.H{
		"name":   "hijacked",
		"status": types.StatusInProgress,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated types.TaskResponse
	decode(t, w, &updated)
	assert.Equal(t, "X", updated.Name)
	assert.Equal(t, types.StatusInProgress, updated.Status)

	// Assignee cannot delete
	assert.Equal(t, http.StatusForbidden, doJSON(t, r, http.MethodDelete, "/api/tasks/"+itoa(task.ID), login.Token, nil).Code)

	// Unknown task
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodPatch, "/api/tasks/9999", login.Token, gin.H{"status": types.StatusCompleted}).Code)
}

func TestTaskListingScopedToGroup(t *testing.T) {
	r := setupAPI(t)

	acme := signupGroup(t, r, "acme")
	globex := signupGroup(t, r, "globex")

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/tasks", acme.Token, gin.H{"name": "Ours"}).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/tasks", globex.Token, gin.H{"name": "Theirs"}).Code)

	w := doJSON(t, r, http.MethodGet, "/api/tasks", acme.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []types.TaskResponse
	decode(t, w, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ours", tasks[0].Name)
}

func TestEditDraftEndpoints(t *testing.T) {
	r := setupAPI(t)

	manager := signupGroup(t, r, "acme")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", manager.Token, gin.H{"name": "X"})
	require.Equal(t, http.StatusCreated, w.Code)

	var task types.TaskResponse
	decode(t, w, &task)

	// Open, then cancel: no change
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/tasks/"+itoa(task.ID)+"/edit", manager.Token, nil).Code)
	require.Equal(t, http.StatusNoContent, doJSON(t, r, http.MethodDelete, "/api/tasks/edit", manager.Token, nil).Code)

	// Submitting without an open draft
	w = doJSON(t, r, http.MethodPut, "/api/tasks/edit", manager.Token, gin.H{"status": types.StatusCompleted})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Open and submit
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/tasks/"+itoa(task.ID)+"/edit", manager.Token, nil).Code)

	w = doJSON(t, r, http.MethodPut, "/api/tasks/edit", manager.Token, gin.H{
		"name":   "Y",
		"status": types.StatusCompleted,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated types.TaskResponse
	decode(t, w, &updated)
	assert.Equal(t, "Y", updated.Name)
	assert.Equal(t, types.StatusCompleted, updated.Status)
}

func TestTaskActivityEndpoint(t *testing.T) {
	r := setupAPI(t)

	manager := signupGroup(t, r, "acme")

	w := doJSON(t, r, http.MethodPost, "/api/tasks", manager.Token, gin.H{"name": "X"})
	require.Equal(t, http.StatusCreated, w.Code)

	var task types.TaskResponse
	decode(t, w, &task)

	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPatch, "/api/tasks/"+itoa(task.ID), manager.Token, gin.H{
		"status": types.StatusInProgress,
	}).Code)

	w = doJSON(t, r, http.MethodGet, "/api/tasks/"+itoa(task.ID)+"/activity", manager.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var activities []types.TaskActivityResponse
	decode(t, w, &activities)
	require.Len(t, activities, 2)
	assert.Equal(t, "updated", activities[0].Action)
	assert.Equal(t, "created", activities[1].Action)
}

func TestLogout(t *testing.T) {
	r := setupAPI(t)

	resp := signupGroup(t, r, "acme")

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Logging out twice is fine
	w = doJSON(t, r, http.MethodPost, "/api/auth/logout", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
