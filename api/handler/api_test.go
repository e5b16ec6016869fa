package handler_test

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/volunteer/api/handler"
	"github.com/fastygo/volunteer/domain"
	"github.com/fastygo/volunteer/internal/infrastructure/monitor"
	"github.com/fastygo/volunteer/internal/middleware"
	"github.com/fastygo/volunteer/internal/router"
	"github.com/fastygo/volunteer/pkg/httpcontext"
	"github.com/fastygo/volunteer/repository/memory"
	registrationUC "github.com/fastygo/volunteer/usecase/registration"
	searchUC "github.com/fastygo/volunteer/usecase/search"
	taskUC "github.com/fastygo/volunteer/usecase/task"
)

type caller struct {
	userID string
	role   domain.Role
	orgID  string
}

var (
	coordinator = &caller{userID: "coord-1", role: domain.RoleOrganization, orgID: "org-1"}
	outsider    = &caller{userID: "coord-9", role: domain.RoleOrganization, orgID: "org-9"}
	alice       = &caller{userID: "alice", role: domain.RoleVolunteer}
)

type response struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Meta   json.RawMessage `json:"meta"`
}

func newServer(t *testing.T) fasthttp.RequestHandler {
	t.Helper()
	tasks := memory.NewTaskStore()
	regs := memory.NewRegistrationStore()
	adapter := httpcontext.NewAdapter(time.Second)

	lifecycle := taskUC.New(tasks, regs, nil)
	workflow := registrationUC.New(tasks, regs, lifecycle, nil)
	search := searchUC.New(tasks, nil)

	r := router.New(router.Handlers{
		Task:         handler.NewTaskHandler(lifecycle, adapter, nil),
		Registration: handler.NewRegistrationHandler(workflow, lifecycle, adapter, nil),
		Search:       handler.NewSearchHandler(search, adapter, nil),
		Health:       handler.NewHealthHandler(monitor.New(nil, nil, nil, time.Minute, nil), adapter, nil),
	}, middleware.TrustedIdentity(nil))
	return r.Handler
}

func do(t *testing.T, h fasthttp.RequestHandler, who *caller, method, uri, body string) (int, response) {
	t.Helper()
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if who != nil {
		ctx.Request.Header.Set(httpcontext.HeaderUserID, who.userID)
		ctx.Request.Header.Set(httpcontext.HeaderUserRole, string(who.role))
		ctx.Request.Header.Set(httpcontext.HeaderOrganizationID, who.orgID)
	}
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}
	h(ctx)

	var out response
	if raw := ctx.Response.Body(); len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return ctx.Response.StatusCode(), out
}

func decodeID(t *testing.T, r response) string {
	t.Helper()
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &v))
	require.NotEmpty(t, v.ID)
	return v.ID
}

func taskBody(capacity int) string {
	start := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(52 * time.Hour).UTC().Format(time.RFC3339)
	return `{"title":"Soup kitchen","start_date":"` + start + `","end_date":"` + end +
		`","max_volunteers":` + strconv.Itoa(capacity) + `,"category":"community","location":{"city":"Lyon","country":"FR","latitude":45.76,"longitude":4.83}}`
}

func TestRegistrationFlowOverHTTP(t *testing.T) {
	h := newServer(t)

	status, _ := do(t, h, nil, fasthttp.MethodPost, "/api/v1/tasks", taskBody(1))
	assert.Equal(t, fasthttp.StatusUnauthorized, status)

	status, _ = do(t, h, alice, fasthttp.MethodPost, "/api/v1/tasks", taskBody(1))
	assert.Equal(t, fasthttp.StatusForbidden, status, "volunteers cannot create tasks")

	status, created := do(t, h, coordinator, fasthttp.MethodPost, "/api/v1/tasks", taskBody(1))
	require.Equal(t, fasthttp.StatusCreated, status)
	taskID := decodeID(t, created)

	status, resp := do(t, h, alice, fasthttp.MethodPost, "/api/v1/tasks/"+taskID+"/registrations", `{"message":"hi"}`)
	assert.Equal(t, fasthttp.StatusUnprocessableEntity, status, "drafts do not accept applications")
	assert.Equal(t, string(domain.ErrCodeApplicationClosed), resp.Code)

	status, _ = do(t, h, coordinator, fasthttp.MethodPost, "/api/v1/tasks/"+taskID+"/publish", "")
	require.Equal(t, fasthttp.StatusOK, status)

	status, resp = do(t, h, alice, fasthttp.MethodPost, "/api/v1/tasks/"+taskID+"/registrations", `{"message":"hi"}`)
	require.Equal(t, fasthttp.StatusCreated, status)
	regID := decodeID(t, resp)

	status, resp = do(t, h, alice, fasthttp.MethodPost, "/api/v1/tasks/"+taskID+"/registrations", "")
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, string(domain.ErrCodeDuplicateRegistration), resp.Code)

	bob := &caller{userID: "bob", role: domain.RoleVolunteer}
	status, resp = do(t, h, bob, fasthttp.MethodPost, "/api/v1/tasks/"+taskID+"/registrations", "")
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, string(domain.ErrCodeTaskFull), resp.Code)

	status, resp = do(t, h, coordinator, fasthttp.MethodGet, "/api/v1/organizations/org-1/registrations/pending", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var pending []domain.TaskRegistration
	require.NoError(t, json.Unmarshal(resp.Data, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, regID, pending[0].ID)

	status, _ = do(t, h, outsider, fasthttp.MethodPost, "/api/v1/registrations/"+regID+"/approve", "")
	assert.Equal(t, fasthttp.StatusForbidden, status)

	status, resp = do(t, h, coordinator, fasthttp.MethodPost, "/api/v1/registrations/"+regID+"/approve", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var approved domain.TaskRegistration
	require.NoError(t, json.Unmarshal(resp.Data, &approved))
	assert.Equal(t, domain.RegistrationApproved, approved.Status)

	status, _ = do(t, h, alice, fasthttp.MethodGet, "/api/v1/registrations/"+regID, "")
	assert.Equal(t, fasthttp.StatusOK, status, "owners can read their registration")
	status, _ = do(t, h, bob, fasthttp.MethodGet, "/api/v1/registrations/"+regID, "")
	assert.Equal(t, fasthttp.StatusForbidden, status)

	status, _ = do(t, h, alice, fasthttp.MethodDelete, "/api/v1/tasks/"+taskID+"/registrations", "")
	require.Equal(t, fasthttp.StatusOK, status)

	status, resp = do(t, h, nil, fasthttp.MethodGet, "/api/v1/tasks/"+taskID, "")
	require.Equal(t, fasthttp.StatusOK, status)
	var task domain.VolunteerTask
	require.NoError(t, json.Unmarshal(resp.Data, &task))
	assert.Equal(t, 0, task.CurrentVolunteers)
	assert.Equal(t, domain.TaskStatusActive, task.Status)
}

func TestDiscoveryOverHTTP(t *testing.T) {
	h := newServer(t)

	status, created := do(t, h, coordinator, fasthttp.MethodPost, "/api/v1/tasks", taskBody(3))
	require.Equal(t, fasthttp.StatusCreated, status)
	taskID := decodeID(t, created)
	status, _ = do(t, h, coordinator, fasthttp.MethodPost, "/api/v1/tasks/"+taskID+"/publish", "")
	require.Equal(t, fasthttp.StatusOK, status)

	status, resp := do(t, h, nil, fasthttp.MethodGet, "/api/v1/tasks/nearby?lat=45.75&lng=4.85&radius_km=5", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var nearby []domain.VolunteerTask
	require.NoError(t, json.Unmarshal(resp.Data, &nearby))
	require.Len(t, nearby, 1)
	assert.Equal(t, taskID, nearby[0].ID)

	status, _ = do(t, h, nil, fasthttp.MethodGet, "/api/v1/tasks/nearby?lat=95&lng=4.85", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, resp = do(t, h, nil, fasthttp.MethodGet, "/api/v1/tasks?q=soup", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var meta struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Meta, &meta))
	assert.Equal(t, 1, meta.Total)

	status, _ = do(t, h, nil, fasthttp.MethodGet, "/api/v1/categories/unknown/tasks", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, _ = do(t, h, nil, fasthttp.MethodGet, "/api/v1/tasks/does-not-exist", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)

	status, _ = do(t, h, coordinator, fasthttp.MethodPost, "/api/v1/tasks", `{"title":`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)

	status, _ = do(t, h, nil, fasthttp.MethodGet, "/health", "")
	assert.Equal(t, fasthttp.StatusOK, status)
}
