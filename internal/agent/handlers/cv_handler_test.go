package handlers

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/husainf4l/rolekits/internal/api/http"
	"github.com/husainf4l/rolekits/internal/auth"
	"github.com/husainf4l/rolekits/internal/broker"
	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/services"
	"github.com/husainf4l/rolekits/internal/store/sqlite"
	"github.com/husainf4l/rolekits/pkg/client"
)

const testToken = "agent-token"

// newTestBridge runs the real router over a sqlite store and returns a
// handler wired to it, so tool calls take the same path as production.
func newTestBridge(t *testing.T) (*CVHandler, *services.CVService, *model.User) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "bridge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := sqlite.NewWithDB(db)
	log := zerolog.Nop()
	svc := services.NewCVService(st, broker.New(4, log), log)
	users := services.NewUserService(st)

	owner, err := users.CreateUser(context.Background(), "ahmad", nil)
	require.NoError(t, err)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Authorizer: auth.NewStaticAuthorizer(map[string]*model.User{testToken: owner}),
		CVService:  svc,
		Users:      users,
		KeepAlive:  time.Minute,
		Log:        log,
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return NewCVHandler(client.New(ts.URL, testToken)), svc, owner
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", res.Content[0])
	return tc.Text
}

func createCV(t *testing.T, svc *services.CVService, owner *model.User) *model.CV {
	t.Helper()
	cv, err := svc.CreateCV(context.Background(), owner, model.CVPatch{
		FullName: model.Set("Ahmad"),
		Skills:   model.Set([]string{"Go"}),
	})
	require.NoError(t, err)
	return cv
}

func TestGetCVTool(t *testing.T) {
	h, svc, owner := newTestBridge(t)
	cv := createCV(t, svc, owner)

	res, err := h.handleGetCV(context.Background(), callRequest(map[string]any{"cv_id": cv.CVID}))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.False(t, res.IsError)
	assert.Contains(t, text, "Successfully fetched CV data")
	assert.Contains(t, text, "Ahmad")
}

func TestGetCVToolNotFound(t *testing.T) {
	h, _, _ := newTestBridge(t)

	res, err := h.handleGetCV(context.Background(), callRequest(map[string]any{"cv_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Error fetching CV")
}

func TestUpdatePersonalInfoTool(t *testing.T) {
	h, svc, owner := newTestBridge(t)
	cv := createCV(t, svc, owner)

	res, err := h.handleUpdatePersonalInfo(context.Background(), callRequest(map[string]any{
		"cv_id": cv.CVID,
		"email": "ahmad@example.com",
		"phone": "+962791234567",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	got, err := svc.GetCV(context.Background(), owner, cv.CVID)
	require.NoError(t, err)
	require.NotNil(t, got.Email)
	assert.Equal(t, "ahmad@example.com", *got.Email)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "+962791234567", *got.Phone)
	// Untouched fields survive the partial update.
	require.NotNil(t, got.FullName)
	assert.Equal(t, "Ahmad", *got.FullName)
}

func TestUpdatePersonalInfoToolNoFields(t *testing.T) {
	h, svc, owner := newTestBridge(t)
	cv := createCV(t, svc, owner)

	res, err := h.handleUpdatePersonalInfo(context.Background(), callRequest(map[string]any{"cv_id": cv.CVID}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no fields provided")
}

func TestAddWorkExperienceToolPreservesExisting(t *testing.T) {
	h, svc, owner := newTestBridge(t)
	cv := createCV(t, svc, owner)

	desc := "Built data pipelines"
	_, err := svc.UpdateCV(context.Background(), owner, cv.CVID, model.CVPatch{
		Experience: model.Set([]model.Experience{{
			Company:     "Widelink",
			Position:    "Engineer",
			StartDate:   "2020-01-01",
			Description: &desc,
		}}),
	})
	require.NoError(t, err)

	res, err := h.handleAddWorkExperience(context.Background(), callRequest(map[string]any{
		"cv_id":      cv.CVID,
		"company":    "Roxate",
		"position":   "Lead Engineer",
		"start_date": "2023-05-01",
		"end_date":   "present",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Lead Engineer at Roxate")

	got, err := svc.GetCV(context.Background(), owner, cv.CVID)
	require.NoError(t, err)
	require.Len(t, got.Experience, 2)
	assert.Equal(t, "Widelink", got.Experience[0].Company)
	assert.Equal(t, "Roxate", got.Experience[1].Company)
	require.NotNil(t, got.Experience[1].EndDate)
	assert.Equal(t, "present", *got.Experience[1].EndDate)
}

func TestAddSkillToolAppends(t *testing.T) {
	h, svc, owner := newTestBridge(t)
	cv := createCV(t, svc, owner)

	res, err := h.handleAddSkill(context.Background(), callRequest(map[string]any{
		"cv_id":      cv.CVID,
		"skill_name": "PostgreSQL",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	got, err := svc.GetCV(context.Background(), owner, cv.CVID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, got.Skills)
}

func TestToolsWithoutToken(t *testing.T) {
	h := NewCVHandler(nil)

	res, err := h.handleAddSkill(context.Background(), callRequest(map[string]any{
		"cv_id":      "c1",
		"skill_name": "Go",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.True(t, strings.Contains(resultText(t, res), "no bearer token"))
}
