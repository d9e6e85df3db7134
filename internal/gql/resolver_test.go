package gql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husainf4l/rolekits/internal/auth"
	"github.com/husainf4l/rolekits/internal/broker"
	"github.com/husainf4l/rolekits/internal/model"
	"github.com/husainf4l/rolekits/internal/services"
	"github.com/husainf4l/rolekits/internal/store/sqlite"
)

type gqlEnv struct {
	resolver *Resolver
	post     http.Handler
	svc      *services.CVService
	owner    *model.User
}

func newGQLEnv(t *testing.T, keepAlive time.Duration) *gqlEnv {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "gql.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := sqlite.NewWithDB(db)
	log := zerolog.Nop()
	svc := services.NewCVService(st, broker.New(16, log), log)
	users := services.NewUserService(st)

	owner, err := users.CreateUser(context.Background(), "owner", nil)
	require.NoError(t, err)

	authz := auth.NewStaticAuthorizer(map[string]*model.User{"owner-token": owner})
	resolver := NewResolver(authz, svc, keepAlive, log)
	post, _, err := NewHandlers(resolver)
	require.NoError(t, err)

	return &gqlEnv{resolver: resolver, post: post, svc: svc, owner: owner}
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *gqlEnv) query(t *testing.T, token, query string, vars map[string]any) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.post.ServeHTTP(rec, req)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSchemaParses(t *testing.T) {
	env := newGQLEnv(t, time.Minute)
	require.NotNil(t, env.post)
}

func TestMeQuery(t *testing.T) {
	env := newGQLEnv(t, time.Minute)

	resp := env.query(t, "owner-token", `{ me { id username } }`, nil)
	require.Empty(t, resp.Errors)

	var data struct {
		Me struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"me"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, env.owner.UserID, data.Me.ID)
	assert.Equal(t, "owner", data.Me.Username)
}

func TestMeQueryUnauthenticated(t *testing.T) {
	env := newGQLEnv(t, time.Minute)

	resp := env.query(t, "", `{ me { id } }`, nil)
	require.NotEmpty(t, resp.Errors)
}

func TestCreateAndUpdateCvMutations(t *testing.T) {
	env := newGQLEnv(t, time.Minute)

	resp := env.query(t, "owner-token", `
		mutation($input: CVInput!) {
			createCv(input: $input) { id fullName skills }
		}`, map[string]any{
		"input": map[string]any{
			"fullName": "Ahmad",
			"skills":   []string{"Go"},
		},
	})
	require.Empty(t, resp.Errors)

	var created struct {
		CreateCv struct {
			ID       string   `json:"id"`
			FullName *string  `json:"fullName"`
			Skills   []string `json:"skills"`
		} `json:"createCv"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	require.NotEmpty(t, created.CreateCv.ID)
	require.NotNil(t, created.CreateCv.FullName)
	assert.Equal(t, "Ahmad", *created.CreateCv.FullName)
	assert.Equal(t, []string{"Go"}, created.CreateCv.Skills)

	// Sparse update: only named fields change.
	resp = env.query(t, "owner-token", `
		mutation($cvId: ID!, $input: CVInput!) {
			updateCv(cvId: $cvId, input: $input) { fullName email }
		}`, map[string]any{
		"cvId":  created.CreateCv.ID,
		"input": map[string]any{"email": "ahmad@example.com"},
	})
	require.Empty(t, resp.Errors)

	var updated struct {
		UpdateCv struct {
			FullName *string `json:"fullName"`
			Email    *string `json:"email"`
		} `json:"updateCv"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	require.NotNil(t, updated.UpdateCv.Email)
	assert.Equal(t, "ahmad@example.com", *updated.UpdateCv.Email)
	require.NotNil(t, updated.UpdateCv.FullName)
	assert.Equal(t, "Ahmad", *updated.UpdateCv.FullName)
}

func TestMyCvsAndDelete(t *testing.T) {
	env := newGQLEnv(t, time.Minute)
	cv, err := env.svc.CreateCV(context.Background(), env.owner, model.CVPatch{
		FullName: model.Set("Ahmad"),
	})
	require.NoError(t, err)

	resp := env.query(t, "owner-token", `{ myCvs { id } }`, nil)
	require.Empty(t, resp.Errors)

	var list struct {
		MyCvs []struct {
			ID string `json:"id"`
		} `json:"myCvs"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list.MyCvs, 1)
	assert.Equal(t, cv.CVID, list.MyCvs[0].ID)

	resp = env.query(t, "owner-token", `
		mutation($cvId: ID!) { deleteCv(cvId: $cvId) }`,
		map[string]any{"cvId": cv.CVID})
	require.Empty(t, resp.Errors)

	resp = env.query(t, "owner-token", `{ myCvs { id } }`, nil)
	require.Empty(t, resp.Errors)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Empty(t, list.MyCvs)
}

func TestCvUpdatesSubscription(t *testing.T) {
	env := newGQLEnv(t, time.Minute)
	cv, err := env.svc.CreateCV(context.Background(), env.owner, model.CVPatch{
		FullName: model.Set("Ahmad"),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(WithToken(context.Background(), "owner-token"))
	defer cancel()

	ch, err := env.resolver.CvUpdates(ctx, struct{ CvID graphql.ID }{CvID: graphql.ID(cv.CVID)})
	require.NoError(t, err)

	// Initial snapshot arrives before any mutation.
	first := <-ch
	require.NotNil(t, first)
	require.NotNil(t, first.FullName)
	assert.Equal(t, "Ahmad", *first.FullName)

	_, err = env.svc.UpdateCV(context.Background(), env.owner, cv.CVID, model.CVPatch{
		Summary: model.Set("Seasoned engineer"),
	})
	require.NoError(t, err)

	second := <-ch
	require.NotNil(t, second)
	require.NotNil(t, second.Summary)
	assert.Equal(t, "Seasoned engineer", *second.Summary)

	// Cancellation releases the stream.
	cancel()
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription channel not closed after cancel")
	}
}

func TestCvUpdatesSubscriptionRejectsForeignCV(t *testing.T) {
	env := newGQLEnv(t, time.Minute)
	cv, err := env.svc.CreateCV(context.Background(), env.owner, model.CVPatch{})
	require.NoError(t, err)

	_, err = env.resolver.CvUpdates(WithToken(context.Background(), "bogus"),
		struct{ CvID graphql.ID }{CvID: graphql.ID(cv.CVID)})
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}
