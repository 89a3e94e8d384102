package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/pet-poison-map/internal/api"
	"github.com/povarna/pet-poison-map/internal/api/middleware"
	"github.com/povarna/pet-poison-map/internal/auth"
	"github.com/povarna/pet-poison-map/internal/comments"
	"github.com/povarna/pet-poison-map/internal/config"
	"github.com/povarna/pet-poison-map/internal/executor"
	"github.com/povarna/pet-poison-map/internal/incidents"
	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/storage/memory"
	"github.com/povarna/pet-poison-map/internal/textsafety"
	"github.com/rs/zerolog"
)

type testAPI struct {
	container *restful.Container
	token     string
}

func setupTestAPI(t *testing.T) testAPI {
	t.Helper()

	logger := zerolog.Nop()

	engine := textsafety.NewValidator(textsafety.NewContactAdDetector(), textsafety.NewThreatDetector())
	exec := executor.NewExecutor(engine, config.DefaultPoliciesConfig(), nil, &logger)

	incidentSvc := incidents.NewService(memory.NewIncidentStore(), exec, true, &logger)
	commentSvc := comments.NewService(memory.NewCommentStore(), incidentSvc, exec, &logger)

	tokens := auth.NewTokenIssuer("test-secret", 7)
	authSvc := auth.NewService(auth.NewDouyinClient(auth.DouyinConfig{}), tokens, &logger)

	handler := api.NewHandler(incidentSvc, commentSvc, exec, authSvc, &logger)

	container := restful.NewContainer()
	container.Filter(middleware.RecoverPanic)
	container.Filter(middleware.MaxBodySize(64 << 10))
	api.RegisterRoutes(container, handler, tokens)
	api.RegisterOpenAPI(container)

	token, err := tokens.CreateToken(models.User{Sub: "douyin:open-1", Provider: auth.ProviderDouyin, Nickname: "小明"})
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	return testAPI{container: container, token: token}
}

func (a testAPI) do(t *testing.T, method, path string, body any, authorized bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", restful.MIME_JSON)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	recorder := httptest.NewRecorder()
	a.container.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to parse response %q: %v", recorder.Body.String(), err)
	}
}

func TestAPI_Health(t *testing.T) {
	a := setupTestAPI(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		t.Run(path, func(t *testing.T) {
			recorder := a.do(t, http.MethodGet, path, nil, false)
			if recorder.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", recorder.Code)
			}

			var response api.HealthResponse
			decode(t, recorder, &response)
			if !response.OK || response.Status != "ok" {
				t.Errorf("unexpected health response %+v", response)
			}
		})
	}
}

func TestAPI_ListIncidents_Demo(t *testing.T) {
	a := setupTestAPI(t)

	recorder := a.do(t, http.MethodGet, "/api/v1/incidents", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var items []models.Incident
	decode(t, recorder, &items)
	if len(items) != 2 || items[0].IncidentID != "test-1" {
		t.Errorf("expected demo incidents, got %+v", items)
	}
}

func TestAPI_CreateIncident(t *testing.T) {
	tests := []struct {
		name         string
		body         any
		authorized   bool
		expectStatus int
		expectCode   string
	}{
		{
			name:         "valid incident",
			body:         models.IncidentCreateRequest{Lng: 121.47, Lat: 31.23, Title: " 小区门口发现毒饵 "},
			authorized:   true,
			expectStatus: http.StatusOK,
		},
		{
			name:         "missing token",
			body:         models.IncidentCreateRequest{Lng: 121.47, Lat: 31.23, Title: "毒饵"},
			authorized:   false,
			expectStatus: http.StatusUnauthorized,
		},
		{
			name:         "url title rejected",
			body:         models.IncidentCreateRequest{Lng: 121.47, Lat: 31.23, Title: "看这里 www.example.com"},
			authorized:   true,
			expectStatus: http.StatusBadRequest,
			expectCode:   "CONTACT_OR_AD_NOT_ALLOWED",
		},
		{
			name:         "blank title rejected",
			body:         models.IncidentCreateRequest{Lng: 121.47, Lat: 31.23, Title: "   "},
			authorized:   true,
			expectStatus: http.StatusBadRequest,
			expectCode:   "TOO_SHORT",
		},
		{
			name:         "bad coordinates",
			body:         models.IncidentCreateRequest{Lng: 200, Lat: 31.23, Title: "毒饵"},
			authorized:   true,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "malformed json",
			body:         `{"lng": 1, "lat":`,
			authorized:   true,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "empty body",
			body:         nil,
			authorized:   true,
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := setupTestAPI(t)

			recorder := a.do(t, http.MethodPost, "/api/v1/incidents", tt.body, tt.authorized)

			if recorder.Code != tt.expectStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectStatus, recorder.Code, recorder.Body.String())
			}

			if tt.expectCode != "" {
				var rejection middleware.RejectionResponse
				decode(t, recorder, &rejection)
				if rejection.Code != tt.expectCode || rejection.Message != middleware.RejectionMessage {
					t.Errorf("unexpected rejection %+v", rejection)
				}
			}

			if tt.expectStatus == http.StatusOK {
				var response models.IncidentCreateResponse
				decode(t, recorder, &response)
				if response.Incident.Title != "小区门口发现毒饵" {
					t.Errorf("expected cleaned title, got %q", response.Incident.Title)
				}
				if response.Incident.UserSub != "douyin:open-1" {
					t.Errorf("expected author from token, got %q", response.Incident.UserSub)
				}
			}
		})
	}
}

func TestAPI_Comments_CreateAndList(t *testing.T) {
	a := setupTestAPI(t)

	recorder := a.do(t, http.MethodPost, "/api/v1/comments",
		models.CommentCreateRequest{IncidentID: "test-1", Content: "  昨天这里有人撒了药  "}, true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var created models.CommentCreateResponse
	decode(t, recorder, &created)
	if !created.OK || !strings.HasPrefix(created.CommentID, "c-") {
		t.Errorf("unexpected create response %+v", created)
	}

	recorder = a.do(t, http.MethodGet, "/api/v1/comments?incident_id=test-1", nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var list models.CommentListResponse
	decode(t, recorder, &list)
	if list.IncidentID != "test-1" || len(list.Items) != 1 {
		t.Fatalf("unexpected list %+v", list)
	}
	if list.Items[0].Content != "昨天这里有人撒了药" || list.Items[0].Nickname != "小明" {
		t.Errorf("unexpected comment %+v", list.Items[0])
	}
	if strings.Contains(recorder.Body.String(), "sort_key") {
		t.Errorf("sort key leaked in response: %s", recorder.Body.String())
	}
}

func TestAPI_UnprefixedRoutes(t *testing.T) {
	a := setupTestAPI(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		authorized bool
		expectCode int
	}{
		{name: "list incidents", method: http.MethodGet, path: "/incidents", expectCode: http.StatusOK},
		{name: "list comments", method: http.MethodGet, path: "/comments?incident_id=test-1", expectCode: http.StatusOK},
		{
			name:       "create comment",
			method:     http.MethodPost,
			path:       "/comments",
			body:       models.CommentCreateRequest{IncidentID: "test-2", Content: "门口有可疑食物"},
			authorized: true,
			expectCode: http.StatusOK,
		},
		{
			name:       "create comment without token",
			method:     http.MethodPost,
			path:       "/comments",
			body:       models.CommentCreateRequest{IncidentID: "test-2", Content: "门口有可疑食物"},
			expectCode: http.StatusUnauthorized,
		},
		{
			name:       "douyin callback",
			method:     http.MethodPost,
			path:       "/auth/douyin/callback",
			body:       models.AuthCallbackRequest{},
			expectCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := a.do(t, tt.method, tt.path, tt.body, tt.authorized)
			if recorder.Code != tt.expectCode {
				t.Errorf("Expected status %d, got %d: %s", tt.expectCode, recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestAPI_CreateComment_Errors(t *testing.T) {
	tests := []struct {
		name         string
		body         models.CommentCreateRequest
		expectStatus int
		expectCode   string
	}{
		{
			name:         "contact leak rejected",
			body:         models.CommentCreateRequest{IncidentID: "test-1", Content: "需要的私信我 abc_12345"},
			expectStatus: http.StatusBadRequest,
			expectCode:   "CONTACT_OR_AD_NOT_ALLOWED",
		},
		{
			name:         "threat rejected",
			body:         models.CommentCreateRequest{IncidentID: "test-1", Content: "我要去砍了那个老板"},
			expectStatus: http.StatusBadRequest,
			expectCode:   "VIOLENT_THREAT",
		},
		{
			name:         "unknown incident",
			body:         models.CommentCreateRequest{IncidentID: "nope", Content: "注意"},
			expectStatus: http.StatusNotFound,
		},
		{
			name:         "missing incident id",
			body:         models.CommentCreateRequest{Content: "注意"},
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := setupTestAPI(t)

			recorder := a.do(t, http.MethodPost, "/api/v1/comments", tt.body, true)
			if recorder.Code != tt.expectStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectStatus, recorder.Code, recorder.Body.String())
			}

			if tt.expectCode != "" {
				var rejection middleware.RejectionResponse
				decode(t, recorder, &rejection)
				if rejection.Code != tt.expectCode {
					t.Errorf("expected code %s, got %+v", tt.expectCode, rejection)
				}
			}
		})
	}
}

func TestAPI_ListComments_RequiresIncidentID(t *testing.T) {
	a := setupTestAPI(t)

	recorder := a.do(t, http.MethodGet, "/api/v1/comments", nil, false)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", recorder.Code)
	}
}

func TestAPI_ValidateText(t *testing.T) {
	tests := []struct {
		name         string
		text         *string
		policy       string
		expectOK     bool
		expectReason textsafety.ReasonCode
		expectPolicy string
	}{
		{name: "ok comment", text: strPtr("注意看好狗狗"), policy: "comment", expectOK: true, expectPolicy: "comment"},
		{name: "phone", text: strPtr("电话13912345678"), policy: "comment", expectReason: textsafety.ReasonContactOrAdNotAllowed, expectPolicy: "comment"},
		{name: "long title", text: strPtr(strings.Repeat("狗", 31)), policy: "title", expectReason: textsafety.ReasonTooLong, expectPolicy: "title"},
		{name: "null text", text: nil, policy: "comment", expectReason: textsafety.ReasonEmpty, expectPolicy: "comment"},
		{name: "unknown policy falls back", text: strPtr("你好"), policy: "unknown", expectOK: true, expectPolicy: "comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := setupTestAPI(t)

			recorder := a.do(t, http.MethodPost, "/api/v1/moderation/validate",
				models.ValidateTextRequest{Text: tt.text, Policy: tt.policy}, false)
			if recorder.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
			}

			var result models.ModerationResult
			decode(t, recorder, &result)
			if result.Verdict.OK != tt.expectOK || result.Verdict.Reason != tt.expectReason {
				t.Errorf("unexpected verdict %+v", result.Verdict)
			}
			if result.Policy != tt.expectPolicy {
				t.Errorf("expected policy %s, got %s", tt.expectPolicy, result.Policy)
			}
		})
	}
}

func TestAPI_DouyinCallback_Errors(t *testing.T) {
	a := setupTestAPI(t)

	tests := []struct {
		name string
		body models.AuthCallbackRequest
	}{
		{name: "missing code", body: models.AuthCallbackRequest{}},
		{name: "douyin not configured", body: models.AuthCallbackRequest{Code: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := a.do(t, http.MethodPost, "/api/v1/auth/douyin/callback", tt.body, false)
			if recorder.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", recorder.Code)
			}
		})
	}
}

func TestAPI_OpenAPI(t *testing.T) {
	a := setupTestAPI(t)

	recorder := a.do(t, http.MethodGet, api.OpenAPIPath, nil, false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}

	var doc map[string]any
	decode(t, recorder, &doc)
	paths, _ := doc["paths"].(map[string]any)
	for _, p := range []string{"/api/v1/incidents", "/api/v1/comments", "/api/v1/moderation/validate", "/incidents"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("expected %s in openapi paths", p)
		}
	}
}

func strPtr(s string) *string {
	return &s
}
