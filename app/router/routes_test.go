package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/app/handlers"
	"github.com/amirphl/dental-clinic/app/middleware"
	"github.com/amirphl/dental-clinic/app/services"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminSecret = "router-admin-secret-0123456789abcdef"
	testCRMSecret   = "router-crm-secret-0123456789abcdefgh"
	testVisitorID   = "6f1c2a8e-3d4b-4c5a-9e7f-0a1b2c3d4e5f"
)

type testServer struct {
	app    *fiber.App
	tokens services.TokenService
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *dto.Pagination `json:"pagination"`
	Error      struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestServer(t *testing.T, testDB *testingutil.TestDB) *testServer {
	t.Helper()
	db := testDB.DB
	log := logger.Nop()

	tokens, err := services.NewTokenService(time.Hour, "clinic-test", testAdminSecret, testCRMSecret)
	require.NoError(t, err)

	campaignRepo := repository.NewCampaignLinkRepository(db)
	leadRepo := repository.NewConsultationFormRepository(db)
	store := services.NewMemoryAttributionStore(services.AttributionExpiryPolicy{Window: utils.DefaultAttributionWindow}, nil)

	attribution := businessflow.NewAttributionFlow(campaignRepo, store, "", nil, log)
	leads := businessflow.NewConsultationFormFlow(leadRepo, attribution, utils.DefaultPhoneRegion, time.UTC, log)
	faqs := businessflow.NewContentFlow[models.FAQ](businessflow.CollectionFAQs, repository.NewContentRepository[models.FAQ](db, models.VisibilityIsActive), db, log)

	r := NewFiberRouter(Config{}, Handlers{
		Attribution:       handlers.NewAttributionHandler(attribution, log),
		ConsultationForms: handlers.NewConsultationFormHandler(leads, log),
		Content: []ContentRoutes{
			handlers.NewContentHandler[models.FAQ, dto.FAQRequest](faqs, log),
		},
	}, Dependencies{
		Auth: middleware.NewAuthMiddleware(tokens),
		Log:  log,
	})
	r.SetupRoutes()

	return &testServer{app: r.GetApp(), tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.AddCookie(&http.Cookie{Name: middleware.DefaultVisitorCookieName, Value: testVisitorID})

	resp, err := s.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := s.tokens.GenerateAdminToken(1)
	require.NoError(t, err)
	return token
}

func TestCaptureAlwaysAnswersOK(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		_, err := fixtures.CreateTestCampaign("ig-promo", true, nil, 0)
		require.NoError(t, err)

		s := newTestServer(t, testDB)

		tests := []struct {
			name       string
			path       string
			body       string
			wantResult string
			wantReason string
		}{
			{"malformed body", "/api/attribution/capture", "{not json", string(businessflow.AttributionSkipped), ""},
			{"no source", "/api/attribution/capture", `{"url":"https://clinic.uz/"}`, string(businessflow.AttributionSkipped), ""},
			{"unknown campaign", "/api/attribution/capture", `{"source":"nope"}`, string(businessflow.AttributionRejected), businessflow.ReasonCampaignNotFound},
			{"invalid code", "/api/attribution/capture?source=bad%20code", "", string(businessflow.AttributionRejected), businessflow.ReasonInvalidCode},
			{"source from page url", "/api/attribution/capture", `{"url":"https://clinic.uz/?source=ig-promo&lang=uz"}`, string(businessflow.AttributionCaptured), ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, env := s.do(t, fiber.MethodPost, tt.path, tt.body, "")
				assert.Equal(t, fiber.StatusOK, resp.StatusCode)
				assert.True(t, env.Success)

				var result dto.AttributionResultDTO
				require.NoError(t, json.Unmarshal(env.Data, &result))
				assert.Equal(t, tt.wantResult, result.Result)
				assert.Equal(t, tt.wantReason, result.Reason)
			})
		}

		resp, env := s.do(t, fiber.MethodGet, "/api/attribution", "", "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		var stored dto.StoredSourceDTO
		require.NoError(t, json.Unmarshal(env.Data, &stored))
		assert.True(t, stored.Present)
		assert.Equal(t, "ig-promo", stored.Code)
		return nil
	})
	require.NoError(t, err)
}

func TestConsultationFormLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		_, err := fixtures.CreateTestCampaign("tg-spring", true, nil, 0)
		require.NoError(t, err)

		s := newTestServer(t, testDB)

		resp, _ := s.do(t, fiber.MethodPost, "/api/attribution/capture", `{"source":"tg-spring"}`, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, env := s.do(t, fiber.MethodPost, "/api/consultation-forms",
			`{"full_name":"  Aziza Karimova ","phone":"+998 90 123 45 67","time_spent_seconds":42}`, "")
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)
		var created dto.SubmitConsultationFormResponse
		require.NoError(t, json.Unmarshal(env.Data, &created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, "tg-spring", created.Source)

		resp, env = s.do(t, fiber.MethodGet, "/api/consultation-forms", "", "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "MISSING_AUTHORIZATION_HEADER", env.Error.Code)

		resp, env = s.do(t, fiber.MethodGet, "/api/consultation-forms", "", "not-a-jwt")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "TOKEN_INVALID", env.Error.Code)

		token := s.adminToken(t)
		resp, env = s.do(t, fiber.MethodGet, "/api/consultation-forms?sourceFilter=all", "", token)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, int64(1), env.Pagination.TotalCount)

		var leads []dto.ConsultationFormDTO
		require.NoError(t, json.Unmarshal(env.Data, &leads))
		require.Len(t, leads, 1)
		assert.Equal(t, "Aziza Karimova", leads[0].FullName)

		resp, env = s.do(t, fiber.MethodGet, "/api/consultation-forms/9999", "", token)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.False(t, env.Success)

		resp, env = s.do(t, fiber.MethodGet, "/api/consultation-forms/abc", "", token)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", env.Error.Code)
		return nil
	})
	require.NoError(t, err)
}

func TestSubmitRejectsInvalidPayload(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		s := newTestServer(t, testDB)

		tests := []struct {
			name     string
			body     string
			wantCode string
		}{
			{"malformed json", `{"full_name":`, "INVALID_REQUEST"},
			{"missing name", `{"phone":"+998901234567"}`, "VALIDATION_ERROR"},
			{"bad phone", `{"full_name":"Bobur","phone":"12"}`, "INVALID_PHONE"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, env := s.do(t, fiber.MethodPost, "/api/consultation-forms", tt.body, "")
				assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
				assert.Equal(t, tt.wantCode, env.Error.Code)
			})
		}
		return nil
	})
	require.NoError(t, err)
}

func TestContentRoutesRequireAdminForWrites(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		s := newTestServer(t, testDB)
		body := `{"question":"Does whitening hurt?","answer":"No, it is painless."}`

		resp, _ := s.do(t, fiber.MethodPost, "/api/faqs", body, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		resp, env := s.do(t, fiber.MethodPost, "/api/faqs", body, s.adminToken(t))
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)

		resp, env = s.do(t, fiber.MethodGet, "/api/faqs", "", "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var faqs []models.FAQ
		require.NoError(t, json.Unmarshal(env.Data, &faqs))
		require.Len(t, faqs, 1)
		assert.Equal(t, "Does whitening hurt?", faqs[0].Question)
		return nil
	})
	require.NoError(t, err)
}

func TestUnknownRouteAndHealth(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		s := newTestServer(t, testDB)

		resp, env := s.do(t, fiber.MethodGet, "/api/nothing-here", "", "")
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)

		resp, env = s.do(t, fiber.MethodGet, "/health", "", "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.True(t, env.Success)
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
		return nil
	})
	require.NoError(t, err)
}
