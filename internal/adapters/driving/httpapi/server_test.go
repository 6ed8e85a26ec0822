package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmatch/internal/core/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	qa       *mockQAService
	matching *mockMatchingService
	server   *Server
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{qa: &mockQAService{}, matching: &mockMatchingService{}}
	settings := &mockSettingsService{settings: domain.DefaultAppSettings()}

	server, err := NewServer(&Ports{QA: f.qa, Matching: f.matching, Settings: settings}, opts)
	require.NoError(t, err)
	f.server = server
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func jsonRequest(method, path string, body any) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type upload struct {
	field, name, content string
}

func multipartRequest(t *testing.T, path string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func errorKind(body map[string]any) any {
	detail, _ := body["error"].(map[string]any)
	return detail["kind"]
}

func TestNewServer_RequiresPorts(t *testing.T) {
	_, err := NewServer(&Ports{}, Options{})
	assert.ErrorIs(t, err, ErrMissingQAService)

	_, err = NewServer(&Ports{QA: &mockQAService{}}, Options{})
	assert.ErrorIs(t, err, ErrMissingMatchingService)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind domain.ErrorKind
		want int
	}{
		{domain.KindInputValidation, http.StatusBadRequest},
		{domain.KindIndexNotFound, http.StatusNotFound},
		{domain.KindConfiguration, http.StatusInternalServerError},
		{domain.KindProvider, http.StatusBadGateway},
		{domain.KindTimeout, http.StatusGatewayTimeout},
		{domain.KindIndexInconsistent, http.StatusInternalServerError},
		{domain.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.kind))
		})
	}
}

func TestGetConfig(t *testing.T) {
	f := newFixture(t, Options{})

	rec, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ollama", body["api_type"])
	assert.Equal(t, "nomic-embed-text", body["embedding_model"])
}

func TestGetStatus(t *testing.T) {
	f := newFixture(t, Options{})
	f.qa.status = domain.IndexStatus{Exists: true, TotalChunks: 9, TotalPages: 3}

	rec, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["database_exists"])
	assert.Equal(t, 9.0, body["total_chunks"])
	assert.Equal(t, 0.0, body["resumes_loaded"])
	assert.Equal(t, false, body["job_loaded"])
}

func TestUploadDocument(t *testing.T) {
	f := newFixture(t, Options{MaxQAUpload: 1 << 20})
	f.qa.result = &domain.IngestResult{Filename: "report.pdf", TotalPages: 2, TotalChunks: 5}

	rec, body := f.do(t, multipartRequest(t, "/api/upload", upload{"file", "dir/report.pdf", "%PDF-1.4"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "report.pdf", body["filename"])
	assert.Equal(t, 5.0, body["total_chunks"])
	require.NotNil(t, f.qa.ingested)
	assert.Equal(t, "report.pdf", f.qa.ingested.URI)
	assert.Equal(t, []byte("%PDF-1.4"), f.qa.ingested.Content)
}

func TestUploadDocument_NoFile(t *testing.T) {
	f := newFixture(t, Options{})

	rec, body := f.do(t, multipartRequest(t, "/api/upload"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "input_validation_error", errorKind(body))
}

func TestUploadDocument_TooLarge(t *testing.T) {
	f := newFixture(t, Options{MaxQAUpload: 1})
	big := strings.Repeat("x", 2*multipartOverhead)

	rec, body := f.do(t, multipartRequest(t, "/api/upload", upload{"file", "big.txt", big}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"].(map[string]any)["message"], "MB limit")
	assert.Nil(t, f.qa.ingested)
}

func TestAsk(t *testing.T) {
	f := newFixture(t, Options{})
	f.qa.answer = &domain.Answer{
		Answer:         "Page 2 says so.",
		RelevantChunks: []domain.RelevantChunk{{Text: "x...", Page: 2, Score: 0.9}},
		TotalPages:     4,
	}

	rec, body := f.do(t, jsonRequest(http.MethodPost, "/api/ask", askRequest{Question: "why?"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Page 2 says so.", body["answer"])
	assert.Len(t, body["relevant_chunks"], 1)
	assert.Equal(t, 4.0, body["total_pages"])
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"no index", domain.IndexNotFoundError("ask"), http.StatusNotFound, "index_not_found"},
		{"provider", domain.ProviderError("ask", "status 500", nil), http.StatusBadGateway, "provider_error"},
		{"timeout", domain.NewError(domain.KindTimeout, "ask", "timed out", nil), http.StatusGatewayTimeout, "timeout_error"},
		{"no llm", domain.ConfigurationError("ask", "no LLM"), http.StatusInternalServerError, "configuration_error"},
		{"empty", domain.InputValidationError("ask", "no question provided"), http.StatusBadRequest, "input_validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			f.qa.err = tt.err

			rec, body := f.do(t, jsonRequest(http.MethodPost, "/api/ask", askRequest{Question: "q"}))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantKind, errorKind(body))
		})
	}
}

func TestAsk_InvalidBody(t *testing.T) {
	f := newFixture(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	rec, _ := f.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetrieve(t *testing.T) {
	f := newFixture(t, Options{})
	f.qa.hits = []domain.RetrievedChunk{{Chunk: domain.Chunk{Content: "alpha", Page: 1}, Score: 1}}

	rec, body := f.do(t, jsonRequest(http.MethodPost, "/api/retrieve", retrieveRequest{Query: "a"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, f.qa.lastK)
	chunks := body["chunks"].([]any)
	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha", chunks[0].(map[string]any)["text"])
}

func TestClearIndex(t *testing.T) {
	f := newFixture(t, Options{})

	rec, _ := f.do(t, httptest.NewRequest(http.MethodPost, "/api/clear", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.qa.cleared)
}

func TestMatchWorkflow(t *testing.T) {
	f := newFixture(t, Options{MaxMatchUpload: 1 << 20})

	rec, body := f.do(t, multipartRequest(t, "/api/match/resumes",
		upload{"files", "a.txt", "resume a"},
		upload{"files", "b.txt", "resume b"},
	))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, body["total_resumes"])

	rec, body = f.do(t, httptest.NewRequest(http.MethodGet, "/api/match/resumes", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, body["total"])

	rec, body = f.do(t, httptest.NewRequest(http.MethodPost, "/api/match/run", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "input_validation_error", errorKind(body))

	rec, _ = f.do(t, jsonRequest(http.MethodPost, "/api/match/job/text", textRequest{Text: "Go engineer"}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = f.do(t, httptest.NewRequest(http.MethodPost, "/api/match/run", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["results"], 2)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, 2.0, summary["processed"])

	rec, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/match/export?format=csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "match_results.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Rank,Resume,Final Score"))

	rec, _ = f.do(t, httptest.NewRequest(http.MethodPost, "/api/match/resumes/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.server.Session().Candidates())
	assert.NotNil(t, f.server.Session().Job(), "clearing resumes keeps the job")
}

func TestUploadJob(t *testing.T) {
	f := newFixture(t, Options{})

	rec, body := f.do(t, multipartRequest(t, "/api/match/job", upload{"file", "role.txt", "Go engineer"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "role.txt", body["filename"])
	assert.Equal(t, 11.0, body["char_count"])

	rec, _ = f.do(t, httptest.NewRequest(http.MethodPost, "/api/match/job/clear", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, f.server.Session().Job())
}

func TestExport_Errors(t *testing.T) {
	f := newFixture(t, Options{})

	rec, body := f.do(t, httptest.NewRequest(http.MethodGet, "/api/match/export?format=json", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"].(map[string]any)["message"], "no results")

	rec, _ = f.do(t, httptest.NewRequest(http.MethodGet, "/api/match/export?format=xlsx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractSkills(t *testing.T) {
	f := newFixture(t, Options{})
	f.matching.skills = domain.EmptySkillSet()
	f.matching.skills.Tools = []string{"Docker"}

	rec, body := f.do(t, jsonRequest(http.MethodPost, "/api/match/skills", textRequest{Text: "Docker"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	skills := body["skills"].(map[string]any)
	assert.Equal(t, []any{"Docker"}, skills["tools"])
}
