package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Khalidfayaz/kidscope-backend/internal/common"
	"github.com/Khalidfayaz/kidscope-backend/internal/marksheet"
	"github.com/Khalidfayaz/kidscope-backend/internal/rag"
	"github.com/Khalidfayaz/kidscope-backend/internal/report"
)

type fakeExtractor struct {
	filename string
	data     []byte
	err      error
}

func (f *fakeExtractor) Extract(_ context.Context, filename string, data []byte) (*marksheet.ExtractResponse, error) {
	f.filename, f.data = filename, data
	if f.err != nil {
		return nil, f.err
	}
	return &marksheet.ExtractResponse{
		Filename:       filename,
		PagesProcessed: 1,
		Results:        []marksheet.PageResult{{Page: 1, Error: marksheet.ErrUnparseablePage}},
	}, nil
}

type fakeExporter struct{ got marksheet.ExtractResponse }

func (f *fakeExporter) MarksheetXLSX(_ context.Context, resp marksheet.ExtractResponse) ([]byte, error) {
	f.got = resp
	return []byte("PK-xlsx"), nil
}

type fakeAsker struct {
	answer string
	err    error
}

func (f fakeAsker) Ask(context.Context, string) (rag.Answer, error) {
	return rag.Answer{Text: f.answer}, f.err
}

type fakeIndex struct{}

func (fakeIndex) Len() int { return 42 }
func (fakeIndex) Dim() int { return 1536 }

func newTestRouter(ex *fakeExtractor, exp *fakeExporter, asker fakeAsker, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		OCR:            NewOCRHandler(ex, exp, maxUpload, nil),
		Report:         NewReportHandler(report.NewService(asker, nil), nil),
		Index:          fakeIndex{},
		Provider:       "openai",
		AllowedOrigins: []string{"http://localhost:3000", "https://oohr-erp.web.app"},
	})
}

func do(r http.Handler, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func multipartBody(t *testing.T, field, filename string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf.Bytes(), w.FormDataContentType()
}

func TestRootAndHealth(t *testing.T) {
	r := newTestRouter(&fakeExtractor{}, &fakeExporter{}, fakeAsker{}, 0)

	rec := do(r, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["message"] != "Backend Running - OCR & Report services" {
		t.Fatalf("root: got=%d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("missing request id header")
	}

	rec = do(r, http.MethodGet, "/ocr/api/health", "", nil)
	body := decode(t, rec)
	if body["status"] != "healthy" || body["service"] != "marksheet-extractor" {
		t.Fatalf("ocr health: got=%v", body)
	}

	rec = do(r, http.MethodGet, "/healthz", "", nil)
	body = decode(t, rec)
	if body["index_chunks"] != float64(42) || body["provider"] != "openai" {
		t.Fatalf("healthz: got=%v", body)
	}
}

func TestExtractMarksheet(t *testing.T) {
	ex := &fakeExtractor{}
	r := newTestRouter(ex, &fakeExporter{}, fakeAsker{}, 1<<20)

	body, ct := multipartBody(t, "file", "card.png", []byte("png-bytes"))
	rec := do(r, http.MethodPost, "/ocr/api/extract-marksheet", ct, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	if ex.filename != "card.png" || string(ex.data) != "png-bytes" {
		t.Fatalf("extractor input: got=%q %q", ex.filename, ex.data)
	}
	out := decode(t, rec)
	if out["filename"] != "card.png" || out["pages_processed"] != float64(1) {
		t.Fatalf("response: got=%v", out)
	}
}

func TestExtractMarksheetErrors(t *testing.T) {
	upstream := common.NewAppError("UPSTREAM", "Failed to extract marksheet", fmt.Errorf("%w: boom", common.ErrUpstream))
	cases := []struct {
		name      string
		field     string
		err       error
		maxUpload int64
		status    int
		message   string
	}{
		{"missing file", "upload", nil, 0, http.StatusBadRequest, "No file uploaded"},
		{"upstream failure", "file", upstream, 0, http.StatusInternalServerError, "Failed to extract marksheet"},
		{"too large", "file", nil, 16, http.StatusRequestEntityTooLarge, "File too large (limit 16 bytes)"},
	}
	for _, c := range cases {
		r := newTestRouter(&fakeExtractor{err: c.err}, &fakeExporter{}, fakeAsker{}, c.maxUpload)
		body, ct := multipartBody(t, c.field, "card.pdf", bytes.Repeat([]byte("x"), 64))
		rec := do(r, http.MethodPost, "/ocr/api/extract-marksheet", ct, body)
		if rec.Code != c.status {
			t.Fatalf("%s: status want=%d got=%d %s", c.name, c.status, rec.Code, rec.Body.String())
		}
		out := decode(t, rec)
		if out["error"] != c.message {
			t.Fatalf("%s: error want=%q got=%v", c.name, c.message, out["error"])
		}
		if c.status == http.StatusInternalServerError && !strings.Contains(fmt.Sprint(out["details"]), "boom") {
			t.Fatalf("%s: details missing cause: %v", c.name, out)
		}
	}

	r := newTestRouter(&fakeExtractor{}, &fakeExporter{}, fakeAsker{}, 0)
	rec := do(r, http.MethodPost, "/ocr/api/extract-marksheet", "application/json", []byte(`{}`))
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "No file uploaded" {
		t.Fatalf("non-multipart: got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestExportMarksheet(t *testing.T) {
	exp := &fakeExporter{}
	r := newTestRouter(&fakeExtractor{}, exp, fakeAsker{}, 0)

	payload := []byte(`{"filename":"scans/card.pdf","pages_processed":1,"results":[{"page":1,"data":{"student_name":"Asha","subjects":[]}}]}`)
	rec := do(r, http.MethodPost, "/ocr/api/export-marksheet", "application/json", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != xlsxContentType {
		t.Fatalf("content type: got=%q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="card.xlsx"` {
		t.Fatalf("disposition: got=%q", got)
	}
	if exp.got.Results[0].Data == nil || exp.got.Results[0].Data.StudentName != "Asha" {
		t.Fatalf("exporter input: got=%+v", exp.got)
	}

	rec = do(r, http.MethodPost, "/ocr/api/export-marksheet", "application/json", []byte(`{"filename":"x.pdf","results":[]}`))
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "No results to export" {
		t.Fatalf("empty export: got=%d %s", rec.Code, rec.Body.String())
	}
}

func TestReportRAG(t *testing.T) {
	asker := fakeAsker{answer: "Strengths:\n- Loves Communication\nWeaknesses:\n- Shy\nRecommendations:\n- Drama club"}
	r := newTestRouter(&fakeExtractor{}, &fakeExporter{}, asker, 0)

	rec := do(r, http.MethodPost, "/report/rag", "application/json", []byte(`{"dob":"2015-07-30","time_of_birth":"06:10","place_of_birth":"Delhi"}`))
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "Missing required field: symptom_keywords" {
		t.Fatalf("missing field: got=%d %s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodPost, "/report/rag", "application/json", []byte(`{"dob":"2015-07-30","time_of_birth":"06:10","place_of_birth":"Delhi","symptom_keywords":["shy"]}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d %s", rec.Code, rec.Body.String())
	}
	var out report.Sections
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Zodiac != "Leo" || out.Strengths[0] != "Loves **Communication**" || out.Weaknesses[0] != "Shy" {
		t.Fatalf("sections: got=%+v", out)
	}

	r = newTestRouter(&fakeExtractor{}, &fakeExporter{}, fakeAsker{err: errors.New("index offline")}, 0)
	rec = do(r, http.MethodPost, "/report/rag", "application/json", []byte(`{"dob":"x","time_of_birth":"x","place_of_birth":"x","symptom_keywords":{}}`))
	body := decode(t, rec)
	if rec.Code != http.StatusInternalServerError || body["error"] != "Failed to generate report" || body["details"] != "index offline" {
		t.Fatalf("upstream failure: got=%d %v", rec.Code, body)
	}
}

func TestDiscussionEndpoints(t *testing.T) {
	r := newTestRouter(&fakeExtractor{}, &fakeExporter{}, fakeAsker{err: errors.New("down")}, 0)

	rec := do(r, http.MethodPost, "/report/discussion-questions", "application/json", []byte(`{"personal_info":{"name":"Ravi"}}`))
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "Missing required field: report" {
		t.Fatalf("questions without report: got=%d %s", rec.Code, rec.Body.String())
	}

	rec = do(r, http.MethodPost, "/report/discussion-questions", "application/json", []byte(`{"report":{"strengths":["Music"]},"personal_info":{"name":"Ravi"}}`))
	var qs report.QuestionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &qs); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("questions: got=%d %s", rec.Code, rec.Body.String())
	}
	if len(qs.Questions) != 5 || !strings.Contains(qs.WeekTag, "-W") {
		t.Fatalf("fallback questions: got=%+v", qs)
	}

	rec = do(r, http.MethodPost, "/report/discussion-free", "application/json", []byte(`{"report":{}}`))
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "Missing required field: question" {
		t.Fatalf("free without question: got=%d %s", rec.Code, rec.Body.String())
	}

	for path, mode := range map[string]report.Mode{
		"/report/discussion-followup": report.ModeFollowup,
		"/report/discussion-free":     report.ModeFree,
	} {
		rec = do(r, http.MethodPost, path, "application/json", []byte(`{"question":"Why?","conversation_history":[]}`))
		var reply report.Reply
		if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil || rec.Code != http.StatusOK {
			t.Fatalf("%s: got=%d %s", path, rec.Code, rec.Body.String())
		}
		if reply.Answer != mode.Failure.Answer || len(reply.Questions) != 3 {
			t.Fatalf("%s: want canned reply got=%+v", path, reply)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(&fakeExtractor{}, &fakeExporter{}, fakeAsker{}, 0)

	for origin, allowed := range map[string]bool{
		"https://oohr-erp.web.app": true,
		"https://evil.example":     false,
	} {
		req := httptest.NewRequest(http.MethodOptions, "/report/rag", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		got := rec.Header().Get("Access-Control-Allow-Origin")
		if allowed && got != origin {
			t.Fatalf("%s: want allow-origin got=%q (status %d)", origin, got, rec.Code)
		}
		if !allowed && got != "" {
			t.Fatalf("%s: want no allow-origin got=%q", origin, got)
		}
	}
}

func TestGRPCHealth(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	gs, _ := NewGRPCHealth()
	go func() { _ = gs.Serve(lis) }()
	defer gs.Stop()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status: want=SERVING got=%v", resp.GetStatus())
	}
}
