package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"careerboard/internal/blob"
	"careerboard/internal/config"
	"careerboard/internal/cv"
	"careerboard/internal/delivery/http/middleware"
	"careerboard/internal/domain/admin"
	"careerboard/internal/listing"
	"careerboard/internal/pkg/jwt"
	"careerboard/internal/resource"
	"careerboard/internal/scoring"
	"careerboard/internal/store"
	"careerboard/internal/store/memory"
	ucauth "careerboard/internal/usecase/auth"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

var quiet = log.New(io.Discard, "", 0)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(quiet, false).Middleware())
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var body map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("bad body %q: %v", raw, err)
		}
	}
	return resp.StatusCode, body
}

func jsonRequest(method, target string, v any) *http.Request {
	b, _ := json.Marshal(v)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func jobsResource(t *testing.T) (listing.Resource, *memory.Store) {
	t.Helper()
	all := resource.All(config.StoreConfig{JobsTable: "Jobs"})
	res := all[0]
	if res.Name != resource.Jobs {
		t.Fatalf("expected jobs resource first, got %s", res.Name)
	}
	return res, memory.New(resource.Schemas(all[:1]))
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newListingApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	res, st := jobsResource(t)
	n := 0
	svc := listing.NewService(res, st,
		listing.WithLogger(quiet),
		listing.WithClock(func() time.Time { return fixedNow }),
		listing.WithIDGenerator(func() string { n++; return fmt.Sprintf("gen-%d", n) }),
	)
	h := NewListingHandler(svc)

	app := newApp()
	app.Get("/jobs", h.HandleList)
	app.Get("/jobs/:id", h.HandleGet)
	app.Post("/jobs/bulk-upload", h.HandleBulkUpload)
	app.Post("/jobs", h.HandleCreate)
	app.Put("/jobs/:id", h.HandleUpdate)
	app.Delete("/jobs/:id", h.HandleDelete)
	return app, st
}

func validJob() map[string]any {
	return map[string]any{
		"role":           "Backend Engineer",
		"companyName":    "Acme",
		"location":       "Pune",
		"jobDescription": "Build APIs",
		"originalLink":   "https://acme.example/jobs/1",
		"category":       "IT",
	}
}

func TestListingHandler_CreateThenGet(t *testing.T) {
	app, _ := newListingApp(t)

	status, body := do(t, app, jsonRequest("POST", "/jobs", validJob()))
	if status != fiber.StatusCreated {
		t.Fatalf("unexpected status %d: %v", status, body)
	}
	if body["status"] != "active" || body["jobId"] != "gen-1" || body["postedOn"] != fixedNow.Format(time.RFC3339) {
		t.Fatalf("unexpected item: %v", body)
	}

	status, body = do(t, app, httptest.NewRequest("GET", "/jobs/gen-1", nil))
	if status != fiber.StatusOK || body["role"] != "Backend Engineer" {
		t.Fatalf("unexpected get: %d %v", status, body)
	}
}

func TestListingHandler_CreateMissingFields(t *testing.T) {
	app, _ := newListingApp(t)

	in := validJob()
	delete(in, "role")
	delete(in, "category")
	status, body := do(t, app, jsonRequest("POST", "/jobs", in))
	if status != fiber.StatusBadRequest {
		t.Fatalf("unexpected status %d", status)
	}
	details, _ := body["details"].([]any)
	if len(details) != 2 {
		t.Fatalf("expected two missing fields, got %v", body)
	}
}

func TestListingHandler_ListPaginationAndFilters(t *testing.T) {
	app, st := newListingApp(t)
	for i := 0; i < 5; i++ {
		cat := "IT"
		if i%2 == 1 {
			cat = "Finance"
		}
		_ = st.Put(context.Background(), "Jobs", store.Item{
			"jobId":       fmt.Sprintf("j%d", i),
			"category":    cat,
			"role":        fmt.Sprintf("Role %d", i),
			"companyName": "Acme",
			"postedOn":    fixedNow.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}

	status, body := do(t, app, httptest.NewRequest("GET", "/jobs?page=1&limit=2", nil))
	if status != fiber.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	items, _ := body["jobs"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %v", body)
	}
	first, _ := items[0].(map[string]any)
	if first["jobId"] != "j4" {
		t.Fatalf("expected newest first, got %v", first)
	}
	p, _ := body["pagination"].(map[string]any)
	if p["totalItems"] != float64(5) || p["totalPages"] != float64(3) || p["hasNext"] != true || p["hasPrev"] != false {
		t.Fatalf("unexpected pagination: %v", p)
	}

	_, body = do(t, app, httptest.NewRequest("GET", "/jobs?category=Finance", nil))
	items, _ = body["jobs"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 finance jobs, got %d", len(items))
	}
}

func TestListingHandler_ListBadPage(t *testing.T) {
	app, _ := newListingApp(t)
	for _, target := range []string{"/jobs?page=abc", "/jobs?limit=x", "/jobs?page=-1"} {
		if status, _ := do(t, app, httptest.NewRequest("GET", target, nil)); status != fiber.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, status)
		}
	}
}

func TestListingHandler_GetMissing(t *testing.T) {
	app, _ := newListingApp(t)
	status, body := do(t, app, httptest.NewRequest("GET", "/jobs/nope", nil))
	if status != fiber.StatusNotFound || body["error"] == "" {
		t.Fatalf("unexpected response: %d %v", status, body)
	}
}

func TestListingHandler_UpdateAndDelete(t *testing.T) {
	app, st := newListingApp(t)
	_, _ = do(t, app, jsonRequest("POST", "/jobs", validJob()))

	status, body := do(t, app, jsonRequest("PUT", "/jobs/gen-1", map[string]any{"category": "Finance", "role": "Staff Engineer"}))
	if status != fiber.StatusOK || body["category"] != "Finance" || body["role"] != "Staff Engineer" {
		t.Fatalf("unexpected update: %d %v", status, body)
	}
	if st.Len("Jobs") != 1 {
		t.Fatalf("expected relocation to leave exactly one copy, got %d", st.Len("Jobs"))
	}

	for i := 0; i < 2; i++ {
		status, body = do(t, app, httptest.NewRequest("DELETE", "/jobs/gen-1", nil))
		if status != fiber.StatusOK || body["message"] == "" {
			t.Fatalf("delete %d: unexpected response %d %v", i, status, body)
		}
	}
	if st.Len("Jobs") != 0 {
		t.Fatalf("expected table to be empty")
	}

	if status, _ := do(t, app, jsonRequest("PUT", "/jobs/gen-1", map[string]any{"role": "x"})); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 updating a deleted job, got %d", status)
	}
}

func multipartRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, _ = io.WriteString(fw, content)
	_ = w.Close()

	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestListingHandler_BulkUpload(t *testing.T) {
	app, st := newListingApp(t)

	header := "role,companyName,location,jobDescription,originalLink,category\n"
	good := "Dev,Acme,Pune,Build,https://a.example,IT\n"
	csv := header + good + good + "Dev,,Pune,Build,https://a.example,IT\n"

	status, body := do(t, app, multipartRequest(t, "/jobs/bulk-upload", "jobs.csv", csv))
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 on partial success, got %d %v", status, body)
	}
	if body["uploaded"] != float64(2) {
		t.Fatalf("unexpected uploaded count: %v", body)
	}
	errs, _ := body["errors"].([]any)
	if len(errs) != 1 {
		t.Fatalf("expected one row error, got %v", body["errors"])
	}
	if st.Len("Jobs") != 2 {
		t.Fatalf("expected 2 stored jobs, got %d", st.Len("Jobs"))
	}

	status, _ = do(t, app, multipartRequest(t, "/jobs/bulk-upload", "jobs.csv", header+good))
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 when every row succeeds, got %d", status)
	}

	status, _ = do(t, app, multipartRequest(t, "/jobs/bulk-upload", "jobs.txt", header+good))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported format, got %d", status)
	}

	status, _ = do(t, app, httptest.NewRequest("POST", "/jobs/bulk-upload", nil))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without a file, got %d", status)
	}
}

type fakeAnalyzer struct {
	out cv.Analysis
	err error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, key, jobID string) (cv.Analysis, error) {
	return f.out, f.err
}

func TestAIHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{nil, fiber.StatusOK},
		{cv.ErrInvalidKey, fiber.StatusBadRequest},
		{cv.ErrUnreadableDocument, fiber.StatusBadRequest},
		{cv.ErrJobNotFound, fiber.StatusNotFound},
		{fmt.Errorf("wrap: %w", blob.ErrObjectNotFound), fiber.StatusNotFound},
		{errors.New("s3 down"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		fa := &fakeAnalyzer{out: cv.Analysis{Analysis: scoring.FallbackResult(), SuggestedJobs: []store.Item{}}, err: tc.err}
		app := newApp()
		app.Post("/ai/analyze-cv", NewAIHandler(fa).HandleAnalyzeCV)

		status, body := do(t, app, jsonRequest("POST", "/ai/analyze-cv", map[string]string{"key": "resumes/a.pdf"}))
		if status != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, status)
		}
		if tc.err == nil {
			if _, ok := body["analysis"]; !ok {
				t.Fatalf("expected analysis in body: %v", body)
			}
		}
	}
}

type fakePresigner struct {
	err error
}

func (f *fakePresigner) PresignUpload(_ context.Context, fileType string) (blob.Upload, error) {
	if f.err != nil {
		return blob.Upload{}, f.err
	}
	if fileType != blob.ContentTypePDF {
		return blob.Upload{}, blob.ErrUnsupportedType
	}
	return blob.Upload{UploadURL: "https://bucket.example/resumes/x.pdf", Key: "resumes/x.pdf", ExpiresIn: 300}, nil
}

func TestS3Handler(t *testing.T) {
	app := newApp()
	app.Get("/s3/pre-signed-url", NewS3Handler(&fakePresigner{}).HandlePresignedURL)

	status, body := do(t, app, httptest.NewRequest("GET", "/s3/pre-signed-url?fileType=application/pdf", nil))
	if status != fiber.StatusOK || body["key"] != "resumes/x.pdf" || body["expiresIn"] != float64(300) {
		t.Fatalf("unexpected response: %d %v", status, body)
	}

	status, _ = do(t, app, httptest.NewRequest("GET", "/s3/pre-signed-url?fileType=image/png", nil))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

type fakeAuth struct {
	admin admin.Admin
	err   error
}

func (f *fakeAuth) Login(_ context.Context, in ucauth.LoginInput) (admin.Admin, error) {
	return f.admin, f.err
}

func TestAuthHandler_Login(t *testing.T) {
	jwtSvc := jwt.NewHMACService("secret", time.Hour)
	a := admin.Admin{ID: uuid.New(), Email: "ops@example.com"}

	app := newApp()
	app.Post("/admin/login", NewAuthHandler(&fakeAuth{admin: a}, jwtSvc).Login)
	status, body := do(t, app, jsonRequest("POST", "/admin/login", loginRequest{Email: a.Email, Password: "pw"}))
	if status != fiber.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	tok, _ := body["token"].(string)
	claims, err := jwtSvc.ValidateToken(tok)
	if err != nil || claims.AdminID != a.ID {
		t.Fatalf("token does not validate: %v %+v", err, claims)
	}

	app = newApp()
	app.Post("/admin/login", NewAuthHandler(&fakeAuth{err: ucauth.ErrInvalidCredentials}, jwtSvc).Login)
	if status, _ := do(t, app, jsonRequest("POST", "/admin/login", loginRequest{Email: a.Email, Password: "no"})); status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

type fakeFinder struct {
	dups []listing.Duplicate
}

func (f *fakeFinder) FindDuplicates(context.Context) ([]listing.Duplicate, error) {
	return f.dups, nil
}

func TestAdminHandler_Duplicates(t *testing.T) {
	h := NewAdminHandler(map[string]DuplicateFinder{
		resource.Jobs: &fakeFinder{dups: []listing.Duplicate{{ID: "j1", Keep: "IT", Partitions: []string{"IT", "Finance"}}}},
	})
	app := newApp()
	app.Get("/admin/duplicates", h.HandleDuplicates)

	status, body := do(t, app, httptest.NewRequest("GET", "/admin/duplicates?resource=jobs", nil))
	dups, _ := body["duplicates"].([]any)
	if status != fiber.StatusOK || len(dups) != 1 {
		t.Fatalf("unexpected response: %d %v", status, body)
	}

	status, body = do(t, app, httptest.NewRequest("GET", "/admin/duplicates?resource=nope", nil))
	if status != fiber.StatusBadRequest || !strings.Contains(fmt.Sprint(body["details"]), "jobs") {
		t.Fatalf("unexpected response: %d %v", status, body)
	}
}

func TestHealthHandler(t *testing.T) {
	app := newApp()
	app.Get("/health", NewHealthHandler().Handle)
	status, body := do(t, app, httptest.NewRequest("GET", "/health", nil))
	if status != fiber.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected response: %d %v", status, body)
	}
}
