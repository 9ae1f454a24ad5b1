package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"jobboard/internal/app"
	"jobboard/pkg/auth"
	"jobboard/pkg/domain"
	"jobboard/pkg/events"
	"jobboard/pkg/storage"
	"jobboard/pkg/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	url   string
	app   *app.App
	store *store.MemoryStore
}

type serverOptions struct {
	demo        bool
	redis       redis.Scripter
	loginLimit  int
	signupLimit int
}

func newTestServer(t *testing.T, opts serverOptions) testServer {
	t.Helper()
	sessions, err := store.NewJWTSessionStore(testSecret, time.Hour, store.NewMemoryTokenRevoker(), store.JWTOptions{})
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	objects, err := storage.NewFileStore(t.TempDir(), "http://files.test")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	mem := store.NewMemoryStore()
	cfg := app.Config{
		Store:          mem,
		Sessions:       sessions,
		Objects:        objects,
		Events:         &events.Recorder{},
		MaxUploadBytes: 1024,
	}
	if opts.demo {
		cfg.Demo = auth.NewDemoDirectory()
	}
	a, err := app.New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := New(Config{
		App:                        a,
		Redis:                      opts.redis,
		RegisterRateLimitPerMinute: opts.signupLimit,
		LoginRateLimitPerMinute:    opts.loginLimit,
		CORSAllowedOrigins:         []string{"*"},
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return testServer{url: ts.URL, app: a, store: mem}
}

// do sends a JSON request and decodes the JSON response into out when non-nil.
func (ts testServer) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.url+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (ts testServer) register(t *testing.T, email, role string) (domain.User, string) {
	t.Helper()
	body := map[string]string{
		"email":     email,
		"password":  "secret123",
		"firstName": "Test",
		"lastName":  "User",
	}
	if role != "" {
		body["role"] = role
	}
	var resp authResponse
	status := ts.do(t, http.MethodPost, "/api/users/register", "", body, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, status)
	}
	return resp.User, resp.Token
}

// employer registers an employer account that owns a fresh company.
func (ts testServer) employer(t *testing.T, email string) (domain.User, string, domain.Company) {
	t.Helper()
	user, token := ts.register(t, email, "employer")
	var company domain.Company
	if status := ts.do(t, http.MethodPost, "/api/companies", token, map[string]string{"name": "Co " + email}, &company); status != http.StatusCreated {
		t.Fatalf("create company: status %d", status)
	}
	return user, token, company
}

func (ts testServer) postJob(t *testing.T, token, companyID, title, jobType string) domain.Job {
	t.Helper()
	var job domain.Job
	status := ts.do(t, http.MethodPost, "/api/jobs", token, map[string]any{
		"title":       title,
		"companyId":   companyID,
		"location":    "Remote",
		"description": "Write Go services",
		"type":        jobType,
		"tags":        []string{"go"},
	}, &job)
	if status != http.StatusCreated {
		t.Fatalf("create job %s: status %d", title, status)
	}
	return job
}

type messageBody struct {
	Message string   `json:"message"`
	Details []string `json:"details"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	var body map[string]string
	if status := ts.do(t, http.MethodGet, "/healthz", "", nil, &body); status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: %d %v", status, body)
	}
}

func TestAuthMiddlewareMessages(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "missing", header: "", want: "No token provided"},
		{name: "wrong scheme", header: "Basic abc", want: "Token is not valid"},
		{name: "garbage token", header: "Bearer not-a-jwt", want: "Token is not valid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, ts.url+"/api/users/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			var body messageBody
			_ = json.NewDecoder(resp.Body).Decode(&body)
			if resp.StatusCode != http.StatusUnauthorized || body.Message != tc.want {
				t.Fatalf("expected 401 %q, got %d %q", tc.want, resp.StatusCode, body.Message)
			}
		})
	}
}

func TestRegisterLoginAndLogout(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	first, _ := ts.register(t, "admin@example.com", "")
	if first.Role != domain.RoleAdmin {
		t.Fatalf("expected first user admin, got %s", first.Role)
	}
	ts.register(t, "user@example.com", "")

	var dup messageBody
	status := ts.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"email": "user@example.com", "password": "secret123", "firstName": "A", "lastName": "B",
	}, &dup)
	if status != http.StatusBadRequest || dup.Message != "User already exists" {
		t.Fatalf("duplicate register: %d %q", status, dup.Message)
	}

	var bad messageBody
	if status := ts.do(t, http.MethodPost, "/api/users/login", "", map[string]string{"email": "user@example.com", "password": "nope"}, &bad); status != http.StatusBadRequest || bad.Message != "Invalid credentials" {
		t.Fatalf("bad login: %d %q", status, bad.Message)
	}

	var login authResponse
	if status := ts.do(t, http.MethodPost, "/api/users/login", "", map[string]string{"email": "user@example.com", "password": "secret123"}, &login); status != http.StatusOK {
		t.Fatalf("login status %d", status)
	}
	claims := decodeClaims(t, login.Token)
	if claims["role"] != string(domain.RoleUser) || claims["id"] != login.User.ID {
		t.Fatalf("unexpected token claims %v", claims)
	}

	var profile domain.User
	if status := ts.do(t, http.MethodGet, "/api/users/profile", login.Token, nil, &profile); status != http.StatusOK || profile.Email != "user@example.com" {
		t.Fatalf("profile: %d %+v", status, profile)
	}
	if status := ts.do(t, http.MethodPost, "/api/users/logout", login.Token, nil, nil); status != http.StatusOK {
		t.Fatalf("logout status %d", status)
	}
	var after messageBody
	if status := ts.do(t, http.MethodGet, "/api/users/profile", login.Token, nil, &after); status != http.StatusUnauthorized || after.Message != "Token is not valid" {
		t.Fatalf("revoked token: %d %q", status, after.Message)
	}
}

func decodeClaims(t *testing.T, token string) map[string]any {
	t.Helper()
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token is not a JWT: %q", token)
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	claims := map[string]any{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		t.Fatalf("unmarshal claims: %v", err)
	}
	return claims
}

func TestRegisterValidatesBody(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	var body messageBody
	status := ts.do(t, http.MethodPost, "/api/users/register", "", map[string]string{"email": "x@example.com", "password": "secret123", "role": "admin"}, &body)
	if status != http.StatusBadRequest || len(body.Details) == 0 {
		t.Fatalf("expected schema error with details, got %d %+v", status, body)
	}
}

func TestChangePasswordReturnsFreshToken(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	_, token := ts.register(t, "u@example.com", "")
	var resp map[string]string
	status := ts.do(t, http.MethodPut, "/api/users/password", token, map[string]string{
		"currentPassword": "secret123",
		"newPassword":     "newsecret456",
	}, &resp)
	if status != http.StatusOK || resp["token"] == "" {
		t.Fatalf("change password: %d %v", status, resp)
	}
	if status := ts.do(t, http.MethodGet, "/api/users/profile", token, nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("old token still valid: %d", status)
	}
	if status := ts.do(t, http.MethodGet, "/api/users/profile", resp["token"], nil, nil); status != http.StatusOK {
		t.Fatalf("fresh token rejected: %d", status)
	}
}

func TestListJobsQueryParameters(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	ts.register(t, "admin@example.com", "")
	_, token, company := ts.employer(t, "boss@example.com")
	for i := 0; i < 12; i++ {
		jobType := "Full-time"
		if i < 4 {
			jobType = "Remote"
		}
		ts.postJob(t, token, company.ID, "job", jobType)
	}

	var remote domain.JobPage
	if status := ts.do(t, http.MethodGet, "/api/jobs?type=Remote", "", nil, &remote); status != http.StatusOK {
		t.Fatalf("list remote status %d", status)
	}
	if remote.TotalJobs != 4 {
		t.Fatalf("expected 4 remote jobs, got %d", remote.TotalJobs)
	}
	for _, j := range remote.Jobs {
		if j.Type != domain.JobRemote {
			t.Fatalf("non-remote job %+v", j)
		}
	}

	var page domain.JobPage
	if status := ts.do(t, http.MethodGet, "/api/jobs?page=2&limit=5", "", nil, &page); status != http.StatusOK {
		t.Fatalf("list page status %d", status)
	}
	if page.CurrentPage != 2 || page.TotalPages != 3 || page.TotalJobs != 12 || len(page.Jobs) != 5 {
		t.Fatalf("unexpected page %+v", page)
	}

	for _, q := range []string{"page=abc", "limit=0", "type=Gig"} {
		if status := ts.do(t, http.MethodGet, "/api/jobs?"+q, "", nil, nil); status != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, status)
		}
	}

	var missing messageBody
	if status := ts.do(t, http.MethodGet, "/api/jobs/nope", "", nil, &missing); status != http.StatusNotFound || missing.Message != "Job not found" {
		t.Fatalf("missing job: %d %q", status, missing.Message)
	}
}

func TestCreateJobRoleGate(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	ts.register(t, "admin@example.com", "")
	_, _, company := ts.employer(t, "boss@example.com")
	_, seekerToken := ts.register(t, "seeker@example.com", "")
	status := ts.do(t, http.MethodPost, "/api/jobs", seekerToken, map[string]any{
		"title": "x", "companyId": company.ID, "location": "x", "description": "x", "type": "Remote",
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", status)
	}
}

func TestApplicationFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	ts.register(t, "admin@example.com", "")
	_, ownerToken, company := ts.employer(t, "boss@example.com")
	_, otherToken, _ := ts.employer(t, "other@example.com")
	job := ts.postJob(t, ownerToken, company.ID, "Engineer", "Contract")
	_, seekerToken := ts.register(t, "seeker@example.com", "")

	var created domain.Application
	if status := ts.do(t, http.MethodPost, "/api/applications", seekerToken, map[string]string{"jobId": job.ID}, &created); status != http.StatusCreated {
		t.Fatalf("apply status %d", status)
	}
	var dup messageBody
	if status := ts.do(t, http.MethodPost, "/api/applications", seekerToken, map[string]string{"jobId": job.ID}, &dup); status != http.StatusBadRequest || dup.Message != "You have already applied for this job" {
		t.Fatalf("duplicate apply: %d %q", status, dup.Message)
	}

	update := map[string]string{"status": "Hired"}
	if status := ts.do(t, http.MethodPut, "/api/applications/"+created.ID, otherToken, update, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", status)
	}
	var unchanged domain.Application
	if status := ts.do(t, http.MethodGet, "/api/applications/"+created.ID, seekerToken, nil, &unchanged); status != http.StatusOK || unchanged.Status != domain.ApplicationPending {
		t.Fatalf("application changed: %d %+v", status, unchanged)
	}

	var updated domain.Application
	if status := ts.do(t, http.MethodPut, "/api/applications/"+created.ID, ownerToken, update, &updated); status != http.StatusOK || updated.Status != domain.ApplicationHired {
		t.Fatalf("owner update: %d %+v", status, updated)
	}

	var forJob []domain.Application
	if status := ts.do(t, http.MethodGet, "/api/applications/job/"+job.ID, ownerToken, nil, &forJob); status != http.StatusOK || len(forJob) != 1 {
		t.Fatalf("job applications: %d %d", status, len(forJob))
	}
	if status := ts.do(t, http.MethodGet, "/api/applications/job/"+job.ID, otherToken, nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 listing other job, got %d", status)
	}
	var mine []domain.Application
	if status := ts.do(t, http.MethodGet, "/api/applications/user", seekerToken, nil, &mine); status != http.StatusOK || len(mine) != 1 || mine[0].Job == nil {
		t.Fatalf("my applications: %d %+v", status, mine)
	}
}

func TestCompanyLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	_, adminToken := ts.register(t, "admin@example.com", "")
	founder, founderToken := ts.register(t, "founder@example.com", "")

	var company domain.Company
	if status := ts.do(t, http.MethodPost, "/api/companies", founderToken, map[string]string{"name": "Acme"}, &company); status != http.StatusCreated {
		t.Fatalf("create company status %d", status)
	}
	var profile domain.User
	ts.do(t, http.MethodGet, "/api/users/profile", founderToken, nil, &profile)
	if profile.Role != domain.RoleEmployer || profile.CompanyID != company.ID {
		t.Fatalf("founder not promoted: %+v", profile)
	}

	if status := ts.do(t, http.MethodPut, "/api/companies/"+company.ID+"/verify", founderToken, map[string]string{}, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 verify by employer, got %d", status)
	}
	var verified domain.Company
	if status := ts.do(t, http.MethodPut, "/api/companies/"+company.ID+"/verify", adminToken, map[string]string{}, &verified); status != http.StatusOK || verified.Status != domain.CompanyVerified {
		t.Fatalf("verify: %d %+v", status, verified)
	}

	if status := ts.do(t, http.MethodDelete, "/api/companies/"+company.ID, founderToken, nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 delete by employer, got %d", status)
	}
	if status := ts.do(t, http.MethodDelete, "/api/companies/"+company.ID, adminToken, nil, nil); status != http.StatusOK {
		t.Fatalf("admin delete status %d", status)
	}
	after, ok, err := ts.store.GetUserByID(context.Background(), founder.ID)
	if err != nil || !ok || after.CompanyID != "" {
		t.Fatalf("expected company cleared: %v %v %+v", err, ok, after)
	}
	var missing messageBody
	if status := ts.do(t, http.MethodGet, "/api/companies/"+company.ID, "", nil, &missing); status != http.StatusNotFound || missing.Message != "Company not found" {
		t.Fatalf("deleted company: %d %q", status, missing.Message)
	}
}

func TestAdminUserRoutes(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	admin, adminToken := ts.register(t, "admin@example.com", "")
	user, userToken := ts.register(t, "user@example.com", "")

	if status := ts.do(t, http.MethodGet, "/api/admin/users", userToken, nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", status)
	}
	var list struct {
		Items []domain.User `json:"items"`
		Count int           `json:"count"`
	}
	if status := ts.do(t, http.MethodGet, "/api/admin/users", adminToken, nil, &list); status != http.StatusOK || list.Count != 2 {
		t.Fatalf("list users: %d %+v", status, list)
	}
	if status := ts.do(t, http.MethodPatch, "/api/admin/users/"+admin.ID, adminToken, map[string]string{"role": "user"}, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for own role change, got %d", status)
	}
	var updated domain.User
	if status := ts.do(t, http.MethodPatch, "/api/admin/users/"+user.ID, adminToken, map[string]string{"role": "employer"}, &updated); status != http.StatusOK || updated.Role != domain.RoleEmployer {
		t.Fatalf("role update: %d %+v", status, updated)
	}
	// The stored role is authoritative for existing tokens.
	var profile domain.User
	if status := ts.do(t, http.MethodGet, "/api/users/profile", userToken, nil, &profile); status != http.StatusOK || profile.Role != domain.RoleEmployer {
		t.Fatalf("profile after promotion: %d %+v", status, profile)
	}
}

func TestDemoLogin(t *testing.T) {
	creds := map[string]string{"email": "employer@demo.local", "password": auth.DemoPassword}

	disabled := newTestServer(t, serverOptions{})
	if status := disabled.do(t, http.MethodPost, "/api/users/login", "", creds, nil); status != http.StatusBadRequest {
		t.Fatalf("expected demo login refused, got %d", status)
	}

	enabled := newTestServer(t, serverOptions{demo: true})
	var login authResponse
	if status := enabled.do(t, http.MethodPost, "/api/users/login", "", creds, &login); status != http.StatusOK {
		t.Fatalf("demo login status %d", status)
	}
	if status := enabled.do(t, http.MethodGet, "/api/users/profile", login.Token, nil, nil); status != http.StatusOK {
		t.Fatalf("demo profile status %d", status)
	}
	var body messageBody
	if status := enabled.do(t, http.MethodPost, "/api/companies", login.Token, map[string]string{"name": "Demo"}, &body); status != http.StatusForbidden {
		t.Fatalf("expected demo write refused, got %d %q", status, body.Message)
	}
}

func TestRegisterRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ts := newTestServer(t, serverOptions{redis: client, signupLimit: 1, loginLimit: 10})

	ts.register(t, "a@example.com", "")
	status := ts.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"email": "b@example.com", "password": "secret123", "firstName": "B", "lastName": "B",
	}, nil)
	if status != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
}

func TestUploadResumeMultipart(t *testing.T) {
	ts := newTestServer(t, serverOptions{})
	_, token := ts.register(t, "u@example.com", "")

	upload := func(name string, content []byte) (int, map[string]string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write(content)
		_ = mw.Close()
		req, _ := http.NewRequest(http.MethodPost, ts.url+"/api/uploads/resume", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload request: %v", err)
		}
		defer resp.Body.Close()
		out := map[string]string{}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, out
	}

	if status, _ := upload("cv.exe", []byte("MZ")); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for extension, got %d", status)
	}
	if status, _ := upload("cv.pdf", bytes.Repeat([]byte("a"), 2048)); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized file, got %d", status)
	}
	status, body := upload("cv.pdf", []byte("%PDF-1.4"))
	if status != http.StatusCreated || !strings.HasPrefix(body["key"], "resumes/") {
		t.Fatalf("upload: %d %v", status, body)
	}
}
