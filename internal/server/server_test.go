package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/founders/internal/auth"
	"github.com/desertthunder/founders/internal/blob"
	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/repositories"
	"github.com/desertthunder/founders/internal/search"
	"github.com/desertthunder/founders/internal/shared"
	"github.com/desertthunder/founders/internal/tasks"
	th "github.com/desertthunder/founders/internal/testing"
)

const (
	adminToken = "admin-token"
	anaToken   = "ana-token"
	boToken    = "bo-token"
)

var principals = auth.StaticAuthenticator{
	adminToken: {Subject: "auth0|admin", Email: "admin@x.com"},
	anaToken:   {Subject: "auth0|ana", Email: "ana@x.com"},
	boToken:    {Subject: "auth0|bo", Email: "bo@x.com"},
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type testEnv struct {
	t       *testing.T
	dir     *repositories.Directory
	store   *blob.FSStore
	handler http.Handler
}

func newTestEnv(t *testing.T, withStore bool) *testEnv {
	t.Helper()

	config := shared.DefaultConfig()
	config.Server.RateLimit = 0
	config.Auth.AdminEmails = []string{"Admin@x.com"}

	env := &testEnv{t: t, dir: repositories.NewDirectory(th.NewTestDB(t))}
	opts := Options{
		Config:        config,
		Directory:     env.dir,
		Authenticator: principals,
		Logger:        shared.NewLogger(io.Discard),
	}
	if withStore {
		store, err := blob.NewFSStore(t.TempDir(), "/uploads")
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		env.store = store
		opts.Blob = store
	}

	srv, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.handler = srv.Handler()
	return env
}

// call sends body as JSON, or as-is when it is a []byte.
func (e *testEnv) call(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			e.t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(path, token, filename string, data []byte) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		e.t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func founderBody(name, email string) map[string]any {
	return map[string]any{"name": name, "email": email, "linkedin_url": "http://li/" + strings.ToLower(name)}
}

func TestNew(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument without a directory, got %v", err)
	}
}

func TestServerBasics(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("Root", func(t *testing.T) {
		rec := env.call(http.MethodGet, "/", "", nil)
		expectStatus(t, rec, http.StatusOK)
		if got := decode[map[string]string](t, rec)["message"]; got == "" {
			t.Error("expected a welcome message")
		}
	})

	t.Run("Health", func(t *testing.T) {
		rec := env.call(http.MethodGet, "/health", "", nil)
		expectStatus(t, rec, http.StatusOK)
		if got := decode[map[string]string](t, rec)["status"]; got != "healthy" {
			t.Errorf("expected healthy, got %q", got)
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		env.call(http.MethodGet, "/health", "", nil)
		rec := env.call(http.MethodGet, "/metrics", "", nil)
		expectStatus(t, rec, http.StatusOK)
		if !strings.Contains(rec.Body.String(), `founders_http_requests_total{method="GET",route="GET /health"`) {
			t.Error("expected request counter labelled with the route pattern")
		}
	})

	t.Run("Unknown route", func(t *testing.T) {
		expectStatus(t, env.call(http.MethodGet, "/nope", "", nil), http.StatusNotFound)
	})

	t.Run("Wrong method", func(t *testing.T) {
		expectStatus(t, env.call(http.MethodDelete, "/health", "", nil), http.StatusMethodNotAllowed)
	})

	t.Run("CORS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/founders", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("expected origin to be allowed, got %q", got)
		}
	})

	t.Run("Invalid token", func(t *testing.T) {
		rec := env.call(http.MethodGet, "/founders", "bogus", nil)
		expectStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("Bad paging", func(t *testing.T) {
		expectStatus(t, env.call(http.MethodGet, "/founders?limit=0", "", nil), http.StatusBadRequest)
		expectStatus(t, env.call(http.MethodGet, "/founders?skip=-1", "", nil), http.StatusBadRequest)
	})
}

func TestFounderRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	var ana FounderResponse
	t.Run("Create requires a token", func(t *testing.T) {
		expectStatus(t, env.call(http.MethodPost, "/founders", "", founderBody("Ana", "ana@x.com")), http.StatusUnauthorized)
	})

	t.Run("Create own profile links it", func(t *testing.T) {
		rec := env.call(http.MethodPost, "/founders", anaToken, founderBody("Ana", "ana@x.com"))
		expectStatus(t, rec, http.StatusCreated)

		ana = decode[FounderResponse](t, rec)
		if ana.ID == "" || !ana.ProfileVisible {
			t.Errorf("unexpected founder %+v", ana)
		}
		if !ana.ProfileLinked {
			t.Error("expected profile created by its owner to be linked")
		}
		if ana.Skills == nil || ana.Hobbies == nil {
			t.Error("expected empty tag lists, not null")
		}
	})

	t.Run("Create validation", func(t *testing.T) {
		tests := []struct {
			name string
			body any
			want int
		}{
			{"duplicate email", founderBody("Other", "ANA@x.com"), http.StatusConflict},
			{"missing email", map[string]any{"name": "Cy", "linkedin_url": "http://li/cy"}, http.StatusBadRequest},
			{"bad email", founderBody("Cy", "cy-at-x"), http.StatusBadRequest},
			{"unknown field", map[string]any{"name": "Cy", "email": "cy@x.com", "linkedin_url": "x", "age": 3}, http.StatusBadRequest},
			{"unknown startup", map[string]any{"name": "Cy", "email": "cy@x.com", "linkedin_url": "x", "startup_id": "nope"}, http.StatusBadRequest},
			{"malformed", []byte("{"), http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				expectStatus(t, env.call(http.MethodPost, "/founders", boToken, tt.body), tt.want)
			})
		}
	})

	t.Run("Get", func(t *testing.T) {
		rec := env.call(http.MethodGet, "/founders/"+ana.ID, "", nil)
		expectStatus(t, rec, http.StatusOK)
		if got := decode[FounderResponse](t, rec); got.Email != "ana@x.com" {
			t.Errorf("expected ana@x.com, got %s", got.Email)
		}
		expectStatus(t, env.call(http.MethodGet, "/founders/missing", "", nil), http.StatusNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		body := founderBody("Ana Maria", "ana@x.com")
		body["location"] = "Lisbon"

		expectStatus(t, env.call(http.MethodPut, "/founders/"+ana.ID, boToken, body), http.StatusForbidden)

		rec := env.call(http.MethodPut, "/founders/"+ana.ID, anaToken, body)
		expectStatus(t, rec, http.StatusOK)
		if got := decode[FounderResponse](t, rec); got.Name != "Ana Maria" || got.Location != "Lisbon" {
			t.Errorf("update not applied: %+v", got)
		}

		expectStatus(t, env.call(http.MethodPut, "/founders/"+ana.ID, adminToken, body), http.StatusOK)
	})

	t.Run("Visibility", func(t *testing.T) {
		hide := map[string]any{"profile_visible": false}
		expectStatus(t, env.call(http.MethodPatch, "/founders/"+ana.ID+"/visibility", anaToken, hide), http.StatusForbidden)
		expectStatus(t, env.call(http.MethodPatch, "/founders/"+ana.ID+"/visibility", adminToken, map[string]any{}), http.StatusBadRequest)
		expectStatus(t, env.call(http.MethodPatch, "/founders/"+ana.ID+"/visibility", adminToken, hide), http.StatusOK)

		expectStatus(t, env.call(http.MethodGet, "/founders/"+ana.ID, "", nil), http.StatusNotFound)
		expectStatus(t, env.call(http.MethodGet, "/founders/"+ana.ID, boToken, nil), http.StatusNotFound)
		expectStatus(t, env.call(http.MethodGet, "/founders/"+ana.ID, anaToken, nil), http.StatusOK)

		if got := decode[[]FounderResponse](t, env.call(http.MethodGet, "/founders", "", nil)); len(got) != 0 {
			t.Errorf("expected hidden founder to be left out of the public list, got %d", len(got))
		}
		if got := decode[[]FounderResponse](t, env.call(http.MethodGet, "/founders", adminToken, nil)); len(got) != 1 {
			t.Errorf("expected admin to see hidden founders, got %d", len(got))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		expectStatus(t, env.call(http.MethodDelete, "/founders/"+ana.ID, anaToken, nil), http.StatusForbidden)
		expectStatus(t, env.call(http.MethodDelete, "/founders/"+ana.ID, adminToken, nil), http.StatusOK)
		expectStatus(t, env.call(http.MethodGet, "/founders/"+ana.ID, adminToken, nil), http.StatusNotFound)
		expectStatus(t, env.call(http.MethodDelete, "/founders/"+ana.ID, adminToken, nil), http.StatusNotFound)
	})
}

func TestCheckProfile(t *testing.T) {
	env := newTestEnv(t, false)

	type result struct {
		HasProfile    bool             `json:"has_profile"`
		ProfileLinked bool             `json:"profile_linked"`
		Founder       *FounderResponse `json:"founder"`
	}

	expectStatus(t, env.call(http.MethodPost, "/founders", adminToken, founderBody("Bo", "BO@x.com")), http.StatusCreated)

	t.Run("Anonymous", func(t *testing.T) {
		expectStatus(t, env.call(http.MethodPost, "/auth/check-profile", "", nil), http.StatusUnauthorized)
	})

	t.Run("No profile", func(t *testing.T) {
		rec := env.call(http.MethodPost, "/auth/check-profile", anaToken, nil)
		expectStatus(t, rec, http.StatusOK)
		if got := decode[result](t, rec); got.HasProfile || got.Founder != nil {
			t.Errorf("expected no profile, got %+v", got)
		}
	})

	t.Run("Links by email", func(t *testing.T) {
		for range 2 {
			rec := env.call(http.MethodPost, "/auth/check-profile", boToken, nil)
			expectStatus(t, rec, http.StatusOK)

			got := decode[result](t, rec)
			if !got.HasProfile || !got.ProfileLinked || got.Founder == nil || got.Founder.Name != "Bo" {
				t.Errorf("expected linked profile for Bo, got %+v", got)
			}
		}

		f, err := env.dir.Founders.GetByAuthSubject("auth0|bo")
		if err != nil {
			t.Fatalf("expected founder linked to subject: %v", err)
		}
		if f.Name != "Bo" {
			t.Errorf("expected Bo, got %s", f.Name)
		}
	})
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("Startups", func(t *testing.T) {
		expectStatus(t, env.call(http.MethodPost, "/startups", anaToken, map[string]any{"name": "Acme", "industry": "Spacetech"}), http.StatusBadRequest)

		rec := env.call(http.MethodPost, "/startups", anaToken, map[string]any{"name": "Acme", "industry": "Fintech", "stage": "Seed"})
		expectStatus(t, rec, http.StatusCreated)
		acme := decode[StartupResponse](t, rec)

		expectStatus(t, env.call(http.MethodPost, "/startups", anaToken, map[string]any{"name": "Acme", "website_url": "acme"}), http.StatusBadRequest)

		rec = env.call(http.MethodPut, "/startups/"+acme.ID, anaToken, map[string]any{"name": "Acme", "stage": "Series A"})
		expectStatus(t, rec, http.StatusOK)
		if got := decode[StartupResponse](t, rec); got.Stage != "Series A" {
			t.Errorf("expected Series A, got %q", got.Stage)
		}

		body := founderBody("Ana", "ana@x.com")
		body["startup_id"] = acme.ID
		rec = env.call(http.MethodPost, "/founders", anaToken, body)
		expectStatus(t, rec, http.StatusCreated)
		if got := decode[FounderResponse](t, rec); got.Startup == nil || got.Startup.Name != "Acme" {
			t.Errorf("expected founder response to embed the startup, got %+v", got.Startup)
		}

		expectStatus(t, env.call(http.MethodDelete, "/startups/"+acme.ID, anaToken, nil), http.StatusForbidden)
		expectStatus(t, env.call(http.MethodDelete, "/startups/"+acme.ID, adminToken, nil), http.StatusOK)
		expectStatus(t, env.call(http.MethodGet, "/startups/"+acme.ID, "", nil), http.StatusNotFound)
	})

	t.Run("Tags", func(t *testing.T) {
		for _, path := range []string{"/skills", "/hobbies"} {
			t.Run(path, func(t *testing.T) {
				rec := env.call(http.MethodPost, path, anaToken, map[string]any{"name": "Go", "category": "Engineering"})
				expectStatus(t, rec, http.StatusCreated)
				tag := decode[TagResponse](t, rec)

				expectStatus(t, env.call(http.MethodPost, path, anaToken, map[string]any{"name": " go "}), http.StatusConflict)
				expectStatus(t, env.call(http.MethodPost, path, anaToken, map[string]any{"name": ""}), http.StatusBadRequest)
				env.call(http.MethodPost, path, anaToken, map[string]any{"name": "Chess", "category": "Games"})

				got := decode[[]TagResponse](t, env.call(http.MethodGet, path+"?category=Engineering", "", nil))
				if len(got) != 1 || got[0].ID != tag.ID {
					t.Errorf("expected only Go in Engineering, got %+v", got)
				}

				expectStatus(t, env.call(http.MethodGet, path+"/"+tag.ID, "", nil), http.StatusOK)
				expectStatus(t, env.call(http.MethodDelete, path+"/"+tag.ID, adminToken, nil), http.StatusOK)
			})
		}
	})
}

func TestCommunityRoutes(t *testing.T) {
	env := newTestEnv(t, false)
	ana := decode[FounderResponse](t, env.call(http.MethodPost, "/founders", anaToken, founderBody("Ana", "ana@x.com")))

	t.Run("Help requests", func(t *testing.T) {
		body := map[string]any{"founder_id": ana.ID, "title": "Need a CTO", "description": "Looking for a cofounder", "urgency": "High"}

		expectStatus(t, env.call(http.MethodPost, "/help-requests", boToken, body), http.StatusForbidden)

		rec := env.call(http.MethodPost, "/help-requests", anaToken, body)
		expectStatus(t, rec, http.StatusCreated)
		req := decode[HelpRequestResponse](t, rec)
		if req.Status != models.DefaultStatus {
			t.Errorf("expected new request to be open, got %q", req.Status)
		}

		body["urgency"] = "Whenever"
		expectStatus(t, env.call(http.MethodPost, "/help-requests", anaToken, body), http.StatusBadRequest)

		got := decode[[]HelpRequestResponse](t, env.call(http.MethodGet, "/help-requests?founder_id="+ana.ID, "", nil))
		if len(got) != 1 {
			t.Errorf("expected 1 help request, got %d", len(got))
		}
	})

	t.Run("Events", func(t *testing.T) {
		body := map[string]any{"title": "Demo night", "date_time": "2030-05-01T18:00:00Z"}

		expectStatus(t, env.call(http.MethodPost, "/events", anaToken, body), http.StatusForbidden)
		expectStatus(t, env.call(http.MethodPost, "/events", adminToken, map[string]any{"title": "No date"}), http.StatusBadRequest)

		rec := env.call(http.MethodPost, "/events", adminToken, body)
		expectStatus(t, rec, http.StatusCreated)
		event := decode[EventResponse](t, rec)

		expectStatus(t, env.call(http.MethodGet, "/events/"+event.ID, "", nil), http.StatusOK)
		if got := decode[[]EventResponse](t, env.call(http.MethodGet, "/events?upcoming=true", "", nil)); len(got) != 1 {
			t.Errorf("expected 1 upcoming event, got %d", len(got))
		}
	})
}

func TestImportRoutes(t *testing.T) {
	env := newTestEnv(t, true)
	sheet := th.CSV("name,email,startup name,linkedin url,skills",
		"Ana,ana@x.com,Acme,http://li/ana,Go",
		`Bo,bo@x.com,Acme,http://li/bo,"Go, Sales"`,
		"Cy,,Acme,http://li/cy,",
	)

	t.Run("Authorization", func(t *testing.T) {
		expectStatus(t, env.upload("/admin/import", "", "f.csv", sheet), http.StatusUnauthorized)
		expectStatus(t, env.upload("/admin/import", anaToken, "f.csv", sheet), http.StatusForbidden)
		expectStatus(t, env.call(http.MethodGet, "/admin/imports", anaToken, nil), http.StatusForbidden)
	})

	t.Run("Bad parameters", func(t *testing.T) {
		expectStatus(t, env.upload("/admin/import?dry_run=maybe", adminToken, "f.csv", sheet), http.StatusBadRequest)
		expectStatus(t, env.upload("/admin/import?mode=merge", adminToken, "f.csv", sheet), http.StatusBadRequest)
		expectStatus(t, env.upload("/admin/import", adminToken, "f.csv", nil), http.StatusBadRequest)
	})

	t.Run("Dry run", func(t *testing.T) {
		rec := env.upload("/admin/import?dry_run=true", adminToken, "founders.csv", sheet)
		expectStatus(t, rec, http.StatusOK)

		result := decode[models.ImportResult](t, rec)
		if !result.DryRun || result.Processed != 3 || result.Created != 2 || result.Skipped != 1 {
			t.Errorf("unexpected dry run result %+v", result)
		}
		if founders, _ := env.dir.Founders.List(nil); len(founders) != 0 {
			t.Errorf("expected dry run to write nothing, got %d founders", len(founders))
		}
	})

	t.Run("Multipart", func(t *testing.T) {
		rec := env.upload("/admin/import", adminToken, "founders.csv", sheet)
		expectStatus(t, rec, http.StatusOK)
		if rec.Header().Get("X-Import-Run") == "" {
			t.Error("expected X-Import-Run header")
		}

		result := decode[models.ImportResult](t, rec)
		if result.Created != 2 || result.Skipped != 1 || result.Errors != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(result.Details) != 3 || result.Details[2].Reason != tasks.ReasonMissingEmail {
			t.Errorf("expected the third row skipped for a missing email, got %+v", result.Details)
		}

		skills, _ := env.dir.Skills.List(nil)
		if len(skills) != 2 {
			t.Errorf("expected skills Go and Sales, got %d", len(skills))
		}
	})

	t.Run("Raw body in skip mode", func(t *testing.T) {
		update := th.CSV("name,email,startup name,linkedin url", "Ana B,ana@x.com,Acme,http://li/ana")
		rec := env.call(http.MethodPost, "/admin/import?mode=skip", adminToken, update)
		expectStatus(t, rec, http.StatusOK)

		if result := decode[models.ImportResult](t, rec); result.Skipped != 1 || result.Updated != 0 {
			t.Errorf("expected existing email to be skipped, got %+v", result)
		}
	})

	t.Run("Unsupported upload", func(t *testing.T) {
		rec := env.upload("/admin/import", adminToken, "logo.gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"))
		expectStatus(t, rec, http.StatusUnsupportedMediaType)
	})

	t.Run("History", func(t *testing.T) {
		rec := env.call(http.MethodGet, "/admin/imports", adminToken, nil)
		expectStatus(t, rec, http.StatusOK)

		runs := decode[[]ImportRunResponse](t, rec)
		if len(runs) != 4 {
			t.Fatalf("expected 4 recorded runs, got %d", len(runs))
		}
		if runs[0].Status != models.RunFailed || runs[0].Error == "" {
			t.Errorf("expected newest run to have failed, got %+v", runs[0])
		}
		if runs[2].Status != models.RunCompleted || runs[2].Created != 2 || runs[2].Actor != "admin@x.com" {
			t.Errorf("unexpected multipart run %+v", runs[2])
		}
		if runs[2].ArchiveKey == "" || !strings.HasPrefix(runs[2].ArchiveKey, "imports/") {
			t.Errorf("expected upload to be archived, got %q", runs[2].ArchiveKey)
		}
		if !runs[3].DryRun {
			t.Error("expected oldest run to be the dry run")
		}

		failed := decode[[]ImportRunResponse](t, env.call(http.MethodGet, "/admin/imports?status=failed", adminToken, nil))
		if len(failed) != 1 {
			t.Errorf("expected 1 failed run, got %d", len(failed))
		}
	})
}

func TestUploadImage(t *testing.T) {
	t.Run("Stores and serves images", func(t *testing.T) {
		env := newTestEnv(t, true)

		expectStatus(t, env.upload("/upload-image", "", "me.png", pngBytes), http.StatusUnauthorized)

		rec := env.upload("/upload-image", anaToken, "me.png", pngBytes)
		expectStatus(t, rec, http.StatusCreated)

		got := decode[uploadResponse](t, rec)
		if !strings.HasPrefix(got.URL, "/uploads/images/") || !strings.HasSuffix(got.Key, ".png") {
			t.Errorf("unexpected upload response %+v", got)
		}

		served := env.call(http.MethodGet, got.URL, "", nil)
		expectStatus(t, served, http.StatusOK)
		if !bytes.Equal(served.Body.Bytes(), pngBytes) {
			t.Error("served image differs from upload")
		}
	})

	t.Run("Rejects non-images", func(t *testing.T) {
		env := newTestEnv(t, true)
		expectStatus(t, env.upload("/upload-image", anaToken, "me.png", []byte("just text")), http.StatusUnsupportedMediaType)
	})

	t.Run("Disabled without storage", func(t *testing.T) {
		env := newTestEnv(t, false)
		expectStatus(t, env.upload("/upload-image", anaToken, "me.png", pngBytes), http.StatusServiceUnavailable)
	})
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, false)
	env.call(http.MethodPost, "/founders", adminToken, founderBody("Anabel", "anabel@x.com"))
	hidden := decode[FounderResponse](t, env.call(http.MethodPost, "/founders", adminToken, founderBody("Anatol", "anatol@x.com")))
	env.call(http.MethodPatch, "/founders/"+hidden.ID+"/visibility", adminToken, map[string]any{"profile_visible": false})
	env.call(http.MethodPost, "/startups", adminToken, map[string]any{"name": "Banana Labs"})

	expectStatus(t, env.call(http.MethodGet, "/search", "", nil), http.StatusBadRequest)
	expectStatus(t, env.call(http.MethodGet, "/search?q=ana&limit=x", "", nil), http.StatusBadRequest)

	rec := env.call(http.MethodGet, "/search?q=ana", "", nil)
	expectStatus(t, rec, http.StatusOK)

	hits := decode[[]search.Hit](t, rec)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %+v", hits)
	}
	if hits[0].Kind != search.KindFounder || hits[0].Label != "Anabel" {
		t.Errorf("expected Anabel first, got %+v", hits[0])
	}
	for _, h := range hits {
		if h.ID == hidden.ID {
			t.Error("hidden founder must not be searchable")
		}
	}
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("Chain order", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		Chain(ok, tag("a"), tag("b"), tag("c")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if strings.Join(order, "") != "abc" {
			t.Errorf("expected abc, got %v", order)
		}
	})

	t.Run("RateLimit", func(t *testing.T) {
		h := Chain(ok, RateLimit(0.001, 1))
		send := func(addr string) int {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Code
		}

		if got := send("10.0.0.1:1234"); got != http.StatusOK {
			t.Errorf("expected first request to pass, got %d", got)
		}
		if got := send("10.0.0.1:5678"); got != http.StatusTooManyRequests {
			t.Errorf("expected second request to be limited, got %d", got)
		}
		if got := send("10.0.0.2:1234"); got != http.StatusOK {
			t.Errorf("expected other client to pass, got %d", got)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
		rec := httptest.NewRecorder()
		Chain(boom, Recover(shared.NewLogger(io.Discard))).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("Authenticate with unavailable provider", func(t *testing.T) {
		h := Chain(ok, Authenticate(failingAuthenticator{}, shared.NewLogger(io.Discard)))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer t")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}

type failingAuthenticator struct{}

func (failingAuthenticator) Authenticate(context.Context, string) (*auth.Principal, error) {
	return nil, errors.New("connection refused")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrFounderExists, http.StatusConflict},
		{shared.ErrTagExists, http.StatusConflict},
		{shared.ErrInvalidInput, http.StatusBadRequest},
		{shared.ErrNotAuthenticated, http.StatusUnauthorized},
		{shared.ErrForbidden, http.StatusForbidden},
		{&tasks.SchemaError{Err: tasks.ErrNoHeader}, http.StatusBadRequest},
		{&tasks.DecodeError{Reason: "gif", Err: shared.ErrUnsupportedType}, http.StatusUnsupportedMediaType},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}

	rec := httptest.NewRecorder()
	writeError(rec, errors.New("secret detail"))
	if strings.Contains(rec.Body.String(), "secret") {
		t.Error("internal errors must not be echoed")
	}
}
