// Package apostest provides an in-process fake of the CMS HTTP API for
// tests. It models just enough lifecycle behavior to matter: documents have
// draft and published variants addressed by compound identifiers, published
// documents refuse deletion until unpublished, and unknown identifiers
// return 404.
package apostest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/cms-check/pkg/lifecycle"
)

const (
	// DefaultUsername and DefaultPassword are the accepted login credentials.
	DefaultUsername = "admin"
	DefaultPassword = "test-password"

	defaultLocale = "en"
)

// storedDoc is one logical document with its lifecycle state.
type storedDoc struct {
	kind      lifecycle.Kind
	docID     string
	title     string
	slug      string
	archived  bool
	published bool
	fields    map[string]interface{}
}

// Server is the fake CMS. All exported methods are safe for concurrent use.
type Server struct {
	httpSrv *httptest.Server

	mu      sync.Mutex
	docs    map[string]*storedDoc // keyed by stable doc id
	token   string
	deletes []string // identifiers handed to the delete endpoint, in order
}

// NewServer starts the fake CMS on an ephemeral port. Callers must Close it.
func NewServer() *Server {
	s := &Server{docs: make(map[string]*storedDoc)}

	// The page tree root always exists.
	s.docs["home"] = &storedDoc{
		kind: lifecycle.KindPage, docID: "home", title: "Home", slug: "/", published: true,
	}
	// So does the global singleton.
	s.docs["global"] = &storedDoc{
		kind: lifecycle.KindGlobal, docID: "global", title: "Global", published: true,
		fields: map[string]interface{}{},
	}

	s.httpSrv = httptest.NewServer(s.routes())
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string { return s.httpSrv.URL }

// Close shuts the server down.
func (s *Server) Close() { s.httpSrv.Close() }

// Seed inserts a document directly into the store and returns its compound
// draft identifier.
func (s *Server) Seed(kind lifecycle.Kind, title string, published bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	docID := newDocID()
	s.docs[docID] = &storedDoc{kind: kind, docID: docID, title: title, published: published}
	return compoundID(docID, lifecycle.ModeDraft)
}

// Has reports whether the logical document behind any identifier form still
// exists.
func (s *Server) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[bareID(id)]
	return ok
}

// DeleteCalls returns the identifiers received by the delete endpoint.
func (s *Server) DeleteCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/@apostrophecms/login/login", s.handleLogin)

		// Everything past login needs a session token or an API key.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/@apostrophecms/login/whoami", s.handleWhoAmI)
			r.Post("/@apostrophecms/login/logout", s.handleLogout)
			r.Post("/@apostrophecms/attachment/upload", s.handleUpload)

			for kind, module := range map[lifecycle.Kind]string{
				lifecycle.KindImage:    "@apostrophecms/image",
				lifecycle.KindFile:     "@apostrophecms/file",
				lifecycle.KindImageTag: "@apostrophecms/image-tag",
				lifecycle.KindFileTag:  "@apostrophecms/file-tag",
				lifecycle.KindPage:     "@apostrophecms/page",
				lifecycle.KindUser:     "@apostrophecms/user",
				lifecycle.KindGlobal:   "@apostrophecms/global",
			} {
				kind := kind
				r.Route("/"+module, func(r chi.Router) {
					r.Get("/", s.handleList(kind))
					r.Post("/", s.handleCreate(kind))
					r.Get("/{id}", s.handleGet(kind))
					r.Patch("/{id}", s.handlePatch(kind))
					r.Delete("/{id}", s.handleDelete(kind))
					r.Post("/{id}/publish", s.handlePublish(kind))
					r.Post("/{id}/unpublish", s.handleUnpublish(kind))
				})
			}
		})
	})

	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(r) {
			renderError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid login body")
		return
	}
	if req.Username != DefaultUsername || req.Password != DefaultPassword {
		renderError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.mu.Lock()
	s.token = uuid.NewString()
	token := s.token
	s.mu.Unlock()

	render.JSON(w, r, map[string]string{"token": token})
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"_id":      "admin-user",
		"username": DefaultUsername,
		"role":     "admin",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	render.JSON(w, r, map[string]bool{"ok": true})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		renderError(w, r, http.StatusBadRequest, "expected multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	id := newDocID()
	name := header.Filename
	urls := map[string]string{}
	for _, size := range []string{"full", "two-thirds", "one-half", "one-third"} {
		urls[size] = fmt.Sprintf("%s/uploads/%s.%s.jpg", s.httpSrv.URL, id, size)
	}
	render.JSON(w, r, map[string]interface{}{
		"_id":       id,
		"name":      name,
		"extension": "jpg",
		"group":     "images",
		"length":    header.Size,
		"urls":      urls,
	})
}

func (s *Server) handleList(kind lifecycle.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if kind == lifecycle.KindGlobal {
			// The global doc is a singleton; its base path returns the doc
			// itself rather than a list.
			if d, ok := s.docs["global"]; ok {
				render.JSON(w, r, docJSON(d, lifecycle.ModeDraft))
				return
			}
			renderError(w, r, http.StatusNotFound, "global document not found")
			return
		}
		var results []map[string]interface{}
		for _, d := range s.docs {
			if d.kind == kind {
				results = append(results, docJSON(d, lifecycle.ModeDraft))
			}
		}
		render.JSON(w, r, map[string]interface{}{
			"results":     results,
			"pages":       1,
			"currentPage": 1,
		})
	}
}

func (s *Server) handleCreate(kind lifecycle.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]interface{}
		if err := render.DecodeJSON(r.Body, &fields); err != nil {
			renderError(w, r, http.StatusBadRequest, "invalid document body")
			return
		}

		if kind == lifecycle.KindPage {
			target, _ := fields["_targetId"].(string)
			position, _ := fields["_position"].(string)
			if target == "" || position == "" {
				renderError(w, r, http.StatusBadRequest, "pages need _targetId and _position")
				return
			}
			s.mu.Lock()
			_, ok := s.docs[bareID(target)]
			s.mu.Unlock()
			if !ok && target != "_home" {
				renderError(w, r, http.StatusNotFound, "target page not found")
				return
			}
		}

		title, _ := fields["title"].(string)
		slug, _ := fields["slug"].(string)

		s.mu.Lock()
		docID := newDocID()
		d := &storedDoc{kind: kind, docID: docID, title: title, slug: slug, fields: fields}
		s.docs[docID] = d
		s.mu.Unlock()

		render.Status(r, http.StatusOK)
		render.JSON(w, r, docJSON(d, lifecycle.ModeDraft))
	}
}

func (s *Server) handleGet(kind lifecycle.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if kind == lifecycle.KindPage && id == "_home" {
			id = "home"
		}

		s.mu.Lock()
		d, mode, ok := s.lookup(kind, id)
		s.mu.Unlock()
		if !ok {
			renderError(w, r, http.StatusNotFound, "document not found")
			return
		}
		render.JSON(w, r, docJSON(d, mode))
	}
}

func (s *Server) handlePatch(kind lifecycle.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]interface{}
		if err := render.DecodeJSON(r.Body, &fields); err != nil {
			renderError(w, r, http.StatusBadRequest, "invalid patch body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		d, mode, ok := s.lookup(kind, chi.URLParam(r, "id"))
		if !ok {
			renderError(w, r, http.StatusNotFound, "document not found")
			return
		}
		if title, ok := fields["title"].(string); ok {
			d.title = title
		}
		if slug, ok := fields["slug"].(string); ok {
			d.slug = slug
		}
		if archived, ok := fields["archived"].(bool); ok {
			d.archived = archived
		}
		if d.fields == nil {
			d.fields = map[string]interface{}{}
		}
		for k, v := range fields {
			if !strings.HasPrefix(k, "_") {
				d.fields[k] = v
			}
		}
		render.JSON(w, r, docJSON(d, mode))
	}
}

func (s *Server) handleDelete(kind lifecycle.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		defer s.mu.Unlock()
		s.deletes = append(s.deletes, id)

		d, mode, ok := s.lookup(kind, id)
		if !ok {
			renderError(w, r, http.StatusNotFound, "document not found")
			return
		}
		if mode == lifecycle.ModePublished {
			renderError(w, r, http.StatusConflict, "cannot delete the published version")
			return
		}
		if d.published {
			renderError(w, r, http.StatusConflict, "document is still published")
			return
		}
		delete(s.docs, d.docID)
		render.JSON(w, r, map[string]bool{"ok": true})
	}
}

func (s *Server) handlePublish(kind lifecycle.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, _, ok := s.lookup(kind, chi.URLParam(r, "id"))
		if !ok {
			renderError(w, r, http.StatusNotFound, "document not found")
			return
		}
		d.published = true
		render.JSON(w, r, docJSON(d, lifecycle.ModePublished))
	}
}

func (s *Server) handleUnpublish(kind lifecycle.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, _, ok := s.lookup(kind, chi.URLParam(r, "id"))
		if !ok {
			renderError(w, r, http.StatusNotFound, "document not found")
			return
		}
		if !d.published {
			renderError(w, r, http.StatusBadRequest, "document is not published")
			return
		}
		d.published = false
		render.JSON(w, r, docJSON(d, lifecycle.ModeDraft))
	}
}

// lookup resolves any accepted identifier form to the stored document and the
// mode the identifier addressed. The published form only resolves while the
// document is actually published. Callers hold s.mu.
func (s *Server) lookup(kind lifecycle.Kind, id string) (*storedDoc, string, bool) {
	docID := bareID(id)
	d, ok := s.docs[docID]
	if !ok || d.kind != kind {
		return nil, "", false
	}

	mode := lifecycle.ModeDraft
	if rest := strings.TrimPrefix(id, docID); rest != "" {
		parts := strings.Split(strings.TrimPrefix(rest, ":"), ":")
		if len(parts) != 2 {
			return nil, "", false
		}
		mode = parts[1]
		switch mode {
		case lifecycle.ModeDraft:
		case lifecycle.ModePublished:
			if !d.published {
				return nil, "", false
			}
		default:
			return nil, "", false
		}
	}
	return d, mode, true
}

func (s *Server) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "ApiKey ") && len(auth) > len("ApiKey ") {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && auth == "Bearer "+s.token
}

func docJSON(d *storedDoc, mode string) map[string]interface{} {
	out := map[string]interface{}{
		"_id":        compoundID(d.docID, mode),
		"aposDocId":  d.docID,
		"aposLocale": defaultLocale,
		"aposMode":   mode,
		"title":      d.title,
		"slug":       d.slug,
		"archived":   d.archived,
		"type":       string(d.kind),
	}
	for k, v := range d.fields {
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}
	return out
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}

func compoundID(docID, mode string) string {
	return docID + ":" + defaultLocale + ":" + mode
}

func bareID(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[:i]
	}
	return id
}

func newDocID() string {
	return "c" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
