package ui

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aanand-mishra/users-api/internal/http/middleware"
	"github.com/aanand-mishra/users-api/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

const hxRequest = "HX-Request"

func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get(hxRequest) == "true"
}

type dialog struct {
	Editing bool
	ID      string
	Form    Form
	Invalid string
	Genders []string
}

type page struct {
	State
	Dialog  *dialog
	Confirm *types.User
}

// Handler serves the UI over a Model.
type Handler struct {
	model *Model
	tmpl  *template.Template
	log   *slog.Logger
}

// NewHandler parses the embedded templates.
func NewHandler(model *Model, log *slog.Logger) (*Handler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Handler{model: model, tmpl: tmpl, log: log}, nil
}

// Routes returns the UI router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(h.log))
	r.Use(chimw.Recoverer)

	r.Get("/", h.index)
	r.Get("/users/new", h.newForm)
	r.Get("/users/{id}/edit", h.editForm)
	r.Get("/users/{id}/delete", h.confirmDelete)
	r.Post("/users", h.create)
	r.Put("/users/{id}", h.update)
	r.Post("/users/{id}", h.update)
	r.Delete("/users/{id}", h.remove)
	r.Post("/users/{id}/delete", h.removeConfirmed)

	return r
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	// A failed load leaves the banner in the state.
	_ = h.model.Load(r.Context())
	h.render(w, r, http.StatusOK, page{State: h.model.Snapshot()})
}

func (h *Handler) newForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, page{
		State:  h.model.Snapshot(),
		Dialog: &dialog{Genders: types.Genders},
	})
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, ok := h.model.Find(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	h.render(w, r, http.StatusOK, page{
		State:  h.model.Snapshot(),
		Dialog: &dialog{Editing: true, ID: id, Form: FormFromUser(u), Genders: types.Genders},
	})
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := h.model.Find(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	h.render(w, r, http.StatusOK, page{State: h.model.Snapshot(), Confirm: &u})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	form := readForm(r)
	err := h.model.Create(r.Context(), form)
	h.afterSubmit(w, r, &dialog{Form: form, Genders: types.Genders}, err)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form := readForm(r)
	err := h.model.Update(r.Context(), id, form)
	h.afterSubmit(w, r, &dialog{Editing: true, ID: id, Form: form, Genders: types.Genders}, err)
}

// afterSubmit closes the dialog on success and re-renders it with the
// submitted values on failure.
func (h *Handler) afterSubmit(w http.ResponseWriter, r *http.Request, d *dialog, err error) {
	switch {
	case err == nil:
		h.redirectOrRender(w, r)
		return
	case errors.Is(err, ErrIncompleteForm), errors.Is(err, ErrInvalidAge):
		d.Invalid = err.Error()
	case errors.Is(err, ErrBusy):
		h.render(w, r, http.StatusConflict, page{State: h.model.Snapshot(), Dialog: d})
		return
	}

	h.render(w, r, http.StatusOK, page{State: h.model.Snapshot(), Dialog: d})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	// htmx only sends the DELETE after hx-confirm was accepted.
	h.delete(w, r, true)
}

func (h *Handler) removeConfirmed(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, r.FormValue("confirm") == "yes")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, confirmed bool) {
	err := h.model.Delete(r.Context(), chi.URLParam(r, "id"), confirmed)
	if errors.Is(err, ErrBusy) {
		h.render(w, r, http.StatusConflict, page{State: h.model.Snapshot()})
		return
	}
	h.redirectOrRender(w, r)
}

// redirectOrRender answers a successful or failed mutation. htmx swaps in
// the refreshed list; a plain form post is redirected back to the index
// so a reload does not resubmit.
func (h *Handler) redirectOrRender(w http.ResponseWriter, r *http.Request) {
	if !isHTMXRequest(r) && h.model.Snapshot().Error == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, page{State: h.model.Snapshot()})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data page) {
	name := "page"
	if isHTMXRequest(r) {
		name = "app"
	}

	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("render failed", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func readForm(r *http.Request) Form {
	return Form{
		Name:   r.FormValue("name"),
		Age:    r.FormValue("age"),
		Gender: r.FormValue("gender"),
	}
}
