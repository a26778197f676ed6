// Package httpapi is the HTTP transport: a thin chi-based adapter that
// decodes requests, calls the application services and writes the wire
// envelopes.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime"

	"github.com/personal-report/organizer-api/internal/app/books"
	"github.com/personal-report/organizer-api/internal/app/targets"
	"github.com/personal-report/organizer-api/internal/domain"
	"github.com/personal-report/organizer-api/internal/ports/out/sessionstore"
)

type Server struct {
	targets *targets.Service
	books   *books.Service
}

func NewServer(targetsSvc *targets.Service, booksSvc *books.Service) *Server {
	return &Server{targets: targetsSvc, books: booksSvc}
}

type viewResponse struct {
	Groups []domain.TargetGroup `json:"groups"`
}

type submitRequest struct {
	GroupType  string   `json:"groupType"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	Books      []string `json:"books"`
	TargetDate string   `json:"targetDate"`
}

type submitResponse struct {
	Saved  bool                 `json:"saved"`
	Groups []domain.TargetGroup `json:"groups"`
}

type draftResponse struct {
	Draft sessionstore.Draft `json:"draft"`
}

type addBookRequest struct {
	Section     string `json:"section"`
	BookName    string `json:"bookName"`
	Page        int    `json:"page"`
	DownloadURL string `json:"downloadUrl"`
	Description string `json:"description"`
}

type addBookResponse struct {
	Saved bool          `json:"saved"`
	ID    domain.BookID `json:"id,omitempty"`
}

type updateBookRequest struct {
	Section     *string                   `json:"section"`
	BookName    *string                   `json:"bookName"`
	Page        *int                      `json:"page"`
	DownloadURL *string                   `json:"downloadUrl"`
	Description nullable.Nullable[string] `json:"description"`
}

type booksResponse struct {
	Books []domain.Book `json:"books"`
}

func (s *Server) handleReloadTargets(w http.ResponseWriter, r *http.Request) {
	view, err := s.targets.Reload(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{Groups: view})
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	id := domain.PersonID(chi.URLParam(r, "personID"))
	draft, err := s.targets.BeginEdit(r.Context(), UserFromContext(r.Context()), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{Draft: draft})
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	if err := s.targets.CancelEdit(r.Context(), UserFromContext(r.Context())); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	res, err := s.targets.Submit(r.Context(), UserFromContext(r.Context()), targets.SubmitInput{
		GroupType:  req.GroupType,
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		Books:      req.Books,
		TargetDate: req.TargetDate,
	})
	if err != nil {
		observeMutation("submit_target", "failed")
		writeAppError(w, r, err)
		return
	}
	observeMutation("submit_target", string(res.Outcome))
	writeJSON(w, http.StatusOK, submitResponse{Saved: res.Outcome == targets.SubmitSaved, Groups: res.View})
}

func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	id := domain.PersonID(chi.URLParam(r, "personID"))
	if err := s.targets.RequestDelete(r.Context(), UserFromContext(r.Context()), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.targets.CancelDelete(r.Context(), UserFromContext(r.Context())); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	view, err := s.targets.ConfirmDelete(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		observeMutation("delete_target", "failed")
		writeAppError(w, r, err)
		return
	}
	observeMutation("delete_target", "saved")
	writeJSON(w, http.StatusOK, viewResponse{Groups: view})
}

func (s *Server) handleToggleExpanded(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")
	id := domain.PersonID(chi.URLParam(r, "personID"))
	if err := s.targets.ToggleExpanded(r.Context(), UserFromContext(r.Context()), group, id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	var section *string
	if err := runtime.BindQueryParameter("form", true, false, "section", r.URL.Query(), &section); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid section parameter", nil)
		return
	}
	filter := ""
	if section != nil {
		filter = *section
	}
	listed, err := s.books.List(r.Context(), UserFromContext(r.Context()), filter)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booksResponse{Books: listed})
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var req addBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	res, err := s.books.Add(r.Context(), UserFromContext(r.Context()), books.AddBookInput{
		Section:     req.Section,
		BookName:    req.BookName,
		Page:        req.Page,
		DownloadURL: req.DownloadURL,
		Description: req.Description,
	})
	if err != nil {
		observeMutation("add_book", "failed")
		writeAppError(w, r, err)
		return
	}
	observeMutation("add_book", string(res.Outcome))
	status := http.StatusCreated
	if res.Outcome == books.AddSkipped {
		status = http.StatusOK
	}
	writeJSON(w, status, addBookResponse{Saved: res.Outcome == books.AddSaved, ID: res.ID})
}

func (s *Server) handlePatchBook(w http.ResponseWriter, r *http.Request) {
	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	in := books.UpdateBookInput{}
	if req.Section != nil {
		in.Section = books.Some(*req.Section)
	}
	if req.BookName != nil {
		in.BookName = books.Some(*req.BookName)
	}
	if req.Page != nil {
		in.Page = books.Some(*req.Page)
	}
	if req.DownloadURL != nil {
		in.DownloadURL = books.Some(*req.DownloadURL)
	}
	if req.Description.IsSpecified() {
		if req.Description.IsNull() {
			in.Description = books.Null[string]()
		} else {
			in.Description = books.Some(req.Description.MustGet())
		}
	}

	id := domain.BookID(chi.URLParam(r, "bookID"))
	updated, err := s.books.Update(r.Context(), UserFromContext(r.Context()), id, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := domain.BookID(chi.URLParam(r, "bookID"))
	if err := s.books.Delete(r.Context(), UserFromContext(r.Context()), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
