package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"addressbook/internal/contacts/importer"
	"addressbook/internal/contacts/models"
	"addressbook/internal/contacts/service"
	"addressbook/internal/platform/metrics"
	"addressbook/internal/platform/middleware"
	id "addressbook/pkg/domain"
	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/platform/httputil"
)

const maxImportBytes = 4 << 20

// Service defines the contact operations the HTTP layer needs.
type Service interface {
	Create(ctx context.Context, entry models.Entry) (models.Entry, error)
	Update(ctx context.Context, entry models.Entry) (models.Entry, error)
	Delete(ctx context.Context, contactID id.ContactID) error
	Get(ctx context.Context, contactID id.ContactID) (models.Entry, error)
	Find(ctx context.Context, prefix string) []models.Entry
	Count(ctx context.Context) int
	FindRemote(ctx context.Context, prefix string) ([]models.Entry, error)
	Import(ctx context.Context, r io.Reader, format importer.Format) (service.ImportResult, error)
}

// Handler serves the /contacts endpoints.
type Handler struct {
	logger       *slog.Logger
	contacts     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a contacts Handler. A nil jwtValidator leaves write routes open.
func New(
	contacts Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		contacts:     contacts,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the contact routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/contacts", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/", h.handleFind)
		r.Get("/count", h.handleCount)
		r.Get("/{id}", h.handleGet)

		r.Group(func(r chi.Router) {
			if h.jwtValidator != nil {
				r.Use(middleware.RequireAuth(h.jwtValidator, h.metrics, h.logger))
			}
			r.With(middleware.ContentTypeJSON).Post("/", h.handleCreate)
			r.With(middleware.ContentTypeJSON).Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
			r.Post("/import", h.handleImport)
		})
	})
}

// handleFind lists contacts whose last name starts with ?prefix=. With
// ?remote=true the backing store does the filtering.
func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prefix := r.URL.Query().Get("prefix")

	if r.URL.Query().Get("remote") == "true" {
		found, err := h.contacts.FindRemote(ctx, prefix)
		if err != nil {
			h.writeServiceError(ctx, w, "remote find failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, models.NewContactListResponse(found))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewContactListResponse(h.contacts.Find(ctx, prefix)))
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"count": h.contacts.Count(r.Context())})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, err := id.ParseContactID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entry, err := h.contacts.Get(ctx, contactID)
	if err != nil {
		h.writeServiceError(ctx, w, "get contact failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewContactResponse(entry))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := h.decodeContact(w, r)
	if !ok {
		return
	}
	created, err := h.contacts.Create(ctx, req.ToEntry(id.ContactID{}))
	if err != nil {
		h.writeServiceError(ctx, w, "create contact failed", err)
		return
	}
	w.Header().Set("Location", "/contacts/"+created.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, models.NewContactResponse(created))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, err := id.ParseContactID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := h.decodeContact(w, r)
	if !ok {
		return
	}
	updated, err := h.contacts.Update(ctx, req.ToEntry(contactID))
	if err != nil {
		h.writeServiceError(ctx, w, "update contact failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewContactResponse(updated))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, err := id.ParseContactID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.contacts.Delete(ctx, contactID); err != nil {
		h.writeServiceError(ctx, w, "delete contact failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleImport accepts the line-oriented bulk format as a text body.
// ?format=split selects the eight-line layout.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format, err := importer.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	result, err := h.contacts.Import(ctx, http.MaxBytesReader(w, r.Body, maxImportBytes), format)
	if err != nil {
		h.writeServiceError(ctx, w, "import failed", err)
		return
	}
	rejected := result.Rejected
	if rejected == nil {
		rejected = []models.ImportRejected{}
	}
	httputil.WriteJSON(w, http.StatusOK, models.ImportResponse{
		Imported: len(result.Imported),
		Rejected: rejected,
	})
}

func (h *Handler) decodeContact(w http.ResponseWriter, r *http.Request) (models.ContactRequest, bool) {
	var req models.ContactRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "invalid contact request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return req, false
	}
	req.Normalize()
	return req, true
}

// writeServiceError logs unexpected failures and writes the error envelope.
// Client errors were already logged by the service.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
