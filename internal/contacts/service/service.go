// Package service coordinates the in-memory directory with the persistence
// gateway. Every change goes to the gateway first; the directory follows only
// once the backing store has accepted it.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"addressbook/internal/contacts/directory"
	"addressbook/internal/contacts/events"
	"addressbook/internal/contacts/metrics"
	"addressbook/internal/contacts/models"
	id "addressbook/pkg/domain"
	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/platform/sentinel"
	"addressbook/pkg/requestcontext"
)

// Gateway is the persistent backing store for entries.
type Gateway interface {
	LoadAll(ctx context.Context) ([]models.Entry, error)
	Insert(ctx context.Context, entry models.Entry) (id.ContactID, error)
	Update(ctx context.Context, entry models.Entry) error
	Delete(ctx context.Context, contactID id.ContactID) error
	FindIDsByLastNamePrefix(ctx context.Context, prefix string) ([]id.ContactID, error)
}

// Publisher ships change events after the gateway accepted a write.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service owns the directory. The directory is not safe for concurrent use,
// so every method holds mu for its whole duration, gateway round trip included.
type Service struct {
	mu        sync.Mutex
	dir       *directory.Directory
	gateway   Gateway
	validator models.Validator
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithValidator(v models.Validator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New builds a Service with an empty directory. Call Refresh to load it.
func New(gateway Gateway, opts ...Option) *Service {
	s := &Service{
		dir:       directory.New(),
		gateway:   gateway,
		publisher: events.NopPublisher{},
		logger:    slog.Default(),
		tracer:    otel.Tracer("addressbook/contacts"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Refresh replaces the directory contents with everything the gateway holds
// and returns the resulting count. On a gateway failure the directory keeps
// its previous contents.
func (s *Service) Refresh(ctx context.Context) (count int, err error) {
	ctx, done := s.instrument(ctx, "refresh")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.gateway.LoadAll(ctx)
	if err != nil {
		return 0, s.persistenceError(ctx, "refresh", err)
	}

	s.dir.Clear()
	for _, e := range entries {
		if !s.dir.Add(e) {
			s.cacheMismatch(ctx, "refresh", e.ID, "gateway returned a duplicate id")
			continue
		}
		s.logger.DebugContext(ctx, "loaded contact",
			"contact_id", e.ID.String(),
			"name", e.Name.String(),
		)
	}
	s.metrics.SetDirectorySize(s.dir.Count())
	s.logger.InfoContext(ctx, "directory refreshed", "count", s.dir.Count())
	return s.dir.Count(), nil
}

// Create validates entry, persists it and adds it to the directory under the
// identifier the gateway assigned.
func (s *Service) Create(ctx context.Context, entry models.Entry) (created models.Entry, err error) {
	ctx, done := s.instrument(ctx, "create")
	defer func() { done(err) }()

	if err := s.validate(ctx, entry); err != nil {
		return models.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contactID, err := s.gateway.Insert(ctx, entry)
	if err != nil {
		return models.Entry{}, s.persistenceError(ctx, "create", err)
	}
	created = entry.WithID(contactID)
	if !s.dir.Add(created) {
		s.cacheMismatch(ctx, "create", contactID, "directory already held the new id")
	}
	s.metrics.SetDirectorySize(s.dir.Count())
	s.logger.InfoContext(ctx, "contact created",
		"request_id", requestcontext.RequestID(ctx),
		"contact_id", contactID.String(),
	)
	s.publish(ctx, events.ContactCreated, created)
	return created, nil
}

// Update replaces the stored entry that shares entry.ID.
func (s *Service) Update(ctx context.Context, entry models.Entry) (updated models.Entry, err error) {
	ctx, done := s.instrument(ctx, "update")
	defer func() { done(err) }()

	if !entry.HasID() {
		return models.Entry{}, dErrors.New(dErrors.CodeInvalidInput, "contact id is required")
	}
	if err := s.validate(ctx, entry); err != nil {
		return models.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.dir.Get(entry.ID)
	if !ok {
		return models.Entry{}, dErrors.New(dErrors.CodeNotFound, "contact not found")
	}
	if current.Equal(entry) {
		return models.Entry{}, dErrors.New(dErrors.CodeBadRequest, "no changes detected")
	}

	if err := s.gateway.Update(ctx, entry); err != nil {
		return models.Entry{}, s.persistenceError(ctx, "update", err)
	}
	s.dir.RemoveByID(entry.ID)
	if !s.dir.Add(entry) {
		s.cacheMismatch(ctx, "update", entry.ID, "directory re-add failed")
	}
	s.logger.InfoContext(ctx, "contact updated",
		"request_id", requestcontext.RequestID(ctx),
		"contact_id", entry.ID.String(),
	)
	s.publish(ctx, events.ContactUpdated, entry)
	return entry, nil
}

// Delete removes the entry from the gateway and then from the directory.
func (s *Service) Delete(ctx context.Context, contactID id.ContactID) (err error) {
	ctx, done := s.instrument(ctx, "delete")
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gateway.Delete(ctx, contactID); err != nil {
		return s.persistenceError(ctx, "delete", err)
	}
	if !s.dir.RemoveByID(contactID) {
		s.cacheMismatch(ctx, "delete", contactID, "directory did not hold the deleted id")
	}
	s.metrics.SetDirectorySize(s.dir.Count())
	s.logger.InfoContext(ctx, "contact deleted",
		"request_id", requestcontext.RequestID(ctx),
		"contact_id", contactID.String(),
	)
	s.publish(ctx, events.ContactDeleted, models.Entry{ID: contactID})
	return nil
}

func (s *Service) Get(ctx context.Context, contactID id.ContactID) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.dir.Get(contactID)
	if !ok {
		return models.Entry{}, dErrors.New(dErrors.CodeNotFound, "contact not found")
	}
	return e, nil
}

// Find returns entries whose last name starts with prefix, sorted by name.
func (s *Service) Find(ctx context.Context, prefix string) []models.Entry {
	_, span := s.tracer.Start(ctx, "contacts.find", trace.WithAttributes(attribute.String("prefix", prefix)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Find(prefix)
}

func (s *Service) List(ctx context.Context) []models.Entry {
	return s.Find(ctx, "")
}

func (s *Service) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.Count()
}

// FindRemote asks the gateway to filter by last-name prefix and resolves the
// returned identifiers through the directory. Results use the directory
// ordering whatever order the store returned them in.
func (s *Service) FindRemote(ctx context.Context, prefix string) (found []models.Entry, err error) {
	ctx, done := s.instrument(ctx, "find_remote")
	defer func() { done(err) }()

	ids, err := s.gateway.FindIDsByLastNamePrefix(ctx, prefix)
	if err != nil {
		return nil, s.persistenceError(ctx, "find_remote", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	found = make([]models.Entry, 0, len(ids))
	for _, contactID := range ids {
		e, ok := s.dir.Get(contactID)
		if !ok {
			s.cacheMismatch(ctx, "find_remote", contactID, "gateway returned an id the directory does not hold")
			continue
		}
		found = append(found, e)
	}
	slices.SortFunc(found, directory.Compare)
	return found, nil
}

func (s *Service) validate(ctx context.Context, entry models.Entry) error {
	err := s.validator.Validate(entry)
	if err == nil {
		return nil
	}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		s.metrics.IncrementValidationFailure(ve.Field)
	}
	s.logger.InfoContext(ctx, "contact rejected by validation",
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	return err
}

// persistenceError logs the gateway failure in full and returns a coded error
// that is safe to show. Constraint violations keep the code the gateway chose.
func (s *Service) persistenceError(ctx context.Context, op string, err error) error {
	s.metrics.IncrementGatewayError(op)
	s.logger.ErrorContext(ctx, "persistence gateway failed",
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err.Error(),
	)
	if _, ok := dErrors.As(err); ok {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "contact not found")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "backing store timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op+" contact")
}

// cacheMismatch records that the directory and the gateway disagree. It is
// never surfaced to callers and nothing is rolled back.
func (s *Service) cacheMismatch(ctx context.Context, op string, contactID id.ContactID, detail string) {
	s.metrics.IncrementCacheMismatch(op)
	s.logger.WarnContext(ctx, "cache mismatch",
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"contact_id", contactID.String(),
		"detail", detail,
	)
}

// publish ships a change event. The gateway write already happened, so a
// failure is logged and counted only.
func (s *Service) publish(ctx context.Context, typ events.Type, entry models.Entry) {
	event := events.Event{
		Type:       typ,
		ContactID:  entry.ID,
		OccurredAt: requestcontext.Now(ctx).UTC(),
	}
	if typ != events.ContactDeleted {
		event.Entry = entry
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.IncrementPublishFailure()
		s.logger.WarnContext(ctx, "failed to publish contact event",
			"request_id", requestcontext.RequestID(ctx),
			"type", string(typ),
			"contact_id", entry.ID.String(),
			"error", err.Error(),
		)
	}
}

// instrument opens a span and returns the func that closes it and records
// latency for op.
func (s *Service) instrument(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "contacts."+op)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		s.metrics.ObserveOperation(op, time.Since(start), err)
	}
}
