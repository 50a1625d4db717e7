package service

import (
	"context"
	"errors"
	"io"

	"addressbook/internal/contacts/importer"
	"addressbook/internal/contacts/models"
	dErrors "addressbook/pkg/domain-errors"
)

// ImportResult reports what a bulk import stored and what it skipped.
type ImportResult struct {
	Imported []models.Entry
	Rejected []models.ImportRejected
}

// Import parses r and creates every record. Records rejected by validation or
// by a storage constraint are reported and skipped; any other gateway failure
// stops the import and returns what was stored so far.
func (s *Service) Import(ctx context.Context, r io.Reader, format importer.Format) (result ImportResult, err error) {
	ctx, done := s.instrument(ctx, "import")
	defer func() { done(err) }()

	entries, err := importer.Parse(r, format)
	if err != nil {
		return ImportResult{}, err
	}

	for i, entry := range entries {
		created, err := s.Create(ctx, entry)
		if err == nil {
			result.Imported = append(result.Imported, created)
			continue
		}
		if !rejectable(err) {
			return result, err
		}
		result.Rejected = append(result.Rejected, models.ImportRejected{
			Record: i + 1,
			Name:   entry.Name.String(),
			Reason: rejectionReason(err),
		})
	}
	s.logger.InfoContext(ctx, "import finished",
		"imported", len(result.Imported),
		"rejected", len(result.Rejected),
	)
	return result, nil
}

func rejectable(err error) bool {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeConflict, dErrors.CodeInvalidInput:
		return true
	}
	return false
}

func rejectionReason(err error) string {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return err.Error()
}
