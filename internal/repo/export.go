package repo

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/studytime/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// importDoc mirrors model.ExportData with the fields an import must carry.
type importDoc struct {
	Subjects []model.Subject `json:"subjects" validate:"required"`
	Sessions []model.Session `json:"sessions" validate:"required"`
}

// ExportData serializes every subject and session as an indented document.
func (r *Repository) ExportData() string {
	r.mu.RLock()
	doc := model.ExportData{
		Subjects:   append([]model.Subject{}, r.subjects...),
		Sessions:   append([]model.Session{}, r.sessions...),
		ExportedAt: r.clock.Now(),
		Version:    model.ExportVersion,
	}
	r.mu.RUnlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		r.logger.Warn("encode export", "error", err)
		return ""
	}
	return string(data)
}

// ImportData replaces all data with the document in text. It returns false,
// leaving data untouched, when text is not JSON or lacks either collection.
func (r *Repository) ImportData(text string) bool {
	var doc importDoc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		r.logger.Debug("import rejected", "error", err)
		return false
	}
	if err := validate.Struct(doc); err != nil {
		r.logger.Debug("import rejected", "error", err)
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = doc.Subjects
	r.sessions = doc.Sessions
	r.persistSubjectsLocked()
	r.persistSessionsLocked()
	return true
}
