package specification

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// WorkflowSearch matches name or description, case-insensitive. Wildcards in
// the term are matched literally.
type WorkflowSearch struct {
	Term string
}

func (s WorkflowSearch) Apply(db *gorm.DB) *gorm.DB {
	term := strings.TrimSpace(s.Term)
	if term == "" {
		return db
	}
	pattern := "%" + likeEscaper.Replace(term) + "%"
	return db.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
