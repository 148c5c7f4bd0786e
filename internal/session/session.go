package session

import (
	"sync"

	"github.com/grouptask-dev/grouptask/internal/models"
)

// EditDraft holds the editable copy of a task while its edit modal is open.
type EditDraft struct {
	TaskID     uint
	Name       string
	Date       string
	Notes      string
	Status     string
	AssignedTo string
}

// Session is the per-token server-side state: the authenticated group plus
// the two pieces of UI state that outlive a single request, the pending
// role confirmation and the open edit draft. Operations receive the session
// explicitly instead of reaching for process globals.
type Session struct {
	Token    string
	UserID   uint
	Username string

	mu          sync.Mutex
	pendingRole string
	edit        *EditDraft
}

// BeginRoleChange opens the confirmation state for an elevation to role.
func (s *Session) BeginRoleChange(role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingRole = role
}

// PendingRole reports the role awaiting password confirmation, if any.
func (s *Session) PendingRole() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingRole, s.pendingRole != ""
}

// ClearRoleChange discards the confirmation state. Idempotent.
func (s *Session) ClearRoleChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingRole = ""
}

// OpenEdit copies the task's fields into a fresh draft and opens the modal.
// An already-open draft is replaced.
func (s *Session) OpenEdit(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = &EditDraft{
		TaskID:     task.ID,
		Name:       task.Name,
		Date:       task.Date,
		Notes:      task.Notes,
		Status:     task.Status,
		AssignedTo: task.AssignedTo,
	}
}

// EditDraft returns a copy of the open draft, or false when the modal is
// closed.
func (s *Session) EditDraft() (EditDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return EditDraft{}, false
	}
	return *s.edit, true
}

// SetDraftField overwrites one draft field by name. Reports false when no
// draft is open.
func (s *Session) SetDraftField(field, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return false
	}

	switch field {
	case "name":
		s.edit.Name = value
	case "date":
		s.edit.Date = value
	case "notes":
		s.edit.Notes = value
	case "status":
		s.edit.Status = value
	case "assigned_to":
		s.edit.AssignedTo = value
	default:
		return false
	}

	return true
}

// CloseEdit discards the draft and closes the modal. Idempotent.
func (s *Session) CloseEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
}
