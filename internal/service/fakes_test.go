package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
)

// memDB is an in-memory stand-in for the relational store used across service tests.
type memDB struct {
	mu            sync.Mutex
	users         map[string]*models.User
	complaints    map[string]*models.Complaint
	contractors   map[string]*models.Contractor
	assignments   []*models.ComplaintAssignment
	updates       []models.ComplaintUpdate
	notifications []*models.Notification
	notifyErr     error
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[string]*models.User{},
		complaints:  map[string]*models.Complaint{},
		contractors: map[string]*models.Contractor{},
	}
}

type memComplaints struct{ db *memDB }
type memAssignments struct{ db *memDB }
type memUpdates struct{ db *memDB }
type memContractors struct{ db *memDB }
type memNotifications struct{ db *memDB }

func (m memComplaints) Create(ctx context.Context, c *models.Complaint) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *c
	m.db.complaints[c.ID] = &cp
	return nil
}

func (m memComplaints) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.complaints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m memComplaints) MarkVerified(ctx context.Context, id, verifierID string, at time.Time) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.complaints[id]
	if !ok || c.Status != models.StatusPending || c.VerifiedAt != nil {
		return sql.ErrNoRows
	}
	c.Status = models.StatusVerified
	c.VerifiedBy = &verifierID
	c.VerifiedAt = &at
	c.UpdatedAt = at
	return nil
}

func (m memComplaints) UpdateStatus(ctx context.Context, id string, from, to models.ComplaintStatus, at time.Time) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return m.db.updateStatusLocked(id, from, to, at)
}

func (db *memDB) updateStatusLocked(id string, from, to models.ComplaintStatus, at time.Time) error {
	c, ok := db.complaints[id]
	if !ok || c.Status != from {
		return sql.ErrNoRows
	}
	c.Status = to
	c.UpdatedAt = at
	return nil
}

func (m memComplaints) List(ctx context.Context, filter models.ComplaintFilter) ([]models.ComplaintWithOwner, int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make([]models.ComplaintWithOwner, 0)
	for _, c := range m.db.complaints {
		owner := m.db.users[c.UserID]
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.OwnerEmail != "" && (owner == nil || !strings.Contains(strings.ToLower(owner.Email), strings.ToLower(filter.OwnerEmail))) {
			continue
		}
		row := models.ComplaintWithOwner{Complaint: *c}
		if owner != nil {
			row.OwnerUsername = owner.Username
			row.OwnerEmail = owner.Email
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m memComplaints) CountByStatus(ctx context.Context, userID string) (models.StatusCounts, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	counts := models.StatusCounts{}
	for _, s := range models.Statuses() {
		counts[s] = 0
	}
	for _, c := range m.db.complaints {
		if userID == "" || c.UserID == userID {
			counts[c.Status]++
		}
	}
	return counts, nil
}

func (m memAssignments) Assign(ctx context.Context, a *models.ComplaintAssignment) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.complaints[a.ComplaintID]
	if !ok || c.Status != models.StatusVerified {
		return sql.ErrNoRows
	}
	for _, existing := range m.db.assignments {
		if existing.ComplaintID == a.ComplaintID {
			existing.IsActive = false
		}
	}
	cp := *a
	m.db.assignments = append(m.db.assignments, &cp)
	c.Status = models.StatusAssigned
	c.UpdatedAt = a.AssignedAt
	return nil
}

func (db *memDB) withComplaintLocked(a *models.ComplaintAssignment) models.AssignmentWithComplaint {
	row := models.AssignmentWithComplaint{ComplaintAssignment: *a}
	if c, ok := db.complaints[a.ComplaintID]; ok {
		row.ComplaintTitle = c.Title
		row.ComplaintLocation = c.Location
		row.ComplaintStatus = c.Status
		row.ComplaintPriority = c.Priority
		row.ComplaintUserID = c.UserID
	}
	return row
}

func (m memAssignments) FindForContractor(ctx context.Context, id, contractorID string) (*models.AssignmentWithComplaint, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, a := range m.db.assignments {
		if a.ID == id && a.ContractorID == contractorID {
			row := m.db.withComplaintLocked(a)
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memAssignments) ListActiveByContractor(ctx context.Context, contractorID string) ([]models.AssignmentWithComplaint, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make([]models.AssignmentWithComplaint, 0)
	for _, a := range m.db.assignments {
		if a.ContractorID == contractorID && a.IsActive {
			out = append(out, m.db.withComplaintLocked(a))
		}
	}
	return out, nil
}

func (m memAssignments) FindActiveByComplaint(ctx context.Context, complaintID string) (*models.ComplaintAssignment, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, a := range m.db.assignments {
		if a.ComplaintID == complaintID && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memAssignments) ApplyProgress(ctx context.Context, change models.ProgressChange) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var target *models.ComplaintAssignment
	for _, a := range m.db.assignments {
		if a.ID == change.AssignmentID {
			target = a
		}
	}
	if target == nil {
		return sql.ErrNoRows
	}
	if change.StatusSet {
		if change.From != change.To {
			if err := m.db.updateStatusLocked(change.ComplaintID, change.From, change.To, change.At); err != nil {
				return err
			}
		}
		at := change.At
		switch change.To {
		case models.StatusInProgress:
			if target.WorkStartedAt == nil {
				target.WorkStartedAt = &at
			}
		case models.StatusCompleted:
			if target.WorkCompletedAt == nil {
				target.WorkCompletedAt = &at
			}
		}
	}
	if change.Note != nil {
		m.db.updates = append(m.db.updates, *change.Note)
	}
	return nil
}

func (m memAssignments) active(complaintID string) []models.ComplaintAssignment {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []models.ComplaintAssignment
	for _, a := range m.db.assignments {
		if a.ComplaintID == complaintID && a.IsActive {
			out = append(out, *a)
		}
	}
	return out
}

func (m memUpdates) ListByComplaint(ctx context.Context, complaintID string) ([]models.ComplaintUpdate, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make([]models.ComplaintUpdate, 0)
	for _, u := range m.db.updates {
		if u.ComplaintID == complaintID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (db *memDB) detailLocked(c *models.Contractor) models.ContractorDetail {
	d := models.ContractorDetail{Contractor: *c}
	if u, ok := db.users[c.UserID]; ok {
		d.Username = u.Username
		d.Email = u.Email
	}
	return d
}

func (m memContractors) FindByID(ctx context.Context, id string) (*models.ContractorDetail, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.contractors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := m.db.detailLocked(c)
	return &d, nil
}

func (m memContractors) FindByUserID(ctx context.Context, userID string) (*models.Contractor, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, c := range m.db.contractors {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memContractors) List(ctx context.Context, filter models.ContractorFilter) ([]models.ContractorDetail, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make([]models.ContractorDetail, 0)
	for _, c := range m.db.contractors {
		if filter.Verified != nil && c.IsVerified != *filter.Verified {
			continue
		}
		d := m.db.detailLocked(c)
		if filter.Email != "" && !strings.Contains(strings.ToLower(d.Email), strings.ToLower(filter.Email)) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memContractors) CountVerified(ctx context.Context) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	n := 0
	for _, c := range m.db.contractors {
		if c.IsVerified {
			n++
		}
	}
	return n, nil
}

func (m memContractors) SetVerified(ctx context.Context, id string, verified bool) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.contractors[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.IsVerified = verified
	return nil
}

func (m memNotifications) Create(ctx context.Context, n *models.Notification) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.notifyErr != nil {
		return m.db.notifyErr
	}
	cp := *n
	m.db.notifications = append(m.db.notifications, &cp)
	return nil
}

func (m memNotifications) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make([]models.Notification, 0)
	for _, n := range m.db.notifications {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m memNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	items, _ := m.ListByUser(ctx, userID, true)
	return len(items), nil
}

func (m memNotifications) MarkRead(ctx context.Context, id, userID string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, n := range m.db.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (db *memDB) notificationsFor(userID string) []models.Notification {
	items, _ := memNotifications{db: db}.ListByUser(context.Background(), userID, false)
	return items
}

// stubMedia records stored uploads without touching disk.
type stubMedia struct {
	stored    []string
	discarded []string
	err       error
}

func (m *stubMedia) Store(folder string, upload *dto.FileUpload) (*string, error) {
	if upload == nil {
		return nil, nil
	}
	if m.err != nil {
		return nil, m.err
	}
	rel := folder + "/" + upload.Filename
	m.stored = append(m.stored, rel)
	return &rel, nil
}

func (m *stubMedia) Discard(rel *string) {
	if rel != nil {
		m.discarded = append(m.discarded, *rel)
	}
}

func (m *stubMedia) URL(rel *string) string {
	if rel == nil {
		return ""
	}
	return "/media/signed/" + *rel
}
