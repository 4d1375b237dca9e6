package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/roadsafety-api/internal/dto"
	"github.com/noah-isme/roadsafety-api/internal/models"
	appErrors "github.com/noah-isme/roadsafety-api/pkg/errors"
)

type lifecycleFixture struct {
	db            *memDB
	media         *stubMedia
	complaints    *ComplaintService
	assignments   *AssignmentService
	notifications *NotificationService
	metrics       *MetricsService
	admin         *models.Principal
	citizen       *models.Principal
	stranger      *models.Principal
	contractor    *models.Principal
	now           time.Time
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	f := &lifecycleFixture{db: newMemDB(), media: &stubMedia{}, metrics: NewMetricsService(), now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	clock := func() time.Time {
		f.now = f.now.Add(time.Minute)
		return f.now
	}

	adminUser := models.User{ID: uuid.NewString(), Username: "admin", Email: "admin@city.gov", IsStaff: true, IsActive: true}
	citizenUser := models.User{ID: uuid.NewString(), Username: "budi", Email: "budi@example.com", IsActive: true}
	strangerUser := models.User{ID: uuid.NewString(), Username: "sari", Email: "sari@example.com", IsActive: true}
	contractorUser := models.User{ID: uuid.NewString(), Username: "acme", Email: "ops@acme.test", IsActive: true}
	for _, u := range []models.User{adminUser, citizenUser, strangerUser, contractorUser} {
		u := u
		f.db.users[u.ID] = &u
	}
	contractor := &models.Contractor{ID: uuid.NewString(), UserID: contractorUser.ID, CompanyName: "Acme Paving", IsVerified: true}
	f.db.contractors[contractor.ID] = contractor

	f.admin = models.NewPrincipal(adminUser, nil)
	f.citizen = models.NewPrincipal(citizenUser, nil)
	f.stranger = models.NewPrincipal(strangerUser, nil)
	contractorCopy := *contractor
	f.contractor = models.NewPrincipal(contractorUser, &contractorCopy)

	f.notifications = NewNotificationService(memNotifications{db: f.db}, f.metrics, nil)
	f.complaints = NewComplaintService(ComplaintServiceParams{
		Complaints:  memComplaints{db: f.db},
		Updates:     memUpdates{db: f.db},
		Assignments: memAssignments{db: f.db},
		Notifier:    f.notifications,
		Media:       f.media,
		Metrics:     f.metrics,
		Now:         clock,
	})
	f.assignments = NewAssignmentService(AssignmentServiceParams{
		Assignments: memAssignments{db: f.db},
		Complaints:  memComplaints{db: f.db},
		Contractors: memContractors{db: f.db},
		Updates:     memUpdates{db: f.db},
		Notifier:    f.notifications,
		Media:       f.media,
		Metrics:     f.metrics,
		Now:         clock,
	})
	return f
}

func (f *lifecycleFixture) submit(t *testing.T) *models.Complaint {
	t.Helper()
	complaint, err := f.complaints.Submit(context.Background(), f.citizen, dto.SubmitComplaintRequest{
		Title:       "Pothole on Jl. Sudirman",
		Description: "Deep pothole in the left lane",
		Location:    "Jl. Sudirman 12",
	})
	require.NoError(t, err)
	return complaint
}

func requireAppError(t *testing.T, err error, want *appErrors.Error) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected app error, got %v", err)
	assert.Equal(t, want.Code, appErr.Code)
	assert.Equal(t, want.Status, appErr.Status)
	return appErr
}

func TestComplaintServiceSubmitDefaults(t *testing.T) {
	f := newLifecycleFixture(t)

	complaint := f.submit(t)
	assert.Equal(t, models.StatusPending, complaint.Status)
	assert.Equal(t, models.ComplaintTypeOther, complaint.Type)
	assert.Equal(t, models.PriorityMedium, complaint.Priority)
	assert.Equal(t, f.citizen.User.ID, complaint.UserID)
	assert.Nil(t, complaint.VerifiedBy)
	assert.Nil(t, complaint.VerifiedAt)
}

func TestComplaintServiceSubmitStoresImage(t *testing.T) {
	f := newLifecycleFixture(t)
	lat, lng := -6.2, 106.8

	complaint, err := f.complaints.Submit(context.Background(), f.citizen, dto.SubmitComplaintRequest{
		Title:       "Broken light",
		Description: "Street light out",
		Location:    "Jl. Thamrin",
		Latitude:    &lat,
		Longitude:   &lng,
		Type:        models.ComplaintTypeStreetLight,
		Priority:    models.PriorityHigh,
		Image:       &dto.FileUpload{Filename: "light.png", Size: 10, Body: strings.NewReader("png")},
	})
	require.NoError(t, err)
	require.NotNil(t, complaint.ImagePath)
	assert.Equal(t, []string{"complaint_images/light.png"}, f.media.stored)
	assert.Equal(t, "/media/signed/complaint_images/light.png", complaint.ImageURL)
	assert.Equal(t, models.PriorityHigh, complaint.Priority)
}

func TestComplaintServiceSubmitValidation(t *testing.T) {
	f := newLifecycleFixture(t)
	bad := 120.0

	_, err := f.complaints.Submit(context.Background(), f.citizen, dto.SubmitComplaintRequest{Title: "x", Description: "y", Location: "z", Latitude: &bad})
	appErr := requireAppError(t, err, appErrors.ErrValidation)
	assert.Contains(t, appErr.Fields, "Latitude")

	_, err = f.complaints.Submit(context.Background(), f.citizen, dto.SubmitComplaintRequest{Title: "x", Description: "y", Location: "z", Priority: "extreme"})
	requireAppError(t, err, appErrors.ErrValidation)
	assert.Empty(t, f.db.complaints)
}

func TestComplaintServiceDetailOwnership(t *testing.T) {
	f := newLifecycleFixture(t)
	complaint := f.submit(t)

	detail, err := f.complaints.Detail(context.Background(), f.citizen, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, complaint.ID, detail.Complaint.ID)
	assert.NotNil(t, detail.Updates)
	assert.Nil(t, detail.Assignment)

	_, err = f.complaints.Detail(context.Background(), f.stranger, complaint.ID)
	requireAppError(t, err, appErrors.ErrNotFound)

	_, err = f.complaints.Detail(context.Background(), f.admin, complaint.ID)
	require.NoError(t, err)

	_, err = f.complaints.Detail(context.Background(), f.citizen, "not-a-uuid")
	requireAppError(t, err, appErrors.ErrNotFound)

	_, err = f.complaints.Detail(context.Background(), f.citizen, uuid.NewString())
	requireAppError(t, err, appErrors.ErrNotFound)
}

func TestComplaintServiceVerifySetsProvenanceOnce(t *testing.T) {
	f := newLifecycleFixture(t)
	complaint := f.submit(t)

	verified, err := f.complaints.Verify(context.Background(), f.admin, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, f.admin.User.ID, *verified.VerifiedBy)
	require.NotNil(t, verified.VerifiedAt)
	firstVerifiedAt := *verified.VerifiedAt

	_, err = f.complaints.Verify(context.Background(), f.admin, complaint.ID)
	requireAppError(t, err, appErrors.ErrInvalidTransition)

	stored := f.db.complaints[complaint.ID]
	assert.Equal(t, firstVerifiedAt, *stored.VerifiedAt)

	notes := f.db.notificationsFor(f.citizen.User.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationVerification, notes[0].Type)
	require.NotNil(t, notes[0].ComplaintID)
	assert.Equal(t, complaint.ID, *notes[0].ComplaintID)
}

func TestComplaintServiceRejectLeavesVerificationUnset(t *testing.T) {
	f := newLifecycleFixture(t)
	complaint := f.submit(t)

	rejected, err := f.complaints.Decide(context.Background(), f.admin, complaint.ID, dto.VerifyComplaintRequest{Action: dto.ActionReject})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Nil(t, rejected.VerifiedBy)
	assert.Nil(t, rejected.VerifiedAt)

	notes := f.db.notificationsFor(f.citizen.User.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationComplaintStatus, notes[0].Type)

	_, err = f.complaints.Decide(context.Background(), f.admin, complaint.ID, dto.VerifyComplaintRequest{Action: dto.ActionVerify})
	requireAppError(t, err, appErrors.ErrInvalidTransition)

	_, err = f.complaints.Decide(context.Background(), f.admin, complaint.ID, dto.VerifyComplaintRequest{Action: "approve"})
	requireAppError(t, err, appErrors.ErrValidation)
}

func TestComplaintServiceVerifyRequiresAdmin(t *testing.T) {
	f := newLifecycleFixture(t)
	complaint := f.submit(t)

	_, err := f.complaints.Verify(context.Background(), f.citizen, complaint.ID)
	requireAppError(t, err, appErrors.ErrForbidden)
	assert.Equal(t, models.StatusPending, f.db.complaints[complaint.ID].Status)
}

func TestComplaintServiceVerifyLostRaceIsConflict(t *testing.T) {
	f := newLifecycleFixture(t)
	complaint := f.submit(t)

	racing := &racingComplaints{memComplaints: memComplaints{db: f.db}}
	svc := NewComplaintService(ComplaintServiceParams{
		Complaints:  racing,
		Updates:     memUpdates{db: f.db},
		Assignments: memAssignments{db: f.db},
		Notifier:    f.notifications,
		Media:       f.media,
	})

	_, err := svc.Verify(context.Background(), f.admin, complaint.ID)
	requireAppError(t, err, appErrors.ErrConflict)
	assert.Equal(t, models.StatusRejected, f.db.complaints[complaint.ID].Status)
	assert.Empty(t, f.db.notificationsFor(f.citizen.User.ID))
}

// racingComplaints simulates another admin rejecting the complaint between read and write.
type racingComplaints struct {
	memComplaints
}

func (r *racingComplaints) MarkVerified(ctx context.Context, id, verifierID string, at time.Time) error {
	if err := r.memComplaints.UpdateStatus(ctx, id, models.StatusPending, models.StatusRejected, at); err != nil {
		return err
	}
	return r.memComplaints.MarkVerified(ctx, id, verifierID, at)
}

func TestNotificationFailureDoesNotFailVerify(t *testing.T) {
	f := newLifecycleFixture(t)
	complaint := f.submit(t)
	f.db.notifyErr = errors.New("db down")

	verified, err := f.complaints.Verify(context.Background(), f.admin, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, verified.Status)
}

func TestComplaintServiceSubmitDiscardsImageOnFailure(t *testing.T) {
	f := newLifecycleFixture(t)
	svc := NewComplaintService(ComplaintServiceParams{
		Complaints:  failingComplaintCreate{memComplaints: memComplaints{db: f.db}},
		Updates:     memUpdates{db: f.db},
		Assignments: memAssignments{db: f.db},
		Notifier:    f.notifications,
		Media:       f.media,
	})

	_, err := svc.Submit(context.Background(), f.citizen, dto.SubmitComplaintRequest{
		Title: "t", Description: "d", Location: "l",
		Image: &dto.FileUpload{Filename: "a.jpg", Size: 3, Body: strings.NewReader("jpg")},
	})
	requireAppError(t, err, appErrors.ErrInternal)
	assert.Equal(t, []string{"complaint_images/a.jpg"}, f.media.discarded)
}

type failingComplaintCreate struct {
	memComplaints
}

func (failingComplaintCreate) Create(ctx context.Context, c *models.Complaint) error {
	return errors.New("insert failed")
}
