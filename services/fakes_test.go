package services

import (
	"context"
	"strings"

	"medisafe/models"
	"medisafe/repositories"
)

// In-memory repository fakes used across the service tests.

type fakeUserRepo struct {
	users   map[int64]*models.User
	updates map[int64][]map[string]interface{}
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		users:   make(map[int64]*models.User),
		updates: make(map[int64][]map[string]interface{}),
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, userID int64) (*models.User, error) {
	if u, ok := r.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	for _, u := range r.users {
		if u.ID != excludeID && u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	for _, u := range r.users {
		if u.ID != excludeID && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	if user.ID == 0 {
		user.ID = int64(len(r.users) + 1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) AuthenticateUser(ctx context.Context, email string) (*models.User, error) {
	return r.GetUserByEmail(ctx, email)
}

func (r *fakeUserRepo) UpdateAccount(_ context.Context, userID int64, updates map[string]interface{}) error {
	r.updates[userID] = append(r.updates[userID], updates)
	u := r.users[userID]
	if u == nil {
		return nil
	}
	if role, ok := updates["role"].(string); ok {
		u.Role = role
	}
	if active, ok := updates["is_active"].(bool); ok {
		u.IsActive = active
	}
	if status, ok := updates["status"].(bool); ok {
		u.Status = status
	}
	return nil
}

func (r *fakeUserRepo) UpdateUserPassword(_ context.Context, userID int64, hashedPassword string) error {
	if u, ok := r.users[userID]; ok {
		u.Password = hashedPassword
	}
	return nil
}

func (r *fakeUserRepo) ListAccounts(_ context.Context, includeDeleted bool) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if !includeDeleted && u.IsDeleted() {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) ListDeletedAccounts(_ context.Context, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.IsDeleted() && len(out) < limit {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) RecentAccounts(_ context.Context, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if len(out) < limit {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) AccountStats(_ context.Context) (*repositories.AccountStats, error) {
	stats := &repositories.AccountStats{}
	for _, u := range r.users {
		stats.Total++
		switch {
		case u.IsDeleted():
			stats.Deleted++
		case u.IsActive:
			stats.Active++
		default:
			stats.Inactive++
		}
	}
	return stats, nil
}

func (r *fakeUserRepo) ListActiveByRole(_ context.Context, role string) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.IsActive && !u.IsDeleted() && u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListActiveStaff(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.IsActive && !u.IsDeleted() && (u.IsSuperuser || models.IsTeamRole(u.Role)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FirstActiveUser(_ context.Context) (*models.User, error) {
	for _, u := range r.users {
		if u.IsActive && !u.IsDeleted() {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) DeleteUserCache(_ context.Context, _ ...string) error {
	return nil
}

type fakeLifecycleRepo struct {
	users       *fakeUserRepo
	purgeCounts map[string]int64
	purged      []int64
}

func (r *fakeLifecycleRepo) SoftDelete(_ context.Context, userID int64, mangledUsername, mangledEmail string) error {
	u := r.users.users[userID]
	u.Username = mangledUsername
	u.Email = mangledEmail
	u.IsActive = false
	u.Status = false
	u.Password = models.UnusablePassword
	u.LastLogin = nil
	return nil
}

func (r *fakeLifecycleRepo) Restore(_ context.Context, userID int64, username, email string) error {
	u := r.users.users[userID]
	u.Username = username
	u.Email = email
	u.IsActive = true
	u.Status = true
	return nil
}

func (r *fakeLifecycleRepo) Purge(_ context.Context, userID int64) (map[string]int64, error) {
	r.purged = append(r.purged, userID)
	delete(r.users.users, userID)
	return r.purgeCounts, nil
}

type fakeDoctorRepo struct {
	doctors          map[int64]*models.Doctor // keyed by user ID
	deleted          []int64
	patientsByDoctor map[int64][]models.User
}

func newFakeDoctorRepo(doctors ...*models.Doctor) *fakeDoctorRepo {
	repo := &fakeDoctorRepo{doctors: make(map[int64]*models.Doctor)}
	for _, d := range doctors {
		repo.doctors[d.UserID] = d
	}
	return repo
}

func (r *fakeDoctorRepo) Create(_ context.Context, doctor *models.Doctor) error {
	if doctor.ID == 0 {
		doctor.ID = int64(len(r.doctors) + 1)
	}
	r.doctors[doctor.UserID] = doctor
	return nil
}

func (r *fakeDoctorRepo) GetByID(_ context.Context, doctorID int64) (*models.Doctor, error) {
	for _, d := range r.doctors {
		if d.ID == doctorID {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDoctorRepo) GetByUserID(_ context.Context, userID int64) (*models.Doctor, error) {
	if d, ok := r.doctors[userID]; ok {
		return d, nil
	}
	return nil, nil
}

func (r *fakeDoctorRepo) GetAll(_ context.Context) ([]models.Doctor, error) {
	var out []models.Doctor
	for _, d := range r.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDoctorRepo) Update(_ context.Context, doctor *models.Doctor) error {
	r.doctors[doctor.UserID] = doctor
	return nil
}

func (r *fakeDoctorRepo) DeleteByUserID(_ context.Context, userID int64) error {
	r.deleted = append(r.deleted, userID)
	delete(r.doctors, userID)
	return nil
}

func (r *fakeDoctorRepo) ListAppointments(_ context.Context, _ int64) ([]models.Appointment, error) {
	return nil, nil
}

func (r *fakeDoctorRepo) ListPatients(_ context.Context, doctorID int64) ([]models.User, error) {
	return r.patientsByDoctor[doctorID], nil
}

func (r *fakeDoctorRepo) ListPrescriptions(_ context.Context, _ int64) ([]models.Prescription, error) {
	return nil, nil
}

type fakePatientRepo struct {
	patients map[int64]*models.Patient
	deleted  []int64
}

func newFakePatientRepo(patients ...*models.Patient) *fakePatientRepo {
	repo := &fakePatientRepo{patients: make(map[int64]*models.Patient)}
	for _, p := range patients {
		repo.patients[p.UserID] = p
	}
	return repo
}

func (r *fakePatientRepo) GetByUserID(_ context.Context, userID int64) (*models.Patient, error) {
	if p, ok := r.patients[userID]; ok {
		return p, nil
	}
	return nil, nil
}

func (r *fakePatientRepo) GetOrCreate(_ context.Context, userID int64) (*models.Patient, bool, error) {
	if p, ok := r.patients[userID]; ok {
		return p, false, nil
	}
	p := &models.Patient{ID: int64(len(r.patients) + 1), UserID: userID}
	r.patients[userID] = p
	return p, true, nil
}

func (r *fakePatientRepo) Save(_ context.Context, patient *models.Patient) error {
	r.patients[patient.UserID] = patient
	return nil
}

func (r *fakePatientRepo) DeleteByUserID(_ context.Context, userID int64) error {
	r.deleted = append(r.deleted, userID)
	delete(r.patients, userID)
	return nil
}

// fakeConversionRepo mirrors the all-or-nothing contract of the real
// conversion repository: when failWith is set, no state changes at all.
type fakeConversionRepo struct {
	users    *fakeUserRepo
	doctors  *fakeDoctorRepo
	patients *fakePatientRepo
	failWith error
}

func (r *fakeConversionRepo) AssignTeamRole(_ context.Context, userID int64, role string) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.users.users[userID].Role = role
	delete(r.patients.patients, userID)
	return nil
}

func (r *fakeConversionRepo) AssignDoctorRole(_ context.Context, userID int64, profile *models.Doctor) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.users.users[userID].Role = models.RoleDoctor
	existing, ok := r.doctors.doctors[userID]
	if !ok {
		row := &models.Doctor{ID: int64(len(r.doctors.doctors) + 1), UserID: userID}
		if profile != nil {
			row.Specialization = profile.Specialization
			row.LicenseNumber = profile.LicenseNumber
			row.YearsOfExperience = profile.YearsOfExperience
			row.ContactInfo = profile.ContactInfo
			row.Availability = profile.Availability
		}
		r.doctors.doctors[userID] = row
		return nil
	}
	if profile != nil {
		existing.Specialization = profile.Specialization
		existing.LicenseNumber = profile.LicenseNumber
		existing.YearsOfExperience = profile.YearsOfExperience
		existing.ContactInfo = profile.ContactInfo
		if len(profile.Availability) > 0 {
			existing.Availability = profile.Availability
		}
	}
	return nil
}

func (r *fakeConversionRepo) AssignPatientRole(_ context.Context, userID int64, removeDoctor bool) (bool, error) {
	if r.failWith != nil {
		return false, r.failWith
	}
	r.users.users[userID].Role = models.RolePatient
	if removeDoctor {
		r.doctors.deleted = append(r.doctors.deleted, userID)
		delete(r.doctors.doctors, userID)
	}
	if _, ok := r.patients.patients[userID]; ok {
		return false, nil
	}
	r.patients.patients[userID] = &models.Patient{ID: int64(len(r.patients.patients) + 1), UserID: userID}
	return true, nil
}

type fakeNotificationRepo struct {
	created []models.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	if notification.ID == 0 {
		notification.ID = int64(len(r.created) + 1)
	}
	r.created = append(r.created, *notification)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, notificationID int64) (*models.Notification, error) {
	for i := range r.created {
		if r.created[i].ID == notificationID {
			return &r.created[i], nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, _ int64) error { return nil }

func (r *fakeNotificationRepo) ListForUser(_ context.Context, userID int64) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range r.created {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) ListPasswordResetRequests(_ context.Context, relatedUserID int64) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range r.created {
		if n.Type == models.NotificationTypePasswordReset && n.RelatedID != nil && *n.RelatedID == relatedUserID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) titlesFor(userID int64) []string {
	var out []string
	for _, n := range r.created {
		if n.UserID == userID {
			out = append(out, n.Title)
		}
	}
	return out
}

func containsTitle(titles []string, fragment string) bool {
	for _, t := range titles {
		if strings.Contains(t, fragment) {
			return true
		}
	}
	return false
}
