package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/middleware"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/repository"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/agenda"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/doctor"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/patient"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/schedule"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/logger"
)

const testToken = "chatbot-secret"

type fakeAppointmentRepo struct {
	appointments []*model.Appointment
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	f.appointments = append(f.appointments, apt)
	return nil
}

func (f *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	for _, apt := range f.appointments {
		if apt.ID == id {
			return apt, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAppointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	return nil
}

func (f *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeAppointmentRepo) ListForDay(ctx context.Context, ownerID uuid.UUID, doctorID *uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.appointments {
		if apt.OwnerID != ownerID || apt.Status == model.AppointmentStatusCancelled {
			continue
		}
		if apt.StartTime.Before(dayEnd) && dayStart.Before(apt.EndTime) {
			out = append(out, apt)
		}
	}
	return out, nil
}

type fakeBlockRepo struct{}

func (f *fakeBlockRepo) Create(ctx context.Context, block *model.AgendaBlock) error { return nil }
func (f *fakeBlockRepo) Get(ctx context.Context, id uuid.UUID) (*model.AgendaBlock, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeBlockRepo) List(ctx context.Context, ownerID uuid.UUID) ([]*model.AgendaBlock, error) {
	return nil, nil
}
func (f *fakeBlockRepo) ListActive(ctx context.Context, ownerID uuid.UUID) ([]*model.AgendaBlock, error) {
	return nil, nil
}
func (f *fakeBlockRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error { return nil }
func (f *fakeBlockRepo) Delete(ctx context.Context, id uuid.UUID) error                 { return nil }

type fakePatientRepo struct {
	patients []*model.Patient
}

func (f *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.patients = append(f.patients, p)
	return nil
}

func (f *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	for _, p := range f.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePatientRepo) GetByPhone(ctx context.Context, ownerID uuid.UUID, phone string) (*model.Patient, error) {
	for _, p := range f.patients {
		if p.OwnerID == ownerID && p.Phone == phone {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeDoctorRepo struct{}

func (f *fakeDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeDoctorRepo) GetByName(ctx context.Context, ownerID uuid.UUID, name string) (*model.Doctor, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeDoctorRepo) GetDefault(ctx context.Context, ownerID uuid.UUID) (*model.Doctor, error) {
	return nil, repository.ErrNotFound
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeAppointmentRepo, *fakePatientRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger(nil)
	aptRepo := &fakeAppointmentRepo{}
	patRepo := &fakePatientRepo{}
	agendaSvc := agenda.NewService(&fakeBlockRepo{}, false, log)
	hours := schedule.WorkingHours{
		DayStartHour:        8,
		DayEndHour:          18,
		LunchStartHour:      12,
		LunchEndHour:        13,
		SlotDurationMinutes: 30,
		UTCOffsetMinutes:    -180,
	}
	scheduler := schedule.NewService(aptRepo, agendaSvc, nil, hours, false, nil, log)
	h := NewHandler(scheduler, patient.NewService(patRepo), doctor.NewService(&fakeDoctorRepo{}), log)

	authMw := middleware.NewAuthMiddleware(nil, testToken)
	engine := gin.New()
	group := engine.Group("/api/v1")
	group.Use(authMw.AuthenticateChatbot())
	h.RegisterRoutes(group)

	return engine, aptRepo, patRepo
}

func doRequest(engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func bookingBody(ownerID uuid.UUID, dateTime string) map[string]interface{} {
	return map[string]interface{}{
		"patientName":  "Maria Souza",
		"patientPhone": "11999998888",
		"dateTime":     dateTime,
		"duration":     30,
		"ownerId":      ownerID.String(),
	}
}

func TestGetAvailability_RequiresToken(t *testing.T) {
	engine, _, _ := newTestRouter(t)
	ownerID := uuid.New()

	w := doRequest(engine, http.MethodGet, "/api/v1/chatbot/availability?date=2030-06-03&ownerId="+ownerID.String(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/chatbot/availability?date=2030-06-03&ownerId="+ownerID.String(), "wrong-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetAvailability_ValidatesParams(t *testing.T) {
	engine, _, _ := newTestRouter(t)
	ownerID := uuid.New()

	w := doRequest(engine, http.MethodGet, "/api/v1/chatbot/availability?ownerId="+ownerID.String(), testToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/chatbot/availability?date=03/06/2030&ownerId="+ownerID.String(), testToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodGet, "/api/v1/chatbot/availability?date=2030-06-03", testToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAvailability_OpenDay(t *testing.T) {
	engine, _, _ := newTestRouter(t)
	ownerID := uuid.New()

	w := doRequest(engine, http.MethodGet, "/api/v1/chatbot/availability?date=2030-06-03&ownerId="+ownerID.String(), testToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "2030-06-03", data["date"])
	assert.Equal(t, "segunda-feira", data["dayOfWeek"])
	assert.Equal(t, true, data["available"])
	assert.Equal(t, float64(18), data["totalSlots"])
}

func TestGetAvailability_Sunday(t *testing.T) {
	engine, _, _ := newTestRouter(t)
	ownerID := uuid.New()

	// 2030-06-02 is a Sunday.
	w := doRequest(engine, http.MethodGet, "/api/v1/chatbot/availability?date=2030-06-02&ownerId="+ownerID.String(), testToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, false, data["available"])
	assert.Equal(t, "domingo", data["dayOfWeek"])
	assert.Contains(t, data["message"], "domingos")
	assert.Equal(t, "2030-06-03", data["nextAvailableDate"])
}

func TestCreateAppointment_HappyPath(t *testing.T) {
	engine, aptRepo, patRepo := newTestRouter(t)
	ownerID := uuid.New()

	w := doRequest(engine, http.MethodPost, "/api/v1/chatbot/appointments", testToken,
		bookingBody(ownerID, "2030-06-03T10:00:00-03:00"))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "03/06/2030")
	assert.Contains(t, body["message"], "10:00")

	require.Len(t, aptRepo.appointments, 1)
	apt := aptRepo.appointments[0]
	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, model.AppointmentSourceChatbot, apt.Source)
	assert.Equal(t, time.Date(2030, time.June, 3, 13, 0, 0, 0, time.UTC), apt.StartTime)

	// The caller was registered as a patient.
	require.Len(t, patRepo.patients, 1)
	assert.Equal(t, "Maria Souza", patRepo.patients[0].Name)
}

func TestCreateAppointment_ReusesExistingPatient(t *testing.T) {
	engine, _, patRepo := newTestRouter(t)
	ownerID := uuid.New()
	existing := &model.Patient{ID: uuid.New(), OwnerID: ownerID, Name: "Maria Souza", Phone: "11999998888"}
	patRepo.patients = append(patRepo.patients, existing)

	w := doRequest(engine, http.MethodPost, "/api/v1/chatbot/appointments", testToken,
		bookingBody(ownerID, "2030-06-03T10:00:00-03:00"))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, patRepo.patients, 1)
}

func TestCreateAppointment_ConflictSuggestsNextSlot(t *testing.T) {
	engine, _, _ := newTestRouter(t)
	ownerID := uuid.New()

	w := doRequest(engine, http.MethodPost, "/api/v1/chatbot/appointments", testToken,
		bookingBody(ownerID, "2030-06-03T10:00:00-03:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(engine, http.MethodPost, "/api/v1/chatbot/appointments", testToken,
		bookingBody(ownerID, "2030-06-03T10:15:00-03:00"))

	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "já existe um agendamento")
	assert.Equal(t, "10:45", body["suggestedTime"])
	assert.Contains(t, body["suggestedMessage"], "10:45")
}

func TestCreateAppointment_AdjacentBookingSucceeds(t *testing.T) {
	engine, aptRepo, _ := newTestRouter(t)
	ownerID := uuid.New()

	w := doRequest(engine, http.MethodPost, "/api/v1/chatbot/appointments", testToken,
		bookingBody(ownerID, "2030-06-03T10:00:00-03:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(engine, http.MethodPost, "/api/v1/chatbot/appointments", testToken,
		bookingBody(ownerID, "2030-06-03T10:30:00-03:00"))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, aptRepo.appointments, 2)
}

func TestCreateAppointment_SundayRejected(t *testing.T) {
	engine, aptRepo, _ := newTestRouter(t)
	ownerID := uuid.New()

	w := doRequest(engine, http.MethodPost, "/api/v1/chatbot/appointments", testToken,
		bookingBody(ownerID, "2030-06-02T10:00:00-03:00"))

	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["message"], "domingos")
	assert.Equal(t, "2030-06-03", body["nextAvailableDate"])
	assert.Empty(t, aptRepo.appointments)
}

func TestCreateAppointment_ValidatesBody(t *testing.T) {
	engine, _, _ := newTestRouter(t)
	ownerID := uuid.New()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing patient name", map[string]interface{}{
			"patientPhone": "11999998888",
			"dateTime":     "2030-06-03T10:00:00-03:00",
			"ownerId":      ownerID.String(),
		}},
		{"missing phone", map[string]interface{}{
			"patientName": "Maria Souza",
			"dateTime":    "2030-06-03T10:00:00-03:00",
			"ownerId":     ownerID.String(),
		}},
		{"bad datetime", func() map[string]interface{} {
			b := bookingBody(ownerID, "03/06/2030 10:00")
			return b
		}()},
		{"bad owner id", func() map[string]interface{} {
			b := bookingBody(ownerID, "2030-06-03T10:00:00-03:00")
			b["ownerId"] = "not-a-uuid"
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(engine, http.MethodPost, "/api/v1/chatbot/appointments", testToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestCreateAppointment_NaiveDateTimeUsesClinicZone(t *testing.T) {
	engine, aptRepo, _ := newTestRouter(t)
	ownerID := uuid.New()

	w := doRequest(engine, http.MethodPost, "/api/v1/chatbot/appointments", testToken,
		bookingBody(ownerID, "2030-06-03T10:00:00"))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, aptRepo.appointments, 1)
	assert.Equal(t, time.Date(2030, time.June, 3, 13, 0, 0, 0, time.UTC), aptRepo.appointments[0].StartTime)
}

