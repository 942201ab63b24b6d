package chatbot

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/handler"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/doctor"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/patient"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/schedule"
	apperrors "github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/errors"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/pkg/logger"
)

// Handler serves the conversational intake flow. Responses carry pt-BR
// messages the bot relays to the patient verbatim.
type Handler struct {
	scheduler *schedule.Service
	patients  *patient.Service
	doctors   *doctor.Service
	logger    *logger.Logger
}

func NewHandler(scheduler *schedule.Service, patients *patient.Service, doctors *doctor.Service, log *logger.Logger) *Handler {
	return &Handler{
		scheduler: scheduler,
		patients:  patients,
		doctors:   doctors,
		logger:    log,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	chatbot := r.Group("/chatbot")
	{
		chatbot.GET("/availability", h.GetAvailability)
		chatbot.POST("/appointments", h.CreateAppointment)
	}
}

type bookingRequest struct {
	PatientName   string `json:"patientName" binding:"required,min=2,max=200"`
	PatientPhone  string `json:"patientPhone" binding:"required,min=8,max=20"`
	DateTime      string `json:"dateTime" binding:"required"`
	Duration      int    `json:"duration" binding:"omitempty,min=10,max=240"`
	ProcedureType string `json:"procedureType" binding:"max=100"`
	DoctorName    string `json:"doctorName" binding:"max=200"`
	Notes         string `json:"notes" binding:"max=1000"`
	OwnerID       string `json:"ownerId" binding:"required,uuid"`
	DoctorID      string `json:"doctorId" binding:"omitempty,uuid"`
}

func (h *Handler) GetAvailability(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("parâmetro 'date' é obrigatório (YYYY-MM-DD)"))
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, h.scheduler.Hours().Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("data inválida, use o formato YYYY-MM-DD"))
		return
	}

	ownerID, err := uuid.Parse(c.Query("ownerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("parâmetro 'ownerId' inválido"))
		return
	}

	var doctorID *uuid.UUID
	if raw := c.Query("doctorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("parâmetro 'doctorId' inválido"))
			return
		}
		doctorID = &id
	}

	duration := 0
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("parâmetro 'duration' inválido"))
			return
		}
	}

	result, err := h.scheduler.ResolveAvailability(c.Request.Context(), date, duration, ownerID, doctorID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("dados inválidos: "+err.Error()))
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("ownerId inválido"))
		return
	}

	start, err := h.parseDateTime(req.DateTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("dateTime inválido, use ISO 8601"))
		return
	}

	duration := req.Duration
	if duration <= 0 {
		duration = h.scheduler.Hours().SlotDurationMinutes
	}

	ctx := c.Request.Context()

	pat, err := h.patients.FindOrCreate(ctx, ownerID, req.PatientName, req.PatientPhone)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	var doctorID *uuid.UUID
	if req.DoctorID != "" {
		id, err := uuid.Parse(req.DoctorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("doctorId inválido"))
			return
		}
		doctorID = &id
	}
	doc, err := h.doctors.Resolve(ctx, ownerID, doctorID, req.DoctorName)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if doc != nil {
		doctorID = &doc.ID
	}

	apt := &model.Appointment{
		OwnerID:       ownerID,
		PatientID:     pat.ID,
		PatientName:   pat.Name,
		DoctorID:      doctorID,
		StartTime:     start.UTC(),
		EndTime:       start.Add(time.Duration(duration) * time.Minute).UTC(),
		Status:        model.AppointmentStatusPending,
		Source:        model.AppointmentSourceChatbot,
		ProcedureType: req.ProcedureType,
		Notes:         req.Notes,
	}

	apt, err = h.scheduler.CommitAppointment(ctx, apt, nil)
	if err != nil {
		h.respondBookingError(c, err, start)
		return
	}

	local := apt.StartTime.In(h.scheduler.Hours().Location())
	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"message": fmt.Sprintf("Agendamento confirmado para %s às %s",
			local.Format("02/01/2006"), local.Format("15:04")),
		"data": apt,
	})
}

// respondBookingError augments the plain error mapping with the alternatives
// the bot offers: a reason plus next open day when the date is blocked, a
// shifted start when the slot is taken.
func (h *Handler) respondBookingError(c *gin.Context, err error, start time.Time) {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrBlockedDate:
		c.JSON(http.StatusConflict, gin.H{
			"status":            "error",
			"message":           apperrors.MessageOf(err),
			"suggestedMessage":  "Não temos horários disponíveis nesta data. Poderia escolher outro dia?",
			"nextAvailableDate": h.scheduler.NextAvailableDate(start.In(h.scheduler.Hours().Location())).Format("2006-01-02"),
		})
	case apperrors.ErrConflict:
		suggested := h.scheduler.SuggestNextSlot(start).In(h.scheduler.Hours().Location())
		c.JSON(http.StatusConflict, gin.H{
			"status":           "error",
			"message":          apperrors.MessageOf(err),
			"suggestedTime":    suggested.Format("15:04"),
			"suggestedMessage": fmt.Sprintf("Este horário já está ocupado. Que tal às %s?", suggested.Format("15:04")),
		})
	default:
		handler.RespondError(c, err)
	}
}

// parseDateTime accepts RFC 3339 or a bare local timestamp, which is taken to
// be in the clinic's zone.
func (h *Handler) parseDateTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", raw, h.scheduler.Hours().Location())
}
