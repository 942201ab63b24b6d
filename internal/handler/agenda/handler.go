package agenda

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/handler"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/model"
	"github.com/gabrumasolucoes/Proton-agendamento-sub000/internal/service/agenda"
)

// Handler is the settings UI backend for agenda blocks.
type Handler struct {
	service *agenda.Service
}

func NewHandler(service *agenda.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	blocks := r.Group("/agenda-blocks")
	{
		blocks.POST("", h.CreateBlock)
		blocks.GET("", h.ListBlocks)
		blocks.GET("/closed-dates", h.GetClosedDates)
		blocks.PATCH("/:id/toggle", h.ToggleBlock)
		blocks.DELETE("/:id", h.DeleteBlock)
	}
}

func (h *Handler) CreateBlock(c *gin.Context) {
	var req model.CreateAgendaBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid owner ID"))
		return
	}

	block := &model.AgendaBlock{
		OwnerID:      ownerID,
		BlockType:    req.BlockType,
		Weekdays:     pq.Int64Array(req.Weekdays),
		SpecificDate: req.SpecificDate,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Label:        req.Label,
		Active:       true,
	}
	if req.DoctorID != "" {
		id, err := uuid.Parse(req.DoctorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
			return
		}
		block.DoctorID = &id
	}

	if err := h.service.CreateBlock(c.Request.Context(), block); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(block))
}

func (h *Handler) ListBlocks(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Query("owner_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid owner ID"))
		return
	}

	blocks, err := h.service.ListBlocks(c.Request.Context(), ownerID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(blocks))
}

// GetClosedDates expands the owner's active blocks into concrete closed dates
// within a window, so clients can grey days out before asking.
func (h *Handler) GetClosedDates(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Query("owner_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid owner ID"))
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid 'from' date, use YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid 'to' date, use YYYY-MM-DD"))
		return
	}
	if to.Before(from) || to.Sub(from) > 366*24*time.Hour {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("window must be ascending and at most one year"))
		return
	}

	blocks, err := h.service.ActiveBlocks(c.Request.Context(), ownerID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	dates, summary := h.service.ExpandClosedDates(blocks, from, to)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"closedDates": dates,
		"summary":     summary,
	}))
}

func (h *Handler) ToggleBlock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid block ID"))
		return
	}

	block, err := h.service.ToggleBlock(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(block))
}

func (h *Handler) DeleteBlock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid block ID"))
		return
	}

	if err := h.service.DeleteBlock(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, &handler.Response{Status: "success"})
}
