package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/checkin_backend/models"
	"github.com/mmdatafocus/checkin_backend/utils"
)

const dateLayout = "2006-01-02"

type CheckinHandler struct {
	Service *models.CheckinService
}

func NewCheckinHandler(service *models.CheckinService) *CheckinHandler {
	return &CheckinHandler{Service: service}
}

func currentUserId(c *gin.Context) (int, bool) {
	return utils.GetUserIdFromContext(c.Request.Context())
}

func (h *CheckinHandler) Create(c *gin.Context) {
	userId, _ := currentUserId(c)

	var input models.NewCheckin
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.Service.CreateCheckin(c.Request.Context(), userId, &input)
	if err != nil {
		respondError(c, "handlers", "Create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func (h *CheckinHandler) List(c *gin.Context) {
	userId, _ := currentUserId(c)

	records, err := h.Service.GetUserCheckins(c.Request.Context(), userId)
	if err != nil {
		respondError(c, "handlers", "List", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (h *CheckinHandler) Page(c *gin.Context) {
	userId, _ := currentUserId(c)

	pageNum, _ := strconv.Atoi(c.DefaultQuery("page_num", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	page, err := h.Service.GetUserCheckinsByPage(c.Request.Context(), userId, pageNum, pageSize)
	if err != nil {
		respondError(c, "handlers", "Page", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": page})
}

func (h *CheckinHandler) Today(c *gin.Context) {
	userId, _ := currentUserId(c)

	checked, err := h.Service.GetTodayCheckinStatus(c.Request.Context(), userId)
	if err != nil {
		respondError(c, "handlers", "Today", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": checked})
}

func (h *CheckinHandler) Streak(c *gin.Context) {
	userId, _ := currentUserId(c)

	days, err := h.Service.GetContinuousCheckinDays(c.Request.Context(), userId)
	if err != nil {
		respondError(c, "handlers", "Streak", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": days})
}

type reissueRequest struct {
	Date   string `json:"date" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

func (h *CheckinHandler) Reissue(c *gin.Context) {
	userId, _ := currentUserId(c)

	var input reissueRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	date, err := time.ParseInLocation(dateLayout, input.Date, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as yyyy-mm-dd"})
		return
	}

	record, err := h.Service.ReissueCheckin(c.Request.Context(), userId, date, input.Reason)
	if err != nil {
		respondError(c, "handlers", "Reissue", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func (h *CheckinHandler) Stats(c *gin.Context) {
	userId, _ := currentUserId(c)

	stats, err := h.Service.GetCheckinStats(c.Request.Context(), userId)
	if err != nil {
		respondError(c, "handlers", "Stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *CheckinHandler) MonthlyStats(c *gin.Context) {
	userId, _ := currentUserId(c)

	now := time.Now()
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))

	stats, err := h.Service.GetMonthlyCheckinStats(c.Request.Context(), userId, year, month)
	if err != nil {
		respondError(c, "handlers", "MonthlyStats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}
