package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/checkin_backend/models"
	"github.com/mmdatafocus/checkin_backend/models/reports"
)

type AdminHandler struct {
	Service *models.CheckinService
}

func NewAdminHandler(service *models.CheckinService) *AdminHandler {
	return &AdminHandler{Service: service}
}

func parseDateOrToday(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as yyyy-mm-dd"})
		return time.Time{}, false
	}
	return date, true
}

func (h *AdminHandler) Unchecked(c *gin.Context) {
	date, ok := parseDateOrToday(c)
	if !ok {
		return
	}

	users, err := h.Service.GetUncheckedUsers(c.Request.Context(), date)
	if err != nil {
		respondError(c, "handlers", "Unchecked", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (h *AdminHandler) Remind(c *gin.Context) {
	date, ok := parseDateOrToday(c)
	if !ok {
		return
	}

	sent, err := h.Service.SendUncheckedReminders(c.Request.Context(), date)
	if err != nil {
		respondError(c, "handlers", "Remind", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reminders_sent": sent}})
}

func (h *AdminHandler) ExportMonthly(c *gin.Context) {
	userId, err := strconv.Atoi(c.Query("user_id"))
	if err != nil || userId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	now := time.Now()
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))

	user, err := models.GetUserById(c.Request.Context(), userId)
	if err != nil {
		respondError(c, "handlers", "ExportMonthly", err)
		return
	}

	stats, err := h.Service.GetMonthlyCheckinStats(c.Request.Context(), userId, year, month)
	if err != nil {
		respondError(c, "handlers", "ExportMonthly", err)
		return
	}

	f, err := reports.BuildMonthlyCheckinExcel(user, stats)
	if err != nil {
		respondError(c, "handlers", "ExportMonthly", err)
		return
	}

	filename := fmt.Sprintf("checkins-%s-%d-%02d.xlsx", user.Username, year, month)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		respondError(c, "handlers", "ExportMonthly", err)
	}
}
