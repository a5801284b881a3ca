package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"healthcompanion/internal/store"
	"healthcompanion/internal/vitals"
)

type ingestRequest struct {
	Username  string   `json:"username"`
	Type      string   `json:"type"`
	Value     *float64 `json:"value"`
	Unit      string   `json:"unit"`
	Timestamp string   `json:"timestamp"`
}

func (a *App) ingestVital(c *gin.Context) {
	var payload ingestRequest
	if !mustJSON(c, &payload) {
		return
	}
	vitalType := vitals.NormalizeType(payload.Type)
	if vitalType == "" {
		writeError(c, http.StatusBadRequest, "type is required")
		return
	}
	if payload.Value == nil {
		writeError(c, http.StatusBadRequest, "value is required")
		return
	}
	at := time.Now().UTC()
	if raw := strings.TrimSpace(payload.Timestamp); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "timestamp must be RFC3339")
			return
		}
		at = parsed
	}

	user, ok := a.loadTargetUser(c, payload.Username)
	if !ok {
		return
	}

	reading, alert := vitals.NewReading(user.ID, vitalType, *payload.Value, payload.Unit, at)
	if err := a.store.RecordReading(c.Request.Context(), &reading, alert); err != nil {
		a.log.WithUser(user.Username).WithError(err).Error("record reading failed")
		writeError(c, http.StatusInternalServerError, "Failed to record reading")
		return
	}

	a.metrics.RecordReading(string(reading.Type), reading.IsAbnormal)
	response := gin.H{
		"status":   "recorded",
		"abnormal": reading.IsAbnormal,
		"reading":  reading,
	}
	if alert != nil {
		a.metrics.RecordAlert(string(alert.Severity))
		a.log.WithUser(user.Username).WithFields(map[string]any{
			"type":  reading.Type,
			"value": reading.Value,
		}).Warn("abnormal reading recorded")
		response["alert"] = alert
	}
	c.JSON(http.StatusOK, response)
}

type dashboardReading struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Timestamp  string  `json:"timestamp"`
	IsAbnormal bool    `json:"is_abnormal"`
}

type dashboardAlert struct {
	ID        string `json:"id"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
	Resolved  bool   `json:"resolved"`
}

func (a *App) dashboard(c *gin.Context) {
	user, ok := a.loadTargetUser(c, c.Param("username"))
	if !ok {
		return
	}
	ctx := c.Request.Context()

	readings, err := a.store.RecentReadings(ctx, user.ID, a.cfg.DashboardVitalsLimit)
	if err != nil {
		a.log.WithUser(user.Username).WithError(err).Error("load dashboard readings failed")
		writeError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	alerts, err := a.store.RecentAlerts(ctx, user.ID, a.cfg.DashboardAlertsLimit)
	if err != nil {
		a.log.WithUser(user.Username).WithError(err).Error("load dashboard alerts failed")
		writeError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	vitalItems := make([]dashboardReading, 0, len(readings))
	for _, r := range readings {
		vitalItems = append(vitalItems, dashboardReading{
			ID:         r.ID,
			Type:       string(r.Type),
			Value:      r.Value,
			Unit:       r.Unit,
			Timestamp:  r.Timestamp.UTC().Format(time.RFC3339),
			IsAbnormal: r.IsAbnormal,
		})
	}
	alertItems := make([]dashboardAlert, 0, len(alerts))
	for _, al := range alerts {
		alertItems = append(alertItems, dashboardAlert{
			ID:        al.ID,
			Severity:  string(al.Severity),
			Message:   al.Message,
			CreatedAt: al.CreatedAt.UTC().Format(time.RFC3339),
			Resolved:  al.Resolved,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     user.DisplayName(),
		"username": user.Username,
		"role":     user.Role,
		"vitals":   vitalItems,
		"alerts":   alertItems,
	})
}

func (a *App) vitalsReport(c *gin.Context) {
	limit := a.cfg.ReportLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	user, ok := a.loadTargetUser(c, c.Param("username"))
	if !ok {
		return
	}
	report, err := a.chat.Report(c.Request.Context(), user, limit)
	if err != nil {
		a.log.WithUser(user.Username).WithError(err).Error("build report failed")
		writeError(c, http.StatusInternalServerError, "Failed to build report")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"report":   report,
	})
}

func (a *App) resolveAlert(c *gin.Context) {
	alertID := strings.TrimSpace(c.Param("id"))
	if alertID == "" {
		writeError(c, http.StatusBadRequest, "alert id is required")
		return
	}
	user, ok := a.loadTargetUser(c, c.Query("username"))
	if !ok {
		return
	}

	err := a.store.ResolveAlert(c.Request.Context(), user.ID, alertID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "Alert not found")
		return
	}
	if err != nil {
		a.log.WithUser(user.Username).WithError(err).Error("resolve alert failed")
		writeError(c, http.StatusInternalServerError, "Failed to resolve alert")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}
