package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"shift-tracker/internal/audit"
	"shift-tracker/internal/models"
	"shift-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// LogHandler serves the audit-trail queries. Both routes sit behind the
// administrative gate.
type LogHandler struct {
	Audit        *audit.Logger
	DefaultLimit int
}

func NewLogHandler(auditLogger *audit.Logger, defaultLimit int) *LogHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &LogHandler{Audit: auditLogger, DefaultLimit: defaultLimit}
}

type accessLogResp struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Timestamp time.Time `json:"timestamp"`
}

type modificationLogResp struct {
	ID             uint            `json:"id"`
	AdminUsername  string          `json:"adminUsername"`
	TargetUsername string          `json:"targetUsername"`
	RecordID       uint            `json:"recordId"`
	Action         string          `json:"action"`
	Changes        json.RawMessage `json:"changes"`
	Reason         string          `json:"reason"`
	Timestamp      time.Time       `json:"timestamp"`
}

// Access lists authentication events, newest first, optionally filtered by
// username.
func (h *LogHandler) Access(c *gin.Context) {
	limit, offset := h.pagination(c)

	entries, total, err := h.Audit.QueryAccess(c.Query("username"), limit, offset)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to load access logs")
		return
	}

	out := make([]accessLogResp, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		out = append(out, accessLogResp{
			ID:        e.ID,
			Username:  e.Username,
			Action:    e.Action,
			IPAddress: e.IPAddress,
			UserAgent: e.UserAgent,
			Timestamp: e.CreatedAt,
		})
	}
	util.Success(c, gin.H{
		"logs":  out,
		"total": total,
	})
}

// Modifications lists admin override events, newest first, optionally
// filtered by the acting admin.
func (h *LogHandler) Modifications(c *gin.Context) {
	limit, offset := h.pagination(c)

	entries, total, err := h.Audit.QueryModifications(c.Query("adminUsername"), limit, offset)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to load modification logs")
		return
	}

	out := make([]modificationLogResp, 0, len(entries))
	for i := range entries {
		out = append(out, toModificationLogResp(&entries[i]))
	}
	util.Success(c, gin.H{
		"logs":  out,
		"total": total,
	})
}

func toModificationLogResp(e *models.ModificationLog) modificationLogResp {
	changes := json.RawMessage(e.Changes)
	if !json.Valid(changes) {
		changes = nil
	}
	return modificationLogResp{
		ID:             e.ID,
		AdminUsername:  e.AdminUsername,
		TargetUsername: e.TargetUsername,
		RecordID:       e.RecordID,
		Action:         e.Action,
		Changes:        changes,
		Reason:         e.Reason,
		Timestamp:      e.CreatedAt,
	}
}

func (h *LogHandler) pagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.DefaultLimit)))
	if err != nil || limit <= 0 {
		limit = h.DefaultLimit
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
