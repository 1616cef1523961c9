package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shift-tracker/internal/audit"
	"shift-tracker/internal/middleware"
	"shift-tracker/internal/models"
	"shift-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// RecordHandler serves the shift-record surface: owner-scoped CRUD, the
// audited admin overrides, and spreadsheet export.
type RecordHandler struct {
	DB    *gorm.DB
	Audit *audit.Logger
}

func NewRecordHandler(db *gorm.DB, auditLogger *audit.Logger) *RecordHandler {
	return &RecordHandler{DB: db, Audit: auditLogger}
}

type recordReq struct {
	Date       string   `json:"date" binding:"required"`
	StartTime  string   `json:"startTime" binding:"required"`
	EndTime    string   `json:"endTime" binding:"required"`
	TotalHours *float64 `json:"totalHours" binding:"required"`
	Zone       string   `json:"zone" binding:"required"`
	Notes      string   `json:"notes"`
}

type recordResp struct {
	ID         uint      `json:"id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"startTime"`
	EndTime    string    `json:"endTime"`
	TotalHours float64   `json:"totalHours"`
	Zone       string    `json:"zone"`
	Notes      string    `json:"notes"`
	UserID     uint      `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// recordSnapshot is the audit-trail image of a record's mutable fields.
type recordSnapshot struct {
	Date       string  `json:"date"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	TotalHours float64 `json:"totalHours"`
	Zone       string  `json:"zone"`
	Notes      string  `json:"notes"`
}

func toRecordResp(r *models.Record) recordResp {
	return recordResp{
		ID:         r.ID,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		TotalHours: r.TotalHours,
		Zone:       r.Zone,
		Notes:      r.Notes,
		UserID:     r.UserID,
		CreatedAt:  r.CreatedAt,
	}
}

func snapshot(r *models.Record) recordSnapshot {
	return recordSnapshot{
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		TotalHours: r.TotalHours,
		Zone:       r.Zone,
		Notes:      r.Notes,
	}
}

// List returns the caller's own records, newest shift first.
func (h *RecordHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var records []models.Record
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("date DESC, created_at DESC").
		Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to load records")
		return
	}

	out := make([]recordResp, 0, len(records))
	for i := range records {
		out = append(out, toRecordResp(&records[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RecordHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req recordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "date, startTime, endTime, totalHours and zone are required")
		return
	}
	if *req.TotalHours < 0 {
		util.Error(c, http.StatusBadRequest, "totalHours must not be negative")
		return
	}

	record := models.Record{
		UserID:     user.ID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		TotalHours: *req.TotalHours,
		Zone:       req.Zone,
		Notes:      req.Notes,
	}
	if err := h.DB.Create(&record).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to create record")
		return
	}

	c.JSON(http.StatusCreated, toRecordResp(&record))
}

// Update modifies one of the caller's own records. A record owned by
// someone else is simply not found: the query is pre-scoped to the owner.
func (h *RecordHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	record, ok := h.loadOwnRecord(c, user.ID)
	if !ok {
		return
	}

	var req recordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "date, startTime, endTime, totalHours and zone are required")
		return
	}
	if *req.TotalHours < 0 {
		util.Error(c, http.StatusBadRequest, "totalHours must not be negative")
		return
	}

	applyRecordReq(record, &req)
	if err := h.DB.Save(record).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to update record")
		return
	}

	c.JSON(http.StatusOK, toRecordResp(record))
}

func (h *RecordHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	record, ok := h.loadOwnRecord(c, user.ID)
	if !ok {
		return
	}

	if err := h.DB.Delete(record).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to delete record")
		return
	}
	util.Success(c, gin.H{"message": "record deleted"})
}

type adminEditReq struct {
	recordReq
	Reason string `json:"reason"`
}

// AdminEdit modifies any user's record. The modification entry and the
// update run in one transaction: without a confirmed audit write the edit
// does not happen.
func (h *RecordHandler) AdminEdit(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	record, owner, ok := h.loadAnyRecord(c)
	if !ok {
		return
	}

	var req adminEditReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "date, startTime, endTime, totalHours and zone are required")
		return
	}
	if *req.TotalHours < 0 {
		util.Error(c, http.StatusBadRequest, "totalHours must not be negative")
		return
	}

	before := snapshot(record)
	applyRecordReq(record, &req.recordReq)
	after := snapshot(record)

	changes, err := audit.EditChanges(before, after)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to edit record")
		return
	}

	entry := models.ModificationLog{
		AdminUsername:  actor.Username,
		TargetUsername: owner.Username,
		RecordID:       record.ID,
		Action:         models.ModificationEdit,
		Changes:        changes,
		Reason:         req.Reason,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		return h.Audit.RecordModification(tx, &entry)
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to edit record")
		return
	}

	util.Success(c, gin.H{
		"record": toRecordResp(record),
		"logId":  entry.ID,
	})
}

type adminDeleteReq struct {
	Reason string `json:"reason"`
}

// AdminDelete removes any user's record, keeping the full deleted snapshot
// in the modification log. Same single-transaction rule as AdminEdit.
func (h *RecordHandler) AdminDelete(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	record, owner, ok := h.loadAnyRecord(c)
	if !ok {
		return
	}

	// body is optional here; a bare DELETE carries no reason
	var req adminDeleteReq
	_ = c.ShouldBindJSON(&req)

	changes, err := audit.DeleteChanges(snapshot(record))
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to delete record")
		return
	}

	entry := models.ModificationLog{
		AdminUsername:  actor.Username,
		TargetUsername: owner.Username,
		RecordID:       record.ID,
		Action:         models.ModificationDelete,
		Changes:        changes,
		Reason:         req.Reason,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := h.Audit.RecordModification(tx, &entry); err != nil {
			return err
		}
		return tx.Delete(record).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to delete record")
		return
	}

	util.Success(c, gin.H{
		"message": "record deleted",
		"logId":   entry.ID,
	})
}

// ExportCSV downloads the caller's records as CSV.
func (h *RecordHandler) ExportCSV(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var records []models.Record
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("date DESC, created_at DESC").
		Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to load records")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"records_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Date", "Start", "End", "Total Hours", "Zone", "Notes"})
	for i := range records {
		r := &records[i]
		writer.Write([]string{
			r.Date,
			r.StartTime,
			r.EndTime,
			strconv.FormatFloat(r.TotalHours, 'f', 2, 64),
			r.Zone,
			r.Notes,
		})
	}
}

// ExportXLSX downloads the caller's records as an Excel workbook.
func (h *RecordHandler) ExportXLSX(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	var records []models.Record
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("date DESC, created_at DESC").
		Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to load records")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Records"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Start", "End", "Total Hours", "Zone", "Notes"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	for row := range records {
		r := &records[row]
		values := []interface{}{r.Date, r.StartTime, r.EndTime, r.TotalHours, r.Zone, r.Notes}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"records_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to write export")
	}
}

func applyRecordReq(record *models.Record, req *recordReq) {
	record.Date = req.Date
	record.StartTime = req.StartTime
	record.EndTime = req.EndTime
	record.TotalHours = *req.TotalHours
	record.Zone = req.Zone
	record.Notes = req.Notes
}

// loadOwnRecord resolves :id scoped to the owner, so someone else's record
// reads as not found rather than forbidden.
func (h *RecordHandler) loadOwnRecord(c *gin.Context, ownerID uint) (*models.Record, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "invalid record id")
		return nil, false
	}

	var record models.Record
	if err := h.DB.Where("id = ? AND user_id = ?", uint(id), ownerID).
		First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "record not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to look up record")
		}
		return nil, false
	}
	return &record, true
}

// loadAnyRecord resolves :id without an owner scope, for the admin override
// paths, along with the owning account.
func (h *RecordHandler) loadAnyRecord(c *gin.Context) (*models.Record, *models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "invalid record id")
		return nil, nil, false
	}

	var record models.Record
	if err := h.DB.First(&record, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "record not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "failed to look up record")
		}
		return nil, nil, false
	}

	var owner models.User
	if err := h.DB.First(&owner, record.UserID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "failed to look up record owner")
		return nil, nil, false
	}
	return &record, &owner, true
}
