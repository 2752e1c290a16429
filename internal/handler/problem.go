package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/viksitkanpur/portal/internal/analyzer"
	"github.com/viksitkanpur/portal/internal/cache"
	"github.com/viksitkanpur/portal/internal/middleware"
	"github.com/viksitkanpur/portal/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxImageBytes = 8 << 20

var errImageTooLarge = errors.New("image exceeds the size limit")

type ProblemHandler struct {
	db       *gorm.DB
	cache    *cache.RedisCache
	analyzer *analyzer.Client
}

func NewProblemHandler(db *gorm.DB, redisCache *cache.RedisCache, analyzerClient *analyzer.Client) *ProblemHandler {
	return &ProblemHandler{db: db, cache: redisCache, analyzer: analyzerClient}
}

// List returns problems. Citizens only ever see their own; staff may list all,
// filtered by status, category or department. Staff listings are served from
// Redis when warm.
func (h *ProblemHandler) List(c *gin.Context) {
	userID := c.GetInt64("userID")
	role := c.GetString("userRole")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset := (page - 1) * limit

	status := c.Query("status")
	category := c.Query("category")
	department := c.Query("department")

	scope := "all"
	scopedUser := int64(0)
	if !model.IsStaff(role) {
		scope = "user"
		scopedUser = userID
	} else if q := c.Query("userId"); q != "" {
		if id, err := strconv.ParseInt(q, 10, 64); err == nil {
			scope = "user"
			scopedUser = id
		}
	}

	cacheable := scope == "all" && category == "" && h.cache != nil
	cacheKey := cache.ListKey(scope, status, department, page, limit)
	if cacheable {
		if raw, err := h.cache.Get(c.Request.Context(), cacheKey); err == nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	query := h.db.Model(&model.Problem{})
	if scope == "user" {
		query = query.Where("user_id = ?", scopedUser)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if department != "" {
		query = query.Where("assigned_department = ?", department)
	}
	if category != "" {
		query = query.Where("? = ANY(problem_categories)", category)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		log.Printf("Failed to count problems: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list complaints"})
		return
	}

	var problems []model.Problem
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&problems).Error; err != nil {
		log.Printf("Failed to list problems: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list complaints"})
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	payload := gin.H{
		"problems":   problems,
		"page":       page,
		"limit":      limit,
		"totalCount": totalCount,
		"totalPages": totalPages,
	}

	if cacheable {
		if raw, err := json.Marshal(payload); err == nil {
			if err := h.cache.Set(c.Request.Context(), cacheKey, raw); err != nil {
				log.Printf("Warning: failed to cache problem listing: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, payload)
}

// Get returns one problem. Citizens may only fetch their own.
func (h *ProblemHandler) Get(c *gin.Context) {
	var problem model.Problem
	if err := h.db.First(&problem, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
		return
	}

	if !model.IsStaff(c.GetString("userRole")) && problem.UserID != c.GetInt64("userID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your complaint"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"problem": problem})
}

type submitPayload struct {
	ProblemCategories []string      `json:"problem_categories"`
	OthersText        string        `json:"others_text"`
	Location          string        `json:"location"`
	Latitude          float64       `json:"latitude"`
	Longitude         float64       `json:"longitude"`
	Priority          string        `json:"priority"`
	Geotag            *model.Geotag `json:"geotag"`
}

// Submit registers a complaint. Multipart: a "payload" JSON field plus an
// "image" file. When the citizen picked no category the image is run through
// the analyzer; analysis failure never blocks the submission.
func (h *ProblemHandler) Submit(c *gin.Context) {
	userID := c.GetInt64("userID")
	userName := c.GetString("userName")
	userEmail := c.GetString("userEmail")

	var payload submitPayload
	if raw := c.PostForm("payload"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload JSON"})
			return
		}
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload field is required"})
		return
	}

	imageB64, imageMime, imageName, err := readImageField(c, "image")
	if errors.Is(err, errImageTooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image must be 8 MB or smaller"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if imageB64 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a complaint photo is required"})
		return
	}

	categories := payload.ProblemCategories
	if len(categories) == 0 && h.analyzer != nil {
		imageBytes, decodeErr := base64.StdEncoding.DecodeString(imageB64)
		if decodeErr == nil {
			if detected, aErr := h.analyzer.Analyze(c.Request.Context(), imageName, bytes.NewReader(imageBytes)); aErr == nil {
				categories = detected
			}
		}
	}

	department := model.DefaultDepartment
	if len(categories) > 0 {
		department = model.DepartmentFor(categories[0])
	}

	priority := payload.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	now := time.Now()
	problem := model.Problem{
		ID:                 uuid.NewString(),
		UserID:             userID,
		UserName:           userName,
		UserEmail:          userEmail,
		ProblemCategories:  categories,
		OthersText:         payload.OthersText,
		Location:           payload.Location,
		Latitude:           payload.Latitude,
		Longitude:          payload.Longitude,
		UserImageBase64:    imageB64,
		UserImageMimetype:  imageMime,
		Status:             model.StatusNotCompleted,
		Priority:           priority,
		AssignedDepartment: department,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if payload.Geotag != nil {
		if raw, err := json.Marshal(payload.Geotag); err == nil {
			problem.Geotag = datatypes.JSON(raw)
		}
	}

	if err := appendStatusEntry(&problem, model.StatusEntry{
		Status:    model.StatusNotCompleted,
		Timestamp: now,
		UpdatedBy: userName,
		Notes:     "Complaint registered",
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record status history"})
		return
	}

	if err := h.db.Create(&problem).Error; err != nil {
		log.Printf("Failed to create problem: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit complaint"})
		return
	}

	for _, cat := range categories {
		middleware.RecordSubmission(model.EnglishCategory(cat), priority)
	}
	h.invalidateListings(c)

	c.JSON(http.StatusCreated, gin.H{"problem": problem})
}

type updateProblemRequest struct {
	Status           string `json:"status"`
	AssignedWorkerID *int64 `json:"assigned_worker_id"`
	Priority         string `json:"priority"`
	Notes            string `json:"notes"`
}

// Update applies a staff triage action: status change, priority change,
// worker assignment, or any combination. Status may only move forward.
func (h *ProblemHandler) Update(c *gin.Context) {
	var req updateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var problem model.Problem
	if err := h.db.First(&problem, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
		return
	}

	newStatus := req.Status
	if req.AssignedWorkerID != nil {
		var worker model.User
		if err := h.db.First(&worker, *req.AssignedWorkerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "worker not found"})
			return
		}
		if worker.Role != model.RoleFieldWorker {
			c.JSON(http.StatusBadRequest, gin.H{"error": "assignee must be a field worker"})
			return
		}

		problem.AssignedWorkerID = req.AssignedWorkerID
		if worker.Department != "" {
			problem.AssignedDepartment = worker.Department
		}
		// Assignment implies work has started
		if newStatus == "" {
			newStatus = model.StatusInProgress
		}
	}

	if req.Priority != "" {
		switch req.Priority {
		case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
			problem.Priority = req.Priority
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
			return
		}
	}

	if newStatus != "" && newStatus != problem.Status {
		if !statusChangeAllowed(problem.Status, newStatus, req.AssignedWorkerID != nil) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status cannot move backwards"})
			return
		}

		notes := req.Notes
		if notes == "" {
			notes = defaultStatusNote(newStatus)
		}

		middleware.RecordStatusChange(problem.Status, newStatus)
		problem.Status = newStatus

		if err := appendStatusEntry(&problem, model.StatusEntry{
			Status:    newStatus,
			Timestamp: time.Now(),
			UpdatedBy: c.GetString("userName"),
			Notes:     notes,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record status history"})
			return
		}
	}

	problem.UpdatedAt = time.Now()
	if err := h.db.Save(&problem).Error; err != nil {
		log.Printf("Failed to update problem %s: %v", problem.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update complaint"})
		return
	}

	h.invalidateListings(c)

	c.JSON(http.StatusOK, gin.H{"problem": problem})
}

// Analyze categorizes an uploaded photo without creating a complaint.
func (h *ProblemHandler) Analyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer file.Close()

	if h.analyzer == nil {
		c.JSON(http.StatusOK, gin.H{"categories": []string{}})
		return
	}

	categories, err := h.analyzer.Analyze(c.Request.Context(), header.Filename, io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"categories": []string{}})
		return
	}
	if categories == nil {
		categories = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *ProblemHandler) invalidateListings(c *gin.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateProblems(c.Request.Context()); err != nil {
		log.Printf("Warning: failed to invalidate problem cache: %v", err)
	}
}

func readImageField(c *gin.Context, field string) (b64, mimetype, filename string, err error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == multipart.ErrMessageTooLarge {
			return "", "", "", nil
		}
		return "", "", "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return "", "", "", err
	}
	if len(data) > maxImageBytes {
		return "", "", "", errImageTooLarge
	}

	mimetype = header.Header.Get("Content-Type")
	if mimetype == "" {
		mimetype = http.DetectContentType(data)
	}

	return base64.StdEncoding.EncodeToString(data), mimetype, header.Filename, nil
}

func appendStatusEntry(p *model.Problem, entry model.StatusEntry) error {
	var history []model.StatusEntry
	if len(p.StatusHistory) > 0 {
		if err := json.Unmarshal(p.StatusHistory, &history); err != nil {
			return err
		}
	}
	history = append(history, entry)

	raw, err := json.Marshal(history)
	if err != nil {
		return err
	}
	p.StatusHistory = datatypes.JSON(raw)
	return nil
}

// statusChangeAllowed guards triage edits. A plain status change may only
// move forward; assigning a worker may also reopen a resolved complaint.
func statusChangeAllowed(from, to string, assigning bool) bool {
	if assigning && to == model.StatusInProgress {
		return true
	}
	return model.CanTransition(from, to)
}

func defaultStatusNote(status string) string {
	switch status {
	case model.StatusInProgress:
		return "Work started / कार्य शुरू"
	case model.StatusCompleted:
		return "Complaint resolved / शिकायत हल हो गई"
	default:
		return "Complaint registered / शिकायत दर्ज"
	}
}
