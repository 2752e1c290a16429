package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/viksitkanpur/portal/internal/model"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

type DashboardStats struct {
	TotalProblems      int64            `json:"totalProblems"`
	PendingProblems    int64            `json:"pendingProblems"`
	InProgressProblems int64            `json:"inProgressProblems"`
	ResolvedProblems   int64            `json:"resolvedProblems"`
	HighPriority       int64            `json:"highPriority"`
	ByDepartment       map[string]int64 `json:"byDepartment"`
	TopCategories      []CategoryCount  `json:"topCategories"`
	RecentSubmissions  int64            `json:"recentSubmissions"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// GetStats returns the district-magistrate dashboard numbers.
func (h *AdminHandler) GetStats(c *gin.Context) {
	var stats DashboardStats

	h.db.Model(&model.Problem{}).Count(&stats.TotalProblems)
	h.db.Model(&model.Problem{}).Where("status = ?", model.StatusNotCompleted).Count(&stats.PendingProblems)
	h.db.Model(&model.Problem{}).Where("status = ?", model.StatusInProgress).Count(&stats.InProgressProblems)
	h.db.Model(&model.Problem{}).Where("status = ?", model.StatusCompleted).Count(&stats.ResolvedProblems)
	h.db.Model(&model.Problem{}).Where("priority = ?", model.PriorityHigh).Count(&stats.HighPriority)

	stats.ByDepartment = make(map[string]int64)
	type deptCount struct {
		AssignedDepartment string
		Count              int64
	}
	var deptCounts []deptCount
	h.db.Model(&model.Problem{}).
		Select("assigned_department, count(*) as count").
		Group("assigned_department").
		Scan(&deptCounts)
	for _, dc := range deptCounts {
		stats.ByDepartment[dc.AssignedDepartment] = dc.Count
	}

	h.db.Model(&model.Problem{}).
		Select("unnest(problem_categories) as category, count(*) as count").
		Group("category").
		Order("count DESC").
		Limit(10).
		Scan(&stats.TopCategories)

	sevenDaysAgo := time.Now().AddDate(0, 0, -7)
	h.db.Model(&model.Problem{}).Where("created_at > ?", sevenDaysAgo).Count(&stats.RecentSubmissions)

	c.JSON(http.StatusOK, stats)
}
