package portal

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viksitkanpur/portal/internal/gateway"
	"github.com/viksitkanpur/portal/internal/model"
)

func TestNormalizeStatusMapping(t *testing.T) {
	cases := map[string]Status{
		model.StatusCompleted:    StatusResolved,
		model.StatusNotCompleted: StatusPending,
		model.StatusInProgress:   StatusInProgress,
		"resolved":               StatusResolved,
		"garbage-value":          StatusPending,
		"":                       StatusPending,
	}

	for wire, want := range cases {
		got := normalizeProblem(gateway.Problem{ID: "x", Status: wire}).Status
		assert.Equal(t, want, got, "wire status %q", wire)
	}
}

func TestNormalizeSynthesizesHistory(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	report := normalizeProblem(gateway.Problem{
		ID:        "x",
		UserName:  "Ramesh",
		Status:    model.StatusCompleted,
		CreatedAt: createdAt,
	})

	require.Len(t, report.StatusHistory, 1)
	assert.Equal(t, string(StatusResolved), report.StatusHistory[0].Status)
	assert.Equal(t, createdAt, report.StatusHistory[0].Timestamp)
	assert.Equal(t, "Ramesh", report.StatusHistory[0].UpdatedBy)
}

func TestNormalizeKeepsBackendHistory(t *testing.T) {
	report := normalizeProblem(gateway.Problem{
		ID:     "x",
		Status: model.StatusInProgress,
		StatusHistory: []model.StatusEntry{
			{Status: model.StatusNotCompleted, Timestamp: time.Now().Add(-time.Hour)},
			{Status: model.StatusInProgress, Timestamp: time.Now()},
		},
	})

	require.Len(t, report.StatusHistory, 2)
	assert.Equal(t, string(StatusPending), report.StatusHistory[0].Status, "history entries are remapped too")
	assert.Equal(t, string(StatusInProgress), report.StatusHistory[1].Status)
}

func TestNormalizeMissingImageGetsPlaceholder(t *testing.T) {
	report := normalizeProblem(gateway.Problem{ID: "x"})
	assert.True(t, strings.HasPrefix(report.Image, "data:image/"), "placeholder is a data URI")

	withImage := normalizeProblem(gateway.Problem{
		ID:                "y",
		UserImageBase64:   "Zm9v",
		UserImageMimetype: "image/png",
	})
	assert.Equal(t, "data:image/png;base64,Zm9v", withImage.Image)
}

func TestNormalizeDerivesDepartmentFromCategory(t *testing.T) {
	report := normalizeProblem(gateway.Problem{
		ID:                "x",
		ProblemCategories: []string{model.CategoryWater},
	})
	assert.Equal(t, "Jal Kal Vibhag", report.AssignedDepartment)

	explicit := normalizeProblem(gateway.Problem{
		ID:                 "y",
		ProblemCategories:  []string{model.CategoryWater},
		AssignedDepartment: "Special Cell",
	})
	assert.Equal(t, "Special Cell", explicit.AssignedDepartment, "backend's explicit department wins")

	uncategorized := normalizeProblem(gateway.Problem{ID: "z"})
	assert.Equal(t, model.DefaultDepartment, uncategorized.AssignedDepartment)
}

func TestDerivePriority(t *testing.T) {
	assert.Equal(t, model.PriorityHigh,
		DerivePriority("there is an Emergency here", []string{"Water Issues"}))
	assert.Equal(t, model.PriorityHigh,
		DerivePriority("quiet issue", []string{model.CategoryElectricity}),
		"high-priority category escalates without keywords")
	assert.Equal(t, model.PriorityHigh,
		DerivePriority("सड़क पर दुर्घटना हुई", []string{model.CategoryRoads}),
		"hindi urgent keyword")
	assert.Equal(t, model.PriorityMedium,
		DerivePriority("broken bench in the park", []string{model.CategoryRoads}))
	assert.Equal(t, model.PriorityMedium, DerivePriority("", nil))
}

func TestSynthesizeGeotagBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		g := SynthesizeGeotag("tester")
		assert.InDelta(t, 26.4499, g.Latitude, 0.05)
		assert.InDelta(t, 80.3319, g.Longitude, 0.05)
		assert.GreaterOrEqual(t, g.Accuracy, 5.0)
		assert.LessOrEqual(t, g.Accuracy, 50.0)
	}
}
