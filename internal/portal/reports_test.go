package portal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viksitkanpur/portal/internal/gateway"
	"github.com/viksitkanpur/portal/internal/model"
)

func signedInApp(t *testing.T, gw *mockGateway, notifier Notifier) *App {
	t.Helper()
	if gw.loginFunc == nil {
		gw.loginFunc = func(ctx context.Context, email, password string) (*gateway.AuthResult, error) {
			return &gateway.AuthResult{
				User: gateway.User{ID: 1, Name: "Ramesh", Email: "r@x.com", Role: model.RoleCitizen},
			}, nil
		}
	}
	app := NewApp(gw, notifier)
	require.NoError(t, app.Login(context.Background(), "r@x.com", "pw"))
	return app
}

func seedReports(t *testing.T, app *App, gw *mockGateway, problems []gateway.Problem) {
	t.Helper()
	gw.getAllProblemsFunc = func(ctx context.Context) ([]gateway.Problem, error) {
		return problems, nil
	}
	require.NoError(t, app.LoadAllReports(context.Background()))
}

func TestLoadUserReportsReplacesCache(t *testing.T) {
	gw := &mockGateway{
		getUserProblemsFunc: func(ctx context.Context, userID int64) ([]gateway.Problem, error) {
			assert.Equal(t, int64(1), userID)
			return []gateway.Problem{
				{ID: "a", Status: model.StatusCompleted, CreatedAt: time.Now()},
				{ID: "b", Status: model.StatusNotCompleted, CreatedAt: time.Now()},
			}, nil
		},
	}
	app := signedInApp(t, gw, &captureNotifier{})

	require.NoError(t, app.LoadUserReports(context.Background()))

	reports := app.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, StatusResolved, reports[0].Status)
	assert.Equal(t, StatusPending, reports[1].Status)
}

func TestLoadAllReportsEmptyKeepsPreviousCache(t *testing.T) {
	notifier := &captureNotifier{}
	gw := &mockGateway{}
	app := signedInApp(t, gw, notifier)
	seedReports(t, app, gw, []gateway.Problem{{ID: "keep-me", Status: model.StatusNotCompleted}})

	gw.getAllProblemsFunc = func(ctx context.Context) ([]gateway.Problem, error) {
		return nil, nil
	}
	require.NoError(t, app.LoadAllReports(context.Background()))

	reports := app.Reports()
	require.Len(t, reports, 1, "empty result keeps the stale cache")
	assert.Equal(t, "keep-me", reports[0].ID)
}

func TestSubmitReportDerivesHighPriority(t *testing.T) {
	var submitted gateway.SubmitPayload
	gw := &mockGateway{
		submitProblemFunc: func(ctx context.Context, payload gateway.SubmitPayload, imageName string, image io.Reader) (*gateway.Problem, error) {
			submitted = payload
			return &gateway.Problem{
				ID:                "new-id",
				ProblemCategories: payload.ProblemCategories,
				OthersText:        payload.OthersText,
				Status:            model.StatusNotCompleted,
				Priority:          payload.Priority,
				CreatedAt:         time.Now(),
			}, nil
		},
	}
	app := signedInApp(t, gw, &captureNotifier{})

	report, err := app.SubmitReport(context.Background(), ReportDraft{
		Description: "There is an EMERGENCY near the pump house",
		Categories:  []string{"Water Issues / जल समस्या"},
		Location:    "Ashok Nagar",
	}, "leak.jpg", strings.NewReader("fake-image-bytes"))
	require.NoError(t, err)

	assert.Equal(t, model.PriorityHigh, submitted.Priority)
	assert.Equal(t, model.PriorityHigh, report.Priority)

	reports := app.Reports()
	require.NotEmpty(t, reports)
	assert.Equal(t, "new-id", reports[0].ID, "new submission is prepended")
}

func TestSubmitReportUsesAnalyzerWhenNoCategoryPicked(t *testing.T) {
	notifier := &captureNotifier{}
	gw := &mockGateway{
		analyzeImageFunc: func(ctx context.Context, imageName string, image io.Reader) ([]string, error) {
			data, _ := io.ReadAll(image)
			assert.Equal(t, "fake-image-bytes", string(data), "analyzer sees the full image")
			return []string{model.CategoryGarbage}, nil
		},
		submitProblemFunc: func(ctx context.Context, payload gateway.SubmitPayload, imageName string, image io.Reader) (*gateway.Problem, error) {
			return &gateway.Problem{
				ID:                "g1",
				ProblemCategories: payload.ProblemCategories,
				Status:            model.StatusNotCompleted,
				CreatedAt:         time.Now(),
			}, nil
		},
	}
	app := signedInApp(t, gw, notifier)

	report, err := app.SubmitReport(context.Background(), ReportDraft{
		Description: "bad smell on the street",
	}, "photo.jpg", bytes.NewReader([]byte("fake-image-bytes")))
	require.NoError(t, err)

	assert.Equal(t, []string{model.CategoryGarbage}, report.Categories)

	var sawAIDetected bool
	for _, n := range notifier.notices {
		if n.level == LevelInfo && strings.Contains(n.message, "AI detected") {
			sawAIDetected = true
		}
	}
	assert.True(t, sawAIDetected, "AI categorization is announced")
}

func TestSubmitReportAnalyzerFailureFallsBackToDraftCategory(t *testing.T) {
	gw := &mockGateway{
		analyzeImageFunc: func(ctx context.Context, imageName string, image io.Reader) ([]string, error) {
			return nil, errors.New("analyzer down")
		},
		submitProblemFunc: func(ctx context.Context, payload gateway.SubmitPayload, imageName string, image io.Reader) (*gateway.Problem, error) {
			assert.Equal(t, []string{model.CategoryRoads}, payload.ProblemCategories)
			return &gateway.Problem{ID: "r1", ProblemCategories: payload.ProblemCategories, CreatedAt: time.Now()}, nil
		},
	}
	app := signedInApp(t, gw, &captureNotifier{})

	_, err := app.SubmitReport(context.Background(), ReportDraft{
		Description: "pothole",
		Category:    model.CategoryRoads,
	}, "road.jpg", strings.NewReader("img"))
	require.NoError(t, err)
}

func TestSubmitReportRequiresImage(t *testing.T) {
	app := signedInApp(t, &mockGateway{}, &captureNotifier{})

	_, err := app.SubmitReport(context.Background(), ReportDraft{Description: "x"}, "", nil)
	require.Error(t, err)
	assert.Empty(t, app.Reports())
}

func TestSubmitReportGeotagWithinJitterBounds(t *testing.T) {
	var submitted gateway.SubmitPayload
	gw := &mockGateway{
		submitProblemFunc: func(ctx context.Context, payload gateway.SubmitPayload, imageName string, image io.Reader) (*gateway.Problem, error) {
			submitted = payload
			return &gateway.Problem{ID: "geo", CreatedAt: time.Now()}, nil
		},
	}
	app := signedInApp(t, gw, &captureNotifier{})

	_, err := app.SubmitReport(context.Background(), ReportDraft{
		Description: "x", Category: model.CategoryWater,
	}, "a.jpg", strings.NewReader("img"))
	require.NoError(t, err)

	require.NotNil(t, submitted.Geotag)
	assert.InDelta(t, 26.4499, submitted.Geotag.Latitude, 0.05)
	assert.InDelta(t, 80.3319, submitted.Geotag.Longitude, 0.05)
	assert.GreaterOrEqual(t, submitted.Geotag.Accuracy, 5.0)
	assert.LessOrEqual(t, submitted.Geotag.Accuracy, 50.0)
	assert.Equal(t, "Ramesh", submitted.Geotag.CapturedBy)
}

func TestUpdateReportAppendsExactlyOneHistoryEntry(t *testing.T) {
	gw := &mockGateway{
		updateProblemFunc: func(ctx context.Context, id string, update gateway.ProblemUpdate) (*gateway.Problem, error) {
			assert.Equal(t, model.StatusInProgress, update.Status)
			return &gateway.Problem{ID: id, Status: update.Status}, nil
		},
	}
	app := signedInApp(t, gw, &captureNotifier{})
	seedReports(t, app, gw, []gateway.Problem{{
		ID:        "p1",
		Status:    model.StatusNotCompleted,
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}})

	before, err := app.ReportByID("p1")
	require.NoError(t, err)
	prevLen := len(before.StatusHistory)

	status := StatusInProgress
	require.NoError(t, app.UpdateReport(context.Background(), "p1", ReportUpdate{Status: &status}))

	after, err := app.ReportByID("p1")
	require.NoError(t, err)
	require.Len(t, after.StatusHistory, prevLen+1)

	last := after.StatusHistory[len(after.StatusHistory)-1]
	assert.Equal(t, string(StatusInProgress), last.Status)
	assert.Equal(t, StatusInProgress, after.Status)
	for _, e := range after.StatusHistory[:len(after.StatusHistory)-1] {
		assert.False(t, last.Timestamp.Before(e.Timestamp), "history timestamps never go backwards")
	}
}

func TestUpdateReportGatewayFailureLeavesCacheUntouched(t *testing.T) {
	notifier := &captureNotifier{}
	gw := &mockGateway{
		updateProblemFunc: func(ctx context.Context, id string, update gateway.ProblemUpdate) (*gateway.Problem, error) {
			return nil, errors.New("network down")
		},
	}
	app := signedInApp(t, gw, notifier)
	seedReports(t, app, gw, []gateway.Problem{{ID: "p1", Status: model.StatusNotCompleted, CreatedAt: time.Now()}})

	status := StatusResolved
	err := app.UpdateReport(context.Background(), "p1", ReportUpdate{Status: &status})
	require.Error(t, err)

	report, _ := app.ReportByID("p1")
	assert.Equal(t, StatusPending, report.Status, "failed update must not apply locally")
	assert.Len(t, report.StatusHistory, 1)
}

func TestAssignWorkerSetsDepartmentAndStatus(t *testing.T) {
	notifier := &captureNotifier{}
	statuses := map[string]string{
		"p1": model.StatusNotCompleted,
		"p2": model.StatusCompleted,
	}
	gw := &mockGateway{
		adminLoginFunc: func(ctx context.Context, email, password string) (*gateway.AuthResult, error) {
			return staffAuthResult(model.RoleDepartmentHead, "Jal Kal Vibhag"), nil
		},
		getAllProblemsFunc: func(ctx context.Context) ([]gateway.Problem, error) {
			return []gateway.Problem{
				{ID: "p1", Status: statuses["p1"], CreatedAt: time.Now()},
				{ID: "p2", Status: statuses["p2"], CreatedAt: time.Now()},
			}, nil
		},
		getAllUsersFunc: func(ctx context.Context) ([]gateway.User, error) {
			return []gateway.User{
				{ID: 3, Name: "Arun Kumar", Role: model.RoleFieldWorker, Department: "Jal Kal Vibhag"},
			}, nil
		},
		updateProblemFunc: func(ctx context.Context, id string, update gateway.ProblemUpdate) (*gateway.Problem, error) {
			// mirror the server's guard: only an assignment may reopen
			if update.Status != "" && update.AssignedWorkerID == nil &&
				!model.CanTransition(statuses[id], update.Status) {
				return nil, errors.New("status cannot move backwards")
			}
			if update.Status != "" {
				statuses[id] = update.Status
			}
			return &gateway.Problem{ID: id, Status: statuses[id]}, nil
		},
	}
	app := NewApp(gw, notifier)
	require.NoError(t, app.AdminLogin(context.Background(), "h@x.com", "pw"))

	// assignment moves status to in-progress regardless of prior status
	for _, reportID := range []string{"p1", "p2"} {
		require.NoError(t, app.AssignWorker(context.Background(), reportID, 3))

		report, err := app.ReportByID(reportID)
		require.NoError(t, err)
		assert.Equal(t, "Jal Kal Vibhag", report.AssignedDepartment)
		assert.Equal(t, "Arun Kumar", report.AssignedWorker)
		assert.Equal(t, StatusInProgress, report.Status)
	}

	// success toast plus the simulated push to the worker
	var pushes int
	for _, n := range notifier.notices {
		if n.level == LevelInfo && strings.Contains(n.message, "Notification sent to Arun Kumar") {
			pushes++
		}
	}
	assert.Equal(t, 2, pushes)
}

func TestAssignWorkerUnknownWorker(t *testing.T) {
	app := signedInApp(t, &mockGateway{}, &captureNotifier{})

	err := app.AssignWorker(context.Background(), "p1", 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
