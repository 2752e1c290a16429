package portal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/viksitkanpur/portal/internal/gateway"
	"github.com/viksitkanpur/portal/internal/model"
)

// ErrNotFound is returned when a report or worker id has no match in the cache.
var ErrNotFound = errors.New("not found in cache")

// LoadUserReports replaces the cache with the signed-in citizen's complaints.
func (a *App) LoadUserReports(ctx context.Context) error {
	a.mu.Lock()
	if a.user == nil {
		a.mu.Unlock()
		a.notifier.Notify(LevelError, "Sign in to see your complaints.")
		return ErrUnauthorized
	}
	userID := a.user.ID
	a.mu.Unlock()

	problems, err := a.gw.GetUserProblems(ctx, userID)
	if err != nil {
		a.notifier.Notify(LevelError, "Could not load your complaints. Please try again.")
		return err
	}

	reports := make([]Report, 0, len(problems))
	for _, p := range problems {
		reports = append(reports, normalizeProblem(p))
	}

	a.mu.Lock()
	a.reports = reports
	a.mu.Unlock()
	return nil
}

// LoadAllReports replaces the cache with every complaint (staff view). An
// empty result keeps whatever was already cached so dashboards degrade to
// stale-but-available instead of blanking out.
func (a *App) LoadAllReports(ctx context.Context) error {
	problems, err := a.gw.GetAllProblems(ctx)
	if err != nil {
		a.notifier.Notify(LevelError, "Could not load complaints from the server.")
		return err
	}

	if len(problems) == 0 {
		a.notifier.Notify(LevelInfo, "No complaints returned by the server; showing cached data.")
		return nil
	}

	reports := make([]Report, 0, len(problems))
	for _, p := range problems {
		reports = append(reports, normalizeProblem(p))
	}

	a.mu.Lock()
	a.reports = reports
	a.mu.Unlock()
	return nil
}

// SubmitReport files a new complaint. Categories come from the form when
// picked, else from image analysis, else from the draft's single category.
// Priority is derived from keywords; the geotag is synthesized (placeholder
// capture around the city center, not a real GPS fix).
func (a *App) SubmitReport(ctx context.Context, draft ReportDraft, imageName string, image io.Reader) (*Report, error) {
	a.mu.Lock()
	if a.user == nil {
		a.mu.Unlock()
		a.notifier.Notify(LevelError, "Sign in to report a problem.")
		return nil, ErrUnauthorized
	}
	capturedBy := a.user.Name
	a.mu.Unlock()

	if image == nil {
		a.notifier.Notify(LevelError, "A photo of the problem is required.")
		return nil, errors.New("complaint image is required")
	}

	imageBytes, err := io.ReadAll(image)
	if err != nil {
		a.notifier.Notify(LevelError, "Could not read the selected photo.")
		return nil, err
	}

	categories := draft.Categories
	aiDetected := false
	if len(categories) == 0 {
		detected, aErr := a.gw.AnalyzeImage(ctx, imageName, bytes.NewReader(imageBytes))
		if aErr == nil && len(detected) > 0 {
			categories = detected
			aiDetected = true
		}
	}
	if len(categories) == 0 && draft.Category != "" {
		categories = []string{draft.Category}
	}

	priority := DerivePriority(draft.Description, categories)
	geotag := SynthesizeGeotag(capturedBy)

	payload := gateway.SubmitPayload{
		ProblemCategories: categories,
		OthersText:        draft.Description,
		Location:          draft.Location,
		Latitude:          geotag.Latitude,
		Longitude:         geotag.Longitude,
		Priority:          priority,
		Geotag:            &geotag,
	}

	problem, err := a.gw.SubmitProblem(ctx, payload, imageName, bytes.NewReader(imageBytes))
	if err != nil {
		a.notifier.Notify(LevelError, "Could not submit your complaint. Please try again.")
		return nil, err
	}

	report := normalizeProblem(*problem)

	a.mu.Lock()
	a.reports = append([]Report{report}, a.reports...)
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Complaint submitted. Tracking ID: "+report.ID)
	if aiDetected {
		a.notifier.Notify(LevelInfo, "AI detected: "+strings.Join(categories, ", "))
	}

	return &report, nil
}

// UpdateReport persists a patch through the gateway and then applies it to
// the cached report. A status change appends exactly one history entry. A
// gateway failure leaves the cache untouched.
func (a *App) UpdateReport(ctx context.Context, reportID string, update ReportUpdate) error {
	wire := gateway.ProblemUpdate{
		Priority:         update.Priority,
		AssignedWorkerID: update.AssignedWorkerID,
		Notes:            update.Notes,
	}
	if update.Status != nil {
		wire.Status = wireStatus(*update.Status)
	}

	if _, err := a.gw.UpdateProblem(ctx, reportID, wire); err != nil {
		a.notifier.Notify(LevelError, "Could not update the complaint. Please try again.")
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	updatedBy := ""
	if a.user != nil {
		updatedBy = a.user.Name
	}

	for i := range a.reports {
		if a.reports[i].ID != reportID {
			continue
		}
		r := &a.reports[i]

		if update.Priority != "" {
			r.Priority = update.Priority
		}
		if update.AssignedWorkerID != nil {
			r.AssignedWorkerID = update.AssignedWorkerID
			r.AssignedWorker = update.AssignedWorker
		}
		if update.AssignedDepartment != "" {
			r.AssignedDepartment = update.AssignedDepartment
		}
		if update.Status != nil {
			r.Status = *update.Status
			notes := update.Notes
			if notes == "" {
				notes = statusNote(*update.Status)
			}
			r.StatusHistory = append(r.StatusHistory, model.StatusEntry{
				Status:    string(*update.Status),
				Timestamp: time.Now(),
				UpdatedBy: updatedBy,
				Notes:     notes,
			})
		}
		return nil
	}

	return ErrNotFound
}

// AssignWorker routes a complaint to a field worker: the worker's department
// becomes the report's department and the status moves to in-progress.
func (a *App) AssignWorker(ctx context.Context, reportID string, workerID int64) error {
	a.mu.Lock()
	var worker *User
	for i := range a.workers {
		if a.workers[i].ID == workerID {
			w := a.workers[i]
			worker = &w
			break
		}
	}
	a.mu.Unlock()

	if worker == nil {
		a.notifier.Notify(LevelError, "Worker not found.")
		return ErrNotFound
	}

	status := StatusInProgress
	err := a.UpdateReport(ctx, reportID, ReportUpdate{
		Status:             &status,
		AssignedWorkerID:   &worker.ID,
		AssignedWorker:     worker.Name,
		AssignedDepartment: worker.Department,
	})
	if err != nil {
		return err
	}

	a.notifier.Notify(LevelSuccess, "Complaint assigned to "+worker.Name+" ("+worker.Department+").")
	// No real push channel exists yet; surface the simulated delivery.
	a.notifier.Notify(LevelInfo, "Notification sent to "+worker.Name+".")
	return nil
}

// ReportByID returns a copy of one cached report.
func (a *App) ReportByID(reportID string) (*Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.reports {
		if a.reports[i].ID == reportID {
			r := a.reports[i]
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func statusNote(s Status) string {
	switch s {
	case StatusInProgress:
		return "Work started / कार्य शुरू"
	case StatusResolved:
		return "Complaint resolved / शिकायत हल हो गई"
	default:
		return "Complaint registered / शिकायत दर्ज"
	}
}

func wireStatus(s Status) string {
	switch s {
	case StatusInProgress:
		return model.StatusInProgress
	case StatusResolved:
		return model.StatusCompleted
	default:
		return model.StatusNotCompleted
	}
}
