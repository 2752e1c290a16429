package portal

import (
	"time"

	"github.com/viksitkanpur/portal/internal/model"
)

// Status is the complaint lifecycle as citizens see it. The backend speaks
// the legacy vocabulary ("not completed"/"completed"); translation happens in
// normalize.go and wireStatus.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// User is the signed-in identity held by the session store.
type User struct {
	ID         int64
	Name       string
	Email      string
	Phone      string
	Role       string
	Department string
	Address    string
	AvatarURL  string
}

// Report is a complaint as cached by the portal: backend records normalized
// into a single shape the screens can render without further guessing.
type Report struct {
	ID                 string
	Image              string
	ProofImage         string
	Description        string
	Category           string
	Categories         []string
	Location           string
	SubmittedAt        time.Time
	Status             Status
	Priority           string
	AssignedWorker     string
	AssignedWorkerID   *int64
	AssignedDepartment string
	Geotag             *model.Geotag
	StatusHistory      []model.StatusEntry
}

// ReportDraft is what the submission form hands over.
type ReportDraft struct {
	Description string
	Category    string
	Categories  []string
	Location    string
}

// ReportUpdate is a partial patch applied to a cached report.
type ReportUpdate struct {
	Status             *Status
	Priority           string
	AssignedWorkerID   *int64
	AssignedWorker     string
	AssignedDepartment string
	Notes              string
}

// ProfileUpdate is a partial profile edit.
type ProfileUpdate struct {
	Name      string
	Phone     string
	Address   string
	AvatarURL string
}
