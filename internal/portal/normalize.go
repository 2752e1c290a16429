package portal

import (
	"github.com/viksitkanpur/portal/internal/gateway"
	"github.com/viksitkanpur/portal/internal/model"
)

// placeholderImage is shown when a backend record carries no photo.
const placeholderImage = "data:image/svg+xml;base64,PHN2ZyB4bWxucz0iaHR0cDovL3d3dy53My5vcmcvMjAwMC9zdmciIHdpZHRoPSIxMjAiIGhlaWdodD0iMTIwIj48cmVjdCB3aWR0aD0iMTIwIiBoZWlnaHQ9IjEyMCIgZmlsbD0iI2UwZTBlMCIvPjwvc3ZnPg=="

// normalizeProblem converts a backend record into the cache's Report shape:
// legacy statuses remapped, coordinates already coerced by the gateway,
// missing image replaced with a placeholder, missing history synthesized,
// missing department derived from the category table.
func normalizeProblem(p gateway.Problem) Report {
	status := normalizeStatus(p.Status)

	category := "Others / अन्य"
	if len(p.ProblemCategories) > 0 {
		category = p.ProblemCategories[0]
	}

	department := p.AssignedDepartment
	if department == "" && len(p.ProblemCategories) > 0 {
		department = model.DepartmentFor(p.ProblemCategories[0])
	}
	if department == "" {
		department = model.DefaultDepartment
	}

	image := placeholderImage
	if p.UserImageBase64 != "" {
		image = dataURI(p.UserImageMimetype, p.UserImageBase64)
	}
	proof := ""
	if p.ProofImageBase64 != "" {
		proof = dataURI(p.ProofImageMimetype, p.ProofImageBase64)
	}

	history := make([]model.StatusEntry, 0, len(p.StatusHistory))
	for _, e := range p.StatusHistory {
		e.Status = string(normalizeStatus(e.Status))
		history = append(history, e)
	}
	if len(history) == 0 {
		// the backend predates status logs; fabricate the registration entry
		history = append(history, model.StatusEntry{
			Status:    string(status),
			Timestamp: p.CreatedAt,
			UpdatedBy: p.UserName,
			Notes:     "Complaint registered / शिकायत दर्ज",
		})
	}

	return Report{
		ID:                 p.ID,
		Image:              image,
		ProofImage:         proof,
		Description:        p.OthersText,
		Category:           category,
		Categories:         p.ProblemCategories,
		Location:           p.Location,
		SubmittedAt:        p.CreatedAt,
		Status:             status,
		Priority:           p.Priority,
		AssignedWorkerID:   p.AssignedWorkerID,
		AssignedDepartment: department,
		Geotag:             p.Geotag,
		StatusHistory:      history,
	}
}

// normalizeStatus maps the backend's legacy status vocabulary onto the
// portal's. Unknown values default to pending.
func normalizeStatus(s string) Status {
	switch s {
	case model.StatusCompleted, string(StatusResolved):
		return StatusResolved
	case model.StatusInProgress:
		return StatusInProgress
	default:
		return StatusPending
	}
}

func dataURI(mimetype, b64 string) string {
	if mimetype == "" {
		mimetype = "image/jpeg"
	}
	return "data:" + mimetype + ";base64," + b64
}
