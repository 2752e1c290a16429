package portal

import (
	"errors"

	"github.com/viksitkanpur/portal/internal/model"
)

// Page identifies one screen of the portal. There is no URL routing; the
// current page is a single value and every transition goes through Navigate.
type Page string

const (
	PageLogin        Page = "login"
	PageRegister     Page = "register"
	PageHelp         Page = "help"
	PageUnauthorized Page = "unauthorized"

	PageDashboard     Page = "dashboard"
	PageReportIssue   Page = "report-issue"
	PageMyReports     Page = "my-reports"
	PageReportHistory Page = "report-history"
	PageCityMap       Page = "city-map"
	PageProfile       Page = "profile"
	PageNotifications Page = "notifications"

	PageFieldWorkerDashboard     Page = "field-worker-dashboard"
	PageFieldWorkerTasks         Page = "field-worker-tasks"
	PageFieldWorkerNotifications Page = "field-worker-notifications"
	PageFieldWorkerProfile       Page = "field-worker-profile"

	PageDepartmentHeadDashboard     Page = "department-head-dashboard"
	PageDepartmentHeadReports       Page = "department-head-reports"
	PageDepartmentHeadNotifications Page = "department-head-notifications"

	PageAdminDashboard        Page = "admin-dashboard"
	PageAdminAnalytics        Page = "admin-analytics"
	PageAdminWorkerManagement Page = "admin-worker-management"
	PageAdminNotifications    Page = "admin-notifications"
	PageAdminProfile          Page = "admin-profile"
)

// ErrUnauthorized is returned when the current user may not view a page.
// The old behavior was a silent blank screen; now the failure is explicit
// and the unauthorized screen renders instead.
var ErrUnauthorized = errors.New("page not available for this role")

// ErrUnknownPage is returned for a page value outside the closed set.
var ErrUnknownPage = errors.New("unknown page")

type audience int

const (
	audienceAnyone audience = iota
	audienceCitizen
	audienceFieldWorker
	audienceDepartmentHead
	audienceMagistrate
	audienceStaff
)

// pageAudience is the single transition table. Legality of every navigation
// and every render is decided here and nowhere else.
var pageAudience = map[Page]audience{
	PageLogin:        audienceAnyone,
	PageRegister:     audienceAnyone,
	PageHelp:         audienceAnyone,
	PageUnauthorized: audienceAnyone,

	PageDashboard:     audienceCitizen,
	PageReportIssue:   audienceCitizen,
	PageMyReports:     audienceCitizen,
	PageReportHistory: audienceCitizen,
	PageCityMap:       audienceCitizen,
	PageProfile:       audienceCitizen,
	PageNotifications: audienceCitizen,

	PageFieldWorkerDashboard:     audienceFieldWorker,
	PageFieldWorkerTasks:         audienceFieldWorker,
	PageFieldWorkerNotifications: audienceFieldWorker,
	PageFieldWorkerProfile:       audienceFieldWorker,

	PageDepartmentHeadDashboard:     audienceDepartmentHead,
	PageDepartmentHeadReports:       audienceDepartmentHead,
	PageDepartmentHeadNotifications: audienceDepartmentHead,

	PageAdminDashboard:        audienceMagistrate,
	PageAdminAnalytics:        audienceMagistrate,
	PageAdminWorkerManagement: audienceStaff,
	PageAdminNotifications:    audienceMagistrate,
	PageAdminProfile:          audienceStaff,
}

// Screen is what the view selector hands to the renderer. It mirrors the page
// identifier for authorized combinations; unauthorized ones resolve to
// ScreenUnauthorized together with ErrUnauthorized.
type Screen string

const ScreenUnauthorized Screen = "unauthorized"

// ViewFor is the role-gated view selector: a pure function of (page, user).
func ViewFor(page Page, user *User) (Screen, error) {
	aud, ok := pageAudience[page]
	if !ok {
		return ScreenUnauthorized, ErrUnknownPage
	}

	if allowed(aud, user) {
		return Screen(page), nil
	}
	return ScreenUnauthorized, ErrUnauthorized
}

func allowed(aud audience, user *User) bool {
	switch aud {
	case audienceAnyone:
		return true
	case audienceCitizen:
		return user != nil && user.Role == model.RoleCitizen
	case audienceFieldWorker:
		return user != nil && user.Role == model.RoleFieldWorker
	case audienceDepartmentHead:
		return user != nil && user.Role == model.RoleDepartmentHead
	case audienceMagistrate:
		return user != nil && user.Role == model.RoleDistrictMagistrate
	case audienceStaff:
		return user != nil && model.IsStaff(user.Role)
	}
	return false
}

// dashboardFor maps a role to its landing page after sign-in.
func dashboardFor(role string) Page {
	switch role {
	case model.RoleFieldWorker:
		return PageFieldWorkerDashboard
	case model.RoleDepartmentHead:
		return PageDepartmentHeadDashboard
	case model.RoleDistrictMagistrate:
		return PageAdminDashboard
	default:
		return PageDashboard
	}
}
