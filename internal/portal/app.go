// Package portal is the role-aware application core of VIKSIT KANPUR:
// session/identity, page navigation, and the local report cache. All state
// lives in one App and every mutation goes through its methods under one
// mutex, so screens can never race each other into inconsistent state.
package portal

import (
	"context"
	"io"
	"sync"

	"github.com/viksitkanpur/portal/internal/gateway"
	"github.com/viksitkanpur/portal/internal/model"
)

// Gateway is the backend contract the portal consumes. Implemented by
// gateway.Client; tests substitute func-field mocks.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*gateway.AuthResult, error)
	AdminLogin(ctx context.Context, email, password string) (*gateway.AuthResult, error)
	Register(ctx context.Context, payload gateway.RegisterPayload) (*gateway.AuthResult, error)
	GetUserProblems(ctx context.Context, userID int64) ([]gateway.Problem, error)
	GetAllProblems(ctx context.Context) ([]gateway.Problem, error)
	GetAllUsers(ctx context.Context) ([]gateway.User, error)
	SubmitProblem(ctx context.Context, payload gateway.SubmitPayload, imageName string, image io.Reader) (*gateway.Problem, error)
	UpdateProblem(ctx context.Context, id string, update gateway.ProblemUpdate) (*gateway.Problem, error)
	UpdateUser(ctx context.Context, id int64, update gateway.UserUpdate) (*gateway.User, error)
	AnalyzeImage(ctx context.Context, imageName string, image io.Reader) ([]string, error)
	Logout(ctx context.Context) error
}

type App struct {
	mu sync.Mutex

	gw       Gateway
	notifier Notifier

	user    *User
	page    Page
	reports []Report
	workers []User
}

func NewApp(gw Gateway, notifier Notifier) *App {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &App{
		gw:       gw,
		notifier: notifier,
		page:     PageLogin,
	}
}

// CurrentPage returns the page the portal is showing.
func (a *App) CurrentPage() Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (a *App) CurrentUser() *User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// Reports returns a copy of the cached reports, newest first.
func (a *App) Reports() []Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Report, len(a.reports))
	copy(out, a.reports)
	return out
}

// Workers returns the cached staff directory loaded after an admin login.
func (a *App) Workers() []User {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]User, len(a.workers))
	copy(out, a.workers)
	return out
}

// View resolves the current page to a screen through the role gate.
func (a *App) View() (Screen, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ViewFor(a.page, a.user)
}

// Navigate moves to a page if the current user may view it. An illegal
// target lands on the unauthorized screen instead of going blank.
func (a *App) Navigate(page Page) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := ViewFor(page, a.user); err != nil {
		a.page = PageUnauthorized
		return err
	}
	a.page = page
	return nil
}

// Login signs a citizen in and lands on the citizen dashboard. On failure
// the state is left untouched and the user is told to try again.
func (a *App) Login(ctx context.Context, email, password string) error {
	result, err := a.gw.Login(ctx, email, password)
	if err != nil {
		a.notifier.Notify(LevelError, "Login failed. Please check your credentials and try again.")
		return err
	}

	user := userFromBackend(result.User)

	a.mu.Lock()
	a.user = &user
	a.page = dashboardFor(user.Role)
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Welcome back, "+user.Name+"!")
	return nil
}

// AdminLogin signs staff in, routes to the role's dashboard, and then loads
// the full report and worker sets. The bulk load runs after the login
// round-trip completes; there is no timer between the two.
func (a *App) AdminLogin(ctx context.Context, email, password string) error {
	result, err := a.gw.AdminLogin(ctx, email, password)
	if err != nil {
		a.notifier.Notify(LevelError, "Staff login failed. Please check your credentials.")
		return err
	}

	if !model.IsStaff(result.User.Role) {
		// the gateway already stored this session's tokens; discard them
		_ = a.gw.Logout(ctx)
		a.notifier.Notify(LevelError, "This account is not a staff account.")
		return ErrUnauthorized
	}

	user := userFromBackend(result.User)

	a.mu.Lock()
	a.user = &user
	a.page = dashboardFor(user.Role)
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Signed in as "+user.Role+".")

	if err := a.LoadAllReports(ctx); err != nil {
		return nil // already notified; login itself succeeded
	}
	if err := a.loadWorkers(ctx); err != nil {
		return nil
	}
	return nil
}

// Register creates a citizen account and signs it in.
func (a *App) Register(ctx context.Context, payload gateway.RegisterPayload) error {
	result, err := a.gw.Register(ctx, payload)
	if err != nil {
		a.notifier.Notify(LevelError, "Registration failed. Please try again.")
		return err
	}

	user := userFromBackend(result.User)

	a.mu.Lock()
	a.user = &user
	a.page = PageDashboard
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Account created. Welcome, "+user.Name+"!")
	return nil
}

// UpdateProfile round-trips a partial profile edit and merges the server's
// response over the current user.
func (a *App) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	a.mu.Lock()
	if a.user == nil {
		a.mu.Unlock()
		a.notifier.Notify(LevelError, "You must be signed in to edit your profile.")
		return ErrUnauthorized
	}
	userID := a.user.ID
	a.mu.Unlock()

	result, err := a.gw.UpdateUser(ctx, userID, gateway.UserUpdate{
		Name:      update.Name,
		Phone:     update.Phone,
		Address:   update.Address,
		AvatarURL: update.AvatarURL,
	})
	if err != nil {
		a.notifier.Notify(LevelError, "Could not save your profile. Please try again.")
		return err
	}

	a.mu.Lock()
	if a.user != nil && a.user.ID == userID {
		merged := userFromBackend(*result)
		// server response wins field by field, existing values fill gaps
		if merged.Name == "" {
			merged.Name = a.user.Name
		}
		if merged.Phone == "" {
			merged.Phone = a.user.Phone
		}
		if merged.Address == "" {
			merged.Address = a.user.Address
		}
		if merged.AvatarURL == "" {
			merged.AvatarURL = a.user.AvatarURL
		}
		if merged.Role == "" {
			merged.Role = a.user.Role
		}
		if merged.Department == "" {
			merged.Department = a.user.Department
		}
		a.user = &merged
	}
	a.mu.Unlock()

	a.notifier.Notify(LevelSuccess, "Profile updated.")
	return nil
}

// Logout clears the session and returns to the login page. The gateway call
// is best-effort; local state is cleared regardless.
func (a *App) Logout(ctx context.Context) {
	if err := a.gw.Logout(ctx); err != nil {
		a.notifier.Notify(LevelInfo, "Signed out locally; the server could not be reached.")
	}

	a.mu.Lock()
	a.user = nil
	a.reports = nil
	a.workers = nil
	a.page = PageLogin
	a.mu.Unlock()
}

func (a *App) loadWorkers(ctx context.Context) error {
	users, err := a.gw.GetAllUsers(ctx)
	if err != nil {
		a.notifier.Notify(LevelError, "Could not load the staff directory.")
		return err
	}

	workers := make([]User, 0, len(users))
	for _, u := range users {
		workers = append(workers, userFromBackend(u))
	}

	a.mu.Lock()
	a.workers = workers
	a.mu.Unlock()
	return nil
}

func userFromBackend(u gateway.User) User {
	role := u.Role
	if role == "" {
		role = model.RoleCitizen
	}
	return User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       role,
		Department: u.Department,
		Address:    u.Address,
		AvatarURL:  u.AvatarURL,
	}
}
