package dashboard

import (
	"github.com/noah-isme/academic-dashboard/internal/dto"
	"github.com/noah-isme/academic-dashboard/internal/models"
)

// Messages shown by the session transitions.
const (
	MsgProfileUnavailable    = "Login successful, but failed to get user role details."
	MsgAuthenticationExpired = "Authentication expired or invalid. Please log in again."
	MsgLoggedOut             = "Logged out successfully."
)

// State is the session lifecycle stage.
type State int

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateLoggedIn:
		return "logged-in"
	default:
		return "logged-out"
	}
}

// Role decides which views a logged-in user sees.
type Role int

const (
	RoleUnknown Role = iota
	RoleStudent
	RoleTeacher
)

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleTeacher:
		return "Teacher"
	default:
		return "Unknown Role"
	}
}

// RoleFromGroups maps group membership to a role. Teachers wins over Students.
func RoleFromGroups(groups []string) Role {
	has := func(name string) bool {
		for _, g := range groups {
			if g == name {
				return true
			}
		}
		return false
	}
	switch {
	case has(models.GroupTeachers):
		return RoleTeacher
	case has(models.GroupStudents):
		return RoleStudent
	default:
		return RoleUnknown
	}
}

// Session is the whole client state. It is a value; transitions return a new Session.
type Session struct {
	State   State
	Role    Role
	Tokens  dto.TokenPair
	Profile *dto.UserProfile
	// Pending holds the username while authenticating.
	Pending string

	// One-shot messages, cleared by MessagesShown.
	Error   string
	Warning string
	Notice  string
}

// DisplayName is the profile username, or "User" when unknown.
func (s Session) DisplayName() string {
	if s.Profile != nil && s.Profile.Username != "" {
		return s.Profile.Username
	}
	return "User"
}

// Apply returns the session after the event.
func (s Session) Apply(e Event) Session {
	return e.apply(s)
}

// Event is a session transition. The set of events is closed.
type Event interface {
	apply(Session) Session
}

// LoginSubmitted starts authentication.
type LoginSubmitted struct {
	Username string
}

func (e LoginSubmitted) apply(Session) Session {
	return Session{State: StateAuthenticating, Pending: e.Username}
}

// LoginSucceeded carries the issued tokens and the outcome of the profile fetch.
type LoginSucceeded struct {
	Tokens     dto.TokenPair
	Profile    *dto.UserProfile
	ProfileErr error
}

func (e LoginSucceeded) apply(Session) Session {
	next := Session{State: StateLoggedIn, Tokens: e.Tokens, Role: RoleUnknown}
	if e.ProfileErr != nil || e.Profile == nil {
		next.Warning = MsgProfileUnavailable
		return next
	}
	next.Profile = e.Profile
	next.Role = RoleFromGroups(e.Profile.Groups)
	return next
}

// LoginFailed returns to the login form with the reason.
type LoginFailed struct {
	Message string
}

func (e LoginFailed) apply(Session) Session {
	return Session{State: StateLoggedOut, Error: e.Message}
}

// Unauthorized is raised by any protected call answered with 401.
type Unauthorized struct{}

func (Unauthorized) apply(Session) Session {
	return Session{State: StateLoggedOut, Error: MsgAuthenticationExpired}
}

// LogoutRequested is the explicit logout action.
type LogoutRequested struct{}

func (LogoutRequested) apply(Session) Session {
	return Session{State: StateLoggedOut, Notice: MsgLoggedOut}
}

// MessagesShown clears the one-shot messages after they were displayed.
type MessagesShown struct{}

func (MessagesShown) apply(s Session) Session {
	s.Error, s.Warning, s.Notice = "", "", ""
	return s
}
