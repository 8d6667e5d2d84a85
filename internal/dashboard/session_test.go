package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/academic-dashboard/internal/dto"
)

func TestRoleFromGroups(t *testing.T) {
	assert.Equal(t, RoleTeacher, RoleFromGroups([]string{"Students", "Teachers"}))
	assert.Equal(t, RoleStudent, RoleFromGroups([]string{"Students"}))
	assert.Equal(t, RoleUnknown, RoleFromGroups([]string{"Staff"}))
	assert.Equal(t, RoleUnknown, RoleFromGroups(nil))
}

func TestLoginTransitions(t *testing.T) {
	tokens := dto.TokenPair{Access: "A", Refresh: "R"}
	s := Session{}.Apply(LoginSubmitted{Username: "alice"})
	assert.Equal(t, StateAuthenticating, s.State)
	assert.Equal(t, "alice", s.Pending)

	in := s.Apply(LoginSucceeded{Tokens: tokens, Profile: &dto.UserProfile{Username: "alice", Groups: []string{"Students"}}})
	assert.Equal(t, StateLoggedIn, in.State)
	assert.Equal(t, RoleStudent, in.Role)
	assert.Equal(t, tokens, in.Tokens)
	assert.Empty(t, in.Pending)
	assert.Empty(t, in.Warning)

	soft := s.Apply(LoginSucceeded{Tokens: tokens, ProfileErr: errors.New("boom")})
	assert.Equal(t, StateLoggedIn, soft.State)
	assert.Equal(t, RoleUnknown, soft.Role)
	assert.Equal(t, MsgProfileUnavailable, soft.Warning)
	assert.Equal(t, "User", soft.DisplayName())

	failed := s.Apply(LoginFailed{Message: "No active account"})
	assert.Equal(t, Session{State: StateLoggedOut, Error: "No active account"}, failed)
}

func TestUnauthorizedClearsEverything(t *testing.T) {
	s := Session{
		State:   StateLoggedIn,
		Role:    RoleTeacher,
		Tokens:  dto.TokenPair{Access: "A", Refresh: "R"},
		Profile: &dto.UserProfile{Username: "bob"},
		Notice:  "something",
	}

	out := s.Apply(Unauthorized{})
	assert.Equal(t, Session{State: StateLoggedOut, Error: MsgAuthenticationExpired}, out)
	assert.Empty(t, out.Notice)

	logout := s.Apply(LogoutRequested{})
	assert.Equal(t, Session{State: StateLoggedOut, Notice: MsgLoggedOut}, logout)

	assert.Equal(t, "bob", s.Apply(MessagesShown{}).Profile.Username)
	assert.Empty(t, s.Apply(MessagesShown{}).Notice)
}
