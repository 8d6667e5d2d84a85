package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-dashboard/internal/client"
	"github.com/noah-isme/academic-dashboard/internal/dto"
)

type fakeAPI struct {
	profileErr error
	groups     []string
	// responses maps a path to its JSON body, or to an error.
	responses map[string]interface{}
	uploadErr error
	uploads   []string
	chatReply string
}

func (f *fakeAPI) ObtainToken(_ context.Context, username, password string) (*dto.TokenPair, error) {
	if username == "alice" && password == "pw123" || username == "tom" && password == "pw" {
		return &dto.TokenPair{Access: "A", Refresh: "R"}, nil
	}
	return nil, &client.StatusError{Code: 401, Detail: "No active account found with the given credentials"}
}

func (f *fakeAPI) Profile(context.Context, string) (*dto.UserProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &dto.UserProfile{Username: "alice", Groups: f.groups}, nil
}

func (f *fakeAPI) Get(_ context.Context, _ string, path string, out interface{}) error {
	switch v := f.responses[path].(type) {
	case error:
		return v
	case string:
		return json.Unmarshal([]byte(v), out)
	default:
		return json.Unmarshal([]byte("[]"), out)
	}
}

func (f *fakeAPI) AskChatbot(_ context.Context, _ string, query string) (string, error) {
	return f.chatReply, nil
}

func (f *fakeAPI) UploadContent(_ context.Context, _ string, courseID int64, filename string, r io.Reader) (*dto.UploadContentResponse, error) {
	data, _ := io.ReadAll(r)
	f.uploads = append(f.uploads, filename+":"+string(data))
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &dto.UploadContentResponse{Content: dto.ContentRead{CourseID: courseID, FileName: filename}}, nil
}

func loggedIn(role Role) Session {
	return Session{State: StateLoggedIn, Role: role, Tokens: dto.TokenPair{Access: "A", Refresh: "R"}, Profile: &dto.UserProfile{Username: "alice"}}
}

func TestLoginStudent(t *testing.T) {
	api := &fakeAPI{groups: []string{"Students"}}
	app := NewApp(api, io.Discard, nil)

	s := app.Login(context.Background(), Session{}, "alice", "pw123")
	assert.Equal(t, StateLoggedIn, s.State)
	assert.Equal(t, RoleStudent, s.Role)
	assert.Equal(t, dto.TokenPair{Access: "A", Refresh: "R"}, s.Tokens)
}

func TestLoginProfileFailureIsSoft(t *testing.T) {
	api := &fakeAPI{profileErr: &client.StatusError{Code: 500}}
	var out bytes.Buffer
	app := NewApp(api, &out, nil)

	s := app.Login(context.Background(), Session{}, "alice", "pw123")
	assert.Equal(t, StateLoggedIn, s.State)
	assert.Equal(t, RoleUnknown, s.Role)

	s = app.Render(context.Background(), s)
	assert.Contains(t, out.String(), MsgProfileUnavailable)
	assert.Contains(t, out.String(), "Access denied.")
	assert.Contains(t, out.String(), "commands: logout, quit")
	assert.Empty(t, s.Warning)
}

func TestLoginRejected(t *testing.T) {
	app := NewApp(&fakeAPI{}, io.Discard, nil)

	s := app.Login(context.Background(), Session{}, "alice", "nope")
	assert.Equal(t, StateLoggedOut, s.State)
	assert.Equal(t, "No active account found with the given credentials", s.Error)
}

func TestRenderStudentSectionsFailIndependently(t *testing.T) {
	api := &fakeAPI{responses: map[string]interface{}{
		client.PathMyCourses:     &client.StatusError{Code: 502},
		client.PathMyAssignments: `[]`,
		client.PathMyGrades:      `[{"score": null, "course_code": "CS101", "assignment_title": "HW1", "submission_status": "missing", "submitted_at": null}]`,
	}}
	var out bytes.Buffer
	app := NewApp(api, &out, nil)

	s := app.Render(context.Background(), loggedIn(RoleStudent))
	assert.Equal(t, StateLoggedIn, s.State)

	text := out.String()
	assert.Contains(t, text, "Error fetching data: Status code 502")
	assert.Contains(t, text, "No upcoming assignments found.")
	assert.Contains(t, text, "HW1")
	assert.Contains(t, text, "N/A")
	assert.NotContains(t, text, "0.00")
}

func TestRenderForcesLogoutOn401(t *testing.T) {
	api := &fakeAPI{responses: map[string]interface{}{
		client.PathMyAssignments: client.ErrAuthenticationExpired,
	}}
	var out bytes.Buffer
	app := NewApp(api, &out, nil)

	s := app.Render(context.Background(), loggedIn(RoleStudent))
	assert.Equal(t, StateLoggedOut, s.State)
	assert.Empty(t, s.Tokens.Access)
	assert.Contains(t, out.String(), MsgAuthenticationExpired)
	assert.NotContains(t, out.String(), MsgLoggedOut)
}

func TestUploadReportsPerAttempt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syllabus.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	api := &fakeAPI{}
	var out bytes.Buffer
	app := NewApp(api, &out, nil)
	teacher := loggedIn(RoleTeacher)

	s := app.Upload(context.Background(), teacher, 7, path)
	assert.Equal(t, teacher, s)
	assert.Contains(t, out.String(), "Successfully uploaded and processed 'syllabus.pdf'!")
	assert.Equal(t, []string{"syllabus.pdf:%PDF"}, api.uploads)

	out.Reset()
	api.uploadErr = client.ErrAuthorizationDenied
	s = app.Upload(context.Background(), teacher, 7, path)
	assert.Equal(t, teacher, s)
	assert.Contains(t, out.String(), "You might not be the assigned teacher for this course")

	out.Reset()
	api.uploadErr = &client.StatusError{Code: 413, Detail: "File exceeds the maximum allowed size."}
	app.Upload(context.Background(), teacher, 7, path)
	assert.Contains(t, out.String(), "Upload failed: File exceeds the maximum allowed size.")

	api.uploadErr = client.ErrAuthenticationExpired
	s = app.Upload(context.Background(), teacher, 7, path)
	assert.Equal(t, StateLoggedOut, s.State)
	assert.Equal(t, MsgAuthenticationExpired, s.Error)
}

func TestUploadRejectsExtension(t *testing.T) {
	api := &fakeAPI{}
	var out bytes.Buffer
	app := NewApp(api, &out, nil)

	app.Upload(context.Background(), loggedIn(RoleTeacher), 7, "/tmp/run.exe")
	assert.Contains(t, out.String(), "unsupported file type")
	assert.Empty(t, api.uploads)
}

func TestAsk(t *testing.T) {
	api := &fakeAPI{chatReply: "From notes.txt: week one covers loops"}
	var out bytes.Buffer
	app := NewApp(api, &out, nil)

	app.Ask(context.Background(), loggedIn(RoleStudent), "   ")
	assert.Contains(t, out.String(), MsgEmptyQuestion)

	out.Reset()
	app.Ask(context.Background(), loggedIn(RoleStudent), "loops?")
	assert.Contains(t, out.String(), "Chatbot:\nFrom notes.txt: week one covers loops")

	out.Reset()
	app.Ask(context.Background(), loggedIn(RoleTeacher), "loops?")
	assert.Contains(t, out.String(), "students only")
}

func TestRunScript(t *testing.T) {
	api := &fakeAPI{groups: []string{"Teachers"}, responses: map[string]interface{}{
		client.PathTeacherCourses: `[{"id": 7, "code": "CS101", "name": "Intro"}]`,
	}}
	var out bytes.Buffer
	app := NewApp(api, &out, nil)

	in := strings.NewReader("login tom\npw\nrefresh\nlogout\nquit\n")
	require.NoError(t, app.Run(context.Background(), in))

	text := out.String()
	assert.Contains(t, text, "Teacher Dashboard")
	assert.Contains(t, text, "CS101")
	assert.Contains(t, text, MsgLoggedOut)
}

func TestRunStopsOnEOF(t *testing.T) {
	app := NewApp(&fakeAPI{}, io.Discard, nil)
	assert.NoError(t, app.Run(context.Background(), strings.NewReader("")))
	assert.False(t, errors.Is(app.Run(context.Background(), strings.NewReader("bogus\n")), io.EOF))
}

func TestRunUsesPasswordReader(t *testing.T) {
	api := &fakeAPI{groups: []string{"Students"}}
	var out bytes.Buffer
	app := NewApp(api, &out, nil)
	app.SetPasswordReader(func() (string, error) { return "pw123", nil })

	require.NoError(t, app.Run(context.Background(), strings.NewReader("login alice\nquit\n")))
	assert.Contains(t, out.String(), "Logged in as: alice (Student)")
}

func TestRunLoginWithoutPassword(t *testing.T) {
	app := NewApp(&fakeAPI{}, io.Discard, nil)
	assert.ErrorIs(t, app.Run(context.Background(), strings.NewReader("login alice\n")), io.ErrUnexpectedEOF)
}

func TestRunReturnsWhenContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	app := NewApp(&fakeAPI{}, io.Discard, nil)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, pr) }()

	_, err := pw.Write([]byte("refresh\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept blocking on input after cancellation")
	}
}

func TestRunCancelledDuringPasswordPrompt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAPI{groups: []string{"Students"}}
	app := NewApp(api, io.Discard, nil)
	block := make(chan struct{})
	defer close(block)
	app.SetPasswordReader(func() (string, error) {
		cancel()
		<-block
		return "", nil
	})

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, strings.NewReader("login alice\n")) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept blocking on the password prompt after cancellation")
	}
}
