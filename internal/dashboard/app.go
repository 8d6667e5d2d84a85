package dashboard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-dashboard/internal/client"
	"github.com/noah-isme/academic-dashboard/internal/dto"
)

// MsgEmptyQuestion is shown when ask has no text.
const MsgEmptyQuestion = "Please enter a question."

// DefaultUploadExtensions is the client-side upload allow-list.
var DefaultUploadExtensions = []string{"pdf", "docx", "txt"}

// API is the subset of the HTTP client the dashboard drives.
type API interface {
	ObtainToken(ctx context.Context, username, password string) (*dto.TokenPair, error)
	Profile(ctx context.Context, token string) (*dto.UserProfile, error)
	Get(ctx context.Context, token, path string, out interface{}) error
	AskChatbot(ctx context.Context, token, query string) (string, error)
	UploadContent(ctx context.Context, token string, courseID int64, filename string, r io.Reader) (*dto.UploadContentResponse, error)
}

// App is the terminal dashboard. It holds no session; every operation takes the current
// Session and returns the next one.
type App struct {
	api        API
	out        io.Writer
	logger     *zap.Logger
	extensions []string
	// readPassword replaces the next input line as the password source when set.
	readPassword func() (string, error)
}

// NewApp builds a dashboard writing to out.
func NewApp(api API, out io.Writer, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{api: api, out: out, logger: logger, extensions: DefaultUploadExtensions}
}

// SetPasswordReader reads login passwords with fn instead of the next input line, e.g. a
// no-echo terminal read.
func (a *App) SetPasswordReader(fn func() (string, error)) {
	a.readPassword = fn
}

// Run reads commands from in until quit, EOF or ctx is cancelled. Cancellation ends the loop
// cleanly even while a read is blocked.
func (a *App) Run(ctx context.Context, in io.Reader) error {
	lines := newLineReader(in)
	fmt.Fprintln(a.out, "Academic Dashboard & Chatbot")
	s := a.Render(ctx, Session{})

	for {
		fmt.Fprint(a.out, "> ")
		line, err := lines.next(ctx)
		if err != nil {
			return endOfInput(ctx, a.out, err)
		}
		cmd, arg := splitCommand(line)
		switch cmd {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "login":
			if arg == "" {
				fmt.Fprintln(a.out, "usage: login <username>")
				continue
			}
			fmt.Fprint(a.out, "password: ")
			password, err := a.password(ctx, lines)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return io.ErrUnexpectedEOF
				}
				return endOfInput(ctx, a.out, err)
			}
			s = a.Login(ctx, s, arg, password)
		case "logout":
			if s.State == StateLoggedIn {
				s = s.Apply(LogoutRequested{})
			}
		case "refresh":
		case "ask":
			s = a.Ask(ctx, s, arg)
		case "upload":
			fields := strings.Fields(arg)
			if len(fields) != 2 {
				fmt.Fprintln(a.out, "usage: upload <course-id> <path>")
				continue
			}
			courseID, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil || courseID <= 0 {
				fmt.Fprintln(a.out, "warning: Course ID missing for this course entry.")
				continue
			}
			s = a.Upload(ctx, s, courseID, fields[1])
		default:
			fmt.Fprintf(a.out, "unknown command %q\n", cmd)
			writeHelp(a.out, s)
			continue
		}
		s = a.Render(ctx, s)
	}
}

// Login authenticates and derives the role. A failed profile fetch still logs in.
func (a *App) Login(ctx context.Context, s Session, username, password string) Session {
	s = s.Apply(LoginSubmitted{Username: username})

	pair, err := a.api.ObtainToken(ctx, username, password)
	if err != nil {
		a.logger.Debug("login failed", zap.String("username", username), zap.Error(err))
		return s.Apply(LoginFailed{Message: loginMessage(err)})
	}

	profile, profileErr := a.api.Profile(ctx, pair.Access)
	if profileErr != nil {
		a.logger.Warn("profile fetch failed after login", zap.String("username", username), zap.Error(profileErr))
	}
	s = s.Apply(LoginSucceeded{Tokens: *pair, Profile: profile, ProfileErr: profileErr})
	a.logger.Debug("logged in", zap.String("username", username), zap.Stringer("role", s.Role))
	return s
}

// Render draws the view for s and returns the session after any forced logout. It is the
// single place that dispatches on Role.
func (a *App) Render(ctx context.Context, s Session) Session {
	if s.State != StateLoggedIn {
		writeBanner(a.out, "Login")
		writeMessages(a.out, s)
		writeHelp(a.out, s)
		return s.Apply(MessagesShown{})
	}

	writeMessages(a.out, s)
	s = s.Apply(MessagesShown{})
	fmt.Fprintf(a.out, "Logged in as: %s (%s)\n", s.DisplayName(), s.Role)

	var sections []Section
	switch s.Role {
	case RoleStudent:
		writeBanner(a.out, "Student Dashboard")
		courses, err := a.fetch(ctx, s, client.PathMyCourses)
		if errors.Is(err, client.ErrAuthenticationExpired) {
			return a.Render(ctx, s.Apply(Unauthorized{}))
		}
		sections = append(sections, studentCourses(courses, err))

		assignments, err := a.fetch(ctx, s, client.PathMyAssignments)
		if errors.Is(err, client.ErrAuthenticationExpired) {
			return a.Render(ctx, s.Apply(Unauthorized{}))
		}
		sections = append(sections, studentAssignments(assignments, err))

		grades, err := a.fetch(ctx, s, client.PathMyGrades)
		if errors.Is(err, client.ErrAuthenticationExpired) {
			return a.Render(ctx, s.Apply(Unauthorized{}))
		}
		sections = append(sections, studentGrades(grades, err))
	case RoleTeacher:
		writeBanner(a.out, "Teacher Dashboard")
		courses, err := a.fetch(ctx, s, client.PathTeacherCourses)
		if errors.Is(err, client.ErrAuthenticationExpired) {
			return a.Render(ctx, s.Apply(Unauthorized{}))
		}
		sections = append(sections, teacherCourses(courses, err))
	case RoleUnknown:
		fmt.Fprintln(a.out, "error: Invalid user role detected or role could not be determined. Access denied.")
	}

	for _, sec := range sections {
		writeSection(a.out, sec)
	}
	writeHelp(a.out, s)
	return s
}

// Ask sends a chatbot question. Students only.
func (a *App) Ask(ctx context.Context, s Session, question string) Session {
	if s.State != StateLoggedIn || s.Role != RoleStudent {
		fmt.Fprintln(a.out, "error: The chatbot is available to students only.")
		return s
	}
	question = strings.TrimSpace(question)
	if question == "" {
		fmt.Fprintln(a.out, "warning: "+MsgEmptyQuestion)
		return s
	}

	fmt.Fprintln(a.out, "Sending query...")
	reply, err := a.api.AskChatbot(ctx, s.Tokens.Access, question)
	var statusErr *client.StatusError
	var netErr *client.NetworkError
	switch {
	case err == nil:
		if reply == "" {
			reply = "Received empty response."
		}
		fmt.Fprintf(a.out, "Chatbot:\n%s\n", reply)
	case errors.Is(err, client.ErrAuthenticationExpired):
		return s.Apply(Unauthorized{})
	case errors.Is(err, client.ErrAuthorizationDenied):
		fmt.Fprintln(a.out, "error: Access denied to chatbot.")
	case errors.As(err, &statusErr):
		a.logger.Debug("chatbot error", zap.Int("status", statusErr.Code), zap.ByteString("body", statusErr.Body))
		fmt.Fprintf(a.out, "error: Chatbot error: Status %d\n", statusErr.Code)
	case errors.As(err, &netErr):
		fmt.Fprintf(a.out, "error: Network error connecting to chatbot: %v\n", netErr.Err)
	default:
		fmt.Fprintf(a.out, "error: Chatbot error: %v\n", err)
	}
	return s
}

// Upload sends one local file as content for courseID. Teachers only.
func (a *App) Upload(ctx context.Context, s Session, courseID int64, path string) Session {
	if s.State != StateLoggedIn || s.Role != RoleTeacher {
		fmt.Fprintln(a.out, "error: Uploads are available to teachers only.")
		return s
	}
	name := filepath.Base(path)
	if !a.allowed(name) {
		fmt.Fprintf(a.out, "error: Upload failed: unsupported file type for '%s' (allowed: %s)\n", name, strings.Join(a.extensions, ", "))
		return s
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(a.out, "error: Upload failed: %v\n", err)
		return s
	}
	defer f.Close()

	fmt.Fprintf(a.out, "Uploading and processing %s...\n", name)
	_, err = a.api.UploadContent(ctx, s.Tokens.Access, courseID, name, f)
	var statusErr *client.StatusError
	var netErr *client.NetworkError
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "success: Successfully uploaded and processed '%s'!\n", name)
	case errors.Is(err, client.ErrAuthenticationExpired):
		return s.Apply(Unauthorized{})
	case errors.Is(err, client.ErrAuthorizationDenied):
		fmt.Fprintln(a.out, "error: Authorization Error: You might not be the assigned teacher for this course, or another permission issue occurred.")
	case errors.As(err, &statusErr):
		a.logger.Debug("upload error", zap.Int("status", statusErr.Code), zap.ByteString("body", statusErr.Body))
		fmt.Fprintf(a.out, "error: Upload failed: %s\n", statusErr.Detail)
	case errors.As(err, &netErr):
		fmt.Fprintf(a.out, "error: Network error during upload: %v\n", netErr.Err)
	default:
		fmt.Fprintf(a.out, "error: Upload failed: %v\n", err)
	}
	return s
}

func (a *App) password(ctx context.Context, lines *lineReader) (string, error) {
	if a.readPassword == nil {
		return lines.next(ctx)
	}
	done := make(chan scanResult, 1)
	go func() {
		pw, err := a.readPassword()
		done <- scanResult{line: pw, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		fmt.Fprintln(a.out)
		return res.line, res.err
	}
}

// endOfInput maps the error that stopped reading to Run's result: EOF and cancellation are
// normal exits.
func endOfInput(ctx context.Context, out io.Writer, err error) error {
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		fmt.Fprintln(out)
		return nil
	default:
		return err
	}
}

type scanResult struct {
	line string
	err  error
}

// lineReader scans one line at a time on request so a blocked read can be abandoned on
// cancellation. A scan is only started when the previous one has been consumed, so other
// readers of the same input (a no-echo password prompt) never race with it.
type lineReader struct {
	scanner *bufio.Scanner
	results chan scanResult
	pending bool
}

func newLineReader(in io.Reader) *lineReader {
	return &lineReader{scanner: bufio.NewScanner(in), results: make(chan scanResult, 1)}
}

func (r *lineReader) next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !r.pending {
		r.pending = true
		go func() {
			if r.scanner.Scan() {
				r.results <- scanResult{line: r.scanner.Text()}
				return
			}
			err := r.scanner.Err()
			if err == nil {
				err = io.EOF
			}
			r.results <- scanResult{err: err}
		}()
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-r.results:
		r.pending = false
		return res.line, res.err
	}
}

func (a *App) fetch(ctx context.Context, s Session, path string) ([]row, error) {
	var items []row
	if err := a.api.Get(ctx, s.Tokens.Access, path, &items); err != nil {
		a.logger.Debug("fetch failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (a *App) allowed(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, e := range a.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func loginMessage(err error) string {
	var statusErr *client.StatusError
	var netErr *client.NetworkError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Detail
	case errors.As(err, &netErr):
		return fmt.Sprintf("Network error during login: %v", netErr.Err)
	default:
		return "Invalid credentials or server error."
	}
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}
