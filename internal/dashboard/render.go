package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

func writeBanner(w io.Writer, title string) {
	fmt.Fprintf(w, "\n== %s ==\n", title)
}

func writeSection(w io.Writer, s Section) {
	fmt.Fprintf(w, "\n-- %s --\n", s.Title)
	if s.Err != "" {
		fmt.Fprintf(w, "error: %s\n", s.Err)
		return
	}
	if len(s.Rows) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(s.Headers, "\t"))
		for _, r := range s.Rows {
			fmt.Fprintln(tw, strings.Join(r, "\t"))
		}
		_ = tw.Flush()
	}
	if s.Info != "" {
		fmt.Fprintf(w, "info: %s\n", s.Info)
	}
}

// writeMessages prints the session's one-shot messages.
func writeMessages(w io.Writer, s Session) {
	if s.Notice != "" {
		fmt.Fprintf(w, "success: %s\n", s.Notice)
	}
	if s.Warning != "" {
		fmt.Fprintf(w, "warning: %s\n", s.Warning)
	}
	if s.Error != "" {
		fmt.Fprintf(w, "error: %s\n", s.Error)
	}
}

func writeHelp(w io.Writer, s Session) {
	switch {
	case s.State != StateLoggedIn:
		fmt.Fprintln(w, "commands: login <username>, quit")
	case s.Role == RoleStudent:
		fmt.Fprintln(w, "commands: ask <question>, refresh, logout, quit")
	case s.Role == RoleTeacher:
		fmt.Fprintln(w, "commands: upload <course-id> <path>, refresh, logout, quit")
	default:
		fmt.Fprintln(w, "commands: logout, quit")
	}
}
