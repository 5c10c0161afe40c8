package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-logging/internal/utils/response"
)

// readLine prints prompt and returns the next input line without its
// terminator. io.EOF means the user closed the input.
func (a *App) readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprintln(a.out, prompt)
	}
	line, err := a.in.ReadString('\n')
	if err != nil {
		// Last line without a trailing newline.
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// choose re-prompts until the user enters an integer in [lo, hi].
func (a *App) choose(prompt string, lo, hi int) (int, error) {
	for {
		s, err := a.readLine(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err == nil && n >= lo && n <= hi {
			return n, nil
		}
		a.fail("Invalid choice. Please try again.")
	}
}

func (a *App) say(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

func (a *App) header(format string, args ...any) {
	fmt.Fprintln(a.out, a.st.title.Render(fmt.Sprintf(format, args...)))
}

func (a *App) fail(msg string) {
	fmt.Fprintln(a.out, a.st.err.Render(msg))
}

func (a *App) report(r response.Response) {
	if r.IsError() {
		a.fail(r.Message)
		return
	}
	fmt.Fprintln(a.out, a.st.success.Render(r.Message))
}

// failed logs a service error and shows it to the user. The menu carries
// on afterwards: no error is fatal to the session.
func (a *App) failed(action string, err error) {
	a.log.Error(action+" failed", slog.String("error", err.Error()))
	a.report(response.FromError(err))
}

// newReader wraps in unless it already buffers.
func newReader(in io.Reader) *bufio.Reader {
	if br, ok := in.(*bufio.Reader); ok {
		return br
	}
	return bufio.NewReader(in)
}
