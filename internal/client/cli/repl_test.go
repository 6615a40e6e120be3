package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(ctx context.Context, args []string) error {
	f.record("login", args)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Register(ctx context.Context) error { f.record("register", nil); return nil }
func (f *fakeExec) Verify(ctx context.Context, args []string) error {
	f.record("verify", args)
	return nil
}
func (f *fakeExec) WhoAmI(ctx context.Context) error { f.record("whoami", nil); return nil }
func (f *fakeExec) Token(ctx context.Context) error  { f.record("token", nil); return nil }
func (f *fakeExec) Get(ctx context.Context, args []string) error {
	f.record("get", args)
	return nil
}
func (f *fakeExec) Ping(ctx context.Context) error { f.record("ping", nil); return nil }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.record("logout", nil)
	f.loggedIn = false
	return nil
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login google",
		"",
		"whoami",
		"token",
		"get /users/me",
		"ping",
		"verify abc",
		"logout",
		"register",
		"foobar",
		"exit",
		"whoami",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	assert.Equal(t, []string{"login", "whoami", "token", "get", "ping", "verify", "logout", "register"}, exec.calls)
	assert.Equal(t, []string{"google"}, exec.args[0])
	assert.Equal(t, []string{"/users/me"}, exec.args[3])
	assert.Equal(t, []string{"abc"}, exec.args[5])
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	lines := silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("help\nlogin\nhelp\nquit\n")))

	var helps []string
	for _, l := range *lines {
		if strings.HasPrefix(l, "Available commands") {
			helps = append(helps, l)
		}
	}
	if assert.Len(t, helps, 2) {
		assert.Contains(t, helps[0], "register")
		assert.Contains(t, helps[1], "logout")
	}
	assert.Contains(t, *lines, "Bye!")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("token")))

	assert.Equal(t, []string{"token"}, exec.calls)
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	lines := silencePrintln(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "s" }, bufio.NewReader(strings.NewReader("frobnicate\n")))

	assert.Contains(t, *lines, "Unknown command: frobnicate")
}
