package invoke

import (
	"context"
	"fmt"
	"strings"
)

// Call records one invocation observed by the Fake runner.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// Line renders the call as a single command line, useful for assertions.
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Fake is a Runner that records calls and replays scripted results.
// Responses are matched by command line prefix (e.g. "terraform apply");
// unmatched commands succeed with an empty Result.
type Fake struct {
	Calls     []Call
	Responses map[string]Response
}

// Response is a scripted outcome for a command prefix.
type Response struct {
	Result Result
	Err    error
}

// NewFake returns an empty Fake runner.
func NewFake() *Fake {
	return &Fake{Responses: map[string]Response{}}
}

// Fail scripts a non-zero exit with the given stderr for commands matching
// prefix.
func (f *Fake) Fail(prefix, stderr string, exitCode int) {
	res := Result{ExitCode: exitCode, Stderr: stderr}
	f.Responses[prefix] = Response{
		Result: res,
		Err:    &CommandError{Name: strings.Fields(prefix)[0], Result: res, Err: fmt.Errorf("exit status %d", exitCode)},
	}
}

// Succeed scripts a zero exit with the given stdout for commands matching
// prefix.
func (f *Fake) Succeed(prefix, stdout string) {
	f.Responses[prefix] = Response{Result: Result{Stdout: stdout}}
}

// Run records the call and returns the scripted response with the longest
// matching prefix.
func (f *Fake) Run(_ context.Context, dir, name string, args ...string) (Result, error) {
	call := Call{Dir: dir, Name: name, Args: args}
	f.Calls = append(f.Calls, call)

	line := call.Line()
	var best string
	for prefix := range f.Responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return Result{}, nil
	}
	resp := f.Responses[best]
	return resp.Result, resp.Err
}

// CommandLines returns every recorded call as a rendered command line.
func (f *Fake) CommandLines() []string {
	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, c.Line())
	}
	return lines
}
