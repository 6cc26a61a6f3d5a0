package action

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/zopsicle/snowflake/pkg/forkexec"
	"github.com/zopsicle/snowflake/pkg/hash"
)

// RunCommand runs an arbitrary command in the sandbox.
type RunCommand struct {
	// InputNames are what the inputs are called. They only feed Hash:
	// Perform does not place the inputs anywhere and does not pass
	// inputPaths to the command.
	InputNames []string

	// OutputNames are what the outputs are called. Perform reports them
	// unchanged as the summary's output paths. It does not set the
	// command's working directory, which stays that of the calling
	// process rather than the scratch directory.
	OutputNames []string

	// Program is the absolute path to the program to run.
	Program string

	// Arguments to the program, including the zeroth argument, which
	// is normally equal to Program.
	Arguments []string

	// Environment is the *exact* environment to the program; Perform
	// sets no extra variables.
	Environment []string

	// Timeout is how much wall clock time the program may spend. A
	// program that exceeds it is killed and the action fails.
	Timeout time.Duration

	// Warnings matches warnings in the build log. Nil means no
	// warnings are assumed to have been emitted.
	Warnings *regexp.Regexp
}

func (a *RunCommand) Inputs() int {
	return len(a.InputNames)
}

func (a *RunCommand) Outputs() int {
	return len(a.OutputNames)
}

func (a *RunCommand) Perform(p *Perform, inputPaths []string) (Summary, error) {
	r := forkexec.Runner{
		Path:        a.Program,
		Args:        a.Arguments,
		Env:         a.Environment,
		LogFile:     p.BuildLog.Fd(),
		Timeout:     a.Timeout,
		ErrorBuffer: make([]byte, 128),
	}
	res := r.Run()

	switch res.Status {
	case forkexec.StatusChildTerminated:
		if !res.WaitStatus.Exited() || res.WaitStatus.ExitStatus() != 0 {
			return Summary{}, &ExitStatusError{WaitStatus: res.WaitStatus}
		}
	case forkexec.StatusFailureTimeout:
		return Summary{}, &TimeoutError{Timeout: a.Timeout}
	case forkexec.StatusFailurePreExecve:
		return Summary{}, fmt.Errorf("post-clone pre-execve setup: %w", res.Err)
	default:
		return Summary{}, fmt.Errorf("run command: %v: %w", res.Status, res.Err)
	}

	warnings, err := findWarnings(p.BuildLog, a.Warnings)
	if err != nil {
		return Summary{}, fmt.Errorf("scan build log for warnings: %w", err)
	}

	outputs := make([]string, len(a.OutputNames))
	copy(outputs, a.OutputNames)
	return Summary{OutputPaths: outputs, Warnings: warnings}, nil
}

func (a *RunCommand) Hash(inputHashes []hash.Hash) hash.Hash {
	h := hash.New()
	h.PutString("RunCommand")

	h.PutLen(len(a.InputNames))
	for i, name := range a.InputNames {
		h.PutString(name)
		h.PutHash(inputHashes[i])
	}

	h.PutStrings(a.OutputNames)
	h.PutString(a.Program)
	h.PutStrings(a.Arguments)
	h.PutStrings(a.Environment)

	// The timeout cannot affect the output of the action, so it is not
	// part of the hash.

	h.PutBool(a.Warnings != nil)
	if a.Warnings != nil {
		h.PutString(a.Warnings.String())
	}

	return h.Finalize()
}

// findWarnings scans the build log for lines matching the warning
// pattern. The log's file offset is shared with the dup'd descriptors the
// child wrote through, so it is parked at the end again after scanning.
func findWarnings(buildLog *os.File, re *regexp.Regexp) (bool, error) {
	if re == nil {
		return false, nil
	}
	if _, err := buildLog.Seek(0, io.SeekStart); err != nil {
		return false, err
	}
	found := false
	sc := bufio.NewScanner(buildLog)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if re.Match(sc.Bytes()) {
			found = true
		}
	}
	if err := sc.Err(); err != nil {
		return false, err
	}
	if _, err := buildLog.Seek(0, io.SeekEnd); err != nil {
		return false, err
	}
	return found, nil
}
