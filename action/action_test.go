package action

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/zopsicle/snowflake/pkg/hash"
)

func newPerform(t *testing.T) *Perform {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "buildlog")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return &Perform{BuildLog: f, Scratch: t.TempDir()}
}

func TestWriteRegularFile(t *testing.T) {
	t.Parallel()
	for _, c := range []struct {
		executable bool
		mode       os.FileMode
	}{
		{false, 0o644},
		{true, 0o755},
	} {
		p := newPerform(t)
		a := &WriteRegularFile{Content: []byte("hello\n"), Executable: c.executable}
		sum, err := a.Perform(p, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(sum.OutputPaths) != 1 || sum.OutputPaths[0] != "output" {
			t.Fatalf("output paths = %v", sum.OutputPaths)
		}
		out := filepath.Join(p.Scratch, "output")
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "hello\n" {
			t.Errorf("content = %q", data)
		}
		info, err := os.Stat(out)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != c.mode {
			t.Errorf("mode = %v, want %v", info.Mode().Perm(), c.mode)
		}
	}
}

func TestCreateSymbolicLink(t *testing.T) {
	t.Parallel()
	p := newPerform(t)
	a := &CreateSymbolicLink{Target: "../elsewhere"}
	sum, err := a.Perform(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.OutputPaths) != 1 || sum.OutputPaths[0] != "output" {
		t.Fatalf("output paths = %v", sum.OutputPaths)
	}
	target, err := os.Readlink(filepath.Join(p.Scratch, "output"))
	if err != nil {
		t.Fatal(err)
	}
	if target != "../elsewhere" {
		t.Errorf("target = %q", target)
	}
}

func TestRunCommand_Perform(t *testing.T) {
	t.Parallel()
	p := newPerform(t)
	a := &RunCommand{
		OutputNames: []string{"out"},
		Program:     "/bin/sh",
		Arguments:   []string{"sh", "-c", "echo warning: dubious; echo done"},
		Environment: []string{"PATH=/usr/bin:/bin"},
		Timeout:     5 * time.Second,
		Warnings:    regexp.MustCompile(`^warning:`),
	}
	sum, err := a.Perform(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !sum.Warnings {
		t.Error("warning line not detected")
	}
	if len(sum.OutputPaths) != 1 || sum.OutputPaths[0] != "out" {
		t.Errorf("output paths = %v", sum.OutputPaths)
	}
}

func TestRunCommand_ExitStatus(t *testing.T) {
	t.Parallel()
	p := newPerform(t)
	a := &RunCommand{
		Program:   "/bin/false",
		Arguments: []string{"false"},
		Timeout:   5 * time.Second,
	}
	_, err := a.Perform(p, nil)
	var ese *ExitStatusError
	if !errors.As(err, &ese) {
		t.Fatalf("error = %v, want ExitStatusError", err)
	}
	if ese.WaitStatus.ExitStatus() != 1 {
		t.Errorf("exit status = %d, want 1", ese.WaitStatus.ExitStatus())
	}
}

func TestRunCommand_Timeout(t *testing.T) {
	t.Parallel()
	p := newPerform(t)
	a := &RunCommand{
		Program:   "/bin/sleep",
		Arguments: []string{"sleep", "10"},
		Timeout:   500 * time.Millisecond,
	}
	_, err := a.Perform(p, nil)
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want TimeoutError", err)
	}
}

func TestFindWarnings(t *testing.T) {
	t.Parallel()
	f, err := os.CreateTemp(t.TempDir(), "buildlog")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	f.WriteString("compiling\nwarning: unused variable\nlinking\n")

	found, err := findWarnings(f, regexp.MustCompile(`^warning:`))
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("warning not found")
	}

	found, err = findWarnings(f, regexp.MustCompile(`^error:`))
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("false positive warning")
	}

	found, err = findWarnings(f, nil)
	if err != nil || found {
		t.Errorf("nil pattern: found=%v err=%v", found, err)
	}
}

func TestHashes(t *testing.T) {
	t.Parallel()

	run := func(mutate func(*RunCommand)) hash.Hash {
		a := &RunCommand{
			InputNames:  []string{"src"},
			OutputNames: []string{"bin"},
			Program:     "/bin/cc",
			Arguments:   []string{"cc", "src"},
			Environment: []string{"PATH=/bin"},
			Timeout:     time.Minute,
		}
		if mutate != nil {
			mutate(a)
		}
		return a.Hash([]hash.Hash{{1}})
	}

	base := run(nil)
	if base != run(nil) {
		t.Error("RunCommand hash is not deterministic")
	}
	if base != run(func(a *RunCommand) { a.Timeout = time.Second }) {
		t.Error("timeout must not affect the hash")
	}
	if base == run(func(a *RunCommand) { a.Arguments = []string{"cc", "-O2", "src"} }) {
		t.Error("arguments do not affect the hash")
	}
	if base == run(func(a *RunCommand) { a.Warnings = regexp.MustCompile("w") }) {
		t.Error("warning pattern does not affect the hash")
	}

	w1 := (&WriteRegularFile{Content: []byte("a")}).Hash(nil)
	w2 := (&WriteRegularFile{Content: []byte("a"), Executable: true}).Hash(nil)
	if w1 == w2 {
		t.Error("executable bit does not affect the hash")
	}

	s1 := (&CreateSymbolicLink{Target: "a"}).Hash(nil)
	if s1 == w1 || s1 == base {
		t.Error("action kinds collide")
	}
}
