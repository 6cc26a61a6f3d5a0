// snowflake-run executes one command inside the snowflake sandbox and
// reports how it terminated. It is a debugging harness for the runner;
// builds drive the same code through the action layer.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zopsicle/snowflake/pkg/buildlog"
	"github.com/zopsicle/snowflake/pkg/forkexec"
)

var (
	logPath string
	timeout time.Duration
	env     []string
	argv0   string
)

func main() {
	root := &cobra.Command{
		Use:   "snowflake-run [flags] -- program [args...]",
		Short: "Run one command inside the snowflake sandbox",
		Long: "snowflake-run spawns the program in fresh cgroup, IPC, net, mount,\n" +
			"pid, user and UTS namespaces, waits for it to exit or the timeout\n" +
			"to expire, and reports the outcome.",
		Args:          cobra.MinimumNArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().StringVar(&logPath, "log", "", "append the command's output to this file instead of stdout")
	root.Flags().DurationVar(&timeout, "timeout", time.Minute, "wall clock budget before the command is killed")
	root.Flags().StringArrayVar(&env, "env", nil, "environment entry KEY=VALUE (repeatable)")
	root.Flags().StringVar(&argv0, "argv0", "", "override the zeroth argument")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "snowflake-run:", err)
		os.Exit(125)
	}
}

func run(cmd *cobra.Command, args []string) error {
	argv := args
	if argv0 != "" {
		argv = append([]string{argv0}, args[1:]...)
	}

	var (
		logFile *os.File
		capture *buildlog.Capture
		logFd   uintptr
	)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		logFile = f
		logFd = f.Fd()
	} else {
		c, err := buildlog.NewCapture(1 << 20)
		if err != nil {
			return err
		}
		capture = c
		logFd = c.W.Fd()
	}

	r := forkexec.Runner{
		Path:        args[0],
		Args:        argv,
		Env:         env,
		LogFile:     logFd,
		Timeout:     timeout,
		ErrorBuffer: make([]byte, 128),
	}
	res := r.Run()

	if capture != nil {
		capture.W.Close()
		<-capture.Done
		os.Stdout.Write(capture.Buffer.Bytes())
		if capture.Truncated() {
			fmt.Fprintln(os.Stderr, "snowflake-run: log truncated")
		}
	} else {
		logFile.Close()
	}

	switch res.Status {
	case forkexec.StatusChildTerminated:
		ws := res.WaitStatus
		switch {
		case ws.Exited() && ws.ExitStatus() == 0:
			return nil
		case ws.Exited():
			fmt.Fprintf(os.Stderr, "snowflake-run: exit status %d\n", ws.ExitStatus())
			os.Exit(ws.ExitStatus())
		case ws.Signaled():
			fmt.Fprintf(os.Stderr, "snowflake-run: killed by signal %d\n", ws.Signal())
			os.Exit(128 + int(ws.Signal()))
		}
		return fmt.Errorf("unexpected wait status %#x", int(ws))

	case forkexec.StatusFailureTimeout:
		return fmt.Errorf("timeout after %v", timeout)

	case forkexec.StatusFailurePreExecve:
		return fmt.Errorf("start program: %w", res.Err)

	default:
		return fmt.Errorf("%v: %v", res.Status, res.Err)
	}
}
