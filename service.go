package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/kardianos/service"

	"report_summarizer/core"
	"report_summarizer/shutdown"
)

const serviceName = "report-summarizer"

// serviceConfig describes the summarizer to the OS service manager
// (systemd, launchd or the Windows SCM). The service runs in the directory
// it was installed from so .env and LOG_FILE resolve as they do interactively.
func serviceConfig() *service.Config {
	cfg := &service.Config{
		Name:        serviceName,
		DisplayName: "Report Summarizer",
		Description: "학생 프로젝트 보고서 요약 웹 UI",
		Option: service.KeyValue{
			"StartType": "automatic",
			"Restart":   "on-failure",
		},
	}
	if wd, err := os.Getwd(); err == nil {
		cfg.WorkingDirectory = wd
	}
	return cfg
}

// program runs the web UI under a service manager.
type program struct {
	stop chan struct{}
	done chan int
	code int
}

func (p *program) Start(service.Service) error {
	p.stop = make(chan struct{})
	p.done = make(chan int, 1)
	go func() { p.done <- run(p.stop) }()
	return nil
}

func (p *program) Stop(service.Service) error {
	close(p.stop)
	select {
	case p.code = <-p.done:
		return nil
	case <-time.After(shutdown.DefaultTimeout + 10*time.Second):
		return errors.New("timed out waiting for the web UI to stop")
	}
}

// runService hands control to the service manager when the process was
// not started from a terminal. It reports false for interactive runs.
func runService() (bool, int) {
	if service.Interactive() {
		return false, 0
	}
	prg := &program{}
	s, err := service.New(prg, serviceConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "service setup failed: %v\n", err)
		return true, core.ExitCodeError
	}
	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "service run failed: %v\n", err)
		return true, core.ExitCodeError
	}
	return true, prg.code
}

// isServiceCommand reports whether verb is a service control verb or "status".
func isServiceCommand(verb string) bool {
	return verb == "status" || slices.Contains(service.ControlAction[:], verb)
}

// handleServiceCommand runs "install", "uninstall", "start", "stop",
// "restart" or "status" and reports false when args name none of them.
func handleServiceCommand(args []string, out io.Writer) (bool, int) {
	if len(args) == 0 || !isServiceCommand(args[0]) {
		return false, 0
	}
	verb := args[0]

	s, err := service.New(&program{}, serviceConfig())
	if err != nil {
		fmt.Fprintf(out, "service setup failed: %v\n", err)
		return true, core.ExitCodeError
	}

	if verb == "status" {
		status, err := s.Status()
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", serviceName, err)
			return true, core.ExitCodeError
		}
		fmt.Fprintf(out, "%s: %s\n", serviceName, statusName(status))
		return true, core.ExitCodeSuccess
	}

	if err := service.Control(s, verb); err != nil {
		fmt.Fprintf(out, "%s %s failed: %v\n", serviceName, verb, err)
		return true, core.ExitCodeError
	}
	fmt.Fprintf(out, "%s %s: ok\n", serviceName, verb)
	return true, core.ExitCodeSuccess
}

func statusName(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
