// Package proc starts helper processes (the system browser opener, the
// sharing tunnel) and stops whatever is still running at shutdown.
package proc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

type Child struct {
	Cmd  *exec.Cmd
	Name string
	done chan error

	exited chan struct{}
}

type Supervisor struct {
	mu     sync.Mutex
	childs map[string]*Child
	log    *slog.Logger
}

func NewSupervisor(logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Supervisor{childs: map[string]*Child{}, log: logger}
}

// Start runs cmd under name. Output lines are logged at debug level and the
// child is reaped when it exits.
func (s *Supervisor) Start(name string, cmd *exec.Cmd) (*Child, error) {
	return s.StartLines(name, cmd, nil)
}

// StartLines is Start with onLine also called, from a pipe goroutine, for
// every non-blank output line.
func (s *Supervisor) StartLines(name string, cmd *exec.Cmd, onLine func(string)) (*Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.childs[name]; ok {
		return nil, fmt.Errorf("%s already started", name)
	}
	stderr, _ := cmd.StderrPipe()
	stdout, _ := cmd.StdoutPipe()
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	ch := &Child{Cmd: cmd, Name: name, done: make(chan error, 1), exited: make(chan struct{})}
	s.childs[name] = ch

	var pipes sync.WaitGroup
	pipes.Add(2)
	go s.pipeLogs(name, stdout, onLine, &pipes)
	go s.pipeLogs(name, stderr, onLine, &pipes)
	go func() {
		pipes.Wait()
		err := cmd.Wait()
		ch.done <- err
		close(ch.done)
		close(ch.exited)
		s.mu.Lock()
		if s.childs[name] == ch {
			delete(s.childs, name)
		}
		s.mu.Unlock()
		if err != nil {
			s.log.Warn("process exited", "name", name, "err", err)
		} else {
			s.log.Debug("process exited", "name", name)
		}
	}()
	return ch, nil
}

func (s *Supervisor) pipeLogs(name string, r io.ReadCloser, onLine func(string), wg *sync.WaitGroup) {
	defer wg.Done()
	if r == nil {
		return
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.log.Debug(line, "proc", name)
		if onLine != nil {
			onLine(line)
		}
	}
}

// Exited is closed once the child has been reaped.
func (c *Child) Exited() <-chan struct{} { return c.exited }

// Wait blocks until the child exits or ctx ends.
func (c *Child) Wait(ctx context.Context) error {
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ChildPID returns the pid of a running child, or 0.
func (s *Supervisor) ChildPID(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.childs[name]; ok && ch.Cmd != nil && ch.Cmd.Process != nil {
		return ch.Cmd.Process.Pid
	}
	return 0
}

// StopAll interrupts every running child and kills the ones still alive
// after a grace period.
func (s *Supervisor) StopAll(ctx context.Context) error {
	s.mu.Lock()
	childs := make([]*Child, 0, len(s.childs))
	for _, ch := range s.childs {
		childs = append(childs, ch)
	}
	s.mu.Unlock()

	var first error
	for _, ch := range childs {
		if ch.Cmd.Process == nil {
			continue
		}
		s.log.Info("stopping process", "name", ch.Name, "pid", ch.Cmd.Process.Pid)
		if err := terminate(ch.Cmd); err != nil && first == nil && !errors.Is(err, os.ErrProcessDone) {
			first = fmt.Errorf("%s: %w", ch.Name, err)
		}
	}
	waitCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	for _, ch := range childs {
		if err := ch.Wait(waitCtx); errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			_ = ch.Cmd.Process.Kill()
		}
	}
	return first
}

func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return errors.New("no process")
	}
	if runtime.GOOS == "windows" {
		return cmd.Process.Kill()
	}
	return cmd.Process.Signal(os.Interrupt)
}
