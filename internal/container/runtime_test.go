// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runOutputFunc func(name string, args []string, stdout io.Writer) error
	outputCalls   []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunOutput(name string, args []string, stdout io.Writer) error {
	m.outputCalls = append(m.outputCalls, name+" "+strings.Join(args, " "))
	if m.runOutputFunc != nil {
		return m.runOutputFunc(name, args, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			exec: &mockExecutor{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("error should mention no runtime available, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestRunning(t *testing.T) {
	tests := []struct {
		name string
		mkRT func(*mockExecutor) Runtime
		cmds map[string]bool
		want bool
	}{
		{
			name: "docker container exists",
			mkRT: func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			cmds: map[string]bool{"docker container inspect es": true},
			want: true,
		},
		{
			name: "docker container missing",
			mkRT: func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			cmds: map[string]bool{},
		},
		{
			name: "podman container exists",
			mkRT: func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			cmds: map[string]bool{"podman container exists es": true},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := tt.mkRT(&mockExecutor{runnableCmds: tt.cmds})
			if got := rt.Running("es"); got != tt.want {
				t.Errorf("Running = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStart(t *testing.T) {
	exec := &mockExecutor{runnableCmds: map[string]bool{}}
	rt := newDockerRuntime(exec)

	var out bytes.Buffer
	if err := rt.Start(Backend{}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.outputCalls) != 1 {
		t.Fatalf("got %d run calls, want 1", len(exec.outputCalls))
	}
	call := exec.outputCalls[0]
	for _, want := range []string{
		"docker run -d --name " + DefaultName,
		"-p 9200:9200",
		"discovery.type=single-node",
		"xpack.security.enabled=false",
		DefaultImage,
	} {
		if !strings.Contains(call, want) {
			t.Errorf("run command %q missing %q", call, want)
		}
	}
	if !strings.Contains(out.String(), "http://localhost:9200") {
		t.Errorf("output should mention the address, got %q", out.String())
	}
}

func TestStartCustomPort(t *testing.T) {
	exec := &mockExecutor{runnableCmds: map[string]bool{}}
	rt := newPodmanRuntime(exec)

	if err := rt.Start(Backend{Name: "dev", Port: 9201}, &bytes.Buffer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(exec.outputCalls[0], "podman run -d --name dev -p 9201:9200") {
		t.Errorf("unexpected run command %q", exec.outputCalls[0])
	}
}

func TestStartAlreadyRunning(t *testing.T) {
	exec := &mockExecutor{runnableCmds: map[string]bool{"docker container inspect " + DefaultName: true}}
	rt := newDockerRuntime(exec)

	var out bytes.Buffer
	if err := rt.Start(Backend{}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.outputCalls) != 0 {
		t.Errorf("expected no run call, got %v", exec.outputCalls)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("got output %q", out.String())
	}
}

func TestStartFailure(t *testing.T) {
	exec := &mockExecutor{
		runnableCmds: map[string]bool{},
		runOutputFunc: func(string, []string, io.Writer) error {
			return errors.New("port is already allocated")
		},
	}
	err := newDockerRuntime(exec).Start(Backend{}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "port is already allocated") {
		t.Errorf("error should wrap the cause, got: %v", err)
	}
}

func TestStop(t *testing.T) {
	tests := []struct {
		name      string
		cmds      map[string]bool
		wantCalls []string
		wantOut   string
	}{
		{
			name:      "removes running container",
			cmds:      map[string]bool{"docker container inspect " + DefaultName: true},
			wantCalls: []string{"docker rm -f " + DefaultName},
			wantOut:   "removed",
		},
		{
			name:    "nothing to stop",
			cmds:    map[string]bool{},
			wantOut: "not running",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{runnableCmds: tt.cmds}
			var out bytes.Buffer
			if err := newDockerRuntime(exec).Stop("", &out); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(exec.outputCalls, ";") != strings.Join(tt.wantCalls, ";") {
				t.Errorf("got calls %v, want %v", exec.outputCalls, tt.wantCalls)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("got output %q, want it to contain %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestRuntimeName(t *testing.T) {
	exec := &mockExecutor{}
	docker := newDockerRuntime(exec)
	if docker.Name() != "docker" {
		t.Errorf("docker runtime name = %q, want %q", docker.Name(), "docker")
	}
	podman := newPodmanRuntime(exec)
	if podman.Name() != "podman" {
		t.Errorf("podman runtime name = %q, want %q", podman.Name(), "podman")
	}
}
