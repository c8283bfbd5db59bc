// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs a local single-node Elasticsearch for development
// with whichever container runtime (docker or podman) is available.
package container

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Defaults for the development backend.
const (
	DefaultImage = "docker.elastic.co/elasticsearch/elasticsearch:8.15.0"
	DefaultName  = "paper-search-es"
	DefaultPort  = 9200
)

// Backend describes the Elasticsearch container to run.
type Backend struct {
	Name  string
	Image string
	Port  int
}

// withDefaults fills unset fields.
func (b Backend) withDefaults() Backend {
	if b.Name == "" {
		b.Name = DefaultName
	}
	if b.Image == "" {
		b.Image = DefaultImage
	}
	if b.Port == 0 {
		b.Port = DefaultPort
	}
	return b
}

// runArgs returns the arguments for a detached single-node container with
// security disabled, publishing Port on the host.
func (b Backend) runArgs() []string {
	return []string{
		"run", "-d",
		"--name", b.Name,
		"-p", strconv.Itoa(b.Port) + ":9200",
		"-e", "discovery.type=single-node",
		"-e", "xpack.security.enabled=false",
		"-e", "ES_JAVA_OPTS=-Xms512m -Xmx512m",
		b.Image,
	}
}

// Runtime manages the development backend container.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available() bool

	// Running reports whether a container with the given name exists.
	Running(name string) bool

	// Start runs the backend detached. An existing container with the same
	// name is left alone.
	Start(b Backend, out io.Writer) error

	// Stop removes the named container.
	Stop(name string, out io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunOutput(name string, args []string, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunOutput(name string, args []string, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stdout
	return cmd.Run()
}

// runtime implements Runtime for a specific container binary. Docker and
// Podman differ only in binary name and how container existence is checked.
type runtime struct {
	bin               string
	containerCheckCmd []string // e.g. ["container", "inspect"] for docker
	exec              executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) Running(name string) bool {
	args := make([]string, 0, len(r.containerCheckCmd)+1)
	args = append(args, r.containerCheckCmd...)
	args = append(args, name)
	return r.exec.RunSilent(r.bin, args...) == nil
}

func (r *runtime) Start(b Backend, out io.Writer) error {
	b = b.withDefaults()
	if r.Running(b.Name) {
		fmt.Fprintf(out, "Container %s already exists.\n", b.Name)
		return nil
	}
	if err := r.exec.RunOutput(r.bin, b.runArgs(), out); err != nil {
		return fmt.Errorf("starting %s container %s: %w", r.bin, b.Name, err)
	}
	fmt.Fprintf(out, "Elasticsearch starting in %s on http://localhost:%d\n", b.Name, b.Port)
	return nil
}

func (r *runtime) Stop(name string, out io.Writer) error {
	if name == "" {
		name = DefaultName
	}
	if !r.Running(name) {
		fmt.Fprintf(out, "Container %s is not running.\n", name)
		return nil
	}
	if err := r.exec.RunOutput(r.bin, []string{"rm", "-f", name}, out); err != nil {
		return fmt.Errorf("removing %s container %s: %w", r.bin, name, err)
	}
	fmt.Fprintf(out, "Container %s removed.\n", name)
	return nil
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{
		bin:               binDocker,
		containerCheckCmd: []string{"container", "inspect"},
		exec:              exec,
	}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{
		bin:               binPodman,
		containerCheckCmd: []string{"container", "exists"},
		exec:              exec,
	}
}

var defaultExec = &osExecutor{}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(exec executor) (Runtime, error) {
	docker := newDockerRuntime(exec)
	if docker.Available() {
		return docker, nil
	}

	podman := newPodmanRuntime(exec)
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
