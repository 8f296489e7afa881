package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestSimulateCLI(t *testing.T) {
	chart := filepath.Join(t.TempDir(), "step.svg")
	var out bytes.Buffer
	err := run(context.Background(), &out, []string{
		"tustinpid-simulate", "--samples", "100", "--print", "--chart", chart,
	})
	test.That(t, err, test.ShouldBeNil)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	test.That(t, lines, test.ShouldHaveLength, 100)
	test.That(t, lines[0], test.ShouldEqual, "[0 0 0]")
	test.That(t, lines[1], test.ShouldContainSubstring, "[3.95476")

	_, err = os.Stat(chart)
	test.That(t, err, test.ShouldBeNil)
}

func TestSimulateCLIConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pid.yaml")
	test.That(t, os.WriteFile(path, []byte("kp: 1\nki: 0\nkd: 0\nsample_period_sec: 0.01\n"), 0o644), test.ShouldBeNil)

	var out bytes.Buffer
	err := run(context.Background(), &out, []string{
		"tustinpid-simulate", "--config", path, "--samples", "3", "--setpoint", "2", "--plant-gain", "3", "--print",
	})
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	test.That(t, lines, test.ShouldHaveLength, 3)
	test.That(t, lines[1], test.ShouldEqual, "[2 2 2]")
}

func TestSimulateCLIRealtime(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &out, []string{
		"tustinpid-simulate", "--samples", "5", "--realtime", "--print",
	})
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	test.That(t, lines, test.ShouldHaveLength, 5)
}

func TestSimulateCLIErrors(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &out, []string{"tustinpid-simulate", "--samples", "0"})
	test.That(t, err, test.ShouldNotBeNil)

	err = run(context.Background(), &out, []string{"tustinpid-simulate", "--channel", "4"})
	test.That(t, err, test.ShouldNotBeNil)

	err = run(context.Background(), &out, []string{"tustinpid-simulate", "--config", "/does/not/exist.yaml"})
	test.That(t, err, test.ShouldNotBeNil)
}
