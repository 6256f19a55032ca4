package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/davehorner/e-grid/internal/config"
)

func TestExitCodeForErrorMapsIncompatibleMonitorToTwo(t *testing.T) {
	err := incompatibleMonitorError{reason: "no monitors detected"}
	if rc := exitCodeForError(err); rc != 2 {
		t.Fatalf("exitCodeForError(%v) = %d, want 2", err, rc)
	}
}

func TestExitCodeForErrorMapsWrappedIncompatibleMonitorToTwo(t *testing.T) {
	err := fmt.Errorf("e-grid: enumerate monitors: %w", incompatibleMonitorError{reason: "zero monitors"})
	if rc := exitCodeForError(err); rc != 2 {
		t.Fatalf("exitCodeForError(%v) = %d, want 2", err, rc)
	}
}

func TestExitCodeForErrorMapsOtherErrorsToOne(t *testing.T) {
	if rc := exitCodeForError(errors.New("boom")); rc != 1 {
		t.Fatalf("exitCodeForError = %d, want 1", rc)
	}
}

func TestIncompatibleMonitorErrorMessage(t *testing.T) {
	err := incompatibleMonitorError{reason: "no monitors detected"}
	want := "incompatible monitor configuration: no monitors detected"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestNewRootCmdRegistersServerAndClientSubcommands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	if !names["server"] {
		t.Fatal("root command missing server subcommand")
	}
	if !names["client"] {
		t.Fatal("root command missing client subcommand")
	}
}

func TestNewClientCmdRegistersDumpSubcommand(t *testing.T) {
	cmd := newClientCmd()
	found := false
	for _, c := range cmd.Commands() {
		if c.Name() == "dump" {
			found = true
		}
	}
	if !found {
		t.Fatal("client command missing dump subcommand")
	}
}

func TestPrintGridTableDoesNotPanicOnZeroDimensions(t *testing.T) {
	cfg := config.Default()
	cfg.Grid.RowsPerMonitor = 0
	cfg.Grid.ColsPerMonitor = 0
	printGridTable(cfg)
}

func TestPrintGridTableHandlesConfiguredDimensions(t *testing.T) {
	cfg := config.Default()
	printGridTable(cfg)
}
