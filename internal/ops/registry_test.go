package ops

import (
	"testing"

	"github.com/spf13/cobra"
)

func newTestRegistry() *Registry {
	return &Registry{
		commands:   make(map[string]*CommandRegistration),
		groupIndex: make(map[CommandGroup][]*CommandRegistration),
	}
}

func TestRegisterAndLookup(t *testing.T) {
	registry := newTestRegistry()
	cmd := &cobra.Command{Use: "pin"}

	if err := registry.Register("pin", GroupWorkflow, cmd, "Pin the upstream revision"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	reg, ok := registry.GetCommand("pin")
	if !ok {
		t.Fatal("expected pin to be registered")
	}
	if reg.Group != GroupWorkflow {
		t.Errorf("Group = %s, want workflow", reg.Group)
	}
	if reg.Command != cmd {
		t.Error("registered command pointer mismatch")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	registry := newTestRegistry()
	cmd := &cobra.Command{Use: "doctor"}

	if err := registry.Register("doctor", GroupSupport, cmd, "first"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := registry.Register("doctor", GroupSupport, cmd, "second"); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestGroupIndex(t *testing.T) {
	registry := newTestRegistry()

	workflow := []string{"pin", "build", "wheels"}
	for _, name := range workflow {
		if err := registry.Register(name, GroupWorkflow, &cobra.Command{Use: name}, name); err != nil {
			t.Fatalf("Register %s failed: %v", name, err)
		}
	}
	if err := registry.Register("doctor", GroupSupport, &cobra.Command{Use: "doctor"}, "diagnostics"); err != nil {
		t.Fatalf("Register doctor failed: %v", err)
	}

	if got := len(registry.GetCommandsByGroup(GroupWorkflow)); got != 3 {
		t.Errorf("workflow group has %d commands, want 3", got)
	}
	groups := registry.ListGroups()
	if groups[GroupSupport] != 1 {
		t.Errorf("support group count = %d, want 1", groups[GroupSupport])
	}
	if groups[GroupRuntime] != 0 {
		t.Errorf("runtime group count = %d, want 0", groups[GroupRuntime])
	}
}
