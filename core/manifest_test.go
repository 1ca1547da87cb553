package core

import "testing"

func TestManifest_RedemptionIsAnonymous(t *testing.T) {
	expected := map[string]AccessLevel{
		OperationCreate:     AccessPrivileged,
		OperationFollow:     AccessAnonymous,
		OperationAccountAdd: AccessAnonymous,
		OperationRevoke:     AccessPrivileged,
	}
	if len(Manifest()) != len(expected) {
		t.Fatalf("expected %d operations, got %d", len(expected), len(Manifest()))
	}
	for name, access := range expected {
		got, ok := OperationAccess(name)
		if !ok {
			t.Fatalf("expected %s in manifest", name)
		}
		if got != access {
			t.Fatalf("expected %s to be %s, got %s", name, access, got)
		}
	}
	if _, ok := OperationAccess("list"); ok {
		t.Fatalf("expected list to be absent from the public manifest")
	}
}
