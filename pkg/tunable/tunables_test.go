package tunable

import "testing"

func TestAddSteps(t *testing.T) {
	var ts Tunables
	rpm := ts.Create("speaker-rpm", 5200, 100)
	rpm.Add(2)
	rpm.Add(-5)
	if rpm.Get() != 4900 {
		t.Fatalf("Expected 4900, got %v", rpm.Get())
	}
}

func TestSelectionWraps(t *testing.T) {
	var ts Tunables
	if ts.Current() != nil {
		t.Fatal("Expected no current tunable")
	}
	ts.SelectNext()
	a := ts.Create("a", 1, 1)
	b := ts.Create("b", 2, 1)
	if ts.Current() != a {
		t.Fatal("Expected the first tunable to start selected")
	}
	ts.SelectNext()
	if ts.Current() != b {
		t.Fatal("Expected b after next")
	}
	ts.SelectNext()
	if ts.Current() != a {
		t.Fatal("Expected selection to wrap to a")
	}
	ts.SelectPrev()
	if ts.Current() != b {
		t.Fatal("Expected selection to wrap back to b")
	}
}
