package timing

import "testing"

func TestStopwatchLapOrder(t *testing.T) {
	sw := NewStopwatch()

	sw.Lap("load")
	sw.Lap("extract")
	sw.Lap("persist")

	stages := sw.Stages()
	if len(stages) != 3 {
		t.Fatalf("unexpected stage count: got %d, want %d", len(stages), 3)
	}

	wantNames := []string{"load", "extract", "persist"}
	for i, want := range wantNames {
		if stages[i].Name != want {
			t.Errorf("stage %d: got %q, want %q", i, stages[i].Name, want)
		}
		if stages[i].DurationMs < 0 {
			t.Errorf("stage %d: negative duration %d", i, stages[i].DurationMs)
		}
	}
}

func TestStopwatchTotal(t *testing.T) {
	sw := NewStopwatch()
	sw.Lap("only")

	if got := sw.TotalMs(); got < 0 {
		t.Fatalf("negative total: %d", got)
	}
}

func TestStopwatchStagesCopy(t *testing.T) {
	sw := NewStopwatch()
	sw.Lap("a")

	stages := sw.Stages()
	stages[0].Name = "mutated"

	if got := sw.Stages()[0].Name; got != "a" {
		t.Fatalf("internal state mutated through returned slice: got %q, want %q", got, "a")
	}
}
