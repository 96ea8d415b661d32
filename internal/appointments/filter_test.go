package appointments

import "testing"

func sampleList() []*Appointment {
	return []*Appointment{
		{ID: "1", PatientName: "Ana Gómez", Reason: "Chequeo general", Status: StatusPending},
		{ID: "2", PatientName: "Carlos Rodríguez", Reason: "Dolor de espalda", Status: StatusConfirmed},
		{ID: "3", PatientName: "María López", Reason: "Control anual", Status: StatusCancelled},
		{ID: "4", PatientName: "ana maria torres", Reason: "Vacunación", Status: StatusPending},
	}
}

func TestFilterByStatus(t *testing.T) {
	got := Filter(sampleList(), "", "pending")
	if len(got) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(got))
	}
	for _, apt := range got {
		if apt.Status != StatusPending {
			t.Fatalf("unexpected status %s", apt.Status)
		}
	}

	if got := Filter(sampleList(), "", "all"); len(got) != 4 {
		t.Fatalf("expected all 4 with filter 'all', got %d", len(got))
	}
	if got := Filter(sampleList(), "", ""); len(got) != 4 {
		t.Fatalf("expected all 4 with empty filter, got %d", len(got))
	}
}

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	got := Filter(sampleList(), "ANA", "")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for 'ANA', got %d", len(got))
	}

	got = Filter(sampleList(), "espalda", "")
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected reason match for 'espalda', got %+v", got)
	}
}

func TestFilterCombinesSearchAndStatus(t *testing.T) {
	got := Filter(sampleList(), "ana", "pending")
	if len(got) != 2 {
		t.Fatalf("expected 2 pending 'ana' matches, got %d", len(got))
	}

	got = Filter(sampleList(), "ana", "cancelled")
	if len(got) != 0 {
		t.Fatalf("expected no cancelled 'ana' matches, got %d", len(got))
	}
}

func TestFilterIsPure(t *testing.T) {
	list := sampleList()
	_ = Filter(list, "ana", "pending")
	if len(list) != 4 {
		t.Fatalf("input list mutated: %d entries", len(list))
	}
	for i, apt := range list {
		if apt.ID != sampleList()[i].ID {
			t.Fatalf("input order changed at %d", i)
		}
	}
}
