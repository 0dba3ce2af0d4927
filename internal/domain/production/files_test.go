package production

import (
	"errors"
	"testing"
)

func TestReconcileAppendsAndDedupes(t *testing.T) {
	existing := []UploadedFile{{ID: "a", Name: "a.pdf"}, {ID: "b", Name: "b.pdf"}}
	got := Reconcile(existing, []UploadedFile{{ID: "b", Name: "other"}, {ID: "c", Name: "c.pdf"}, {ID: "  "}, {ID: "c"}})
	ids := FileIDs(got)
	want := []string{"a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("ids: want=%v got=%v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids: want=%v got=%v", want, ids)
		}
	}
	if got[1].Name != "b.pdf" {
		t.Fatalf("existing entry replaced: %+v", got[1])
	}
	if len(existing) != 2 {
		t.Fatalf("input mutated")
	}
}

func TestReconcileEmptyIncomingKeepsList(t *testing.T) {
	existing := []UploadedFile{{ID: "a"}}
	if got := Reconcile(existing, nil); len(got) != 1 {
		t.Fatalf("want 1 file, got %d", len(got))
	}
}

func TestRemove(t *testing.T) {
	existing := []UploadedFile{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	out, removed, err := Remove(existing, "b")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed.ID != "b" || len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Fatalf("unexpected result: %v removed=%v", FileIDs(out), removed.ID)
	}
	if _, _, err := Remove(out, "b"); !errors.Is(err, ErrFileNotLinked) {
		t.Fatalf("want ErrFileNotLinked, got %v", err)
	}
}
