package diff

import (
	"reflect"
	"testing"
)

func TestEditScriptSingleSubstitution(t *testing.T) {
	a := []string{"a", "b", "c"}
	b := []string{"a", "x", "c"}

	got := EditScript(a, b)
	want := []Edit{
		{Equal, "a"},
		{Delete, "b"},
		{Insert, "x"},
		{Equal, "c"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("script:\n got %v\nwant %v", got, want)
	}
}

func TestEditScriptIdentical(t *testing.T) {
	a := []string{"one", "two", "three"}
	got := EditScript(a, a)
	for _, e := range got {
		if e.Op != Equal {
			t.Fatalf("identical inputs should produce only Equal ops, got %v", got)
		}
	}
	if len(got) != 3 {
		t.Errorf("length: got %d, want 3", len(got))
	}
}

func TestEditScriptEmptySides(t *testing.T) {
	if got := EditScript(nil, nil); got != nil {
		t.Errorf("empty-to-empty: got %v, want nil", got)
	}

	got := EditScript(nil, []string{"a", "b"})
	want := []Edit{{Insert, "a"}, {Insert, "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("insert-all: got %v, want %v", got, want)
	}

	got = EditScript([]string{"a", "b"}, nil)
	want = []Edit{{Delete, "a"}, {Delete, "b"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("delete-all: got %v, want %v", got, want)
	}
}

// scriptCost counts non-Equal ops; for a minimal script it must equal
// the edit distance.
func scriptCost(ops []Edit) int {
	cost := 0
	for _, op := range ops {
		if op.Op != Equal {
			cost++
		}
	}
	return cost
}

// applyScript replays the script, checking it consumes a exactly and
// produces b exactly.
func applyScript(t *testing.T, ops []Edit, a, b []string) {
	t.Helper()
	ai := 0
	var out []string
	for _, op := range ops {
		switch op.Op {
		case Equal:
			if ai >= len(a) || a[ai] != op.Text {
				t.Fatalf("Equal op %q does not match a[%d]", op.Text, ai)
			}
			ai++
			out = append(out, op.Text)
		case Delete:
			if ai >= len(a) || a[ai] != op.Text {
				t.Fatalf("Delete op %q does not match a[%d]", op.Text, ai)
			}
			ai++
		case Insert:
			out = append(out, op.Text)
		}
	}
	if ai != len(a) {
		t.Fatalf("script consumed %d of %d a-lines", ai, len(a))
	}
	if !reflect.DeepEqual(out, b) && !(len(out) == 0 && len(b) == 0) {
		t.Fatalf("script output:\n got %v\nwant %v", out, b)
	}
}

func TestEditScriptMinimality(t *testing.T) {
	cases := []struct {
		name string
		a, b []string
	}{
		{"substitution", []string{"a", "b", "c"}, []string{"a", "x", "c"}},
		{"classic myers", []string{"A", "B", "C", "A", "B", "B", "A"}, []string{"C", "B", "A", "B", "A", "C"}},
		{"disjoint", []string{"1", "2", "3"}, []string{"4", "5"}},
		{"prefix", []string{"a", "b"}, []string{"a", "b", "c", "d"}},
		{"suffix", []string{"c", "d"}, []string{"a", "b", "c", "d"}},
		{"interleaved", []string{"x", "a", "y", "b", "z"}, []string{"a", "q", "b"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ops := EditScript(c.a, c.b)
			applyScript(t, ops, c.a, c.b)
			if cost, d := scriptCost(ops), Distance(c.a, c.b); cost != d {
				t.Errorf("script cost %d != edit distance %d", cost, d)
			}
		})
	}
}

func TestEditScriptDeterministic(t *testing.T) {
	a := []string{"A", "B", "C", "A", "B", "B", "A"}
	b := []string{"C", "B", "A", "B", "A", "C"}

	first := EditScript(a, b)
	for i := 0; i < 10; i++ {
		if got := EditScript(a, b); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced a different script", i)
		}
	}
}

func TestDistanceKnownValues(t *testing.T) {
	cases := []struct {
		a, b []string
		want int
	}{
		{nil, nil, 0},
		{[]string{"a"}, []string{"a"}, 0},
		{[]string{"a"}, []string{"b"}, 2},
		{[]string{"a", "b", "c"}, []string{"a", "x", "c"}, 2},
		{[]string{"A", "B", "C", "A", "B", "B", "A"}, []string{"C", "B", "A", "B", "A", "C"}, 5},
		{[]string{"a", "b"}, nil, 2},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%v, %v): got %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
