package table

import (
	"math"
	"reflect"
	"testing"
)

func TestIntervalSetMerging(t *testing.T) {
	tests := []struct {
		name string
		set  []int
		want []Interval
	}{
		{"empty", nil, []Interval{}},
		{"single", []int{3}, []Interval{{3, 4}}},
		{"adjacent merge", []int{1, 2, 3}, []Interval{{1, 4}}},
		{"gaps", []int{1, 3, 5}, []Interval{{1, 2}, {3, 4}, {5, 6}}},
		{"fill gap out of order", []int{5, 1, 3, 2, 4}, []Interval{{1, 6}}},
		{"duplicate", []int{7, 7}, []Interval{{7, 8}}},
		{"insert before", []int{10, 2}, []Interval{{2, 3}, {10, 11}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s IntervalSet
			for _, i := range tt.set {
				s.Set(i)
			}
			if got := s.Intervals(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("intervals = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntervalSetQueries(t *testing.T) {
	var s IntervalSet
	s.SetRange(2, 5)
	s.Set(8)
	s.SetRange(4, 7)
	if s.Count() != 6 {
		t.Fatalf("count = %d, want 6", s.Count())
	}
	want := []int{2, 3, 4, 5, 6, 8}
	if got := s.Indices(); !reflect.DeepEqual(got, want) {
		t.Fatalf("indices = %v, want %v", got, want)
	}
	for _, i := range []int{0, 1, 7, 9} {
		if s.Contains(i) {
			t.Errorf("Contains(%d) = true", i)
		}
	}
	for _, i := range want {
		if !s.Contains(i) {
			t.Errorf("Contains(%d) = false", i)
		}
	}
	c := s.Clone()
	c.Set(0)
	if s.Contains(0) {
		t.Fatalf("clone shares storage with original")
	}
}

func TestTableRolesAndShape(t *testing.T) {
	tbl := New("")
	if tbl.Name != DefaultName {
		t.Fatalf("name = %q, want %q", tbl.Name, DefaultName)
	}
	var inv IntervalSet
	inv.Set(1)
	x := NewNumericColumn("x", []float64{1, 2}, IntervalSet{})
	y := NewNumericColumn("y", []float64{3, math.NaN()}, inv)
	z := NewTextColumn("z", []string{"a", "b"}, IntervalSet{})
	if err := tbl.AppendColumns(x, y, z); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tbl.AppendColumns(NewTextColumn("short", []string{"a"}, IntervalSet{})); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	tbl.AssignRoles()
	if x.Role != RoleX || y.Role != RoleY || z.Role != RoleY {
		t.Fatalf("roles = %v %v %v", x.Role, y.Role, z.Role)
	}
	if tbl.NumRows() != 2 || tbl.NumCols() != 3 {
		t.Fatalf("shape = %dx%d", tbl.NumRows(), tbl.NumCols())
	}
	if tbl.IsNumeric() {
		t.Fatalf("mixed table reported numeric")
	}
	if tbl.InvalidCount() != 1 {
		t.Fatalf("invalid = %d, want 1", tbl.InvalidCount())
	}
	if got := y.ValueString(1); got != "" {
		t.Fatalf("invalid cell rendered %q", got)
	}
	if got := y.ValueString(0); got != "3" {
		t.Fatalf("value = %q, want 3", got)
	}
	if c, ok := tbl.Column("z"); !ok || c != z {
		t.Fatalf("lookup by name failed")
	}
}
