package roster

import (
	"reflect"
	"testing"
)

func TestAppendToGroup_Idempotent(t *testing.T) {
	cases := []struct {
		name string
		ids  []int
		want []int
	}{
		{"plain", []int{1, 2, 3}, []int{1, 2, 3}},
		{"with skip", []int{SkipID, 4}, []int{SkipID, 4}},
		{"duplicates in one call", []int{5, 5, 6}, []int{5, 6}},
		{"repeated skips keep slots", []int{SkipID, SkipID, 7}, []int{SkipID, SkipID, 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore()
			s.AppendToGroup("g", tc.ids)
			first, _ := s.ListGroup("g")
			if added := s.AppendToGroup("g", tc.ids); len(added) != 0 {
				t.Fatalf("second append added %v", added)
			}
			second, _ := s.ListGroup("g")
			if !reflect.DeepEqual(first, tc.want) || !reflect.DeepEqual(second, tc.want) {
				t.Fatalf("expected %v both times, got %v then %v", tc.want, first, second)
			}
		})
	}
}

func TestAppendToGroup_ExtendsExisting(t *testing.T) {
	s := NewStore()
	s.DefineGroup("support", []int{10, SkipID})
	added := s.AppendToGroup("support", []int{10, 11})
	if !reflect.DeepEqual(added, []int{11}) {
		t.Fatalf("unexpected added ids: %v", added)
	}
	ids, _ := s.ListGroup("support")
	if !reflect.DeepEqual(ids, []int{10, SkipID, 11}) {
		t.Fatalf("unexpected group: %v", ids)
	}
}

func TestGroupLifecycle(t *testing.T) {
	s := NewStore()
	s.DefineGroup("leaders", []int{1, 2})
	s.DefineGroup("devices", []int{9})

	if !reflect.DeepEqual(s.GroupNames(), []string{"devices", "leaders"}) {
		t.Fatalf("unexpected names: %v", s.GroupNames())
	}
	if !s.InGroup("leaders", 2) || s.InGroup("leaders", 9) || !s.InAnyGroup(9) {
		t.Fatal("membership checks failed")
	}

	ids := []int{3}
	s.DefineGroup("leaders", ids)
	ids[0] = 99
	got, _ := s.ListGroup("leaders")
	if !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("define must replace and copy, got %v", got)
	}

	all := s.ListAllGroups()
	all["leaders"][0] = 42
	got, _ = s.ListGroup("leaders")
	if got[0] != 3 {
		t.Fatal("ListAllGroups must return copies")
	}

	if !s.DeleteGroup("leaders") || s.DeleteGroup("leaders") {
		t.Fatal("delete should succeed once")
	}
	if _, ok := s.ListGroup("leaders"); ok {
		t.Fatal("deleted group still listed")
	}
	if n := s.ClearAllGroups(); n != 1 {
		t.Fatalf("expected one group cleared, got %d", n)
	}
}

func TestSweepStale(t *testing.T) {
	s := NewStore()
	s.UpsertFromSnapshot(online(1, "seen", 0))
	s.UpsertFromSnapshot(online(2, "grouped", 0))
	s.UpsertFromSnapshot(online(3, "gone", 0))
	s.DefineGroup("support", []int{2})

	// first sweep only clears the flags set by the snapshot
	if res := s.SweepStale(1); len(res.Deleted) != 0 || len(res.Retained) != 0 {
		t.Fatalf("nothing should be stale yet: %+v", res)
	}

	s.UpsertFromSnapshot(online(1, "seen", 0))
	res := s.SweepStale(1)
	if !reflect.DeepEqual(res.Deleted, []int{3}) || !reflect.DeepEqual(res.Retained, []int{2}) {
		t.Fatalf("unexpected sweep: %+v", res)
	}
	if _, ok := s.Get(3); ok {
		t.Fatal("stale ungrouped participant must be deleted")
	}
	if _, ok := s.IDsByName("gone"); ok {
		t.Fatal("name index must follow deletion")
	}
	if _, ok := s.Get(2); !ok {
		t.Fatal("grouped participant must never be deleted")
	}
	if p, _ := s.Get(1); p.Seen {
		t.Fatal("seen flags must be reset after a sweep")
	}
}

func TestSweepStale_Threshold(t *testing.T) {
	s := NewStore()
	s.Online(1, "slow")
	s.SweepStale(2)

	if res := s.SweepStale(2); len(res.Deleted) != 0 {
		t.Fatalf("one missed cycle must not delete with threshold 2: %+v", res)
	}
	if res := s.SweepStale(2); !reflect.DeepEqual(res.Deleted, []int{1}) {
		t.Fatalf("expected deletion on second missed cycle: %+v", res)
	}
}
