package roster

import (
	"reflect"
	"testing"

	"github.com/example/meeting-conductor/internal/event"
)

func online(id int, name string, role int) Entry {
	return Entry{ID: id, Name: name, Role: role, Online: true}
}

func TestUpsertFromSnapshot_CreateUpdateRemove(t *testing.T) {
	s := NewStore()
	s.UpsertFromSnapshot(Entry{ID: 1, Name: "Alice", Role: RoleHost, Online: true, Audio: true})

	p, ok := s.Get(1)
	if !ok || p.Name != "Alice" || p.Role != RoleHost || !p.Audio || !p.Seen {
		t.Fatalf("unexpected participant: %+v", p)
	}

	s.UpsertFromSnapshot(Entry{ID: 1, Name: "Alice B", Role: RoleNone, Online: true, Video: true})
	if _, ok := s.LookupByName("Alice"); ok {
		t.Fatal("old name must be dropped from the index")
	}
	got, ok := s.LookupByName("Alice B")
	if !ok || len(got) != 1 || got[0].ID != 1 || !got[0].Video || got[0].Audio {
		t.Fatalf("unexpected lookup: %+v", got)
	}

	if removed := s.UpsertFromSnapshot(Entry{ID: 1, Name: "Alice B", Online: false}); !removed {
		t.Fatal("offline row must remove the participant")
	}
	if _, ok := s.Get(1); ok {
		t.Fatal("participant still present after offline row")
	}
	if _, ok := s.LookupByName("Alice B"); ok {
		t.Fatal("name index still refers to removed participant")
	}
}

func TestLookupByName_OfflineNeverReturned(t *testing.T) {
	sequences := [][]Entry{
		{online(5, "Bob", 0), {ID: 5, Name: "Bob"}},
		{online(5, "Bob", 0), online(6, "Bob", 0), online(5, "Robert", 0), {ID: 5, Name: "Robert"}},
		{online(5, "Bob", 0), online(5, "Bob", 2), online(5, "Bob", 0), {ID: 5, Name: "Bob"}},
	}
	for i, seq := range sequences {
		s := NewStore()
		for _, e := range seq {
			s.UpsertFromSnapshot(e)
		}
		last := seq[len(seq)-1]
		people, _ := s.LookupByName(last.Name)
		for _, p := range people {
			if p.ID == last.ID {
				t.Fatalf("sequence %d: offline id %d still returned for %q", i, last.ID, last.Name)
			}
		}
	}
}

func TestLookupByName_SharedNames(t *testing.T) {
	s := NewStore()
	s.Online(1, "iPad")
	s.Online(2, "iPad")
	ids, ok := s.IDsByName("iPad")
	if !ok || !reflect.DeepEqual(ids, []int{1, 2}) {
		t.Fatalf("unexpected ids: %v", ids)
	}

	s.Rename(1, "Stage")
	ids, _ = s.IDsByName("iPad")
	if !reflect.DeepEqual(ids, []int{2}) {
		t.Fatalf("rename must leave the other holder, got %v", ids)
	}

	s.Remove(2)
	if _, ok := s.IDsByName("iPad"); ok {
		t.Fatal("empty name entries must be deleted")
	}
	if _, ok := s.IDsByName("nobody"); ok {
		t.Fatal("unknown name must report not found")
	}
}

func TestRecordEvent_NeverCreates(t *testing.T) {
	s := NewStore()
	if s.RecordEvent(FieldRole, 9, RoleHost) {
		t.Fatal("unknown id must be a no-op")
	}
	if s.Len() != 0 {
		t.Fatal("narrow events must not create participants")
	}

	s.Online(9, "Carol")
	s.RecordEvent(FieldRole, 9, RoleCoHost)
	s.RecordEvent(FieldAudio, 9, 1)
	s.RecordEvent(FieldVideo, 9, 0)
	p, _ := s.Get(9)
	if p.Role != RoleCoHost || !p.Audio || p.Video {
		t.Fatalf("unexpected participant: %+v", p)
	}
}

func TestOnline_KnownParticipantUntouched(t *testing.T) {
	s := NewStore()
	s.UpsertFromSnapshot(online(3, "Dana", RoleHost))
	if s.Online(3, "Other") {
		t.Fatal("online for a known id must not create")
	}
	p, _ := s.Get(3)
	if p.Name != "Dana" || p.Role != RoleHost {
		t.Fatalf("online must not reset a known participant: %+v", p)
	}
}

func TestIsPrivileged_ThreeStates(t *testing.T) {
	s := NewStore()
	s.UpsertFromSnapshot(online(1, "host", RoleHost))
	s.UpsertFromSnapshot(online(2, "cohost", RoleCoHost))
	s.UpsertFromSnapshot(online(3, "guest", RoleNone))

	cases := map[int]Privilege{
		1: PrivilegeGranted,
		2: PrivilegeGranted,
		3: PrivilegeNone,
		4: PrivilegeUnknown,
	}
	for id, want := range cases {
		if got := s.IsPrivileged(id); got != want {
			t.Errorf("id %d: expected %s, got %s", id, want, got)
		}
	}
	if !reflect.DeepEqual(s.PrivilegedIDs(), []int{1, 2}) {
		t.Fatalf("unexpected privileged ids: %v", s.PrivilegedIDs())
	}
}

func TestEntryFromList(t *testing.T) {
	ev := event.List{
		Header: event.Header{ID: 77, Name: "Eve"},
		Role:   RoleCoHost,
		Online: true,
		Audio:  true,
	}
	want := Entry{ID: 77, Name: "Eve", Role: RoleCoHost, Online: true, Audio: true}
	if got := EntryFromList(ev); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestReset(t *testing.T) {
	s := NewStore()
	s.Online(1, "a")
	s.DefineGroup("g", []int{1})
	s.Reset()
	if s.Len() != 0 || len(s.GroupNames()) != 0 {
		t.Fatal("reset must drop everything")
	}
	if _, ok := s.IDsByName("a"); ok {
		t.Fatal("reset must drop the name index")
	}
}
