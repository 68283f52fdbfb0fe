package event

import "testing"

func TestParse_ListRow(t *testing.T) {
	raw := Raw{
		Address: "/zoomosc/user/list",
		Args:    []any{int32(0), "Alice", int32(2), int32(16778240), int32(5), int32(1), int32(2), int32(1), int32(1), int32(0), int32(0)},
	}

	ev, ok := Parse(raw).(List)
	if !ok {
		t.Fatalf("expected List event, got %T", Parse(raw))
	}
	if ev.ID != 16778240 || ev.Name != "Alice" {
		t.Fatalf("unexpected header: %+v", ev.Header)
	}
	if ev.Self {
		t.Fatalf("user address must not be marked as self")
	}
	if ev.TargetCount != 5 || ev.ListIndex != 1 || ev.Role != 2 {
		t.Fatalf("unexpected list fields: %+v", ev)
	}
	if !ev.Online || !ev.Video || ev.Audio || ev.HandRaised {
		t.Fatalf("unexpected flags: online=%v video=%v audio=%v hand=%v", ev.Online, ev.Video, ev.Audio, ev.HandRaised)
	}
}

func TestParse_Kinds(t *testing.T) {
	header := []any{int32(0), "Bob", int32(0), int32(42)}
	cases := []struct {
		address string
		extra   []any
		kind    Kind
		self    bool
	}{
		{"/zoomosc/user/chat", []any{"/ma"}, KindChat, false},
		{"/zoomosc/me/chat", []any{"/ma"}, KindChat, true},
		{"/zoomosc/user/unMute", nil, KindAudio, false},
		{"/zoomosc/user/mute", nil, KindAudio, false},
		{"/zoomosc/user/videoOn", nil, KindVideo, false},
		{"/zoomosc/user/videoOff", nil, KindVideo, false},
		{"/zoomosc/user/roleChanged", []any{int32(1)}, KindRole, false},
		{"/zoomosc/user/userNameChanged", nil, KindRename, false},
		{"/zoomosc/me/online", nil, KindOnline, true},
		{"/zoomosc/user/offline", nil, KindOffline, false},
		{"/zoomosc/user/handRaised", nil, KindUnknown, false},
		{"/something/else", nil, KindUnknown, false},
	}

	for _, tc := range cases {
		t.Run(tc.address, func(t *testing.T) {
			args := append(append([]any{}, header...), tc.extra...)
			ev := Parse(Raw{Address: tc.address, Args: args})
			if ev.Kind() != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, ev.Kind())
			}
			if ev.Source().Address != tc.address {
				t.Fatalf("source address not preserved: %q", ev.Source().Address)
			}
			if h, ok := headerOf(ev); ok && h.Self != tc.self {
				t.Fatalf("expected self=%v, got %v", tc.self, h.Self)
			}
		})
	}
}

func TestParse_ChatAndRole(t *testing.T) {
	chat := Parse(Raw{Address: "/zoomosc/user/chat", Args: []any{int32(0), "Carol", int32(0), int32(7), "/mx leaders"}}).(Chat)
	if chat.Text != "/mx leaders" || chat.ID != 7 {
		t.Fatalf("unexpected chat: %+v", chat)
	}

	audio := Parse(Raw{Address: "/zoomosc/user/mute", Args: []any{int32(0), "Carol", int32(0), int32(7)}}).(Audio)
	if audio.On {
		t.Fatalf("mute must report audio off")
	}

	role := Parse(Raw{Address: "/zoomosc/user/roleChanged", Args: []any{int32(0), "Carol", int32(0), int32(7), int32(2)}}).(Role)
	if role.Role != 2 {
		t.Fatalf("expected role 2, got %d", role.Role)
	}
}

func TestParse_MalformedNumbersFailSoft(t *testing.T) {
	ev := Parse(Raw{Address: "/zoomosc/user/list", Args: []any{"x", "Dana", nil, "not-a-number", "?", 1.5}}).(List)
	if ev.HasID() {
		t.Fatalf("expected unreadable id, got %d", ev.ID)
	}
	if ev.TargetIndex != Unset || ev.TargetCount != Unset || ev.ListIndex != Unset {
		t.Fatalf("expected Unset sentinels, got %+v", ev)
	}
	if ev.Online || ev.Video || ev.Audio {
		t.Fatalf("missing booleans must be false")
	}
}

func TestParse_Pong(t *testing.T) {
	pong := Parse(Raw{Address: AddressPong, Args: []any{"hello", "4.2", int32(2), int32(0), int32(1), int32(3), int32(9), int32(1)}}).(Pong)
	if !pong.Pro || !pong.InCall || pong.UserCount != 9 || pong.Version != "4.2" {
		t.Fatalf("unexpected pong: %+v", pong)
	}

	lite := Parse(Raw{Address: AddressPong, Args: []any{"hello", "4.2"}}).(Pong)
	if lite.Pro {
		t.Fatalf("missing pro flag must read as false")
	}
}

func TestCoercion(t *testing.T) {
	intCases := map[string]struct {
		in   any
		want int
	}{
		"int32":          {int32(12), 12},
		"int64":          {int64(-3), -3},
		"float integral": {float64(8), 8},
		"float fraction": {float64(8.5), Unset},
		"numeric string": {" 15 ", 15},
		"garbage string": {"abc", Unset},
		"nil":            {nil, Unset},
		"true":           {true, 1},
	}
	for name, tc := range intCases {
		if got := Int(tc.in); got != tc.want {
			t.Errorf("Int(%s): expected %d, got %d", name, tc.want, got)
		}
	}

	boolCases := map[string]struct {
		in   any
		want bool
	}{
		"one":        {int32(1), true},
		"zero":       {int32(0), false},
		"true text":  {"true", true},
		"zero text":  {"0", false},
		"garbage":    {"maybe", false},
		"nil":        {nil, false},
		"bool false": {false, false},
	}
	for name, tc := range boolCases {
		if got := Bool(tc.in); got != tc.want {
			t.Errorf("Bool(%s): expected %v, got %v", name, tc.want, got)
		}
	}
}

func headerOf(ev Event) (Header, bool) {
	switch e := ev.(type) {
	case Chat:
		return e.Header, true
	case Audio:
		return e.Header, true
	case Video:
		return e.Header, true
	case Role:
		return e.Header, true
	case Rename:
		return e.Header, true
	case Online:
		return e.Header, true
	case Offline:
		return e.Header, true
	case List:
		return e.Header, true
	}
	return Header{}, false
}
