package event

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	userPrefix = "/zoomosc/user/"
	mePrefix   = "/zoomosc/me/"

	// AddressPong is the reply to a ping request.
	AddressPong = "/zoomosc/pong"
)

// Parse converts a raw message into its typed event. Unrecognised addresses
// produce Unknown; Parse never fails.
func Parse(raw Raw) Event {
	if raw.Address == AddressPong {
		return parsePong(raw)
	}

	var verb string
	var self bool
	switch {
	case strings.HasPrefix(raw.Address, userPrefix):
		verb = strings.TrimPrefix(raw.Address, userPrefix)
	case strings.HasPrefix(raw.Address, mePrefix):
		verb = strings.TrimPrefix(raw.Address, mePrefix)
		self = true
	default:
		return Unknown{Raw: raw}
	}

	header := parseHeader(raw, self)
	params := tail(raw.Args, 4)

	switch verb {
	case "chat":
		return Chat{Header: header, Text: String(at(params, 0))}
	case "unMute":
		return Audio{Header: header, On: true}
	case "mute":
		return Audio{Header: header, On: false}
	case "videoOn":
		return Video{Header: header, On: true}
	case "videoOff":
		return Video{Header: header, On: false}
	case "roleChanged":
		return Role{Header: header, Role: Int(at(params, 0))}
	case "userNameChanged":
		return Rename{Header: header}
	case "online":
		return Online{Header: header}
	case "offline":
		return Offline{Header: header}
	case "list":
		return parseList(header, params)
	default:
		return Unknown{Raw: raw}
	}
}

// UserAddress returns the inbound address for a participant event verb.
func UserAddress(verb string, self bool) string {
	if self {
		return mePrefix + verb
	}
	return userPrefix + verb
}

func parseHeader(raw Raw, self bool) Header {
	return Header{
		Raw:          raw,
		Self:         self,
		TargetIndex:  Int(at(raw.Args, 0)),
		Name:         String(at(raw.Args, 1)),
		GalleryIndex: Int(at(raw.Args, 2)),
		ID:           Int(at(raw.Args, 3)),
	}
}

func parseList(header Header, params []any) List {
	return List{
		Header:      header,
		TargetCount: Int(at(params, 0)),
		ListIndex:   Int(at(params, 1)),
		Role:        Int(at(params, 2)),
		Online:      Bool(at(params, 3)),
		Video:       Bool(at(params, 4)),
		Audio:       Bool(at(params, 5)),
		HandRaised:  Bool(at(params, 6)),
	}
}

func parsePong(raw Raw) Pong {
	return Pong{
		Raw:           raw,
		PingArg:       at(raw.Args, 0),
		Version:       String(at(raw.Args, 1)),
		SubscribeMode: Int(at(raw.Args, 2)),
		GalleryMode:   Int(at(raw.Args, 3)),
		InCall:        Bool(at(raw.Args, 4)),
		TargetCount:   Int(at(raw.Args, 5)),
		UserCount:     Int(at(raw.Args, 6)),
		Pro:           Bool(at(raw.Args, 7)),
	}
}

func at(args []any, i int) any {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

func tail(args []any, from int) []any {
	if from >= len(args) {
		return nil
	}
	return args[from:]
}

// Int coerces a wire value to an int, returning Unset when it cannot.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return Unset
		}
		return int(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return Unset
		}
		return floatToInt(parsed)
	default:
		return Unset
	}
}

func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Unset
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return Unset
	}
	return int(f)
}

// Bool coerces a wire value to a bool. Unreadable values are false.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "on", "yes":
			return true
		}
		return false
	case nil:
		return false
	default:
		n := Int(v)
		return n != Unset && n != 0
	}
}

// String renders a wire value as text. Nil becomes the empty string.
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}
