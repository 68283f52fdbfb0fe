package application

import (
	"context"
	"strings"
)

// Control-plane addresses the conductor sends to.
const (
	AddressSubscribe     = "/zoom/subscribe"
	AddressList          = "/zoom/list"
	AddressPing          = "/zoom/ping"
	AddressChatID        = "/zoom/zoomID/chat"
	AddressChatName      = "/zoom/userName/chat"
	AddressChatAll       = "/zoom/chatAll"
	AddressMuteAll       = "/zoom/all/mute"
	AddressUnmuteAll     = "/zoom/all/unMute"
	AddressMuteIDs       = "/zoom/users/zoomID/mute"
	AddressUnmuteIDs     = "/zoom/users/zoomID/unMute"
	AddressMuteAllExcept = "/zoom/allExcept/zoomID/mute"
	AddressPin           = "/zoom/userName/pin2"
	AddressAddPin        = "/zoom/userName/addPin"
	AddressClearPin      = "/zoom/clearPin"
	AddressMakeCoHost    = "/zoom/zoomID/makeCoHost"
	AddressJoinMeeting   = "/zoom/joinMeeting"
	AddressEndMeeting    = "/zoom/endMeeting"
	AddressLeaveMeeting  = "/zoom/leaveMeeting"
)

// subscribeAll asks the control plane to report events for every participant.
const subscribeAll = 2

// Sender delivers one control-plane message. Implementations must not block
// for long; the conductor calls Send from its event loop.
type Sender interface {
	Send(ctx context.Context, address string, args ...any) error
}

// send is fire-and-forget: failures are logged and never returned.
func (c *Conductor) send(ctx context.Context, address string, args ...any) {
	c.logger.DebugContext(ctx, "control-plane send", "address", address, "args", redactArgs(args))
	if err := c.sender.Send(ctx, address, args...); err != nil {
		c.logger.ErrorContext(ctx, "control-plane send failed",
			"address", address,
			"error", err,
		)
	}
}

// reply sends a chat message to one session.
func (c *Conductor) reply(ctx context.Context, id int, text string) {
	c.send(ctx, AddressChatID, id, text)
}

// notifyPrivileged chats text to every host and co-host except this
// instance, plus any extra recipients.
func (c *Conductor) notifyPrivileged(ctx context.Context, text string, extra ...int) {
	sent := make(map[int]bool)
	for _, id := range append(c.roster.PrivilegedIDs(), extra...) {
		if sent[id] || c.isSelf(id) {
			continue
		}
		sent[id] = true
		c.reply(ctx, id, text)
	}
}

func idArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// redactArgs hides the codeword of an outgoing /whoami chat line.
func redactArgs(args []any) []any {
	for i, arg := range args {
		text, ok := arg.(string)
		if !ok || !strings.HasPrefix(text, "/whoami ") {
			continue
		}
		out := append([]any(nil), args...)
		out[i] = "/whoami [redacted]"
		return out
	}
	return args
}
