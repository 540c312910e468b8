package domain

// Channel names are stable identifiers shared by host and renderer builds.
// Bump the matching version when a payload shape changes.
const (
	ChannelPing = "ping"
	PingVersion = 1

	ChannelPong = "pong"
	PongVersion = 1

	ChannelPreferencesChanged = "preferences:changed"
	PreferencesVersion        = 1
)

// Ping asks the host for a Pong. ID is chosen by the sender; older
// renderers send a bare null and have their message id echoed instead.
type Ping struct {
	ID string `json:"id,omitempty"`
}

// Pong is the host's acknowledgement of a Ping. ReplyTo is the ping's ID.
type Pong struct {
	ReplyTo string `json:"reply_to"`
}
