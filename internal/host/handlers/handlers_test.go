package handlers

import (
	"DeskShell/internal/core/domain"
	"DeskShell/internal/shared/config"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSender is a mock for the event side of the channel
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(channel string, payload any) error {
	args := m.Called(channel, payload)
	return args.Error(0)
}

func (m *MockSender) SendVersion(channel string, version int, payload any) error {
	args := m.Called(channel, version, payload)
	return args.Error(0)
}

// MockWindowSender is the host's event side as the wire server provides it
type MockWindowSender struct {
	MockSender
}

func (m *MockWindowSender) SendTo(window, channel string, version int, payload any) error {
	args := m.Called(window, channel, version, payload)
	return args.Error(0)
}

func (m *MockWindowSender) SendExcept(skip, channel string, version int, payload any) error {
	args := m.Called(skip, channel, version, payload)
	return args.Error(0)
}

func message(channelName string, payload string) domain.Message {
	return domain.Message{
		ID:      uuid.New(),
		Channel: channelName,
		Origin:  "window-1",
		Seq:     1,
		Payload: json.RawMessage(payload),
	}
}

func TestPingHandler_LogsPongAndReplies(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	events := new(MockWindowSender)

	msg := message(domain.ChannelPing, `{"id":"ping-7"}`)
	events.On("SendTo", "window-1", domain.ChannelPong, domain.PongVersion, domain.Pong{ReplyTo: "ping-7"}).
		Return(nil).Once()

	h := NewPingHandler(&config.Config{}, events, &logger)
	assert.Equal(t, domain.ChannelPing, h.Channel())
	require.NoError(t, h.Handle(context.Background(), msg))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "pong", line["message"])
	assert.Equal(t, "window-1", line["window_id"])
	events.AssertExpectations(t)
}

func TestPingHandler_LegacyNullPingGetsMessageID(t *testing.T) {
	nopLogger := zerolog.Nop()
	events := new(MockWindowSender)

	msg := message(domain.ChannelPing, `null`)
	events.On("SendTo", "window-1", domain.ChannelPong, domain.PongVersion, domain.Pong{ReplyTo: msg.ID.String()}).
		Return(nil).Once()

	h := NewPingHandler(&config.Config{}, events, &nopLogger)
	require.NoError(t, h.Handle(context.Background(), msg))
	events.AssertExpectations(t)
}

func TestPingHandler_BroadcastsWithoutWindowAddressing(t *testing.T) {
	nopLogger := zerolog.Nop()
	events := new(MockSender)

	msg := message(domain.ChannelPing, `{"id":"ping-7"}`)
	events.On("SendVersion", domain.ChannelPong, domain.PongVersion, domain.Pong{ReplyTo: "ping-7"}).
		Return(nil).Once()

	h := NewPingHandler(&config.Config{}, events, &nopLogger)
	require.NoError(t, h.Handle(context.Background(), msg))
	events.AssertExpectations(t)
}

func TestPingHandler_WithoutEventSender(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := NewPingHandler(&config.Config{}, nil, &logger)
	require.NoError(t, h.Handle(context.Background(), message(domain.ChannelPing, `null`)))
	assert.Contains(t, buf.String(), `"message":"pong"`)
}

func TestPingHandler_RejectsNewerVersion(t *testing.T) {
	nopLogger := zerolog.Nop()
	events := new(MockWindowSender)

	msg := message(domain.ChannelPing, `null`)
	msg.Version = domain.PingVersion + 1

	h := NewPingHandler(&config.Config{}, events, &nopLogger)
	assert.ErrorIs(t, h.Handle(context.Background(), msg), domain.ErrVersionMismatch)
	events.AssertNotCalled(t, "SendTo", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPreferencesRelayHandler(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		relay   bool
		wantErr error
	}{
		{name: "valid", payload: `{"language":"lo","theme":"dark"}`, relay: true},
		{name: "unsupported language", payload: `{"language":"xx","theme":"dark"}`, wantErr: domain.ErrUnsupportedLanguage},
		{name: "unsupported theme", payload: `{"language":"en","theme":"neon"}`, wantErr: domain.ErrUnsupportedTheme},
		{name: "not an object", payload: `"lo"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			nopLogger := zerolog.Nop()
			events := new(MockWindowSender)
			if tc.relay {
				// Everyone but the window that made the change.
				events.On("SendExcept", "window-1", domain.ChannelPreferencesChanged, domain.PreferencesVersion,
					domain.Preferences{Language: "lo", Theme: domain.ThemeDark}).Return(nil).Once()
			}

			h := NewPreferencesRelayHandler(&config.Config{}, events, &nopLogger)
			err := h.Handle(context.Background(), message(domain.ChannelPreferencesChanged, tc.payload))

			switch {
			case tc.relay:
				assert.NoError(t, err)
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			default:
				assert.Error(t, err)
			}
			events.AssertExpectations(t)
		})
	}
}
