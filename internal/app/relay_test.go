package app

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/dkeye/Duet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalRelayForwardsPayloadUnchanged(t *testing.T) {
	env := newTestEnv()
	a, b := env.connect("a"), env.connect("b")
	relay := NewSignalRelay(env.hub)

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0\r\no=- 46117 2 IN IP4 127.0.0.1\r\n"}`)
	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)

	cases := []struct {
		name string
		send func() bool
		to   *fakeConn
		typ  domain.EventType
		key  string
		want json.RawMessage
	}{
		{"offer", func() bool { return relay.Offer("a", "b", offer) }, b, domain.EvIncomingCall, "offer", offer},
		{"answer", func() bool { return relay.Answer("b", "a", answer) }, a, domain.EvCallAccepted, "answer", answer},
		{"renegotiation offer", func() bool { return relay.RenegotiationOffer("a", "b", offer) }, b, domain.EvNegotiationNeededOut, "offer", offer},
		{"renegotiation done", func() bool { return relay.RenegotiationDone("b", "a", answer) }, a, domain.EvNegotiationFinal, "answer", answer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.to.reset()
			require.True(t, tc.send())

			tc.to.mu.Lock()
			require.Len(t, tc.to.frames, 1)
			var got map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(tc.to.frames[0], &got))
			tc.to.mu.Unlock()

			assert.JSONEq(t, `"`+string(tc.typ)+`"`, string(got["type"]))
			assert.Equal(t, string(tc.want), string(got[tc.key]))
			assert.Len(t, got, 3)
		})
	}
}

func TestSignalRelayUnknownTargetIsSilent(t *testing.T) {
	env := newTestEnv()
	a := env.connect("a")
	relay := NewSignalRelay(env.hub)

	assert.False(t, relay.Offer("a", "gone", json.RawMessage(`{}`)))
	assert.Empty(t, a.events(t))
}

func TestScenarioSendFile(t *testing.T) {
	env := newTestEnv()
	a, b := env.connect(alice.ID), env.connect(bob.ID)
	files := NewFileRelay(env.hub)

	data := json.RawMessage(`"` + base64.StdEncoding.EncodeToString([]byte("meeting notes\x00\xff")) + `"`)
	files.Send(alice.ID, bob.ID, "notes.txt", data)

	got := b.last(t, domain.EvFileReceived)
	assert.Equal(t, "notes.txt", got["fileName"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("meeting notes\x00\xff")), got["fileData"])
	assert.Equal(t, string(alice.ID), got["from"])

	ack := a.last(t, domain.EvFileSent)
	assert.Equal(t, "notes.txt", ack["fileName"])

	// The ack confirms dispatch only; it is sent even when the target is gone.
	a.reset()
	files.Send(alice.ID, "gone", "x.bin", json.RawMessage(`"AQ=="`))
	assert.Equal(t, []string{string(domain.EvFileSent)}, a.types(t))
}

func TestFileRelayForwardsDataVerbatim(t *testing.T) {
	env := newTestEnv()
	env.connect(alice.ID)
	b := env.connect(bob.ID)
	files := NewFileRelay(env.hub)

	for _, raw := range []string{
		`"data:text/plain,hello world"`,
		`{"chunks":["a","b"],"size":2}`,
		`[1,2,3]`,
	} {
		b.reset()
		files.Send(alice.ID, bob.ID, "notes.txt", json.RawMessage(raw))

		b.mu.Lock()
		require.Len(t, b.frames, 1)
		var got map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(b.frames[0], &got))
		b.mu.Unlock()
		assert.Equal(t, raw, string(got["fileData"]))
	}
}
