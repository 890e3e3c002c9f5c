package web

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestEncodeDisplay(t *testing.T) {
	var frame chip8.Frame
	frame[0] = 1
	frame[chip8.DisplaySize-1] = 1

	data, err := encodeDisplay(frame)
	assert.NoError(t, err)

	var raw struct {
		Type   string `json:"type"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Data   string `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, messageDisplay, raw.Type)
	assert.Equal(t, chip8.DisplayWidth, raw.Width)
	assert.Equal(t, chip8.DisplayHeight, raw.Height)

	cells, err := base64.StdEncoding.DecodeString(raw.Data)
	assert.NoError(t, err)
	if diff := cmp.Diff(frame[:], cells); diff != "" {
		t.Errorf("display cells mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeTimers(t *testing.T) {
	data, err := encodeTimers(3, 200)
	assert.NoError(t, err)
	assert.Equal(t, `{"type":"timers","delay":3,"sound":200}`, string(data))
}

func TestEncodeLayout(t *testing.T) {
	data, err := encodeLayout()
	assert.NoError(t, err)

	var msg layoutMessage
	assert.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, messageLayout, msg.Type)
	assert.Len(t, msg.Keys, chip8.KeyCount)
	assert.Equal(t, byte(0xC), msg.Keys["4"])
	assert.Equal(t, byte(0x0), msg.Keys["x"])
}

//nolint:funlen // test functions can be long
func TestFrontend_Websocket(t *testing.T) {
	keypad := input.NewKeypad(input.DefaultHold)
	f := New(log.NewTestLogger(t), keypad, "127.0.0.1:0")
	assert.NoError(t, f.Init(context.Background()))
	t.Cleanup(func() { _ = f.Close() })

	f.Timers(9, 1)

	resp, err := http.Get("http://" + f.Addr().String() + "/")
	assert.NoError(t, err)
	page, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.NoError(t, err)
	assert.Contains(t, string(page), "<canvas")

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+f.Addr().String()+"/ws", nil)
	assert.NoError(t, err)
	defer func() { _ = conn.Close() }()
	assert.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg map[string]any
	assert.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, messageLayout, msg["type"])

	// timer values are sent to new clients
	msg = nil
	assert.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, messageTimers, msg["type"])
	assert.Equal(t, float64(9), msg["delay"])

	var frame chip8.Frame
	frame[5] = 1
	assert.NoError(t, f.Draw(frame))

	msg = nil
	assert.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, messageDisplay, msg["type"])
	assert.Equal(t, float64(chip8.DisplayWidth), msg["width"])

	assert.NoError(t, conn.WriteJSON(keyMessage{Type: messageKeyDown, Key: 0xA}))
	waitForKey(t, keypad, 0xA, true)

	assert.NoError(t, conn.WriteJSON(keyMessage{Type: messageKeyUp, Key: 0xA}))
	waitForKey(t, keypad, 0xA, false)
}

func TestFrontend_DisconnectReleasesClientKeys(t *testing.T) {
	keypad := input.NewKeypad(input.DefaultHold)
	f := New(log.NewTestLogger(t), keypad, "127.0.0.1:0")
	assert.NoError(t, f.Init(context.Background()))
	t.Cleanup(func() { _ = f.Close() })

	first := dialClient(t, f)
	second := dialClient(t, f)

	assert.NoError(t, first.WriteJSON(keyMessage{Type: messageKeyDown, Key: 0x1}))
	waitForKey(t, keypad, 0x1, true)
	assert.NoError(t, second.WriteJSON(keyMessage{Type: messageKeyDown, Key: 0x1}))
	assert.NoError(t, second.WriteJSON(keyMessage{Type: messageKeyDown, Key: 0x2}))
	waitForKey(t, keypad, 0x2, true)

	// key 1 is still held by the second client
	assert.NoError(t, first.Close())
	waitForClients(t, f, 1)
	keys := keypad.Keys()
	assert.True(t, keys[0x1])
	assert.True(t, keys[0x2])

	assert.NoError(t, second.Close())
	waitForKey(t, keypad, 0x1, false)
	waitForKey(t, keypad, 0x2, false)
}

func dialClient(t *testing.T, f *Frontend) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+f.Addr().String()+"/ws", nil)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, f *Frontend, count int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		connected := len(f.clients)
		f.mu.Unlock()
		if connected == count {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d connected clients", count)
}

func waitForKey(t *testing.T, keypad *input.Keypad, key byte, pressed bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if keypad.Keys()[key] == pressed {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("key %X did not reach pressed state %t", key, pressed)
}

func TestFrontend_CloseWithoutInit(t *testing.T) {
	f := New(log.NewTestLogger(t), input.NewKeypad(input.DefaultHold), "127.0.0.1:0")
	assert.NoError(t, f.Close())
}
