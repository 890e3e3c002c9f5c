package web

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/input"
)

// Message types exchanged with the browser client.
const (
	messageDisplay = "display"
	messageTimers  = "timers"
	messageLayout  = "layout"
	messageKeyDown = "keydown"
	messageKeyUp   = "keyup"
)

// displayMessage contains all display cells, one byte per cell in row-major
// order. The cells are base64 encoded by the JSON encoder.
type displayMessage struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []byte `json:"data"`
}

type timersMessage struct {
	Type  string `json:"type"`
	Delay byte   `json:"delay"`
	Sound byte   `json:"sound"`
}

// layoutMessage maps keyboard characters to hex keys for the client.
type layoutMessage struct {
	Type string          `json:"type"`
	Keys map[string]byte `json:"keys"`
}

// keyMessage is sent by the client on key presses and releases.
type keyMessage struct {
	Type string `json:"type"`
	Key  int    `json:"key"`
}

func encodeDisplay(frame chip8.Frame) ([]byte, error) {
	msg := displayMessage{
		Type:   messageDisplay,
		Width:  chip8.DisplayWidth,
		Height: chip8.DisplayHeight,
		Data:   frame[:],
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding display message: %w", err)
	}
	return data, nil
}

func encodeTimers(delay, sound byte) ([]byte, error) {
	data, err := json.Marshal(timersMessage{
		Type:  messageTimers,
		Delay: delay,
		Sound: sound,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding timers message: %w", err)
	}
	return data, nil
}

func encodeLayout() ([]byte, error) {
	msg := layoutMessage{
		Type: messageLayout,
		Keys: make(map[string]byte, chip8.KeyCount),
	}
	for key := range byte(chip8.KeyCount) {
		if r, ok := input.RuneForKey(key); ok {
			msg.Keys[strings.ToLower(string(r))] = key
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding layout message: %w", err)
	}
	return data, nil
}
