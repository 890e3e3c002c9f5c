package termbox

import (
	"errors"
	"testing"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestFrontend_HandleEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     termbox.Event
		key       int
		quit      bool
		continues bool
		logsError bool
	}{
		{
			name:      "mapped key",
			event:     termbox.Event{Type: termbox.EventKey, Ch: 'w'},
			key:       0x5,
			continues: true,
		},
		{
			name:      "upper case key",
			event:     termbox.Event{Type: termbox.EventKey, Ch: 'F'},
			key:       0xE,
			continues: true,
		},
		{
			name:      "unmapped key",
			event:     termbox.Event{Type: termbox.EventKey, Ch: 'p'},
			key:       -1,
			continues: true,
		},
		{
			name:  "escape quits",
			event: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc},
			key:   -1,
			quit:  true,
		},
		{
			name:  "ctrl c quits",
			event: termbox.Event{Type: termbox.EventKey, Key: termbox.KeyCtrlC},
			key:   -1,
			quit:  true,
		},
		{
			name:      "error stops polling",
			event:     termbox.Event{Type: termbox.EventError, Err: errors.New("broken")},
			key:       -1,
			logsError: true,
		},
		{
			name:  "interrupt stops polling",
			event: termbox.Event{Type: termbox.EventInterrupt},
			key:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keypad := input.NewKeypad(time.Hour)
			quit := false
			logger := log.NewTestLogger(t)
			if tt.logsError {
				// the test logger fails the test on error records
				logger = log.NewWithConfig(log.DefaultConfig())
			}
			f := New(logger, keypad, func() { quit = true })

			assert.Equal(t, tt.continues, f.handleEvent(tt.event))
			assert.Equal(t, tt.quit, quit)

			keys := keypad.Keys()
			for key, pressed := range keys {
				assert.Equal(t, key == tt.key, pressed)
			}
		})
	}
}

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "DT  60  ST   0  [Esc quits]", statusLine(60, 0))
}

func TestFrontend_CloseWithoutInit(t *testing.T) {
	f := New(log.NewTestLogger(t), input.NewKeypad(input.DefaultHold), func() {})
	assert.NoError(t, f.Close())
}
