package detector

import (
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name         string
		frontendOpt  string
		terminal     bool
		wantFrontend string
		wantErr      bool
	}{
		{
			name:         "explicit web frontend",
			frontendOpt:  "web",
			wantFrontend: options.FrontendWeb,
		},
		{
			name:         "explicit frontend is case insensitive",
			frontendOpt:  "TermBox",
			terminal:     true,
			wantFrontend: options.FrontendTermbox,
		},
		{
			name:         "explicit headless on terminal",
			frontendOpt:  "headless",
			terminal:     true,
			wantFrontend: options.FrontendHeadless,
		},
		{
			name:         "auto-detect terminal",
			terminal:     true,
			wantFrontend: options.FrontendTerminal,
		},
		{
			name:         "auto-detect without terminal",
			wantFrontend: options.FrontendHeadless,
		},
		{
			name:        "unsupported frontend",
			frontendOpt: "sdl",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(log.NewTestLogger(t))
			d.isTerminal = func(int) bool { return tt.terminal }

			opts := options.Program{
				Flags: options.Flags{Frontend: tt.frontendOpt},
			}

			frontend, err := d.Detect(opts)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unsupported frontend")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantFrontend, frontend)
		})
	}
}
