package debugger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"github.com/sourcegraph/jsonrpc2"
)

// Method names of the debugger protocol.
const (
	MethodState           = "state"
	MethodPause           = "pause"
	MethodResume          = "resume"
	MethodStep            = "step"
	MethodNext            = "next"
	MethodMemory          = "memory"
	MethodDisassemble     = "disassemble"
	MethodBreakpointSet   = "breakpoint/set"
	MethodBreakpointClear = "breakpoint/clear"
	MethodReset           = "reset"
)

// codeNotPaused is the application error code for requests that require a
// paused interpreter.
const codeNotPaused = -32001

// PausedResult is the result of the pause and resume methods.
type PausedResult struct {
	Paused bool `json:"paused"`
}

// StepParams are the parameters of the step method.
type StepParams struct {
	Count int `json:"count"`
}

// MemoryParams are the parameters of the memory method.
type MemoryParams struct {
	Address uint16 `json:"address"`
	Length  int    `json:"length"`
}

// MemoryResult is the result of the memory method. Data is a list of byte
// values instead of a base64 string to be readable by clients.
type MemoryResult struct {
	Address uint16 `json:"address"`
	Data    []int  `json:"data"`
}

// DisassembleParams are the parameters of the disassemble method.
type DisassembleParams struct {
	Address uint16 `json:"address"`
	Count   int    `json:"count"`
}

// BreakpointParams are the parameters of the breakpoint methods.
type BreakpointParams struct {
	Address uint16 `json:"address"`
}

type handler struct {
	logger *log.Logger
	target Target
}

// Handle processes a single request and replies with its result.
func (h *handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	h.logger.Debug("Debugger request", log.String("method", req.Method))

	result, err := h.dispatch(ctx, req)
	if req.Notif {
		return
	}

	if err != nil {
		if err := conn.ReplyWithError(ctx, req.ID, toRPCError(err)); err != nil {
			h.logger.Error("Sending debugger error reply failed", log.Err(err))
		}
		return
	}
	if err := conn.Reply(ctx, req.ID, result); err != nil {
		h.logger.Error("Sending debugger reply failed", log.Err(err))
	}
}

//nolint:cyclop // method dispatch table
func (h *handler) dispatch(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case MethodState:
		return h.target.State(ctx)

	case MethodPause:
		if err := h.target.Pause(ctx); err != nil {
			return nil, err
		}
		return PausedResult{Paused: true}, nil

	case MethodResume:
		if err := h.target.Resume(ctx); err != nil {
			return nil, err
		}
		return PausedResult{Paused: false}, nil

	case MethodStep:
		params := StepParams{Count: 1}
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		if err := checkCount("count", params.Count); err != nil {
			return nil, err
		}
		return h.target.Step(ctx, params.Count)

	case MethodNext:
		return h.target.StepOver(ctx)

	case MethodMemory:
		return h.memory(ctx, req)

	case MethodDisassemble:
		params := DisassembleParams{Count: 1}
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		if err := checkCount("count", params.Count); err != nil {
			return nil, err
		}
		return h.target.Disassemble(ctx, params.Address, params.Count)

	case MethodBreakpointSet, MethodBreakpointClear:
		var params BreakpointParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		if req.Method == MethodBreakpointSet {
			return h.target.SetBreakpoint(ctx, params.Address)
		}
		return h.target.ClearBreakpoint(ctx, params.Address)

	case MethodReset:
		return h.target.Reset(ctx)

	default:
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
}

func (h *handler) memory(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	params := MemoryParams{Length: 1}
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}
	if err := checkCount("length", params.Length); err != nil {
		return nil, err
	}

	data, err := h.target.ReadMemory(ctx, params.Address, params.Length)
	if err != nil {
		return nil, err
	}

	result := MemoryResult{
		Address: params.Address,
		Data:    make([]int, len(data)),
	}
	for i, b := range data {
		result.Data[i] = int(b)
	}
	return result, nil
}

// decodeParams decodes the request parameters into params, missing
// parameters keep the default values set in params.
func decodeParams(req *jsonrpc2.Request, params any) error {
	if req.Params == nil {
		return nil
	}
	if err := json.Unmarshal(*req.Params, params); err != nil {
		return &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: fmt.Sprintf("invalid parameters: %s", err),
		}
	}
	return nil
}

func checkCount(name string, value int) error {
	if value <= 0 || value > chip8.MemorySize {
		return &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: fmt.Sprintf("invalid %s %d: must be between 1 and %d", name, value, chip8.MemorySize),
		}
	}
	return nil
}

// toRPCError converts an error into a JSON-RPC error with a matching code.
func toRPCError(err error) *jsonrpc2.Error {
	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	code := int64(jsonrpc2.CodeInternalError)
	switch {
	case errors.Is(err, chip8.ErrOutOfBounds):
		code = jsonrpc2.CodeInvalidParams
	case errors.Is(err, runner.ErrNotPaused):
		code = codeNotPaused
	}
	return &jsonrpc2.Error{
		Code:    code,
		Message: err.Error(),
	}
}
