// Package web implements a frontend that serves a browser client over HTTP.
// The display and timer values are streamed to all connected clients over a
// websocket, key events are received over the same connection.
package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/retroenv/retrochip8/internal/arch/chip8"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

//go:embed index.html
var indexPage []byte

const (
	sendBufferSize  = 64
	shutdownTimeout = 2 * time.Second
)

// Frontend is the web server frontend.
type Frontend struct {
	logger   *log.Logger
	keypad   *input.Keypad
	address  string
	upgrader websocket.Upgrader

	server   *http.Server
	listener net.Listener

	mu          sync.Mutex
	clients     set.Set[*client]
	lastDisplay []byte // encoded last display message, sent to new clients
	lastTimers  []byte
	holders     [chip8.KeyCount]int // number of clients holding each key
}

// client is a connected websocket client. Messages are written by a
// dedicated goroutine as the websocket connection supports only one writer.
type client struct {
	conn    *websocket.Conn
	send    chan []byte
	pressed [chip8.KeyCount]bool // keys held by this client, guarded by Frontend.mu
}

// New returns a web frontend that listens on the given address.
func New(logger *log.Logger, keypad *input.Keypad, address string) *Frontend {
	return &Frontend{
		logger:  logger,
		keypad:  keypad,
		address: address,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients: set.New[*client](),
	}
}

// Init starts the HTTP server.
func (f *Frontend) Init(context.Context) error {
	listener, err := net.Listen("tcp", f.address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", f.address, err)
	}
	f.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", f.handlePage)
	mux.HandleFunc("/ws", f.handleWebsocket)
	f.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := f.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("Web server failed", log.Err(err))
		}
	}()

	f.logger.Info("Web frontend listening", log.String("url", "http://"+listener.Addr().String()))
	return nil
}

// Addr returns the address the server is listening on.
func (f *Frontend) Addr() net.Addr {
	return f.listener.Addr()
}

func (f *Frontend) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

func (f *Frontend) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("Upgrading websocket connection failed", log.Err(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	go c.writeMessages()

	layout, err := encodeLayout()
	if err != nil {
		f.logger.Error("Encoding key layout failed", log.Err(err))
	} else {
		c.send <- layout
	}

	f.register(c)
	f.logger.Debug("Web client connected", log.String("remote", conn.RemoteAddr().String()))

	f.readMessages(c)

	f.unregister(c)
	f.releaseKeys(c)
	f.logger.Debug("Web client disconnected", log.String("remote", conn.RemoteAddr().String()))
}

// register adds the client and sends it the current display and timer state.
func (f *Frontend) register(c *client) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clients.Add(c)
	for _, msg := range [][]byte{f.lastDisplay, f.lastTimers} {
		if msg != nil {
			c.send <- msg
		}
	}
}

func (f *Frontend) unregister(c *client) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.clients.Contains(c) {
		return
	}
	delete(f.clients, c)
	close(c.send)
	_ = c.conn.Close()
}

// readMessages processes key events until the connection is closed.
func (f *Frontend) readMessages(c *client) {
	for {
		var msg keyMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				f.logger.Warn("Invalid client message", log.Err(err))
				continue
			}
			return
		}

		if msg.Key < 0 || msg.Key >= chip8.KeyCount {
			f.logger.Warn("Invalid key in client message", log.Int("key", msg.Key))
			continue
		}

		switch msg.Type {
		case messageKeyDown:
			f.setKey(c, byte(msg.Key), true)
		case messageKeyUp:
			f.setKey(c, byte(msg.Key), false)
		default:
			f.logger.Debug("Unknown client message type", log.String("type", msg.Type))
		}
	}
}

// setKey updates a key of the client. A key stays pressed as long as any
// client holds it.
func (f *Frontend) setKey(c *client, key byte, pressed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c.pressed[key] == pressed {
		return
	}
	c.pressed[key] = pressed
	if pressed {
		f.holders[key]++
	} else {
		f.holders[key]--
	}
	f.keypad.Set(key, f.holders[key] > 0)
}

// releaseKeys releases all keys held by the client.
func (f *Frontend) releaseKeys(c *client) {
	for key := range chip8.KeyCount {
		f.setKey(c, byte(key), false)
	}
}

func (c *client) writeMessages() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			_ = c.conn.Close()
			return
		}
	}
}

// broadcast sends the message to all clients. Clients that can not keep up
// miss messages.
func (f *Frontend) broadcast(msg []byte) {
	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
			f.logger.Debug("Dropping message for slow web client")
		}
	}
}

// Draw sends the frame to all clients.
func (f *Frontend) Draw(frame chip8.Frame) error {
	msg, err := encodeDisplay(frame)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDisplay = msg
	f.broadcast(msg)
	return nil
}

// Timers sends the timer values to all clients.
func (f *Frontend) Timers(delay, sound byte) {
	msg, err := encodeTimers(delay, sound)
	if err != nil {
		f.logger.Error("Encoding timers failed", log.Err(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTimers = msg
	f.broadcast(msg)
}

// Close stops the server and disconnects all clients.
func (f *Frontend) Close() error {
	if f.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := f.server.Shutdown(ctx)

	// hijacked websocket connections are not closed by the server shutdown
	f.mu.Lock()
	for c := range f.clients {
		_ = c.conn.Close()
	}
	f.mu.Unlock()

	if err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	return nil
}
