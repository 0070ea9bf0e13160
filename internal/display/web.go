// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/tilt_matrix/internal/engine"
	"github.com/relabs-tech/tilt_matrix/internal/render"
)

//go:embed web/index.html
var indexHTML []byte

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 54 * time.Second
	wsPongWait   = 60 * time.Second
)

// Web serves the live matrix to browsers: /ws/frames streams every frame,
// /api/frame and /api/tick return the latest frame and tick report.
type Web struct {
	width    int
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	seq     uint64
	frame   []byte
	report  []byte
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewWeb returns a web display for a width×width grid.
func NewWeb(width int) *Web {
	return &Web{
		width: width,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local development
			},
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// Handler returns the HTTP routes.
func (w *Web) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/frame", w.serveLatest(func() []byte { return w.frame }))
	mux.HandleFunc("/api/tick", w.serveLatest(func() []byte { return w.report }))
	mux.HandleFunc("/ws/frames", w.serveWS)
	mux.HandleFunc("/", func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(rw, r)
			return
		}
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		rw.Write(indexHTML)
	})
	return mux
}

// ListenAndServe runs the server until ctx is cancelled.
func (w *Web) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: w.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	log.Printf("web: server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: %w", err)
	}
	return nil
}

func (w *Web) serveLatest(get func() []byte) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		w.mu.RLock()
		body := get()
		w.mu.RUnlock()

		if body == nil {
			http.Error(rw, "no data yet", http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		rw.Write(body)
	}
}

func (w *Web) serveWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, 8)}

	w.mu.Lock()
	w.clients[c] = struct{}{}
	if w.frame != nil {
		c.send <- w.frame
	}
	w.mu.Unlock()

	go c.writePump()
	c.readPump()

	w.mu.Lock()
	delete(w.clients, c)
	close(c.send)
	w.mu.Unlock()
}

// readPump only watches for the browser going away.
func (c *wsClient) readPump() {
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("web: websocket read error: %v", err)
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WriteFrame stores the frame and pushes it to every connected browser.
// Slow clients miss frames instead of stalling the loop.
func (w *Web) WriteFrame(pixels []color.RGBA) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	body, err := json.Marshal(render.EncodeFrame(w.seq, w.width, pixels))
	if err != nil {
		return fmt.Errorf("web: encode frame: %w", err)
	}
	w.frame = body
	for c := range w.clients {
		select {
		case c.send <- body:
		default:
		}
	}
	return nil
}

// OnTick keeps the latest report for /api/tick.
func (w *Web) OnTick(r engine.Report) {
	body, err := json.Marshal(r)
	if err != nil {
		log.Printf("web: encode tick: %v", err)
		return
	}
	w.mu.Lock()
	w.report = body
	w.mu.Unlock()
}

func (w *Web) clientCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.clients)
}

func (w *Web) String() string { return "web" }
