package core

import (
	"context"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/AxewBoTX/browzer/core/http"
	"github.com/AxewBoTX/browzer/core/middleware"
	"github.com/AxewBoTX/browzer/core/router"
	"github.com/AxewBoTX/browzer/core/static"
)

// HandlerFunc is re-exported so applications only import this package.
type HandlerFunc = http.HandlerFunc

// Middleware is re-exported so applications only import this package.
type Middleware = middleware.Middleware

// ErrEngineClosed is returned by Serve after Shutdown closes the listener.
var ErrEngineClosed = errors.New("engine closed")

// ErrorHandler produces the response for a request whose middleware chain or
// handler returned an error.
type ErrorHandler func(c *http.Context, err error)

// Engine owns the listening socket and drives each accepted connection
// through the parse, route, execute, write pipeline, one goroutine per
// connection. Configure fields and register routes before calling Run or
// Serve; after that the engine treats the route table as read-only.
type Engine struct {
	// ReadTimeout bounds reading one complete request.
	ReadTimeout time.Duration
	// WriteTimeout bounds writing one complete response.
	WriteTimeout time.Duration
	// IdleTimeout bounds the wait for the next request on a kept-alive
	// connection.
	IdleTimeout time.Duration
	// MaxConnections caps concurrently served connections; zero means
	// unlimited.
	MaxConnections int
	// MaxHeaderBytes bounds a single request or header line.
	MaxHeaderBytes int
	// ErrorHandler builds the response after an aborted chain. The default
	// answers with the status StatusFor picks and its reason phrase.
	ErrorHandler ErrorHandler

	router *router.Router
	logger *zap.Logger
	global []Middleware

	mu         sync.Mutex
	listener   net.Listener
	conns      map[net.Conn]struct{}
	wg         sync.WaitGroup
	inShutdown atomic.Bool
}

// NewEngine creates an engine with default limits. A nil logger disables
// engine events.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    5 * time.Second,
		MaxConnections: 10000,
		MaxHeaderBytes: http.DefaultMaxLineBytes,
		router:         router.New(logger),
		logger:         logger,
		conns:          make(map[net.Conn]struct{}),
	}
	e.ErrorHandler = e.defaultErrorHandler
	return e
}

// Router exposes the underlying route table, mainly for tests.
func (e *Engine) Router() *router.Router {
	return e.router
}

// Use appends middleware that wraps every route. Must be called before
// serving begins.
func (e *Engine) Use(mws ...Middleware) {
	e.global = append(e.global, mws...)
}

// Handle registers a route. Registration of an indistinguishable route fails
// deterministically rather than silently shadowing.
func (e *Engine) Handle(method, pattern string, h HandlerFunc, mws ...Middleware) error {
	if _, err := e.router.Add(method, pattern, h, mws...); err != nil {
		e.logger.Error("route registration failed",
			zap.String("method", method),
			zap.String("pattern", pattern),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// GET registers a GET route.
func (e *Engine) GET(pattern string, h HandlerFunc, mws ...Middleware) error {
	return e.Handle(http.MethodGet, pattern, h, mws...)
}

// POST registers a POST route.
func (e *Engine) POST(pattern string, h HandlerFunc, mws ...Middleware) error {
	return e.Handle(http.MethodPost, pattern, h, mws...)
}

// PUT registers a PUT route.
func (e *Engine) PUT(pattern string, h HandlerFunc, mws ...Middleware) error {
	return e.Handle(http.MethodPut, pattern, h, mws...)
}

// DELETE registers a DELETE route.
func (e *Engine) DELETE(pattern string, h HandlerFunc, mws ...Middleware) error {
	return e.Handle(http.MethodDelete, pattern, h, mws...)
}

// PATCH registers a PATCH route.
func (e *Engine) PATCH(pattern string, h HandlerFunc, mws ...Middleware) error {
	return e.Handle(http.MethodPatch, pattern, h, mws...)
}

// HEAD registers a HEAD route.
func (e *Engine) HEAD(pattern string, h HandlerFunc, mws ...Middleware) error {
	return e.Handle(http.MethodHead, pattern, h, mws...)
}

// OPTIONS registers an OPTIONS route.
func (e *Engine) OPTIONS(pattern string, h HandlerFunc, mws ...Middleware) error {
	return e.Handle(http.MethodOptions, pattern, h, mws...)
}

// Static maps the files under dir onto GET <prefix>/*filepath, with
// traversal outside dir rejected.
func (e *Engine) Static(prefix, dir string) error {
	return e.GET(prefix+"/*filepath", static.Handler(dir, "filepath"))
}

// Run listens on addr and serves until Shutdown. Failure to bind is the only
// error the engine treats as fatal to the process; it is returned to the
// caller undisturbed.
func (e *Engine) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "bind %s", addr)
	}
	e.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
	return e.Serve(ln)
}

// Serve accepts connections from ln until Shutdown, dispatching each to its
// own goroutine. Accept errors are isolated: they never terminate sibling
// connections, only a closed listener ends the loop.
func (e *Engine) Serve(ln net.Listener) error {
	if e.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, e.MaxConnections)
	}

	e.mu.Lock()
	e.listener = ln
	e.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if e.inShutdown.Load() || errors.Is(err, net.ErrClosed) {
				return ErrEngineClosed
			}
			e.logger.Warn("accept failed", zap.Error(err))
			time.Sleep(10 * time.Millisecond)
			continue
		}
		e.trackConn(conn)
		e.wg.Add(1)
		go e.handleConn(conn)
	}
}

// Shutdown stops accepting and waits for in-flight connections. When ctx
// expires first the remaining connections are closed forcibly, which unblocks
// their pending reads and writes.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.inShutdown.Store(true)

	e.mu.Lock()
	if e.listener != nil {
		e.listener.Close()
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		e.closeAllConns()
		<-done
		return ctx.Err()
	}
}

func (e *Engine) trackConn(conn net.Conn) {
	e.mu.Lock()
	e.conns[conn] = struct{}{}
	e.mu.Unlock()
}

func (e *Engine) untrackConn(conn net.Conn) {
	e.mu.Lock()
	delete(e.conns, conn)
	e.mu.Unlock()
}

func (e *Engine) closeAllConns() {
	e.mu.Lock()
	for conn := range e.conns {
		conn.Close()
	}
	e.mu.Unlock()
}

// handleConn runs the per-connection state machine: Parsing, Routing,
// Executing, Writing, then either back to Parsing on keep-alive or Closed.
// Any failure here terminates only this connection.
func (e *Engine) handleConn(conn net.Conn) {
	defer e.wg.Done()
	defer e.untrackConn(conn)
	defer conn.Close()

	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
		tcp.SetKeepAlive(true)
	}

	remote := conn.RemoteAddr().String()
	sr := http.NewStreamReader(conn, e.MaxHeaderBytes)

	for first := true; ; first = false {
		// Parsing. The first request of a connection gets the read timeout,
		// a kept-alive connection waits at most the idle timeout.
		wait := e.ReadTimeout
		if !first {
			wait = e.IdleTimeout
		}
		if wait > 0 {
			conn.SetReadDeadline(time.Now().Add(wait))
		}

		req, err := http.ReadRequest(sr)
		if err != nil {
			if recoverable, code := e.classifyReadError(err, remote); recoverable {
				e.writeFailure(conn, code)
			}
			return
		}
		e.logger.Debug("request received",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("remote", remote),
		)

		ctx := http.NewContext(req)
		ctx.RemoteAddr = remote

		// Routing. A miss skips Executing entirely.
		rt, params, ferr := e.router.Find(req.Method, req.Path)
		if ferr != nil {
			code := StatusFor(ferr)
			ctx.Response.StatusCode = code
			ctx.Response.SetHeader(http.HeaderContentType, http.ContentTypePlain)
			ctx.Response.Body = []byte(http.StatusText(code))
		} else {
			e.logger.Debug("route matched",
				zap.String("method", rt.Method),
				zap.String("pattern", rt.Pattern),
			)
			for k, v := range params {
				ctx.SetParam(k, v)
			}
			// Executing.
			if herr := e.execute(rt, ctx); herr != nil {
				ctx.Response.CloseStream()
				e.logger.Warn("request aborted",
					zap.String("method", req.Method),
					zap.String("path", req.Path),
					zap.Error(herr),
				)
				e.ErrorHandler(ctx, herr)
			}
		}

		// Writing.
		keepAlive := req.KeepAlive() && !e.inShutdown.Load()
		if !keepAlive {
			ctx.Response.SetHeader(http.HeaderConnection, "close")
		}
		if e.WriteTimeout > 0 {
			conn.SetWriteDeadline(time.Now().Add(e.WriteTimeout))
		}
		if err := e.writeResponse(conn, ctx.Response); err != nil {
			e.logger.Debug("response write failed",
				zap.String("remote", remote),
				zap.Error(err),
			)
			return
		}
		if !keepAlive {
			return
		}
	}
}

// execute runs global middleware, then route middleware, then the handler.
// The combined slice is built fresh per request; the shared global slice is
// never appended to on the hot path.
func (e *Engine) execute(rt *router.Route, ctx *http.Context) error {
	mws := make([]Middleware, 0, len(e.global)+len(rt.Middleware))
	mws = append(mws, e.global...)
	mws = append(mws, rt.Middleware...)
	return middleware.Chain(rt.Handler, mws...)(ctx)
}

// classifyReadError decides whether a failed request read warrants a
// response. Only a clean close between requests, a closed socket, or a
// timeout goes unanswered; every parse failure, including a message truncated
// mid-body, gets its 4xx before the connection closes. A client that
// half-closes after a short body can still read the response.
func (e *Engine) classifyReadError(err error, remote string) (recoverable bool, code int) {
	var ne net.Error
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, net.ErrClosed),
		errors.As(err, &ne) && ne.Timeout():
		return false, 0
	case errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, http.ErrIncompleteBody):
		e.logger.Debug("request truncated mid-message",
			zap.String("remote", remote),
			zap.Error(err),
		)
		return true, 400
	default:
		e.logger.Debug("request not parseable",
			zap.String("remote", remote),
			zap.Error(err),
		)
		return true, StatusFor(err)
	}
}

// writeResponse serializes the response, taking the zero-copy path for
// file-backed streams. A streamed body is always released, error or not.
func (e *Engine) writeResponse(conn net.Conn, resp *http.Response) error {
	defer resp.CloseStream()

	if f, ok := resp.Stream.(*os.File); ok {
		if err := resp.WriteHeader(conn); err != nil {
			return err
		}
		return sendStream(conn, f, resp.ContentLength)
	}
	return resp.WriteTo(conn)
}

// writeFailure emits a minimal close-delimited error response.
func (e *Engine) writeFailure(conn net.Conn, code int) {
	resp := http.NewResponse()
	resp.StatusCode = code
	resp.SetHeader(http.HeaderConnection, "close")
	if e.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(e.WriteTimeout))
	}
	resp.WriteTo(conn)
}

func (e *Engine) defaultErrorHandler(c *http.Context, err error) {
	code := StatusFor(err)
	c.Response.StatusCode = code
	c.Response.SetHeader(http.HeaderContentType, http.ContentTypePlain)
	c.Response.Body = []byte(http.StatusText(code))
}
