/*
Package browzer provides a minimal, embeddable HTTP/1.1 server engine built
directly on TCP sockets, with no dependency on an existing HTTP stack.

The engine owns the full request lifecycle: it accepts connections, parses
raw bytes into structured requests, resolves routes with dynamic segments,
runs an ordered middleware chain over a per-request context, and serializes
the response back to the wire. Each accepted connection is handled by its own
goroutine; within a connection, requests are processed strictly sequentially
with HTTP/1.1 keep-alive.

Quick Start

	package main

	import (
	    "github.com/AxewBoTX/browzer/app"
	    "github.com/AxewBoTX/browzer/config"
	    "github.com/AxewBoTX/browzer/core/http"
	)

	func main() {
	    cfg, err := config.New()
	    if err != nil {
	        panic(err)
	    }
	    application, err := app.New(cfg)
	    if err != nil {
	        panic(err)
	    }

	    engine := application.Engine()
	    engine.GET("/hello", func(c *http.Context) error {
	        return c.String(200, "hello")
	    })
	    engine.GET("/users/:id", func(c *http.Context) error {
	        return c.JSON(200, map[string]string{"id": c.Param("id")})
	    })

	    application.Run()
	}

Modules

  - app: application lifecycle and graceful shutdown
  - config: configuration loading
  - core: engine, connection handling, route registration
  - core/http: stream reading, request parsing, context, response writing
  - core/router: ordered route table with :param and *wildcard segments
  - core/middleware: middleware chain and built-ins
  - core/static: static file serving
  - core/pools: byte-buffer pooling
*/
package browzer
