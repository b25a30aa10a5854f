//go:build !linux

package core

import (
	"io"
	"net"
	"os"
)

// sendStream copies a file-backed body to the connection. Platforms without
// a sendfile fast path fall back to a buffered copy.
func sendStream(conn net.Conn, f *os.File, size int64) error {
	_, err := io.CopyN(conn, f, size)
	return err
}
