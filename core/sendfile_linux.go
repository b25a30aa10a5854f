//go:build linux

package core

import (
	"io"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// sendStream copies a file-backed body to the connection, using sendfile for
// a zero-copy transfer when the connection exposes a TCP socket.
func sendStream(conn net.Conn, f *os.File, size int64) error {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		_, err := io.CopyN(conn, f, size)
		return err
	}

	rc, err := tcp.SyscallConn()
	if err != nil {
		_, err := io.CopyN(conn, f, size)
		return err
	}

	var (
		sent int64
		serr error
	)
	werr := rc.Write(func(fd uintptr) bool {
		for sent < size {
			n, err := unix.Sendfile(int(fd), int(f.Fd()), nil, int(size-sent))
			if n > 0 {
				sent += int64(n)
			}
			if err == unix.EAGAIN {
				// Wait until the socket is writable again.
				return false
			}
			if err != nil {
				serr = err
				return true
			}
			if n == 0 {
				serr = io.ErrShortWrite
				return true
			}
		}
		return true
	})
	if werr != nil {
		return werr
	}
	return serr
}
