// Package watchdog implements the two background threads that post events
// into the worker's channel without ever touching GPU or renderer state
// directly: a sleep/resume detector and a Unix-socket reconfiguration
// listener. Both are grounded on the teacher's own single-instance IPC
// socket (stale-socket cleanup, JSON framing, path validation) generalized
// from an "open a file" command to a wallpaper reconfiguration message.
package watchdog

import (
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/intuitionamiga/driftwall/internal/imaging"
	"github.com/intuitionamiga/driftwall/internal/schedule"
)

const ipcMaxPayloadSize = 4096

// ReconfigMessage is the wire format for a reconfiguration request: a
// single JSON object, read until EOF (at most ipcMaxPayloadSize bytes) and
// then decoded. Unset optional fields mean "keep current value".
type ReconfigMessage struct {
	Filter  *imaging.Filter  `json:"filter,omitempty"`
	Scaling *imaging.Scaling `json:"scaling,omitempty"`
	Path    string           `json:"path"`
	Mode    *schedule.Mode   `json:"mode,omitempty"`
}

// IPCConfigUpdate is the worker message posted once a reconfiguration
// request has been validated.
type IPCConfigUpdate struct {
	Msg ReconfigMessage
}

func socketPath(appName string) string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, appName+"-ipc.sock")
	}
	return filepath.Join("/tmp", appName+"-ipc.sock")
}

// IPC binds the reconfiguration socket and forwards validated messages to
// out. Construction failures are logged by the caller and otherwise
// ignored: the process continues to run without IPC, per the watchdog's
// never-fatal propagation policy.
type IPC struct {
	listener net.Listener
	sockPath string
	out      chan<- any
	log      *zap.Logger
}

// NewIPC binds the socket at ${XDG_RUNTIME_DIR}/<appName>-ipc.sock, removing
// any stale file first.
func NewIPC(appName string, out chan<- any, log *zap.Logger) (*IPC, error) {
	path := socketPath(appName)

	// The socket is reconfiguration control surface for this user only;
	// tighten the umask for the bind so net.Listen doesn't leave it
	// group/world writable.
	old := unix.Umask(0o177)
	defer unix.Umask(old)

	ln, err := net.Listen("unix", path)
	if err != nil {
		conn, dialErr := net.DialTimeout("unix", path, 2*time.Second)
		if dialErr != nil {
			os.Remove(path)
			ln, err = net.Listen("unix", path)
			if err != nil {
				return nil, err
			}
		} else {
			conn.Close()
			return nil, err
		}
	}

	return &IPC{listener: ln, sockPath: path, out: out, log: log}, nil
}

// Run accepts connections until Close is called.
func (s *IPC) Run() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *IPC) Close() error {
	err := s.listener.Close()
	os.Remove(s.sockPath)
	return err
}

func (s *IPC) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	raw, err := io.ReadAll(io.LimitReader(conn, ipcMaxPayloadSize))
	if err != nil {
		s.log.Debug("ipc read failed", zap.Error(err))
		return
	}

	var msg ReconfigMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.log.Debug("ipc payload dropped: invalid json", zap.Error(err))
		return
	}

	if err := validatePath(msg.Path); err != nil {
		s.log.Debug("ipc payload dropped", zap.String("path", msg.Path), zap.Error(err))
		return
	}

	s.out <- IPCConfigUpdate{Msg: msg}
}

func validatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return os.ErrInvalid
	}
	return nil
}
