// Package serial is the CDC transport for pkg/protocol: it frames bytes
// off the USB serial port, dispatches each command frame to a
// protocol.Handler, and writes back the response frame. Debug mirroring to
// the SSD1306 (when built without the nodebug tag) goes through the
// display package's FrameFormatter, the same pairing the teacher's echo
// stub set up for its display Manager.
package serial

import (
	"io"
	"machine"

	"github.com/gopad-fw/joypad/pkg/protocol"
)

// DisplayMirror is the subset of pkg/display.Manager this transport drives.
// Mirroring runs only when both the display and the formatter are non-nil;
// a nodebug build's stub Manager (whose methods are no-ops) behaves
// identically to no mirror at all.
type DisplayMirror interface {
	ShowIncomingFrame(bytesStr, parsedStr string)
	ShowOutgoingResponse(bytesStr, parsedStr string)
	ShowError(msg string)
}

// Formatter renders frames/responses into the short strings DisplayMirror
// expects.
type Formatter interface {
	FormatIncoming(frame *protocol.Frame) (bytesStr, parsedStr string)
	FormatOutgoing(resp *protocol.Response) (bytesStr, parsedStr string)
	FormatError(err error) string
}

// Serial is the CDC-backed protocol transport.
type Serial struct {
	port    io.ReadWriter
	handler *protocol.Handler

	display   DisplayMirror
	formatter Formatter
}

// byteReader adapts machine.Serialer's ReadByte into an io.Reader so
// protocol.ReadFrame can consume it directly.
type byteReader struct {
	serial machine.Serialer
}

func (r byteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := r.serial.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}

// readWriter pairs byteReader with the serial port's own Write.
type readWriter struct {
	byteReader
	serial machine.Serialer
}

func (rw readWriter) Write(p []byte) (int, error) {
	return rw.serial.Write(p)
}

// NewSerial returns a transport dispatching frames read from serial to
// handler. display/formatter may both be nil to disable debug mirroring.
func NewSerial(serial machine.Serialer, handler *protocol.Handler, display DisplayMirror, formatter Formatter) *Serial {
	return &Serial{
		port:      readWriter{byteReader: byteReader{serial: serial}, serial: serial},
		handler:   handler,
		display:   display,
		formatter: formatter,
	}
}

// Handle runs the read-dispatch-respond loop forever. A malformed frame is
// reported to the display (if any) and dropped; the loop never exits on a
// single bad frame, matching spec.md §7's "never block the main loop" rule.
func (s *Serial) Handle() {
	for {
		s.HandleOnce()
	}
}

// HandleOnce processes at most one frame, for tests and for embedding in a
// scheduler tick instead of a dedicated blocking loop.
func (s *Serial) HandleOnce() {
	frame, err := protocol.ReadFrame(s.port)
	if err != nil {
		if s.display != nil && s.formatter != nil {
			s.display.ShowError(s.formatter.FormatError(err))
		}
		return
	}

	if s.display != nil && s.formatter != nil {
		bytesStr, parsedStr := s.formatter.FormatIncoming(frame)
		s.display.ShowIncomingFrame(bytesStr, parsedStr)
	}

	resp := s.handler.Handle(frame)

	if s.display != nil && s.formatter != nil {
		bytesStr, parsedStr := s.formatter.FormatOutgoing(resp)
		s.display.ShowOutgoingResponse(bytesStr, parsedStr)
	}

	protocol.WriteResponse(s.port, resp)
}
