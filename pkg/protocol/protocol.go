// Package protocol implements a binary serial protocol for PC app communication.
// The protocol is designed to be simple, efficient, and suitable for TinyGo.
//
// Frame format:
//
//	[SYNC:1][CMD:1][LEN:2][PAYLOAD:LEN][CRC:2]
//	- SYNC: 0xAA (frame start marker)
//	- CMD: Command byte
//	- LEN: Payload length (uint16, little-endian)
//	- PAYLOAD: Variable length data
//	- CRC: CRC16-CCITT of [CMD][LEN][PAYLOAD]
//
// Response format is identical.
package protocol

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopad-fw/joypad/pkg/flashstore"
)

const (
	SyncByte = 0xAA

	// Command codes (PC → Device). Device config and profile commands now
	// address the combined flashstore.Record instead of the teacher's
	// separate device.bin/profile files (spec.md §6, SPEC_FULL §5.12).
	CmdGetDeviceConfig = 0x01
	CmdSetDeviceConfig = 0x02
	CmdGetProfile      = 0x03
	CmdSetProfile      = 0x04
	CmdDeleteProfile   = 0x05
	CmdListProfiles    = 0x06
	CmdGetStorageStats = 0x07
	CmdPing            = 0x08
	CmdFactoryReset    = 0x09
	CmdGetVersion      = 0x10
	CmdDiscover        = 0x11

	// Response status codes (Device → PC)
	StatusOK              = 0x00
	StatusError           = 0x01
	StatusInvalidCmd      = 0x02
	StatusInvalidData     = 0x03
	StatusNotFound        = 0x04
	StatusNoSpace         = 0x05
	StatusVersionMismatch = 0x06
	StatusCRCError        = 0x07
)

var (
	ErrInvalidFrame = errors.New("invalid frame")
	ErrCRCMismatch  = errors.New("CRC mismatch")
	ErrTimeout      = errors.New("timeout")
)

// Handler processes protocol commands against the flash-resident record.
type Handler struct {
	store *flashstore.Store

	// lockout wraps every SaveNow with Core 1 parked (corebus.Bus.FlashLockout),
	// per spec.md Purpose/Scope. Nil runs the write unwrapped, for tests
	// that have no Bus.
	lockout func(func() error) error
}

// NewHandler creates a new protocol handler over store.
func NewHandler(store *flashstore.Store) *Handler {
	return &Handler{store: store}
}

// SetFlashLockout installs the flash-write lockout hook (corebus.Bus.FlashLockout)
// every SaveNow must run through.
func (h *Handler) SetFlashLockout(lockout func(func() error) error) {
	h.lockout = lockout
}

// saveNow persists record, under the flash lockout when one is installed.
func (h *Handler) saveNow(record flashstore.Record) error {
	if h.lockout != nil {
		return h.lockout(func() error { return h.store.SaveNow(record) })
	}
	return h.store.SaveNow(record)
}

// loadOrDefault returns the persisted record, or the compiled-in default if
// none is persisted yet (spec.md §7).
func (h *Handler) loadOrDefault() flashstore.Record {
	if r, ok := h.store.Load(); ok {
		return r
	}
	return flashstore.DefaultRecord()
}

// Frame represents a protocol frame.
type Frame struct {
	Cmd     uint8
	Payload []byte
}

// Response represents a protocol response.
type Response struct {
	Status  uint8
	Payload []byte
}

// ReadFrame reads and validates a frame from the reader.
func ReadFrame(r io.Reader) (*Frame, error) {
	// Read sync byte
	sync := make([]byte, 1)
	if _, err := io.ReadFull(r, sync); err != nil {
		return nil, err
	}
	if sync[0] != SyncByte {
		return nil, ErrInvalidFrame
	}

	// Read header (cmd + len)
	header := make([]byte, 3)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	cmd := header[0]
	length := binary.LittleEndian.Uint16(header[1:])

	// Sanity check on length
	if length > 4096 {
		return nil, ErrInvalidFrame
	}

	// Read payload
	var payload []byte
	if length > 0 {
		payload = make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}

	// Read CRC
	crcBytes := make([]byte, 2)
	if _, err := io.ReadFull(r, crcBytes); err != nil {
		return nil, err
	}
	receivedCRC := binary.LittleEndian.Uint16(crcBytes)

	// Verify CRC
	calculatedCRC := calcCRC(append(header, payload...))
	if receivedCRC != calculatedCRC {
		return nil, ErrCRCMismatch
	}

	return &Frame{
		Cmd:     cmd,
		Payload: payload,
	}, nil
}

// WriteResponse writes a response frame to the writer.
func WriteResponse(w io.Writer, resp *Response) error {
	// Calculate total size
	payloadLen := uint16(len(resp.Payload))
	frameLen := 1 + 1 + 2 + int(payloadLen) + 2 // sync + status + len + payload + crc

	buf := make([]byte, 0, frameLen)

	// Sync byte
	buf = append(buf, SyncByte)

	// Status
	buf = append(buf, resp.Status)

	// Length
	lenBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBytes, payloadLen)
	buf = append(buf, lenBytes...)

	// Payload
	buf = append(buf, resp.Payload...)

	// CRC (of status + len + payload)
	crc := calcCRC(buf[1:]) // Skip sync byte
	crcBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(crcBytes, crc)
	buf = append(buf, crcBytes...)

	_, err := w.Write(buf)
	return err
}

// WriteFrame writes a request frame (for testing/PC side).
func WriteFrame(w io.Writer, frame *Frame) error {
	payloadLen := uint16(len(frame.Payload))
	frameLen := 1 + 1 + 2 + int(payloadLen) + 2

	buf := make([]byte, 0, frameLen)

	// Sync byte
	buf = append(buf, SyncByte)

	// Command
	buf = append(buf, frame.Cmd)

	// Length
	lenBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBytes, payloadLen)
	buf = append(buf, lenBytes...)

	// Payload
	buf = append(buf, frame.Payload...)

	// CRC
	crc := calcCRC(buf[1:])
	crcBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(crcBytes, crc)
	buf = append(buf, crcBytes...)

	_, err := w.Write(buf)
	return err
}

// Handle processes a command frame and returns a response.
func (h *Handler) Handle(frame *Frame) *Response {
	switch frame.Cmd {
	case CmdPing:
		return h.handlePing(frame.Payload)
	case CmdGetDeviceConfig:
		return h.handleGetDeviceConfig()
	case CmdSetDeviceConfig:
		return h.handleSetDeviceConfig(frame.Payload)
	case CmdGetProfile:
		return h.handleGetProfile(frame.Payload)
	case CmdSetProfile:
		return h.handleSetProfile(frame.Payload)
	case CmdDeleteProfile:
		return h.handleDeleteProfile(frame.Payload)
	case CmdListProfiles:
		return h.handleListProfiles()
	case CmdGetStorageStats:
		return h.handleGetStorageStats()
	case CmdFactoryReset:
		return h.handleFactoryReset()
	case CmdGetVersion:
		return h.handleGetVersion()
	case CmdDiscover:
		return h.handleDiscover()
	default:
		return &Response{Status: StatusInvalidCmd}
	}
}

// handlePing responds with the same payload (echo).
func (h *Handler) handlePing(payload []byte) *Response {
	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleGetDeviceConfig returns the record's device-level fields.
// Response: [USBOutputMode:1][ActiveProfileIndex:1]
func (h *Handler) handleGetDeviceConfig() *Response {
	record := h.loadOrDefault()
	return &Response{
		Status:  StatusOK,
		Payload: []byte{record.USBOutputMode, record.ActiveProfileIndex},
	}
}

// handleSetDeviceConfig updates the record's device-level fields, leaving
// profile slots untouched.
// Payload: [USBOutputMode:1][ActiveProfileIndex:1]
func (h *Handler) handleSetDeviceConfig(payload []byte) *Response {
	if len(payload) != 2 {
		return &Response{Status: StatusInvalidData}
	}

	record := h.loadOrDefault()
	record.USBOutputMode = payload[0]
	record.ActiveProfileIndex = payload[1]

	if err := h.saveNow(record); err != nil {
		return &Response{Status: StatusError}
	}
	return &Response{Status: StatusOK}
}

// handleGetProfile returns a profile slot by index.
// Payload: [Slot:1 byte]
func (h *Handler) handleGetProfile(payload []byte) *Response {
	if len(payload) != 1 {
		return &Response{Status: StatusInvalidData}
	}
	slot := payload[0]
	if int(slot) >= flashstore.MaxProfileSlots {
		return &Response{Status: StatusInvalidData}
	}

	record := h.loadOrDefault()
	profileSlot := record.Slots[slot]
	if profileSlot.Name == "" {
		return &Response{Status: StatusNotFound}
	}

	data, err := profileSlot.MarshalBinary()
	if err != nil {
		return &Response{Status: StatusError}
	}

	return &Response{
		Status:  StatusOK,
		Payload: data,
	}
}

// handleSetProfile saves a profile slot.
// Payload: [Slot:1 byte][ProfileSlot:flashstore.ProfileSlotSize bytes]
func (h *Handler) handleSetProfile(payload []byte) *Response {
	if len(payload) != 1+flashstore.ProfileSlotSize {
		return &Response{Status: StatusInvalidData}
	}
	slot := payload[0]
	if int(slot) >= flashstore.MaxProfileSlots {
		return &Response{Status: StatusInvalidData}
	}

	var profileSlot flashstore.ProfileSlot
	if err := profileSlot.UnmarshalBinary(payload[1:]); err != nil {
		return &Response{Status: StatusInvalidData}
	}

	record := h.loadOrDefault()
	record.Slots[slot] = profileSlot

	if err := h.saveNow(record); err != nil {
		return &Response{Status: StatusNoSpace}
	}

	return &Response{Status: StatusOK}
}

// handleDeleteProfile clears a profile slot back to its unoccupied default.
// Payload: [Slot:1 byte]
func (h *Handler) handleDeleteProfile(payload []byte) *Response {
	if len(payload) != 1 {
		return &Response{Status: StatusInvalidData}
	}
	slot := payload[0]
	if int(slot) >= flashstore.MaxProfileSlots {
		return &Response{Status: StatusInvalidData}
	}

	record := h.loadOrDefault()
	record.Slots[slot] = flashstore.DefaultProfileSlot()

	if err := h.saveNow(record); err != nil {
		return &Response{Status: StatusError}
	}
	return &Response{Status: StatusOK}
}

// handleListProfiles returns all occupied profile slot indices (Name != "").
// Response: [Count:1 byte][Slot1:1 byte][Slot2:1 byte]...
func (h *Handler) handleListProfiles() *Response {
	record := h.loadOrDefault()

	var occupied []byte
	for i, slot := range record.Slots {
		if slot.Name != "" {
			occupied = append(occupied, uint8(i))
		}
	}

	payload := make([]byte, 1+len(occupied))
	payload[0] = uint8(len(occupied))
	copy(payload[1:], occupied)

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleGetStorageStats returns flash-sector usage.
// Response: [Total:4][Used:4][Free:4][ProfileCount:1]
func (h *Handler) handleGetStorageStats() *Response {
	stats := h.store.Stats()

	payload := make([]byte, 13)
	binary.LittleEndian.PutUint32(payload[0:], uint32(stats.TotalSpace))
	binary.LittleEndian.PutUint32(payload[4:], uint32(stats.UsedSpace))
	binary.LittleEndian.PutUint32(payload[8:], uint32(stats.FreeSpace))
	payload[12] = uint8(stats.ProfileCount)

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleFactoryReset wipes all configuration back to DefaultRecord.
func (h *Handler) handleFactoryReset() *Response {
	if err := h.saveNow(flashstore.DefaultRecord()); err != nil {
		return &Response{Status: StatusError}
	}
	return &Response{Status: StatusOK}
}

// handleGetVersion returns firmware and record version info.
// Response: [FirmwareVersionMajor:1][FirmwareVersionMinor:1][RecordVersion:2]
func (h *Handler) handleGetVersion() *Response {
	payload := make([]byte, 4)
	payload[0] = 0 // Firmware major
	payload[1] = 1 // Firmware minor
	binary.LittleEndian.PutUint16(payload[2:], flashstore.RecordVersion)

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleDiscover identifies the device to a host enumerating serial ports.
func (h *Handler) handleDiscover() *Response {
	return &Response{Status: StatusOK, Payload: []byte("joypad")}
}

// calcCRC calculates CRC16-CCITT.
// Polynomial: 0x1021, Initial: 0xFFFF
func calcCRC(data []byte) uint16 {
	var crc uint16 = 0xFFFF

	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}
