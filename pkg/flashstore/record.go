// Package flashstore implements the flash-resident settings record: the
// USB output mode, active built-in profile, and custom-profile slots,
// framed by a magic number and CRC32 (spec.md §6). It generalizes the
// teacher repo's pkg/config (binary layout) and pkg/storage (LittleFS
// atomic write) into the single logical "flash record" spec.md describes.
package flashstore

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"

	"github.com/gopad-fw/joypad/pkg/gpevent"
)

// RecordVersion is the flash record format version written into every
// record's header. UnmarshalBinary does not check it: only the size, the
// magic number and the CRC decide whether a stored record is accepted.
const RecordVersion uint16 = 1

// RecordMagic identifies a valid record at the start of its bytes.
const RecordMagic uint32 = 0x4A505044 // "JPPD"

// MaxProfileSlots is the number of custom-profile slots carried in the
// record.
const MaxProfileSlots = 4

// MaxComboRules bounds the ordered combo-rule list per profile slot.
const MaxComboRules = 8

// Profile flags (spec.md §3 "profile").
const (
	FlagSwapSticks uint8 = 1 << iota
	FlagInvertLY
	FlagInvertRY
)

// ComboActionKind distinguishes what a fired combo rule does.
type ComboActionKind uint8

const (
	ComboActionNone ComboActionKind = iota
	ComboActionSynthesizeButton
	ComboActionSwitchProfile
)

// ComboRule is one entry of a profile's ordered combo-rule list: a button
// mask that, held for HoldMs, fires Action. Rules compete by specificity:
// the rule whose mask holds more buttons wins; ties break by declaration
// order (lower index in the Rules array).
type ComboRule struct {
	Mask       uint32
	HoldMs     uint16
	ActionKind ComboActionKind
	// ActionButton is stored for ComboActionSynthesizeButton rules; the
	// profile engine does not add it to its output.
	ActionButton gpevent.Button
	// ActionProfile is read when ActionKind == ComboActionSwitchProfile.
	ActionProfile uint8
}

// ProfileSlot is one custom-profile record: button remap table, per-stick
// sensitivity, flags, and combo rules (spec.md §3 "profile").
type ProfileSlot struct {
	Name string

	// RemapTable[srcBitIndex] is the destination bit index, or 0xFF if the
	// source bit passes through unmapped (spec.md default).
	RemapTable [32]uint8

	SensitivityLeft  uint8 // percent, 100 = identity
	SensitivityRight uint8

	Flags uint8

	RuleCount uint8
	Rules     [MaxComboRules]ComboRule
}

// DefaultProfileSlot returns an identity profile: no remap, 100% sens, no
// flags, no combo rules — the identity transform spec.md §8 property 8
// requires.
func DefaultProfileSlot() ProfileSlot {
	p := ProfileSlot{SensitivityLeft: 100, SensitivityRight: 100}
	for i := range p.RemapTable {
		p.RemapTable[i] = 0xFF
	}
	return p
}

// HasRemap reports whether src is explicitly remapped.
func (p *ProfileSlot) HasRemap(srcBit uint8) bool {
	return srcBit < 32 && p.RemapTable[srcBit] != 0xFF
}

// ProfileSlotSize is the marshaled size in bytes of one ProfileSlot, for
// callers that frame it inside a larger payload (pkg/protocol).
const ProfileSlotSize = profileSlotSize

// MarshalBinary encodes the profile slot to its fixed-size wire layout.
func (p *ProfileSlot) MarshalBinary() ([]byte, error) {
	buf := make([]byte, profileSlotSize)
	marshalProfileSlot(buf, p)
	return buf, nil
}

// UnmarshalBinary decodes a profile slot previously written by
// MarshalBinary.
func (p *ProfileSlot) UnmarshalBinary(data []byte) error {
	if len(data) < profileSlotSize {
		return ErrInvalidSize
	}
	unmarshalProfileSlot(data, p)
	return nil
}

// Record is the byte-exact flash-resident settings record:
//
//	[magic:4][version:2][reserved:2][usb_output_mode:1][active_profile_index:1][...slots...][crc32:4]
type Record struct {
	USBOutputMode      uint8
	ActiveProfileIndex uint8
	Slots              [MaxProfileSlots]ProfileSlot
}

// DefaultRecord is the compiled-in fallback used whenever flash is absent,
// corrupt, or carries an unsupported mode (spec.md §7).
func DefaultRecord() Record {
	r := Record{}
	for i := range r.Slots {
		r.Slots[i] = DefaultProfileSlot()
	}
	return r
}

// profileSlotSize is the marshaled size in bytes of one ProfileSlot.
const profileSlotSize = 16 /*name*/ + 32 /*remap*/ + 1 + 1 + 1 /*sens x2, flags*/ + 1 /*rulecount*/ + MaxComboRules*12

// recordBodySize is magic+version+reserved+mode+profile+slots (everything
// but the trailing CRC32).
const recordBodySize = 4 + 2 + 2 + 1 + 1 + MaxProfileSlots*profileSlotSize

// ErrInvalidSize is returned when unmarshaling data shorter than expected.
var ErrInvalidSize = errors.New("flashstore: invalid record size")

// ErrCRCMismatch is returned by Unmarshal when the trailing CRC32 does not
// match the computed checksum.
var ErrCRCMismatch = errors.New("flashstore: crc mismatch")

// ErrBadMagic is returned by Unmarshal when the leading magic word is
// wrong.
var ErrBadMagic = errors.New("flashstore: bad magic")

// ErrSlotOutOfRange is returned when a profile slot index is outside
// 0..MaxProfileSlots-1.
var ErrSlotOutOfRange = errors.New("flashstore: slot out of range")

// ErrSlotEmpty is returned when a profile slot has no name, i.e. was never
// saved.
var ErrSlotEmpty = errors.New("flashstore: slot empty")

func marshalProfileSlot(buf []byte, p *ProfileSlot) {
	name := []byte(p.Name)
	if len(name) > 15 {
		name = name[:15]
	}
	copy(buf[0:16], name)
	buf[len(name)] = 0

	copy(buf[16:48], p.RemapTable[:])
	buf[48] = p.SensitivityLeft
	buf[49] = p.SensitivityRight
	buf[50] = p.Flags
	buf[51] = p.RuleCount

	off := 52
	for i := 0; i < MaxComboRules; i++ {
		r := p.Rules[i]
		binary.LittleEndian.PutUint32(buf[off:], r.Mask)
		binary.LittleEndian.PutUint16(buf[off+4:], r.HoldMs)
		buf[off+6] = uint8(r.ActionKind)
		binary.LittleEndian.PutUint32(buf[off+7:], uint32(r.ActionButton))
		buf[off+11] = r.ActionProfile
		off += 12
	}
}

func unmarshalProfileSlot(buf []byte, p *ProfileSlot) {
	nameEnd := 0
	for ; nameEnd < 16; nameEnd++ {
		if buf[nameEnd] == 0 {
			break
		}
	}
	p.Name = string(buf[:nameEnd])

	copy(p.RemapTable[:], buf[16:48])
	p.SensitivityLeft = buf[48]
	p.SensitivityRight = buf[49]
	p.Flags = buf[50]
	p.RuleCount = buf[51]

	off := 52
	for i := 0; i < MaxComboRules; i++ {
		var r ComboRule
		r.Mask = binary.LittleEndian.Uint32(buf[off:])
		r.HoldMs = binary.LittleEndian.Uint16(buf[off+4:])
		r.ActionKind = ComboActionKind(buf[off+6])
		r.ActionButton = gpevent.Button(binary.LittleEndian.Uint32(buf[off+7:]))
		r.ActionProfile = buf[off+11]
		p.Rules[i] = r
		off += 12
	}
}

// MarshalBinary encodes the record with its trailing CRC32, ready to write
// to flash.
func (r *Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, recordBodySize+4)

	binary.LittleEndian.PutUint32(buf[0:], RecordMagic)
	binary.LittleEndian.PutUint16(buf[4:], RecordVersion)
	binary.LittleEndian.PutUint16(buf[6:], 0) // reserved
	buf[8] = r.USBOutputMode
	buf[9] = r.ActiveProfileIndex

	off := 10
	for i := range r.Slots {
		marshalProfileSlot(buf[off:off+profileSlotSize], &r.Slots[i])
		off += profileSlotSize
	}

	crc := crc32.ChecksumIEEE(buf[:recordBodySize])
	binary.LittleEndian.PutUint32(buf[recordBodySize:], crc)

	return buf, nil
}

// UnmarshalBinary decodes a record previously written by MarshalBinary. It
// returns ErrBadMagic or ErrCRCMismatch rather than silently accepting a
// corrupt record — the caller (Store.Load) treats either as "absent" and
// falls back to DefaultRecord() per spec.md §7.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) < recordBodySize+4 {
		return ErrInvalidSize
	}

	if binary.LittleEndian.Uint32(data[0:]) != RecordMagic {
		return ErrBadMagic
	}

	crc := crc32.ChecksumIEEE(data[:recordBodySize])
	if binary.LittleEndian.Uint32(data[recordBodySize:]) != crc {
		return ErrCRCMismatch
	}

	r.USBOutputMode = data[8]
	r.ActiveProfileIndex = data[9]

	off := 10
	for i := range r.Slots {
		unmarshalProfileSlot(data[off:off+profileSlotSize], &r.Slots[i])
		off += profileSlotSize
	}

	return nil
}

// Marshal writes the record to w.
func (r *Record) Marshal(w io.Writer) error {
	data, err := r.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Unmarshal reads a record from r.
func (r *Record) Unmarshal(reader io.Reader) error {
	data := make([]byte, recordBodySize+4)
	if _, err := io.ReadFull(reader, data); err != nil {
		return err
	}
	return r.UnmarshalBinary(data)
}
