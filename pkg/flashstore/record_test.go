package flashstore

import (
	"testing"

	"github.com/gopad-fw/joypad/pkg/gpevent"
)

func TestRecordRoundTrip(t *testing.T) {
	r := DefaultRecord()
	r.USBOutputMode = 3
	r.ActiveProfileIndex = 1
	r.Slots[0].Name = "arcade"
	r.Slots[0].Flags = FlagInvertLY | FlagSwapSticks
	r.Slots[0].RemapTable[0] = 5
	r.Slots[0].Rules[0] = ComboRule{
		Mask:          uint32(gpevent.ButtonL1) | uint32(gpevent.ButtonR1),
		HoldMs:        2000,
		ActionKind:    ComboActionSwitchProfile,
		ActionProfile: 2,
	}
	r.Slots[0].RuleCount = 1

	data, err := r.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var r2 Record
	if err := r2.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if r2.USBOutputMode != r.USBOutputMode {
		t.Errorf("USBOutputMode: got %d want %d", r2.USBOutputMode, r.USBOutputMode)
	}
	if r2.ActiveProfileIndex != r.ActiveProfileIndex {
		t.Errorf("ActiveProfileIndex: got %d want %d", r2.ActiveProfileIndex, r.ActiveProfileIndex)
	}
	if r2.Slots[0].Name != "arcade" {
		t.Errorf("Name: got %q", r2.Slots[0].Name)
	}
	if r2.Slots[0].Flags != r.Slots[0].Flags {
		t.Errorf("Flags: got 0x%x want 0x%x", r2.Slots[0].Flags, r.Slots[0].Flags)
	}
	if r2.Slots[0].RemapTable[0] != 5 {
		t.Errorf("RemapTable[0]: got %d want 5", r2.Slots[0].RemapTable[0])
	}
	if r2.Slots[0].Rules[0] != r.Slots[0].Rules[0] {
		t.Errorf("Rules[0]: got %+v want %+v", r2.Slots[0].Rules[0], r.Slots[0].Rules[0])
	}
}

func TestRecordBadMagic(t *testing.T) {
	r := DefaultRecord()
	data, _ := r.MarshalBinary()
	data[0] ^= 0xFF

	var r2 Record
	if err := r2.UnmarshalBinary(data); err != ErrBadMagic {
		t.Errorf("expected ErrBadMagic, got %v", err)
	}
}

func TestRecordCRCMismatch(t *testing.T) {
	r := DefaultRecord()
	data, _ := r.MarshalBinary()
	data[recordBodySize] ^= 0xFF // corrupt first CRC byte

	var r2 Record
	if err := r2.UnmarshalBinary(data); err != ErrCRCMismatch {
		t.Errorf("expected ErrCRCMismatch, got %v", err)
	}
}

func TestRecordTooShort(t *testing.T) {
	var r Record
	if err := r.UnmarshalBinary([]byte{1, 2, 3}); err != ErrInvalidSize {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestDefaultProfileSlotIsIdentity(t *testing.T) {
	p := DefaultProfileSlot()
	if p.SensitivityLeft != 100 || p.SensitivityRight != 100 {
		t.Errorf("default sensitivity should be 100%%, got L=%d R=%d", p.SensitivityLeft, p.SensitivityRight)
	}
	if p.Flags != 0 {
		t.Errorf("default flags should be 0, got 0x%x", p.Flags)
	}
	for i := 0; i < 32; i++ {
		if p.HasRemap(uint8(i)) {
			t.Errorf("default profile should have no remap at bit %d", i)
		}
	}
}
