package hidmode

import (
	"testing"

	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/usbdmode"
)

func TestSendReportEncodesButtonsAndAxes(t *testing.T) {
	m := New(func() bool { return true })
	out := gpevent.ProfileOutput{Analog: [gpevent.AxisCount]uint8{10, 20, 30, 40, 0, 0}}
	ok := m.sendReport(0, gpevent.InputEvent{}, out, 0x0102)
	if !ok {
		t.Fatal("expected sendReport to succeed")
	}

	report := m.LastSent()
	if report[0] != 0x02 || report[1] != 0x01 {
		t.Errorf("buttons bytes = %02x %02x, want 02 01", report[0], report[1])
	}
	if report[2] != 10 || report[3] != 20 || report[4] != 30 || report[5] != 40 {
		t.Errorf("axes = %v, want [10 20 30 40]", report[2:6])
	}
}

func TestSendReportNotReady(t *testing.T) {
	m := New(func() bool { return false })
	if m.sendReport(0, gpevent.InputEvent{}, gpevent.ProfileOutput{}, 0) {
		t.Error("expected sendReport to fail when not ready")
	}
}

func TestIsReadyDefaultsTrueWithNilReadyFn(t *testing.T) {
	m := New(nil)
	if !m.isReady() {
		t.Error("expected isReady to default true with a nil readyFn")
	}
}

func TestBuiltinIsIdentityRemap(t *testing.T) {
	for i, dst := range Builtin.Remap {
		if dst != 0xFF {
			t.Errorf("Remap[%d] = %d, want identity pass-through 0xFF", i, dst)
		}
	}
}

func TestNewUsbdModeWiresModeID(t *testing.T) {
	usbdMode, _ := NewUsbdMode(func() bool { return true })
	if usbdMode.ID != usbdmode.ModeHID {
		t.Errorf("expected ModeHID id, got %d", usbdMode.ID)
	}
	if usbdMode.ReportSize != ReportSize {
		t.Errorf("ReportSize = %d, want %d", usbdMode.ReportSize, ReportSize)
	}
}
