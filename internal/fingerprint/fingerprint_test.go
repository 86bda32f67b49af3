package fingerprint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stemsi/questionnaire/internal/model"
)

var desktop = Signals{
	UserAgent:           "Mozilla/5.0 (X11; Linux x86_64)",
	Language:            "fr-FR",
	ScreenWidth:         1920,
	ScreenHeight:        1080,
	TimezoneOffset:      -180,
	CanvasDigest:        "data:image/png;base64,AAAA",
	HardwareConcurrency: 8,
	DeviceMemory:        8,
}

func TestHashKnownValues(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"a", "2p"},   // 97
		{"ab", "2e9"}, // 97*31 + 98 = 3105
		{"é", "6h"},   // 233, one UTF-16 unit
	}
	for _, tt := range tests {
		if got := Hash(tt.in); got != tt.want {
			t.Errorf("Hash(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashWrapsTo32Bits(t *testing.T) {
	s := "a long enough string to overflow a 32-bit accumulator many times over"

	var ref int64
	for _, c := range s {
		ref = int64(int32(ref*31 + int64(c)))
	}
	if ref < 0 {
		ref = -ref
	}
	if ref > 1<<31 {
		t.Fatalf("reference escaped 32 bits: %d", ref)
	}
	if got, want := Hash(s), formatBase36(ref); got != want {
		t.Fatalf("Hash = %q, want %q", got, want)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(StaticProbe(desktop))
	b := Generate(StaticProbe(desktop))
	if a != b {
		t.Fatalf("same signals produced %q and %q", a, b)
	}

	other := desktop
	other.ScreenWidth = 1280
	if Generate(StaticProbe(other)) == a {
		t.Fatal("different screen produced the same fingerprint")
	}
}

func TestSignalsStringUsesSentinels(t *testing.T) {
	s := Signals{UserAgent: "ua", Language: "fr", ScreenWidth: 1, ScreenHeight: 2, TimezoneOffset: 60, CanvasDigest: "c", DeviceMemory: 0.5}
	want := "ua|fr|1x2|60|c|unknown|0.5"
	if got := s.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestHintsProbeFallsBackToAcceptLanguage(t *testing.T) {
	p := HintsProbe{
		UserAgent:      "ua",
		AcceptLanguage: "fr-FR,fr;q=0.9,en;q=0.8",
		Hints:          model.ClientHints{ScreenWidth: 390, ScreenHeight: 844, Canvas: "data:image/png;base64,xyz"},
	}
	sig := p.Signals()
	if sig.Language != "fr-FR" {
		t.Errorf("Language = %q", sig.Language)
	}
	if sig.CanvasDigest == "" || sig.CanvasDigest == p.Hints.Canvas {
		t.Errorf("canvas not digested: %q", sig.CanvasDigest)
	}
	if Digest("") != "" {
		t.Error("empty canvas must stay empty")
	}
}

func TestTerminalProbeStable(t *testing.T) {
	fixed := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("EAT", 3*3600)) }
	p := &TerminalProbe{ClientName: "questionnaire-cli/test", Now: fixed}

	sig := p.Signals()
	if sig.TimezoneOffset != -180 {
		t.Errorf("TimezoneOffset = %d, want -180", sig.TimezoneOffset)
	}
	if sig.ScreenWidth != 0 || sig.ScreenHeight != 0 {
		t.Errorf("screen = %dx%d, want 0x0", sig.ScreenWidth, sig.ScreenHeight)
	}
	if Generate(p) != Generate(p) {
		t.Error("terminal fingerprint not stable across calls")
	}
}

func TestMachineID(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing")
	blank := filepath.Join(dir, "blank")
	id := filepath.Join(dir, "machine-id")
	if err := os.WriteFile(blank, []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(id, []byte("4c4c4544004b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	saved := machineIDPaths
	t.Cleanup(func() { machineIDPaths = saved })

	machineIDPaths = []string{missing, blank, id}
	if got := machineID(); got != "4c4c4544004b" {
		t.Errorf("machineID() = %q", got)
	}
	machineIDPaths = []string{missing}
	if got := machineID(); got != "" {
		t.Errorf("machineID() without a file = %q", got)
	}
}

func TestRoundMemory(t *testing.T) {
	tests := map[float64]float64{0: 0, 0.3: 0.25, 1.9: 1, 3.7: 2, 15.5: 8, 64: 8}
	for in, want := range tests {
		if got := roundMemory(in); got != want {
			t.Errorf("roundMemory(%v) = %v, want %v", in, got, want)
		}
	}
}

func formatBase36(n int64) string {
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "0"
	}
	var out []byte
	for n > 0 {
		out = append([]byte{digits[n%36]}, out...)
		n /= 36
	}
	return string(out)
}
