// Package fingerprint derives a best-effort, non-cryptographic identifier for
// the device a respondent answers from.
package fingerprint

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Unknown stands in for a signal the environment does not expose.
const Unknown = "unknown"

// Signals are the environment attributes folded into a fingerprint.
// Zero HardwareConcurrency or DeviceMemory means the value is unavailable.
type Signals struct {
	UserAgent           string
	Language            string
	ScreenWidth         int
	ScreenHeight        int
	TimezoneOffset      int // minutes, positive west of UTC
	CanvasDigest        string
	HardwareConcurrency int
	DeviceMemory        float64 // GiB
}

// EnvironmentProbe exposes the signals of the running environment.
type EnvironmentProbe interface {
	Signals() Signals
}

// StaticProbe returns fixed signals.
type StaticProbe Signals

func (p StaticProbe) Signals() Signals { return Signals(p) }

// Generate computes the fingerprint of the probed environment.
func Generate(probe EnvironmentProbe) string {
	return Hash(probe.Signals().String())
}

// String joins the signals in their fixed order with "|".
func (s Signals) String() string {
	cpu := Unknown
	if s.HardwareConcurrency > 0 {
		cpu = strconv.Itoa(s.HardwareConcurrency)
	}
	mem := Unknown
	if s.DeviceMemory > 0 {
		mem = strconv.FormatFloat(s.DeviceMemory, 'f', -1, 64)
	}
	return strings.Join([]string{
		s.UserAgent,
		s.Language,
		strconv.Itoa(s.ScreenWidth) + "x" + strconv.Itoa(s.ScreenHeight),
		strconv.Itoa(s.TimezoneOffset),
		s.CanvasDigest,
		cpu,
		mem,
	}, "|")
}

// Hash folds s through hash = hash*31 + c over its UTF-16 code units with
// 32-bit wrapping, and returns the absolute value in base 36.
func Hash(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return strconv.FormatInt(abs, 36)
}
