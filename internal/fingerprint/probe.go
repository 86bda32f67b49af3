package fingerprint

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/stemsi/questionnaire/internal/model"
	"golang.org/x/crypto/blake2b"
)

// canvasText is drawn (or, in a terminal, mixed in) to give the canvas digest
// some device-dependent material.
const canvasText = "Browser fingerprint"

// Digest reduces arbitrary canvas material to a short stable string.
func Digest(material string) string {
	if material == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(material))
	return base64.RawURLEncoding.EncodeToString(sum[:12])
}

// HintsProbe reads signals reported by the survey page plus request headers.
type HintsProbe struct {
	UserAgent      string
	AcceptLanguage string
	Hints          model.ClientHints
}

func (p HintsProbe) Signals() Signals {
	lang := p.Hints.Language
	if lang == "" {
		lang = primaryLanguage(p.AcceptLanguage)
	}
	return Signals{
		UserAgent:           p.UserAgent,
		Language:            lang,
		ScreenWidth:         p.Hints.ScreenWidth,
		ScreenHeight:        p.Hints.ScreenHeight,
		TimezoneOffset:      p.Hints.TimezoneOffset,
		CanvasDigest:        Digest(p.Hints.Canvas),
		HardwareConcurrency: p.Hints.HardwareConcurrency,
		DeviceMemory:        p.Hints.DeviceMemory,
	}
}

// primaryLanguage returns the first tag of an Accept-Language header.
func primaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}

// machineIDPaths are tried in order for a host identifier that survives
// reboots.
var machineIDPaths = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

// TerminalProbe reads signals from the process environment. A terminal has
// no fixed screen, and its window size changes on every resize, so the
// resolution is always reported as 0x0 and the host identity goes into the
// canvas digest instead.
type TerminalProbe struct {
	ClientName string
	// Now defaults to time.Now; only the zone offset is used.
	Now func() time.Time
}

// NewTerminalProbe creates a TerminalProbe for this host.
func NewTerminalProbe(clientName string) *TerminalProbe {
	return &TerminalProbe{ClientName: clientName, Now: time.Now}
}

func (p *TerminalProbe) Signals() Signals {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	_, offset := now().Zone()

	host, _ := os.Hostname()

	return Signals{
		UserAgent:           fmt.Sprintf("%s (%s; %s)", p.ClientName, runtime.GOOS, runtime.GOARCH),
		Language:            localeLanguage(),
		TimezoneOffset:      -offset / 60,
		CanvasDigest:        Digest(strings.Join([]string{canvasText, os.Getenv("TERM"), host, machineID()}, "\x00")),
		HardwareConcurrency: runtime.NumCPU(),
		DeviceMemory:        memoryGiB(),
	}
}

// machineID returns the host's machine id, or "" when none is readable.
func machineID() string {
	for _, path := range machineIDPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	return ""
}

// localeLanguage turns LC_ALL/LANG (fr_FR.UTF-8) into a BCP 47 style tag (fr-FR).
func localeLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		v, _, _ = strings.Cut(v, ".")
		v, _, _ = strings.Cut(v, "@")
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}

// memoryGiB approximates installed memory the way browsers do: rounded to a
// power of two and capped at 8. Zero when unknown.
func memoryGiB() float64 {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0
		}
		return roundMemory(kb / (1024 * 1024))
	}
	return 0
}

func roundMemory(gib float64) float64 {
	if gib <= 0 {
		return 0
	}
	r := 0.25
	for r*2 <= gib && r < 8 {
		r *= 2
	}
	return r
}
