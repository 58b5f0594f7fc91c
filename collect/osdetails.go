package collect

import (
	"runtime"
	"strconv"
	"strings"

	"corp/sysreport/core"
)

// BuildPrefix ditempel di depan BuildNumber supaya formatnya sama dengan feed
const BuildPrefix = "10.0."

// win11FirstBuild build pertama Windows 11
const win11FirstBuild = 22000

// Platform identitas host mentah (mirip uname)
type Platform struct {
	System    string // "Windows", "Linux", "Darwin", ...
	Version   string
	Release   string
	Platform  string // string gabungan, mis. "Windows-10-10.0.19045-SP0"
	Machine   string
	Processor string
}

// BuildOSDetails menyusun OSDetails dari Platform. buildNumber hanya
// dipanggil di Windows; kalau gagal, pesan error disimpan sebagai nilai Build.
func BuildOSDetails(p Platform, buildNumber func() (string, error)) core.OSDetails {
	d := core.OSDetails{
		core.KeyOS:              p.System,
		core.KeyVersion:         p.Version,
		core.KeyRelease:         p.Release,
		core.KeyPlatformVersion: p.Platform,
		core.KeyMachine:         p.Machine,
		core.KeyProcessor:       p.Processor,
	}
	if p.System != "Windows" || buildNumber == nil {
		return d
	}

	n, err := buildNumber()
	if err != nil {
		d[core.KeyBuild] = "Error retrieving build number: " + err.Error()
		return d
	}
	d[core.KeyBuild] = BuildPrefix + n
	return d
}

// BuildNumberOf mengambil angka build dari nilai Build ("10.0.19045" -> 19045).
func BuildNumberOf(build string) (int, bool) {
	if !strings.HasPrefix(build, BuildPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(build, BuildPrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ProductName menentukan nama produk ("Windows 10" / "Windows 11") untuk
// dicocokkan dengan feed. caption dari WMI (mis. "Microsoft Windows 11 Pro")
// didahulukan; kalau kosong pakai nomor build. Selain itu OS dikembalikan apa adanya.
func ProductName(d core.OSDetails, caption string) string {
	osName := d[core.KeyOS]
	if osName != "Windows" {
		return osName
	}
	switch {
	case strings.Contains(caption, "Windows 11"):
		return "Windows 11"
	case strings.Contains(caption, "Windows 10"):
		return "Windows 10"
	case strings.Contains(d[core.KeyPlatformVersion], "Windows-11"):
		return "Windows 11"
	}
	if n, ok := BuildNumberOf(d[core.KeyBuild]); ok {
		if n >= win11FirstBuild {
			return "Windows 11"
		}
		return "Windows 10"
	}
	if strings.Contains(d[core.KeyPlatformVersion], "Windows-10") {
		return "Windows 10"
	}
	return osName
}

// platformString meniru format platform.platform(): "<System>-<Release>-<Version>[-suffix]"
func platformString(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ReplaceAll(p, " ", "_"))
		}
	}
	return strings.Join(out, "-")
}

// fallbackPlatform kalau uname tidak tersedia: cukup dari runtime
func fallbackPlatform() Platform {
	sys := strings.ToUpper(runtime.GOOS[:1]) + runtime.GOOS[1:]
	return Platform{
		System:    sys,
		Platform:  platformString(sys, runtime.GOARCH),
		Machine:   runtime.GOARCH,
		Processor: runtime.GOARCH,
	}
}
