package core

import (
	"sort"
	"strings"
	"time"
)

// Kunci OSDetails, urutan ini juga urutan tampil di report
const (
	KeyOS              = "OS"
	KeyVersion         = "Version"
	KeyRelease         = "Release"
	KeyPlatformVersion = "Platform Version"
	KeyMachine         = "Machine"
	KeyProcessor       = "Processor"
	KeyBuild           = "Build" // hanya ada di Windows
)

// OSDetailKeys adalah urutan tetap kunci OSDetails.
var OSDetailKeys = []string{
	KeyOS, KeyVersion, KeyRelease, KeyPlatformVersion, KeyMachine, KeyProcessor, KeyBuild,
}

// OSDetails memetakan kunci di atas ke nilai string.
type OSDetails map[string]string

// Pair satu baris key/value yang sudah terurut
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Pairs mengembalikan isi OSDetails dengan urutan OSDetailKeys,
// kunci lain (kalau ada) ditaruh di belakang sesuai urutan abjad.
func (d OSDetails) Pairs() []Pair {
	out := make([]Pair, 0, len(d))
	seen := make(map[string]bool, len(OSDetailKeys))
	for _, k := range OSDetailKeys {
		seen[k] = true
		if v, ok := d[k]; ok {
			out = append(out, Pair{Key: k, Value: v})
		}
	}
	extra := make([]string, 0)
	for k := range d {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, Pair{Key: k, Value: d[k]})
	}
	return out
}

// Hotfix dari Win32_QuickFixEngineering (apa adanya)
type Hotfix struct {
	ID          string    `json:"hotfix_id"`
	Description string    `json:"description"`
	InstalledOn string    `json:"installed_on"`
	InstalledAt time.Time `json:"-"` // hasil parse best-effort, zero = tidak dikenal
}

// DotNetVersion satu key registry NDP beserta nilai Version-nya.
type DotNetVersion struct {
	Key      string   `json:"key"`
	Versions []string `json:"versions"`
}

func (v DotNetVersion) String() string {
	return v.Key + ": " + strings.Join(v.Versions, ", ")
}

// Sumber AMSI provider
const (
	SourceSecurityCenter = "SecurityCenter2"
	SourceAMSIRegistry   = "AMSI"
)

type AMSIProvider struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	ID     string `json:"id,omitempty"` // CLSID untuk provider dari registry
}

// AuditSetting satu value di bawah Policies\System
type AuditSetting struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

func (s AuditSetting) String() string {
	return strings.TrimSpace(s.Name + "    " + s.Type + "    " + s.Data)
}

// AutorunEntry satu value di key Run/RunOnce
type AutorunEntry struct {
	Hive       string `json:"hive"`
	Path       string `json:"path"`
	Name       string `json:"name"`
	Executable string `json:"executable"`
	Unquoted   bool   `json:"unquoted"`
}

// StartupEntry satu file di folder Startup
type StartupEntry struct {
	Folder string `json:"folder"`
	File   string `json:"file"`
	Path   string `json:"path"`
}

// Inventory adalah seluruh hasil satu kali run report.
type Inventory struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Hostname    string    `json:"hostname,omitempty"`

	OS       OSDetails               `json:"os"`
	Hotfixes Result[[]Hotfix]        `json:"hotfixes"`
	DotNet   Result[[]DotNetVersion] `json:"dotnet"`
	AMSI     Result[[]AMSIProvider]  `json:"amsi"`
	Audit    Result[[]AuditSetting]  `json:"audit"`
	Autoruns Result[[]AutorunEntry]  `json:"autoruns"`
	Startup  Result[[]StartupEntry]  `json:"startup"`
}
