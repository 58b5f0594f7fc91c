package vuln

import (
	"go.uber.org/zap"

	"corp/sysreport/core"
)

// NoPatchInfo dikembalikan PatchInfo kalau tidak ada patch yang cocok.
const NoPatchInfo = "No patch information available"

const (
	msgVulnerable    = "The system is running a vulnerable version."
	msgNotVulnerable = "The system is not running a vulnerable version."
)

// matches: OS dan Build harus sama persis (case-sensitive); field kosong
// di record tidak pernah cocok. PatchInfo memakai aturan yang sama, jadi
// Version "19045" tidak cocok dengan Build "10.0.19045".
func matches(osInfo core.OSDetails, r Record) bool {
	if r.OS == "" || r.Version == "" {
		return false
	}
	build, ok := osInfo[core.KeyBuild]
	return ok && r.OS == osInfo[core.KeyOS] && r.Version == build
}

func firstMatch(osInfo core.OSDetails, records []Record) (Record, bool) {
	for _, r := range records {
		if matches(osInfo, r) {
			return r, true
		}
	}
	return Record{}, false
}

// CheckVulnerability true kalau ada record dengan OS dan Version sama dengan
// OS dan Build host.
func CheckVulnerability(osInfo core.OSDetails, records []Record) bool {
	_, ok := firstMatch(osInfo, records)
	return ok
}

// PatchInfo mengembalikan Patch record pertama yang cocok, atau NoPatchInfo.
func PatchInfo(osInfo core.OSDetails, records []Record) string {
	r, ok := firstMatch(osInfo, records)
	if !ok || r.Patch == "" {
		return NoPatchInfo
	}
	return r.Patch
}

// Assessment hasil pencocokan yang siap dicetak.
type Assessment struct {
	OS         string `json:"os"`
	Build      string `json:"build"`
	Vulnerable bool   `json:"vulnerable"`
	Patch      string `json:"patch,omitempty"`
	Message    string `json:"message"`
}

// Assess menjalankan CheckVulnerability dan PatchInfo sekaligus dan menyusun
// kalimat hasil untuk konsol.
func Assess(osInfo core.OSDetails, records []Record, logger *zap.Logger) Assessment {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := Assessment{OS: osInfo[core.KeyOS], Build: osInfo[core.KeyBuild]}
	logger.Debug("Checking vulnerability", zap.String("os", a.OS), zap.String("build", a.Build), zap.Int("records", len(records)))

	if !CheckVulnerability(osInfo, records) {
		a.Message = msgNotVulnerable
		logger.Debug("No vulnerability detected", zap.String("os", a.OS), zap.String("build", a.Build))
		return a
	}
	a.Vulnerable = true
	a.Patch = PatchInfo(osInfo, records)
	a.Message = msgVulnerable + " Suggested patch: " + a.Patch
	logger.Debug("Vulnerability detected", zap.String("os", a.OS), zap.String("build", a.Build), zap.String("patch", a.Patch))
	return a
}
