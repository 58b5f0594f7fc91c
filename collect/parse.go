package collect

import (
	"sort"
	"strings"
	"time"

	"corp/sysreport/core"
)

/*
   =========================
   Parser output perintah Windows
   - wmic <alias> get <Prop>   -> header + satu nilai per baris
   - reg query <key> [/s]      -> blok "HKEY_..." diikuti baris value
     berindentasi 4 spasi: "<Name>    <REG_TYPE>    <Data>"
   =========================
*/

// ParseWmicValues mengembalikan nilai di bawah header output wmic.
// wmic menulis baris dengan "\r\r\n", jadi semua \r dibuang.
func ParseWmicValues(out string) []string {
	values := make([]string, 0, 4)
	header := true
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\r", ""))
		if line == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		values = append(values, line)
	}
	return values
}

// RegValue satu baris value dari output reg query
type RegValue struct {
	Key  string
	Name string
	Type string
	Data string
}

const regSep = "    " // reg.exe memisahkan kolom dengan 4 spasi

// ParseRegQuery memecah output reg query menjadi daftar value.
// Baris "End of search" dan baris kosong diabaikan; value tanpa key di atasnya
// juga diabaikan.
func ParseRegQuery(out string) []RegValue {
	values := make([]RegValue, 0, 16)
	key := ""
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimRight(raw, "\r \t")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "HKEY_"):
			key = trimmed
			continue
		case strings.HasPrefix(trimmed, "End of search"):
			continue
		case !strings.HasPrefix(line, regSep) || key == "":
			continue
		}

		fields := strings.Split(trimmed, regSep)
		typeIdx := -1
		for i, f := range fields {
			if strings.HasPrefix(strings.TrimSpace(f), "REG_") {
				typeIdx = i
				break
			}
		}
		if typeIdx <= 0 {
			continue
		}
		values = append(values, RegValue{
			Key:  key,
			Name: strings.TrimSpace(strings.Join(fields[:typeIdx], regSep)),
			Type: strings.TrimSpace(fields[typeIdx]),
			Data: strings.TrimSpace(strings.Join(fields[typeIdx+1:], regSep)),
		})
	}
	return values
}

// relativeKey memotong prefix root (case-insensitive) dari path key
func relativeKey(key, root string) string {
	if len(key) >= len(root) && strings.EqualFold(key[:len(root)], root) {
		rel := strings.TrimPrefix(key[len(root):], `\`)
		if rel != "" {
			return rel
		}
	}
	return key
}

// GroupDotNetVersions mengelompokkan value "Version" per key, urutan key
// mengikuti kemunculan pertama, versi di dalam key unik dan terurut.
func GroupDotNetVersions(values []RegValue, root string) []core.DotNetVersion {
	order := make([]string, 0)
	byKey := make(map[string]map[string]bool)
	for _, v := range values {
		if !strings.EqualFold(v.Name, "Version") || v.Data == "" {
			continue
		}
		k := relativeKey(v.Key, root)
		if byKey[k] == nil {
			byKey[k] = make(map[string]bool)
			order = append(order, k)
		}
		byKey[k][v.Data] = true
	}

	out := make([]core.DotNetVersion, 0, len(order))
	for _, k := range order {
		versions := make([]string, 0, len(byKey[k]))
		for v := range byKey[k] {
			versions = append(versions, v)
		}
		sort.Strings(versions)
		out = append(out, core.DotNetVersion{Key: k, Versions: versions})
	}
	return out
}

// AuditSettings mengubah value Policies\System menjadi AuditSetting
func AuditSettings(values []RegValue, root string) []core.AuditSetting {
	out := make([]core.AuditSetting, 0, len(values))
	for _, v := range values {
		key := ""
		if !strings.EqualFold(v.Key, root) {
			key = relativeKey(v.Key, root)
		}
		out = append(out, core.AuditSetting{Key: key, Name: v.Name, Type: v.Type, Data: v.Data})
	}
	return out
}

// parseHotfixDate: parse tanggal InstalledOn sebisanya (format Windows bisa berbeda-beda)
func parseHotfixDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	layouts := []string{
		"1/2/2006", "01/02/2006", "2006-01-02",
		"02 Jan 2006", "Jan 02, 2006", "2.1.2006", "02.01.2006",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return time.Time{} // unknown
}

// isUnquotedExecutablePath: path exe mengandung spasi tapi tidak diberi kutip
func isUnquotedExecutablePath(path string) bool {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, `"`) {
		return false
	}
	low := strings.ToLower(path)
	idx := strings.Index(low, ".exe")
	if idx == -1 {
		return false // tidak menunjuk exe, abaikan
	}
	return strings.Contains(path[:idx+4], " ")
}
