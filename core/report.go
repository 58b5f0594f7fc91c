package core

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"
)

// ReportTitle judul dokumen HTML
const ReportTitle = "System Information Report"

// ID anchor section, urutan tetap
const (
	SectionOS       = "os-details"
	SectionHotfixes = "hotfixes"
	SectionDotNet   = "dotnet-versions"
	SectionAMSI     = "amsi-providers"
	SectionAudit    = "audit-policies"
	SectionAutoruns = "autorun-entries"
	SectionStartup  = "startup-entries"
)

// UnsupportedText dipakai untuk section yang tidak bisa dikumpulkan di OS ini
const UnsupportedText = "Not available on this platform."

//go:embed templates/report.html.tmpl
var reportTemplate string

var htmlReport = template.Must(template.New("report").Parse(reportTemplate))

// Section satu bagian report yang sudah siap dirender
type Section struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary,omitempty"`
	Items   []string `json:"items"`
	Message string   `json:"message,omitempty"` // placeholder atau teks error saat Items kosong
	Failed  bool     `json:"failed"`
	Kind    Kind     `json:"error_kind,omitempty"`
}

// Sections menyusun seluruh section report dengan urutan tetap
// (OS, hotfix, .NET, AMSI, audit, autorun, startup) dan memutuskan
// teks fallback per section.
func Sections(inv Inventory) []Section {
	osItems := make([]string, 0, len(inv.OS))
	for _, p := range inv.OS.Pairs() {
		osItems = append(osItems, p.Key+": "+p.Value)
	}

	return []Section{
		{
			ID:      SectionOS,
			Title:   "OS Details",
			Items:   osItems,
			Message: "No OS details found.",
		},
		build(SectionHotfixes, "Installed Hotfixes", "hotfixes", inv.Hotfixes, hotfixSummary, func(h Hotfix) string {
			return fmt.Sprintf("HotFixID: %s, Description: %s, InstalledOn: %s", h.ID, h.Description, h.InstalledOn)
		}),
		build(SectionDotNet, "Installed .NET Versions", ".NET versions", inv.DotNet, nil, DotNetVersion.String),
		build(SectionAMSI, "AMSI Providers", "AMSI providers", inv.AMSI, nil, func(p AMSIProvider) string {
			if p.ID != "" {
				return fmt.Sprintf("%s (%s)", p.Name, p.ID)
			}
			return p.Name
		}),
		build(SectionAudit, "Audit Policy Settings", "audit policy settings", inv.Audit, nil, AuditSetting.String),
		build(SectionAutoruns, "Registry Auto-Run Entries", "auto-run entries", inv.Autoruns, nil, func(e AutorunEntry) string {
			s := fmt.Sprintf("Name: %s, Executable: %s, Path: %s", e.Name, e.Executable, e.Path)
			if e.Hive != "" {
				s += ", Hive: " + e.Hive
			}
			if e.Unquoted {
				s += ", Unquoted path"
			}
			return s
		}),
		build(SectionStartup, "Startup Folder Entries", "startup folder entries", inv.Startup, nil, func(e StartupEntry) string {
			return fmt.Sprintf("File: %s, Path: %s", e.File, e.Path)
		}),
	}
}

func build[T any](id, title, noun string, r Result[[]T], summary func([]T) string, format func(T) string) Section {
	sec := Section{ID: id, Title: title, Items: make([]string, 0, len(r.Value))}
	for _, v := range r.Value {
		sec.Items = append(sec.Items, format(v))
	}
	if summary != nil && len(r.Value) > 0 {
		sec.Summary = summary(r.Value)
	}

	switch {
	case r.Err == nil:
		sec.Message = "No " + noun + " found."
	case r.Kind() == KindUnsupported:
		sec.Kind = KindUnsupported
		sec.Message = UnsupportedText
	default:
		sec.Failed = true
		sec.Kind = r.Kind()
		sec.Message = "Unable to retrieve " + noun + ": " + r.Err.Error()
	}
	return sec
}

// hotfixSummary: jumlah hotfix + KB terbaru (kalau tanggal bisa diparse)
func hotfixSummary(list []Hotfix) string {
	latest := -1
	for i, h := range list {
		if h.InstalledAt.IsZero() {
			continue
		}
		if latest < 0 || h.InstalledAt.After(list[latest].InstalledAt) {
			latest = i
		}
	}
	s := fmt.Sprintf("%d hotfixes installed", len(list))
	if latest >= 0 {
		s += fmt.Sprintf(", latest %s on %s", list[latest].ID, list[latest].InstalledAt.Format("2006-01-02"))
	}
	return s
}

type htmlView struct {
	Title       string
	RunID       string
	Hostname    string
	GeneratedAt string
	Sections    []Section
}

// WriteHTML merender inventory menjadi satu dokumen HTML.
// Nilai dari host di-escape oleh html/template.
func WriteHTML(w io.Writer, inv Inventory) error {
	view := htmlView{
		Title:       ReportTitle,
		RunID:       inv.RunID,
		Hostname:    inv.Hostname,
		GeneratedAt: inv.GeneratedAt.Format(time.RFC3339),
		Sections:    Sections(inv),
	}
	if err := htmlReport.Execute(w, view); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

// JSONReport bentuk keluaran --format json
type JSONReport struct {
	Inventory Inventory    `json:"inventory"`
	Sections  []Section    `json:"sections"`
	Tasks     []TaskResult `json:"tasks,omitempty"`
}

// WriteJSON menulis report ke JSON
func WriteJSON(w io.Writer, inv Inventory, tasks []TaskResult, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if pretty {
		enc.SetIndent("", "  ")
	}

	return enc.Encode(JSONReport{Inventory: inv, Sections: Sections(inv), Tasks: tasks})
}

// PrintSummaryTable mencetak tabel ringkasan ke terminal (user-friendly)
func PrintSummaryTable(w io.Writer, inv Inventory, tasks []TaskResult) {
	fmt.Fprintln(w, "\n"+Colorize("═══════════════════════════════════════════════════════════", ColorCyan))
	fmt.Fprintln(w, Colorize("                  INVENTORY SUMMARY", ColorCyan))
	fmt.Fprintln(w, Colorize("═══════════════════════════════════════════════════════════", ColorCyan))

	fmt.Fprintf(w, "\n%-25s: %s\n", "Generated", inv.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "%-25s: %s\n", "Hostname", inv.Hostname)
	fmt.Fprintf(w, "%-25s: %s\n", "Run ID", inv.RunID)

	fmt.Fprintln(w, "\n"+Colorize("───────────────────────────────────────────────────────────", ColorGray))
	fmt.Fprintln(w, Colorize("  Sections", ColorCyan))
	fmt.Fprintln(w, Colorize("───────────────────────────────────────────────────────────", ColorGray))

	for _, s := range Sections(inv) {
		state := Colorize(fmt.Sprintf("%d", len(s.Items)), ColorGreen)
		switch {
		case s.Failed:
			state = Colorize("ERROR", ColorRed)
		case s.Kind == KindUnsupported:
			state = Colorize("N/A", ColorGray)
		}
		fmt.Fprintf(w, "  %-30s: %s\n", s.Title, state)
	}

	failed := 0
	for _, t := range tasks {
		if t.Status != "ok" && t.Status != "unsupported" {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(w, "\n  %-30s: %s\n", "Collectors failed", Colorize(fmt.Sprintf("%d", failed), ColorYellow))
	}

	fmt.Fprintln(w, "\n"+Colorize("═══════════════════════════════════════════════════════════", ColorCyan))
}
