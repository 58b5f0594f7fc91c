package core_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"corp/sysreport/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyInventory() core.Inventory {
	return core.Inventory{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
		Hostname:    "WS-01",
		OS:          core.OSDetails{},
		Hotfixes:    core.OK[[]core.Hotfix](nil),
		DotNet:      core.OK[[]core.DotNetVersion](nil),
		AMSI:        core.OK[[]core.AMSIProvider](nil),
		Audit:       core.OK[[]core.AuditSetting](nil),
		Autoruns:    core.OK[[]core.AutorunEntry](nil),
		Startup:     core.OK[[]core.StartupEntry](nil),
	}
}

func TestWriteHTML_EmptyInventory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, core.WriteHTML(&buf, emptyInventory()))
	html := buf.String()

	require.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	require.Contains(t, html, "</html>")
	require.Contains(t, html, "<title>System Information Report</title>")

	headers := []string{
		"OS Details",
		"Installed Hotfixes",
		"Installed .NET Versions",
		"AMSI Providers",
		"Audit Policy Settings",
		"Registry Auto-Run Entries",
		"Startup Folder Entries",
	}
	last := -1
	for _, h := range headers {
		idx := strings.Index(html, `<button class="collapsible">`+h+`</button>`)
		require.Greater(t, idx, last, "section %q missing or out of order", h)
		last = idx
	}

	placeholders := []string{
		"No OS details found.",
		"No hotfixes found.",
		"No .NET versions found.",
		"No AMSI providers found.",
		"No audit policy settings found.",
		"No auto-run entries found.",
		"No startup folder entries found.",
	}
	for _, p := range placeholders {
		assert.Contains(t, html, p)
	}

	// table of contents links every anchor
	for _, id := range []string{"os-details", "hotfixes", "dotnet-versions", "amsi-providers", "audit-policies", "autorun-entries", "startup-entries"} {
		assert.Contains(t, html, `href="#`+id+`"`)
		assert.Contains(t, html, `id="`+id+`"`)
	}
	assert.Equal(t, strings.Count(html, "<ul>"), strings.Count(html, "</ul>"))
	assert.Equal(t, strings.Count(html, "<div"), strings.Count(html, "</div>"))
}

func TestWriteHTML_Values(t *testing.T) {
	inv := emptyInventory()
	inv.OS = core.OSDetails{core.KeyOS: "Windows", core.KeyBuild: "10.0.19045", core.KeyMachine: "AMD64"}
	inv.Hotfixes = core.OK([]core.Hotfix{
		{ID: "KB5030219", Description: "Security Update", InstalledOn: "9/12/2023", InstalledAt: time.Date(2023, 9, 12, 0, 0, 0, 0, time.UTC)},
		{ID: "KB5029244", Description: "Update", InstalledOn: "8/8/2023", InstalledAt: time.Date(2023, 8, 8, 0, 0, 0, 0, time.UTC)},
	})
	inv.Autoruns = core.OK([]core.AutorunEntry{
		{Hive: "HKLM", Path: `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`, Name: "Evil<script>", Executable: `C:\Program Files\a b.exe`, Unquoted: true},
	})

	var buf bytes.Buffer
	require.NoError(t, core.WriteHTML(&buf, inv))
	html := buf.String()

	assert.Contains(t, html, "HotFixID: KB5030219, Description: Security Update, InstalledOn: 9/12/2023")
	assert.Contains(t, html, "2 hotfixes installed, latest KB5030219 on 2023-09-12")
	assert.Contains(t, html, "Build: 10.0.19045")
	assert.Less(t, strings.Index(html, "OS: Windows"), strings.Index(html, "Machine: AMD64"))
	assert.Less(t, strings.Index(html, "Machine: AMD64"), strings.Index(html, "Build: 10.0.19045"))

	assert.NotContains(t, html, "Evil<script>")
	assert.Contains(t, html, "Evil&lt;script&gt;")
	assert.Contains(t, html, "Unquoted path")
}

func TestSections_Fallbacks(t *testing.T) {
	inv := emptyInventory()
	inv.DotNet = core.Fail[[]core.DotNetVersion](core.Wrap(core.KindCommand, "reg query", errors.New("exit status 1")))
	inv.Startup = core.Fail[[]core.StartupEntry](errors.ErrUnsupported)

	secs := core.Sections(inv)
	require.Len(t, secs, 7)

	dotnet := secs[2]
	assert.Equal(t, core.SectionDotNet, dotnet.ID)
	assert.True(t, dotnet.Failed)
	assert.Equal(t, core.KindCommand, dotnet.Kind)
	assert.Equal(t, "Unable to retrieve .NET versions: command error (reg query): exit status 1", dotnet.Message)

	startup := secs[6]
	assert.False(t, startup.Failed)
	assert.Equal(t, core.KindUnsupported, startup.Kind)
	assert.Equal(t, core.UnsupportedText, startup.Message)

	hotfix := secs[1]
	assert.False(t, hotfix.Failed)
	assert.Equal(t, "No hotfixes found.", hotfix.Message)
}

func TestWriteJSON(t *testing.T) {
	inv := emptyInventory()
	inv.Audit = core.Fail[[]core.AuditSetting](core.Wrap(core.KindAccess, "reg query", errors.New("access denied")))

	var buf bytes.Buffer
	require.NoError(t, core.WriteJSON(&buf, inv, nil, false))

	var out struct {
		Inventory struct {
			RunID string `json:"run_id"`
			Audit struct {
				Error     string `json:"error"`
				ErrorKind string `json:"error_kind"`
			} `json:"audit"`
		} `json:"inventory"`
		Sections []core.Section `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "run-1", out.Inventory.RunID)
	assert.Equal(t, "access", out.Inventory.Audit.ErrorKind)
	assert.Equal(t, "access error (reg query): access denied", out.Inventory.Audit.Error)
	assert.Len(t, out.Sections, 7)
}

func TestPrintSummaryTable(t *testing.T) {
	inv := emptyInventory()
	inv.Hotfixes = core.Fail[[]core.Hotfix](core.Wrap(core.KindQuery, "Win32_QuickFixEngineering", errors.New("boom")))

	var buf bytes.Buffer
	core.PrintSummaryTable(&buf, inv, []core.TaskResult{{ID: "hotfixes", Status: "error"}})
	out := buf.String()
	assert.Contains(t, out, "Installed Hotfixes")
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "Collectors failed")
}
