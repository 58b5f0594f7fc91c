package collect_test

import (
	"os"
	"path/filepath"
	"testing"

	"corp/sysreport/collect"
	"corp/sysreport/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captured from `wmic os get BuildNumber` on Windows 10 22H2
const wmicBuildOutput = "BuildNumber  \r\r\n19045        \r\r\n\r\r\n"

// captured from `reg query "HKLM\SOFTWARE\Microsoft\NET Framework Setup\NDP" /s /f Version /t REG_SZ`
const regDotNetOutput = "\r\n" +
	"HKEY_LOCAL_MACHINE\\SOFTWARE\\Microsoft\\NET Framework Setup\\NDP\\v2.0.50727\r\n" +
	"    Version    REG_SZ    2.0.50727.4927\r\n" +
	"\r\n" +
	"HKEY_LOCAL_MACHINE\\SOFTWARE\\Microsoft\\NET Framework Setup\\NDP\\v3.0\\Setup\\Windows Communication Foundation\r\n" +
	"    Version    REG_SZ    3.0.4506.4926\r\n" +
	"\r\n" +
	"HKEY_LOCAL_MACHINE\\SOFTWARE\\Microsoft\\NET Framework Setup\\NDP\\v4\\Client\r\n" +
	"    Version    REG_SZ    4.8.04084\r\n" +
	"\r\n" +
	"HKEY_LOCAL_MACHINE\\SOFTWARE\\Microsoft\\NET Framework Setup\\NDP\\v4\\Full\r\n" +
	"    Version    REG_SZ    4.8.04084\r\n" +
	"    TargetVersion    REG_SZ    4.0.0\r\n" +
	"\r\n" +
	"End of search: 5 match(es) found.\r\n"

// captured from `reg query HKLM\Software\Microsoft\Windows\CurrentVersion\Policies\System /s`
const regAuditOutput = "\r\n" +
	"HKEY_LOCAL_MACHINE\\Software\\Microsoft\\Windows\\CurrentVersion\\Policies\\System\r\n" +
	"    ConsentPromptBehaviorAdmin    REG_DWORD    0x5\r\n" +
	"    EnableLUA    REG_DWORD    0x1\r\n" +
	"    legalnoticecaption    REG_SZ    \r\n" +
	"    legalnoticetext    REG_SZ    Authorized    use only\r\n" +
	"\r\n" +
	"HKEY_LOCAL_MACHINE\\Software\\Microsoft\\Windows\\CurrentVersion\\Policies\\System\\Audit\r\n" +
	"\r\n" +
	"HKEY_LOCAL_MACHINE\\Software\\Microsoft\\Windows\\CurrentVersion\\Policies\\System\\UIPI\r\n" +
	"    (Default)    REG_SZ    0x00000000 (0)\r\n"

func TestParseWmicValues(t *testing.T) {
	t.Parallel()
	require.Equal(t, []string{"19045"}, collect.ParseWmicValues(wmicBuildOutput))
	require.Empty(t, collect.ParseWmicValues("BuildNumber\r\r\n\r\r\n"))
	require.Empty(t, collect.ParseWmicValues(""))
}

func TestParseRegQuery(t *testing.T) {
	t.Parallel()

	values := collect.ParseRegQuery(regAuditOutput)
	require.Len(t, values, 5)

	assert.Equal(t, collect.RegValue{
		Key:  `HKEY_LOCAL_MACHINE\Software\Microsoft\Windows\CurrentVersion\Policies\System`,
		Name: "ConsentPromptBehaviorAdmin",
		Type: "REG_DWORD",
		Data: "0x5",
	}, values[0])
	assert.Equal(t, "legalnoticecaption", values[2].Name)
	assert.Equal(t, "", values[2].Data)
	// data yang sendiri berisi 4 spasi tetap utuh
	assert.Equal(t, "Authorized    use only", values[3].Data)
	assert.Equal(t, "(Default)", values[4].Name)
	assert.Equal(t, `HKEY_LOCAL_MACHINE\Software\Microsoft\Windows\CurrentVersion\Policies\System\UIPI`, values[4].Key)
}

func TestParseRegQuery_Garbage(t *testing.T) {
	t.Parallel()
	// baris value tanpa key, dan baris tanpa REG_ type
	out := "    Orphan    REG_SZ    x\r\nHKEY_LOCAL_MACHINE\\X\r\n    no type here\r\n"
	assert.Empty(t, collect.ParseRegQuery(out))
}

func TestGroupDotNetVersions(t *testing.T) {
	t.Parallel()

	got := collect.GroupDotNetVersions(collect.ParseRegQuery(regDotNetOutput), collect.DotNetRoot)
	require.Equal(t, []core.DotNetVersion{
		{Key: `v2.0.50727`, Versions: []string{"2.0.50727.4927"}},
		{Key: `v3.0\Setup\Windows Communication Foundation`, Versions: []string{"3.0.4506.4926"}},
		{Key: `v4\Client`, Versions: []string{"4.8.04084"}},
		{Key: `v4\Full`, Versions: []string{"4.8.04084"}},
	}, got)
	assert.Equal(t, `v4\Full: 4.8.04084`, got[3].String())
}

func TestGroupDotNetVersions_DedupAndSort(t *testing.T) {
	t.Parallel()

	values := []collect.RegValue{
		{Key: collect.DotNetRoot + `\v4\Full`, Name: "Version", Type: "REG_SZ", Data: "4.8.09032"},
		{Key: collect.DotNetRoot + `\v4\Full`, Name: "Version", Type: "REG_SZ", Data: "4.8.04084"},
		{Key: collect.DotNetRoot + `\v4\Full`, Name: "Version", Type: "REG_SZ", Data: "4.8.04084"},
	}
	got := collect.GroupDotNetVersions(values, collect.DotNetRoot)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"4.8.04084", "4.8.09032"}, got[0].Versions)
}

func TestAuditSettings(t *testing.T) {
	t.Parallel()

	got := collect.AuditSettings(collect.ParseRegQuery(regAuditOutput), collect.AuditRoot)
	require.Len(t, got, 5)
	assert.Equal(t, "", got[0].Key)
	assert.Equal(t, "EnableLUA    REG_DWORD    0x1", got[1].String())
	assert.Equal(t, "UIPI", got[4].Key)
}

func TestBuildOSDetails(t *testing.T) {
	t.Parallel()

	called := false
	build := func() (string, error) {
		called = true
		return "19045", nil
	}

	t.Run("non-windows has no build", func(t *testing.T) {
		for _, sys := range []string{"Linux", "Darwin", "FreeBSD", "", "windows"} {
			called = false
			d := collect.BuildOSDetails(collect.Platform{System: sys, Machine: "x86_64"}, build)
			_, ok := d[core.KeyBuild]
			assert.False(t, ok, "system %q", sys)
			assert.False(t, called)
			assert.Equal(t, sys, d[core.KeyOS])
			assert.Len(t, d, 6)
		}
	})

	t.Run("windows build is prefixed", func(t *testing.T) {
		d := collect.BuildOSDetails(collect.Platform{System: "Windows", Release: "10"}, build)
		assert.Equal(t, "10.0.19045", d[core.KeyBuild])
		assert.Equal(t, "10", d[core.KeyRelease])
	})

	t.Run("windows build failure is stored as text", func(t *testing.T) {
		d := collect.BuildOSDetails(collect.Platform{System: "Windows"}, func() (string, error) {
			return "", core.Wrap(core.KindCommand, "wmic", os.ErrNotExist)
		})
		assert.Equal(t, "Error retrieving build number: command error (wmic): file does not exist", d[core.KeyBuild])
	})
}

func TestBuildNumberOf(t *testing.T) {
	t.Parallel()

	n, ok := collect.BuildNumberOf("10.0.22631")
	assert.True(t, ok)
	assert.Equal(t, 22631, n)

	_, ok = collect.BuildNumberOf("22631")
	assert.False(t, ok)
	_, ok = collect.BuildNumberOf("Error retrieving build number: x")
	assert.False(t, ok)
}

func TestProductName(t *testing.T) {
	t.Parallel()

	win := func(build, platform string) core.OSDetails {
		return core.OSDetails{core.KeyOS: "Windows", core.KeyBuild: build, core.KeyPlatformVersion: platform}
	}
	tests := []struct {
		name    string
		details core.OSDetails
		caption string
		want    string
	}{
		{"caption 11", win("10.0.19045", ""), "Microsoft Windows 11 Pro", "Windows 11"},
		{"caption 10", win("10.0.22631", ""), "Microsoft Windows 10 Enterprise", "Windows 10"},
		{"platform 11", win("", "Windows-11-10.0.22631-SP0"), "", "Windows 11"},
		{"build 11", win("10.0.22631", "Windows-10-10.0.22631-SP0"), "", "Windows 11"},
		{"build 10", win("10.0.19045", ""), "", "Windows 10"},
		{"platform 10 only", win("Error retrieving build number: x", "Windows-10-10.0.19045-SP0"), "", "Windows 10"},
		{"unknown windows", win("", ""), "", "Windows"},
		{"linux untouched", core.OSDetails{core.KeyOS: "Linux"}, "", "Linux"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect.ProductName(tt.details, tt.caption))
		})
	}
}

func TestStartupDirs(t *testing.T) {
	t.Parallel()

	env := map[string]string{"APPDATA": filepath.Join("C:", "Users", "bob", "AppData", "Roaming")}
	dirs := collect.StartupDirs(func(k string) string { return env[k] })
	require.Len(t, dirs, 1)
	assert.Equal(t, filepath.Join(env["APPDATA"], "Microsoft", "Windows", "Start Menu", "Programs", "Startup"), dirs[0])

	assert.Empty(t, collect.StartupDirs(func(string) string { return "" }))
}

func TestWalkStartup(t *testing.T) {
	t.Parallel()

	user := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(user, "OneDrive.lnk"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(user, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(user, "nested", "desktop.ini"), []byte("x"), 0o644))

	missing := filepath.Join(t.TempDir(), "does-not-exist")

	entries, err := collect.WalkStartup([]string{user, missing})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// WalkDir berjalan urut leksikal: "OneDrive.lnk" < "nested"
	assert.Equal(t, core.StartupEntry{Folder: user, File: "OneDrive.lnk", Path: filepath.Join(user, "OneDrive.lnk")}, entries[0])
	assert.Equal(t, "desktop.ini", entries[1].File)
	assert.Equal(t, user, entries[1].Folder)
	assert.Equal(t, filepath.Join(user, "nested", "desktop.ini"), entries[1].Path)
}

func TestWalkStartup_Empty(t *testing.T) {
	t.Parallel()
	entries, err := collect.WalkStartup(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
