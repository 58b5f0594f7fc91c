//go:build windows

package collect

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/yusufpapurcu/wmi"       // WMI client
	"golang.org/x/sys/windows"          // RtlGetVersion
	"golang.org/x/sys/windows/registry" // akses Registry Windows (read-only)

	"corp/sysreport/core"
)

const isWindows = true

/*
   =========================
   Sumber data Windows
   - WMI root\cimv2: Win32_OperatingSystem, Win32_QuickFixEngineering
   - WMI root\SecurityCenter2: AntiVirusProduct
   - Registry: Run/RunOnce, AMSI\Providers, CurrentVersion
   =========================
*/

// wmi class: Win32_QuickFixEngineering
type qfe struct {
	HotFixID    *string // mis. "KB5030219"
	Description *string // "Security Update", "Update", ...
	InstalledOn *string // tanggal (string, format bervariasi)
}

// wmi class: Win32_OperatingSystem (cukup Caption)
type wmiOS struct {
	Caption *string // mis. "Microsoft Windows 11 Home"
}

// SecurityCenter2\AntiVirusProduct (kadang butuh elevation di OS lama)
type wmiAV struct {
	DisplayName *string
}

// safeS: deref *string -> "" jika nil
func safeS(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func probePlatform() Platform {
	v := windows.RtlGetVersion()
	version := fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)

	release := fmt.Sprintf("%d", v.MajorVersion)
	if v.MajorVersion == 10 && v.BuildNumber >= win11FirstBuild {
		release = "11"
	}

	sp := fmt.Sprintf("SP%d", v.ServicePackMajor)

	machine := os.Getenv("PROCESSOR_ARCHITEW6432") // proses 32-bit di OS 64-bit
	if machine == "" {
		machine = os.Getenv("PROCESSOR_ARCHITECTURE")
	}
	if machine == "" {
		machine = runtime.GOARCH
	}

	return Platform{
		System:    "Windows",
		Version:   version,
		Release:   release,
		Platform:  platformString("Windows", release, version, sp),
		Machine:   machine,
		Processor: os.Getenv("PROCESSOR_IDENTIFIER"),
	}
}

// registryBuildNumber: HKLM\...\Windows NT\CurrentVersion\CurrentBuildNumber
func registryBuildNumber() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		return "", registryErr(`Windows NT\CurrentVersion`, err)
	}
	defer k.Close()

	n, _, err := k.GetStringValue("CurrentBuildNumber")
	if err != nil {
		return "", registryErr("CurrentBuildNumber", err)
	}
	return strings.TrimSpace(n), nil
}

func osCaption() (string, error) {
	var rows []wmiOS
	if err := wmi.QueryNamespace(`SELECT Caption FROM Win32_OperatingSystem`, &rows, `root\cimv2`); err != nil {
		return "", core.Wrap(core.KindQuery, "Win32_OperatingSystem", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return safeS(rows[0].Caption), nil
}

func queryHotfixes() ([]core.Hotfix, error) {
	var items []qfe
	q := "SELECT HotFixID, Description, InstalledOn FROM Win32_QuickFixEngineering"
	if err := wmi.QueryNamespace(q, &items, `root\cimv2`); err != nil {
		return nil, core.Wrap(core.KindQuery, "Win32_QuickFixEngineering", err)
	}

	list := make([]core.Hotfix, 0, len(items))
	for _, it := range items {
		list = append(list, core.Hotfix{
			ID:          safeS(it.HotFixID),
			Description: safeS(it.Description),
			InstalledOn: safeS(it.InstalledOn),
		})
	}
	return list, nil
}

func queryAVProducts() ([]core.AMSIProvider, error) {
	var rows []wmiAV
	q := `SELECT DisplayName FROM AntiVirusProduct`
	if err := wmi.QueryNamespace(q, &rows, `root\SecurityCenter2`); err != nil {
		// Windows Server tidak punya SecurityCenter2
		return nil, core.Wrap(core.KindQuery, "SecurityCenter2", err)
	}

	out := make([]core.AMSIProvider, 0, len(rows))
	for _, r := range rows {
		name := safeS(r.DisplayName)
		if name == "" {
			continue
		}
		out = append(out, core.AMSIProvider{Name: name, Source: core.SourceSecurityCenter})
	}
	return out, nil
}

// readAMSIProviders: subkey HKLM\SOFTWARE\Microsoft\AMSI\Providers = CLSID,
// nama diambil dari default value HKLM\SOFTWARE\Classes\CLSID\{clsid}
func readAMSIProviders() ([]core.AMSIProvider, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\AMSI\Providers`, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil, nil
		}
		return nil, registryErr(`AMSI\Providers`, err)
	}
	defer k.Close()

	clsids, err := k.ReadSubKeyNames(0)
	if err != nil {
		return nil, registryErr(`AMSI\Providers`, err)
	}

	out := make([]core.AMSIProvider, 0, len(clsids))
	for _, id := range clsids {
		out = append(out, core.AMSIProvider{
			Name:   clsidName(id),
			Source: core.SourceAMSIRegistry,
			ID:     id,
		})
	}
	return out, nil
}

func clsidName(id string) string {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Classes\CLSID\`+id, registry.QUERY_VALUE)
	if err != nil {
		return id
	}
	defer k.Close()
	name, _, err := k.GetStringValue("")
	if err != nil || strings.TrimSpace(name) == "" {
		return id
	}
	return strings.TrimSpace(name)
}

// lokasi autoruns yang discan
var autorunLocations = []struct {
	root registry.Key // hive (HKLM/HKCU)
	hive string
	path string // subkey path
}{
	{registry.LOCAL_MACHINE, "HKLM", `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`},
	{registry.LOCAL_MACHINE, "HKLM", `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Run`},
	{registry.LOCAL_MACHINE, "HKLM", `SOFTWARE\Microsoft\Windows\CurrentVersion\RunOnce`},
	{registry.LOCAL_MACHINE, "HKLM", `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\RunOnce`},
	{registry.CURRENT_USER, "HKCU", `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`},
	{registry.CURRENT_USER, "HKCU", `SOFTWARE\Microsoft\Windows\CurrentVersion\RunOnce`},
}

// readAutoruns: key yang tidak ada dilewati, error lain dikumpulkan
func readAutoruns() ([]core.AutorunEntry, error) {
	all := make([]core.AutorunEntry, 0, 32)
	var errs []error

	for _, loc := range autorunLocations {
		// buka key dengan QUERY_VALUE agar read-only
		k, err := registry.OpenKey(loc.root, loc.path, registry.QUERY_VALUE)
		if err != nil {
			if !errors.Is(err, registry.ErrNotExist) {
				errs = append(errs, registryErr(loc.hive+`\`+loc.path, err))
			}
			continue
		}
		// pastikan key ditutup
		func() {
			defer k.Close()

			names, err := k.ReadValueNames(0)
			if err != nil {
				errs = append(errs, registryErr(loc.hive+`\`+loc.path, err))
				return
			}
			for _, n := range names {
				// bukan string (REG_BINARY dsb) -> skip
				val, typ, err := k.GetStringValue(n)
				if err != nil || strings.TrimSpace(val) == "" {
					continue
				}
				if typ == registry.EXPAND_SZ {
					if exp, err := registry.ExpandString(val); err == nil {
						val = exp
					}
				}
				all = append(all, core.AutorunEntry{
					Hive:       loc.hive,
					Path:       loc.path,
					Name:       n,
					Executable: strings.TrimSpace(val),
				})
			}
		}()
	}
	return all, errors.Join(errs...)
}

// registryErr memetakan error registry ke Kind
func registryErr(source string, err error) error {
	kind := core.KindQuery
	if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
		kind = core.KindAccess
	}
	return core.Wrap(kind, source, err)
}
