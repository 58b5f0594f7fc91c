// Package collect mengumpulkan data konfigurasi OS/keamanan host.
// Setiap collector berdiri sendiri: satu query eksternal, satu hasil.
// Di luar Windows collector mengembalikan error berjenis unsupported.
package collect

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"corp/sysreport/core"
)

// Registry root yang dibaca lewat reg.exe
const (
	DotNetRoot = `HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\NET Framework Setup\NDP`
	AuditRoot  = `HKEY_LOCAL_MACHINE\Software\Microsoft\Windows\CurrentVersion\Policies\System`
)

// Collector memegang dependensi bersama semua collector.
type Collector struct {
	log    *zap.Logger
	runner Runner
	getenv func(string) string
}

// Option mengubah Collector saat dibuat (dipakai test).
type Option func(*Collector)

// WithRunner mengganti runner perintah eksternal.
func WithRunner(r Runner) Option { return func(c *Collector) { c.runner = r } }

// WithGetenv mengganti sumber environment variable.
func WithGetenv(fn func(string) string) Option { return func(c *Collector) { c.getenv = fn } }

// New membuat Collector; logger nil berarti tanpa log.
func New(logger *zap.Logger, opts ...Option) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		log:    logger.Named("collect"),
		runner: ExecRunner{},
		getenv: os.Getenv,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OSDetails mengambil identitas OS. Tidak pernah gagal: kegagalan build
// number disimpan sebagai teks di field Build.
func (c *Collector) OSDetails(ctx context.Context) core.OSDetails {
	p := probePlatform()
	d := BuildOSDetails(p, func() (string, error) { return c.buildNumber(ctx) })
	if b, ok := d[core.KeyBuild]; ok {
		c.log.Debug("os details collected", zap.String("os", p.System), zap.String("build", b))
	} else {
		c.log.Debug("os details collected", zap.String("os", p.System))
	}
	return d
}

// buildNumber: `wmic os get BuildNumber`, fallback ke registry CurrentBuildNumber
func (c *Collector) buildNumber(ctx context.Context) (string, error) {
	n, err := c.wmicBuildNumber(ctx)
	if err == nil {
		return n, nil
	}
	c.log.Warn("wmic build number failed, trying registry", zap.Error(err))
	rn, rerr := registryBuildNumber()
	if rerr == nil {
		return rn, nil
	}
	err = errors.Join(err, rerr)
	c.log.Error("Error retrieving build number", zap.Error(err))
	return "", err
}

func (c *Collector) wmicBuildNumber(ctx context.Context) (string, error) {
	out, err := c.runner.Run(ctx, "wmic", "os", "get", "BuildNumber")
	if err != nil {
		return "", err
	}
	values := ParseWmicValues(out)
	if len(values) == 0 {
		return "", core.Wrap(core.KindParse, "wmic", errEmptyOutput)
	}
	return values[0], nil
}

// ProductName = ProductName(details, caption WMI) untuk vulncheck.
func (c *Collector) ProductName(ctx context.Context, d core.OSDetails) string {
	caption, err := osCaption()
	if err != nil {
		c.log.Debug("os caption unavailable", zap.Error(err))
	}
	return ProductName(d, caption)
}

// Hotfixes: Win32_QuickFixEngineering
func (c *Collector) Hotfixes(ctx context.Context) core.Result[[]core.Hotfix] {
	list, err := queryHotfixes()
	if err != nil {
		return core.Fail[[]core.Hotfix](err)
	}
	for i := range list {
		list[i].InstalledAt = parseHotfixDate(list[i].InstalledOn)
	}
	c.log.Debug("hotfixes collected", zap.Int("count", len(list)))
	return core.OK(list)
}

// DotNetVersions: reg query NDP /s /f Version /t REG_SZ
func (c *Collector) DotNetVersions(ctx context.Context) core.Result[[]core.DotNetVersion] {
	if !isWindows {
		return core.Fail[[]core.DotNetVersion](unsupported("reg query"))
	}
	return c.dotNetVersions(ctx)
}

func (c *Collector) dotNetVersions(ctx context.Context) core.Result[[]core.DotNetVersion] {
	values, err := c.regQuery(ctx, DotNetRoot, "/s", "/f", "Version", "/t", "REG_SZ")
	if err != nil {
		return core.Fail[[]core.DotNetVersion](err)
	}
	versions := GroupDotNetVersions(values, DotNetRoot)
	c.log.Debug(".NET versions collected", zap.Int("count", len(versions)))
	return core.OK(versions)
}

// AuditPolicy: reg query Policies\System /s
func (c *Collector) AuditPolicy(ctx context.Context) core.Result[[]core.AuditSetting] {
	if !isWindows {
		return core.Fail[[]core.AuditSetting](unsupported("reg query"))
	}
	return c.auditPolicy(ctx)
}

func (c *Collector) auditPolicy(ctx context.Context) core.Result[[]core.AuditSetting] {
	values, err := c.regQuery(ctx, AuditRoot, "/s")
	if err != nil {
		return core.Fail[[]core.AuditSetting](err)
	}
	settings := AuditSettings(values, AuditRoot)
	c.log.Debug("audit policy collected", zap.Int("count", len(settings)))
	return core.OK(settings)
}

// regQuery menjalankan reg.exe; key yang tidak ada = hasil kosong, bukan error
func (c *Collector) regQuery(ctx context.Context, key string, args ...string) ([]RegValue, error) {
	out, err := c.runner.Run(ctx, "reg", append([]string{"query", key}, args...)...)
	if err != nil {
		if isKeyNotFound(err) {
			c.log.Debug("registry key not found", zap.String("key", key))
			return nil, nil
		}
		c.log.Error("reg query failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return ParseRegQuery(out), nil
}

// AMSIProviders: produk AV dari SecurityCenter2 + provider AMSI terdaftar.
// Gagal hanya kalau dua-duanya gagal.
func (c *Collector) AMSIProviders(ctx context.Context) core.Result[[]core.AMSIProvider] {
	av, avErr := queryAVProducts()
	if avErr != nil {
		c.warn("SecurityCenter2 query failed", avErr)
	}
	reg, regErr := readAMSIProviders()
	if regErr != nil {
		c.warn("AMSI provider registry read failed", regErr)
	}
	if avErr != nil && regErr != nil {
		return core.Fail[[]core.AMSIProvider](avErr)
	}
	return core.OK(append(av, reg...))
}

// Autoruns: Run/RunOnce di HKLM/HKCU (termasuk WOW6432Node)
func (c *Collector) Autoruns(ctx context.Context) core.Result[[]core.AutorunEntry] {
	entries, err := readAutoruns()
	if err != nil {
		c.warn("autorun enumeration incomplete", err)
	}
	if err != nil && len(entries) == 0 {
		return core.Fail[[]core.AutorunEntry](err)
	}
	for i := range entries {
		entries[i].Unquoted = isUnquotedExecutablePath(entries[i].Executable)
	}
	return core.OK(entries)
}

// StartupEntries: isi folder Startup per-user dan all-users
func (c *Collector) StartupEntries(ctx context.Context) core.Result[[]core.StartupEntry] {
	if !isWindows {
		return core.Fail[[]core.StartupEntry](unsupported("startup folders"))
	}
	return c.startupEntries()
}

func (c *Collector) startupEntries() core.Result[[]core.StartupEntry] {
	entries, err := WalkStartup(StartupDirs(c.getenv))
	if err != nil {
		c.log.Warn("startup folder walk incomplete", zap.Error(err))
	}
	return core.From(entries, err)
}

// warn: error unsupported cukup di level debug
func (c *Collector) warn(msg string, err error) {
	if core.KindOf(err) == core.KindUnsupported {
		c.log.Debug(msg, zap.Error(err))
		return
	}
	c.log.Warn(msg, zap.Error(err))
}
