package collect

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"corp/sysreport/core"
)

// startupSubdir relatif terhadap %APPDATA% dan %PROGRAMDATA%
var startupSubdir = filepath.Join("Microsoft", "Windows", "Start Menu", "Programs", "Startup")

// StartupDirs: folder Startup per-user lalu all-users. Env yang kosong dilewati.
func StartupDirs(getenv func(string) string) []string {
	dirs := make([]string, 0, 2)
	for _, env := range []string{"APPDATA", "PROGRAMDATA"} {
		if base := getenv(env); base != "" {
			dirs = append(dirs, filepath.Join(base, startupSubdir))
		}
	}
	return dirs
}

// WalkStartup menelusuri tiap folder secara rekursif dan mencatat semua file.
// Folder yang tidak ada dilewati; error lain dikembalikan bersama entri yang
// sudah terkumpul.
func WalkStartup(dirs []string) ([]core.StartupEntry, error) {
	entries := make([]core.StartupEntry, 0, 8)
	var errs []error
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			entries = append(entries, core.StartupEntry{
				Folder: dir,
				File:   d.Name(),
				Path:   path,
			})
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			kind := core.KindQuery
			if errors.Is(err, os.ErrPermission) {
				kind = core.KindAccess
			}
			errs = append(errs, core.Wrap(kind, dir, err))
		}
	}
	return entries, errors.Join(errs...)
}
