//go:build !windows

package collect

import "corp/sysreport/core"

const isWindows = false

func registryBuildNumber() (string, error) { return "", unsupported("registry") }

func osCaption() (string, error) { return "", unsupported("Win32_OperatingSystem") }

func queryHotfixes() ([]core.Hotfix, error) {
	return nil, unsupported("Win32_QuickFixEngineering")
}

func queryAVProducts() ([]core.AMSIProvider, error) {
	return nil, unsupported("SecurityCenter2")
}

func readAMSIProviders() ([]core.AMSIProvider, error) {
	return nil, unsupported("registry")
}

func readAutoruns() ([]core.AutorunEntry, error) {
	return nil, unsupported("registry")
}
