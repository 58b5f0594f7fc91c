//go:build !windows && !unix

package collect

func probePlatform() Platform { return fallbackPlatform() }
