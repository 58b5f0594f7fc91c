//go:build unix

package collect

import "golang.org/x/sys/unix"

// probePlatform membaca uname(2)
func probePlatform() Platform {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return fallbackPlatform()
	}
	sys := unix.ByteSliceToString(u.Sysname[:])
	release := unix.ByteSliceToString(u.Release[:])
	machine := unix.ByteSliceToString(u.Machine[:])
	return Platform{
		System:    sys,
		Version:   unix.ByteSliceToString(u.Version[:]),
		Release:   release,
		Platform:  platformString(sys, release, machine),
		Machine:   machine,
		Processor: machine,
	}
}
