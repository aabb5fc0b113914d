//go:build !windows

package osutils

import "os"

// CurrentPrivileges treats root as both admin and elevated
func CurrentPrivileges() Privileges {
	root := os.Geteuid() == 0
	return Privileges{Admin: root, Elevated: root}
}
