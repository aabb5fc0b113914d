//go:build windows

package osutils

import "golang.org/x/sys/windows"

// CurrentPrivileges inspects the process token
func CurrentPrivileges() Privileges {
	return Privileges{
		Admin:    inAdministrators(),
		Elevated: windows.GetCurrentProcessToken().IsElevated(),
	}
}

// inAdministrators reports membership of BUILTIN\Administrators. Under UAC a
// filtered token is still a member but not elevated.
func inAdministrators() bool {
	sid, err := windows.CreateWellKnownSid(windows.WinBuiltinAdministratorsSid)
	if err != nil {
		return false
	}
	// the zero token checks the effective token of the calling thread
	member, err := windows.Token(0).IsMember(sid)
	if err != nil {
		return false
	}
	return member
}
