//go:build windows

package config

import "golang.org/x/sys/windows/registry"

const installKey = `Software\Wow6432Node\Blizzard Entertainment\World of Warcraft`

func registryInstallPath() (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, installKey, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()

	p, _, err := k.GetStringValue("InstallPath")
	return p, err
}
