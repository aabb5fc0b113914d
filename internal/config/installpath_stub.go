//go:build !windows

package config

import "errors"

func registryInstallPath() (string, error) {
	return "", errors.New("registry not available on this platform")
}
