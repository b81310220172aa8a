// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package compiler

import (
	"path/filepath"
)

func getDefaultRoots(lookup func(string) (string, bool)) []string {
	userprofile, _ := lookup("USERPROFILE")
	systemdrive, _ := lookup("SystemDrive")

	dataDirs := []string{
		filepath.Join(userprofile, "AppData", "Local", "agsscript"),
		filepath.Join(systemdrive, "ProgramData", "agsscript"),
	}

	return dataDirs
}

func getSystemRoot(lookup func(string) (string, bool)) string {
	systemdrive, ok := lookup("SystemDrive")
	if !ok {
		systemdrive = "C:"
	}
	return systemdrive + `\`
}
