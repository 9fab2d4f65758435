// Copyright 2024 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

//go:build windows

package hidecmd

import (
	"os/exec"
	"syscall"
)

// Hide adds a flag to hide any console window from being
// displayed, if necessary for the platform
func Hide(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
