//go:build windows

package gate

import "os/exec"

// killProcessGroupOnCancel keeps the default kill on Windows, which has no
// Unix process groups. WaitDelay still bounds the wait.
func killProcessGroupOnCancel(*exec.Cmd) {}
