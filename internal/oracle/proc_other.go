//go:build !unix

package oracle

import "os/exec"

// killProcessGroupOnCancel keeps the exec.CommandContext default, which kills
// the child process only.
func killProcessGroupOnCancel(_ *exec.Cmd) {}
