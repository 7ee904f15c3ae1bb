//go:build !unix

package llm

import "os/exec"

func configureKill(cmd *exec.Cmd) {}
