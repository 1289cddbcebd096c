//go:build !unix

package pipeline

import "syscall"

func signalName(sig syscall.Signal) string {
	return sig.String()
}
