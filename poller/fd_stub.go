//go:build !linux
// +build !linux

// File: poller/fd_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platforms without the descriptor wait fall back to the probe loop.

package poller

func fdWaitSupported() bool { return false }

func newFDBackend() backend { return newProbeBackend() }
