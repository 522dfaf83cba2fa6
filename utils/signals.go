/*************************************************************************
 * Copyright 2019 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package utils holds small process-level helpers shared by the fsearch
// command, starting with graceful-shutdown signal handling.
package utils

import (
	"os"
	"os/signal"
	"syscall"
)

// WaitForQuit blocks until the process receives SIGHUP, SIGINT, SIGQUIT or
// SIGTERM, returning the signal received. fsearch's lifecycle controller
// (server.Server.Stop) does the actual draining; this only tells
// cmd/fsearch when to call it. SIGKILL is deliberately not in the
// Notify set: the kernel never delivers a caught SIGKILL to begin with,
// so listening for it is a no-op.
func WaitForQuit() os.Signal {
	quitSig := make(chan os.Signal, 1)
	defer close(quitSig)
	signal.Notify(quitSig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	return <-quitSig
}
