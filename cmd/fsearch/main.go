/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/obonyojimmy/fsearch/fsearchlog"
	"github.com/obonyojimmy/fsearch/search"
	"github.com/obonyojimmy/fsearch/server"
	"github.com/obonyojimmy/fsearch/utils"
	"github.com/obonyojimmy/fsearch/version"
)

const defaultConfigLoc = `/etc/fsearch/fsearch.conf`

var (
	confLoc  = flag.String("config-file", defaultConfigLoc, "Location for configuration file")
	verbose  = flag.Bool("v", false, "Display verbose status updates to stdout")
	ver      = flag.Bool("version", false, "Print the version information and exit")
	algoFlag = flag.String("algorithm", "", "Override the configured search algorithm (naive, regex, rabin_karp, kmp, aho_corasick)")

	v bool
)

func init() {
	flag.Parse()
	if *ver {
		version.PrintVersion(os.Stdout)
		os.Exit(0)
	}
	v = *verbose
}

func main() {
	lg := fsearchlog.New(os.Stderr)
	if v {
		lg.SetLevel(fsearchlog.DEBUG)
		lg.AddWriter(os.Stdout)
	}

	var overrides server.Overrides
	if *algoFlag != "" {
		alg, err := search.ParseAlgorithm(*algoFlag)
		if err != nil {
			lg.FatalCode(1, "invalid -algorithm flag", fsearchlog.KVErr(err))
		}
		overrides.Algorithm = &alg
	}

	debugout("Loading configuration from %s\n", *confLoc)
	srv, err := server.NewServer(*confLoc, overrides, server.WithLogger(lg))
	if err != nil {
		lg.FatalCode(1, "failed to initialize server", fsearchlog.KVErr(err))
	}

	if err := srv.Start(); err != nil {
		lg.FatalCode(1, "failed to start server", fsearchlog.KVErr(err))
	}
	debugout("Running\n")

	sig := utils.WaitForQuit()
	debugout("Received %v, shutting down\n", sig)

	if err := srv.Stop(); err != nil {
		lg.Error("error during shutdown", fsearchlog.KVErr(err))
	}
}

func debugout(format string, args ...interface{}) {
	if !v {
		return
	}
	fmt.Printf(format, args...)
}
