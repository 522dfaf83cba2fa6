/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package server

import (
	"sync/atomic"

	"github.com/obonyojimmy/fsearch/config"
	"github.com/obonyojimmy/fsearch/corpus"
	"github.com/obonyojimmy/fsearch/fsearchlog"
	"github.com/obonyojimmy/fsearch/search"
)

// reloadCoordinator owns the per-connection reread policy: for every
// accepted connection it
// re-parses the config file and, if reread_on_query is now true, reloads
// the corpus, publishing both via atomic pointer swap so a worker always
// observes one complete snapshot or the other, never a torn value.
type reloadCoordinator struct {
	configPath string
	overrides  Overrides
	engine     search.Engine
	log        *fsearchlog.Logger

	cfg    atomic.Pointer[config.Config]
	corpus atomic.Pointer[corpus.Snapshot]
}

func newReloadCoordinator(configPath string, overrides Overrides, engine search.Engine, log *fsearchlog.Logger) *reloadCoordinator {
	return &reloadCoordinator{configPath: configPath, overrides: overrides, engine: engine, log: log}
}

func (r *reloadCoordinator) publish(cfg *config.Config) {
	r.cfg.Store(cfg)
}

func (r *reloadCoordinator) publishCorpus(snap *corpus.Snapshot) {
	r.corpus.Store(snap)
}

func (r *reloadCoordinator) currentConfig() *config.Config {
	return r.cfg.Load()
}

func (r *reloadCoordinator) currentCorpus() *corpus.Snapshot {
	return r.corpus.Load()
}

// prepare runs the per-connection reread policy and returns the snapshot a
// worker should search against.
func (r *reloadCoordinator) prepare() *corpus.Snapshot {
	prev := r.currentConfig()
	cfg, err := config.Load(r.configPath)
	if err != nil {
		r.log.Warn("config reread failed, keeping previous snapshot", fsearchlog.KVErr(err))
		cfg = prev
	} else {
		r.overrides.apply(cfg)
		r.publish(cfg)
		if prev == nil || prev.LogLevel != cfg.LogLevel {
			if lerr := r.log.SetLevelString(cfg.LogLevel); lerr != nil {
				r.log.Warn("ignoring invalid log_level from config reread",
					fsearchlog.KV("log_level", cfg.LogLevel))
			}
		}
	}

	if cfg != nil && cfg.RereadOnQuery {
		snap, err := corpus.Read(cfg.LinuxPath, config.DefaultMaxLines)
		if err != nil {
			r.log.Warn("corpus reread failed, keeping previous snapshot", fsearchlog.KVErr(err))
			return r.currentCorpus()
		}
		r.publishCorpus(snap)
		return snap
	}
	return r.currentCorpus()
}
