/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package server implements the listener, per-connection worker, hot-reload
// coordinator and lifecycle controller: the parts of fsearch that turn a
// config file and a corpus file into a running TCP (or TLS) service.
package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/obonyojimmy/fsearch/config"
	"github.com/obonyojimmy/fsearch/corpus"
	"github.com/obonyojimmy/fsearch/fsearchlog"
	"github.com/obonyojimmy/fsearch/search"
	"github.com/obonyojimmy/fsearch/tlsutil"
)

// MaxPayload bounds a single request read.
const MaxPayload = 1024

// shutdownGrace bounds how long Stop waits for in-flight workers to finish
// on their own before forcing their connections closed.
const shutdownGrace = 5 * time.Second

var (
	ErrBind = errors.New("server: failed to bind listener")
)

// Overrides lets a caller adjust the parsed config without editing the
// file on disk; every field is optional (nil means "use the config file's
// value").
type Overrides struct {
	Host      *string
	Port      *int
	SSL       *bool
	Algorithm *search.Algorithm
}

func (o Overrides) apply(c *config.Config) {
	if o.Host != nil {
		c.Host = *o.Host
	}
	if o.Port != nil {
		c.Port = *o.Port
	}
	if o.SSL != nil {
		c.SSL = *o.SSL
	}
}

// Server owns one listening socket and its accept loop.
type Server struct {
	configPath string
	overrides  Overrides
	log        *fsearchlog.Logger
	certDir    string

	lifecycle lifecycle
	conns     *connTracker

	mtx sync.Mutex
	ln  net.Listener

	wg sync.WaitGroup

	reload *reloadCoordinator
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithLogger overrides the default discard logger.
func WithLogger(l *fsearchlog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithCertDir overrides where self-signed certificate material is
// generated when the config enables TLS without existing material.
func WithCertDir(dir string) Option {
	return func(s *Server) { s.certDir = dir }
}

// NewServer loads configPath once, failing on a missing or malformed file
// so a broken deployment dies at startup rather than at first query,
// applies overrides, and returns a Server ready to Start. It does not bind
// a socket yet.
func NewServer(configPath string, overrides Overrides, opts ...Option) (*Server, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	overrides.apply(cfg)

	if cfg.LinuxPath == "" {
		return nil, fmt.Errorf("config: linuxpath is required")
	}
	snap, err := corpus.Read(cfg.LinuxPath, config.DefaultMaxLines)
	if err != nil {
		return nil, err
	}

	alg := search.DefaultAlgorithm
	if overrides.Algorithm != nil {
		alg = *overrides.Algorithm
	} else if v, ok := cfg.Extra["search_algorithm"]; ok && len(v) > 0 {
		if parsed, err := search.ParseAlgorithm(v[0]); err == nil {
			alg = parsed
		}
	}
	engine, err := search.New(alg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		configPath: configPath,
		overrides:  overrides,
		log:        fsearchlog.NewDiscard(),
		certDir:    config.DefaultCertDir,
		conns:      newConnTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if lvl, err := fsearchlog.LevelFromString(cfg.LogLevel); err == nil {
		s.log.SetLevel(lvl)
	}

	s.reload = newReloadCoordinator(configPath, overrides, engine, s.log)
	s.reload.publish(cfg)
	s.reload.publishCorpus(snap)

	return s, nil
}

// Start binds the listener (wrapping it in TLS if configured) and begins
// accepting connections in a background goroutine. It returns once the
// socket is bound; it does not block for the lifetime of the server.
func (s *Server) Start() error {
	cfg := s.reload.currentConfig()

	ln, err := bind(cfg.Host, cfg.Port)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBind, err)
	}
	s.lifecycle.set(stateBound)

	if cfg.SSL {
		certPath := cfg.CertFile
		keyPath := cfg.KeyFile
		if !fileExists(certPath) || !fileExists(keyPath) {
			certPath, keyPath, err = tlsutil.EnsureCerts(s.certDir)
			if err != nil {
				ln.Close()
				return err
			}
		}
		tln, err := tlsutil.Wrap(ln, certPath, keyPath)
		if err != nil {
			ln.Close()
			return err
		}
		ln = tln
	}

	s.mtx.Lock()
	s.ln = ln
	s.mtx.Unlock()

	s.lifecycle.set(stateAccepting)
	s.log.Info("accepting connections", fsearchlog.KV("addr", ln.Addr().String()))

	s.wg.Add(1)
	go s.acceptLoop(ln)
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	var failCount int
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.lifecycle.is(stateStopping) || s.lifecycle.is(stateClosed) || errors.Is(err, net.ErrClosed) {
				return
			}
			// Transient accept failures (EMFILE, peer reset during the
			// handshake) must not kill a healthy listener; give up only
			// if they repeat with no successful accept in between.
			failCount++
			s.log.Error("accept failed", fsearchlog.KVErr(err))
			if failCount > 3 {
				s.log.Error("too many consecutive accept failures, stopping listener")
				return
			}
			continue
		}
		failCount = 0
		id := s.conns.add(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.conns.del(id)
			s.handleConn(conn)
		}()
	}
}

// Stop flips the lifecycle to stopping and closes the listening socket,
// which unblocks Accept in the loop goroutine without touching any
// in-flight connection. Workers already dispatched are allowed to finish
// on their own; only if one is still running after shutdownGrace does Stop
// force its connection closed. Safe to call more than once.
func (s *Server) Stop() error {
	if s.lifecycle.is(stateClosed) {
		return nil
	}
	s.lifecycle.set(stateStopping)

	s.mtx.Lock()
	ln := s.ln
	s.mtx.Unlock()
	if ln != nil {
		_ = ln.Close()
	}

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(shutdownGrace):
		s.log.Warn("shutdown grace period expired, forcing remaining connections closed",
			fsearchlog.KV("active", s.conns.count()))
		s.conns.closeAll()
		<-drained
	}

	s.lifecycle.set(stateClosed)
	s.log.Info("server stopped")
	return nil
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}

// bind opens a TCP socket directly via the raw syscalls instead of
// net.ListenConfig.Listen, because net.Listen's backlog is always the
// kernel's somaxconn default and gives no way to cap the accept queue at
// the configured connection limit. Socket, SO_REUSEADDR/SO_REUSEPORT,
// Bind and Listen are all done on the raw fd, which is then handed to
// net.FileListener so the rest of the server sees an ordinary
// net.Listener.
func bind(host string, port int) (net.Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, err
	}

	domain := unix.AF_INET
	var sa unix.Sockaddr
	if ip4 := tcpAddr.IP.To4(); ip4 != nil || tcpAddr.IP == nil {
		s4 := &unix.SockaddrInet4{Port: tcpAddr.Port}
		if ip4 != nil {
			copy(s4.Addr[:], ip4)
		}
		sa = s4
	} else {
		domain = unix.AF_INET6
		s6 := &unix.SockaddrInet6{Port: tcpAddr.Port}
		copy(s6.Addr[:], tcpAddr.IP.To16())
		sa = s6
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt SO_REUSEPORT: %w", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", tcpAddr, err)
	}
	if err := unix.Listen(fd, config.DefaultMaxConn); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen: %w", err)
	}

	// net.FileListener dups the fd internally, so the os.File (and the fd
	// it owns) must be closed here regardless of success.
	f := os.NewFile(uintptr(fd), fmt.Sprintf("fsearch-listener-%s", tcpAddr))
	defer f.Close()
	return net.FileListener(f)
}
