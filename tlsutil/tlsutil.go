/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package tlsutil provisions self-signed certificate material for
// local/dev deployments and wraps a plain net.Listener with it.
package tlsutil

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	DefaultCertFile = "server.crt"
	DefaultKeyFile  = "server.key"
	certSubject     = "/C=US/ST=California/L=San Francisco/O=My Company/OU=Org/CN=mydomain.com"
)

var (
	ErrCertGenerateFailed = errors.New("tlsutil: certificate generation failed")
	ErrTLSHandshake       = errors.New("tlsutil: failed to configure TLS listener")
)

// EnsureCerts returns paths to a certificate/key pair rooted at dir. If both
// files already exist they are returned unchanged; an existing pair is never
// overwritten. Otherwise it shells out to openssl to generate a fresh
// self-signed pair, which replaces whichever one of the two files was
// already present.
func EnsureCerts(dir string) (certPath, keyPath string, err error) {
	if dir == "" {
		dir = "."
	}
	certPath = filepath.Join(dir, DefaultCertFile)
	keyPath = filepath.Join(dir, DefaultKeyFile)

	if fileExists(certPath) && fileExists(keyPath) {
		return certPath, keyPath, nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", "", fmt.Errorf("%w: mkdir %s: %v", ErrCertGenerateFailed, dir, err)
	}

	cmd := exec.Command("openssl", "req", "-x509", "-nodes", "-days", "365",
		"-newkey", "rsa:2048", "-keyout", keyPath, "-out", certPath,
		"-subj", certSubject)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", "", fmt.Errorf("%w: %v: %s", ErrCertGenerateFailed, err, out)
	}
	return certPath, keyPath, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Wrap upgrades ln to serve TLS using the certificate/key pair at
// certPath/keyPath.
func Wrap(ln net.Listener, certPath, keyPath string) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTLSHandshake, err)
	}
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}}
	return tls.NewListener(ln, cfg), nil
}
