/*************************************************************************
 * Copyright 2025 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package tlsutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestEnsureCertsReturnsExisting(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, DefaultCertFile)
	key := filepath.Join(dir, DefaultKeyFile)
	if err := os.WriteFile(cert, []byte("existing-cert"), 0640); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(key, []byte("existing-key"), 0640); err != nil {
		t.Fatalf("write key: %v", err)
	}

	gotCert, gotKey, err := EnsureCerts(dir)
	if err != nil {
		t.Fatalf("EnsureCerts: %v", err)
	}
	if gotCert != cert || gotKey != key {
		t.Fatalf("EnsureCerts = (%q, %q), want (%q, %q)", gotCert, gotKey, cert, key)
	}
	b, _ := os.ReadFile(gotCert)
	if string(b) != "existing-cert" {
		t.Fatalf("EnsureCerts overwrote an existing certificate")
	}
}

func TestEnsureCertsGeneratesWhenMissing(t *testing.T) {
	if _, err := exec.LookPath("openssl"); err != nil {
		t.Skip("openssl not available in this environment")
	}
	dir := t.TempDir()
	certPath, keyPath, err := EnsureCerts(dir)
	if err != nil {
		t.Fatalf("EnsureCerts: %v", err)
	}
	if !fileExists(certPath) || !fileExists(keyPath) {
		t.Fatalf("expected generated cert/key files to exist")
	}
}
