package main

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteinventory/internal/config"
)

func loopbackPorts(t *testing.T) (open, closed int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	tmp, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closed = tmp.Addr().(*net.TCPAddr).Port
	require.NoError(t, tmp.Close())

	return ln.Addr().(*net.TCPAddr).Port, closed
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "siteinventory.yaml")
	cfg := config.DefaultConfig()
	cfg.Probe.Backend = config.BackendTCP
	cfg.Log.Levels = []string{"error", "critical"}
	require.NoError(t, cfg.Save(path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	// progress lines go to a separate buffer written from another goroutine
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Generate(t *testing.T) {
	dir := t.TempDir()
	open, closed := loopbackPorts(t)

	input := filepath.Join(dir, "sites.csv")
	table := fmt.Sprintf("BPO NAME,Primary IP,Primary Port,Secondary IP,Secondary Port\n"+
		"North,127.0.0.1,%d,,\n"+
		"South,127.0.0.1,%d,127.0.0.1,%d\n"+
		"East,127.0.0.1,%d,,\n", open, closed, open, closed)
	require.NoError(t, os.WriteFile(input, []byte(table), 0644))

	out, err := run(t, "--config", writeConfig(t, dir), "--timeout", "1s", input)
	require.NoError(t, err)

	assert.Contains(t, out, "Inventory written to: "+filepath.Join(dir, "sites.yml"))
	assert.Contains(t, out, "Unreachable IPs written to: "+filepath.Join(dir, "sites_unreachable.csv"))

	inv, err := os.ReadFile(filepath.Join(dir, "sites.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(inv), "North_host:")
	assert.Contains(t, string(inv), "South_host:")
	assert.NotContains(t, string(inv), "East")

	sidecar, err := os.ReadFile(filepath.Join(dir, "sites_unreachable.csv"))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("BPO NAME,Primary IP,Primary Port,Secondary IP,Secondary Port\nEast,127.0.0.1,%d,,\n", closed), string(sidecar))
}

func TestRootCmd_AllReachableJSON(t *testing.T) {
	dir := t.TempDir()
	open, _ := loopbackPorts(t)

	input := filepath.Join(dir, "hosts.csv")
	require.NoError(t, os.WriteFile(input, []byte(fmt.Sprintf("BPO NAME,Primary IP,Primary Port\nNorth,127.0.0.1,%d\n", open)), 0644))
	output := filepath.Join(dir, "out", "inventory.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(output), 0755))

	out, err := run(t, "-c", writeConfig(t, dir), "--format", "json", "-o", output, "--progress", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Inventory written to: "+output)
	assert.Contains(t, out, "All hosts reachable and added.")
	assert.FileExists(t, output)
	assert.NoFileExists(t, filepath.Join(dir, "hosts_unreachable.csv"))
}

func TestRootCmd_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "-c", writeConfig(t, dir), filepath.Join(dir, "nope.csv"))
	assert.ErrorContains(t, err, "input table not found")
}

func TestRootCmd_BadFlag(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "-c", writeConfig(t, dir), "--backend", "icmp")
	assert.ErrorContains(t, err, "unknown backend")

	_, err = run(t, "a.csv", "b.csv")
	assert.Error(t, err)
}

func TestInitConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "siteinventory.yaml")

	out, err := run(t, "init-config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Config written to: "+path)

	cfg, _, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendNmap, cfg.Probe.Backend)

	_, err = run(t, "init-config", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "init-config", "--config", path, "--force")
	assert.NoError(t, err)
}
