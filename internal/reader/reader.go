// Package reader turns host text sources into typed raw readings. Readers keep
// no state between calls.
package reader

import (
	"path/filepath"

	"codeberg.org/mutker/sysmond/internal/source"
)

const (
	ProcStat    = "/proc/stat"
	ProcMeminfo = "/proc/meminfo"
	SysClassNet = "/sys/class/net"
)

// StatPath returns the /proc/stat identifier below procRoot.
func StatPath(procRoot string) string {
	return filepath.Join("/", procRoot, ProcStat)
}

// MeminfoPath returns the /proc/meminfo identifier below procRoot.
func MeminfoPath(procRoot string) string {
	return filepath.Join("/", procRoot, ProcMeminfo)
}

// NetStatPath returns the statistics counter identifier of an interface,
// e.g. /sys/class/net/eth0/statistics/rx_bytes.
func NetStatPath(sysRoot, iface, counter string) string {
	return filepath.Join("/", sysRoot, SysClassNet, iface, "statistics", counter)
}

// Reader bundles the capabilities the individual readers need.
type Reader struct {
	Text   source.TextSource
	Stater source.FSStater
}
