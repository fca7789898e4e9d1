package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "nble"

// MachineID retrieves an ID identifying this host to the broker. The ID
// is derived from the machine ID and never exposes it directly. The
// hostname is used when no machine ID is available.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil {
		return id[:16]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown"
}
