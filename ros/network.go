package ros

import (
	"net"
	"os"
	"strings"
)

//determineHost picks the address this node advertises to the rest of the
//graph, preferring the ROS_HOSTNAME and ROS_IP environment variables in
//that order. The second return value reports whether the address is only
//reachable from this machine.
func determineHost() (string, bool) {
	if rosHostname, ok := os.LookupEnv("ROS_HOSTNAME"); ok {
		return rosHostname, (rosHostname == "localhost")
	}

	if rosIP, ok := os.LookupEnv("ROS_IP"); ok {
		return rosIP, (rosIP == "::1" || strings.HasPrefix(rosIP, "127."))
	}

	// Try using the hostname
	if osHostname, err := os.Hostname(); err == nil && osHostname != "localhost" {
		return osHostname, false
	}

	// Fall back on the interface IP
	if addrs, err := net.InterfaceAddrs(); err == nil {
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				return ipnet.IP.String(), false
			}
		}
	}
	return "127.0.0.1", true
}
