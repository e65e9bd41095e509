package session

import (
	"fmt"
	"net"
)

// resolveLocalAddress returns the first non-loopback IPv4 address bound to
// this host, used to compose the transport URI the renderer pulls from.
func resolveLocalAddress() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoLocalAddress, err)
	}

	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		ip4 := ipNet.IP.To4()
		if ip4 == nil {
			continue
		}
		return ip4.String(), nil
	}

	return "", ErrNoLocalAddress
}
