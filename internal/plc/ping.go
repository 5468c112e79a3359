package plc

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-ping/ping"
)

// Ping probes the PLC host with one ICMP echo before an S7 connect is
// attempted. It separates "host unreachable" from "host up but S7 refused",
// which are different problems to fix on the plant floor.
func Ping(addr string, timeout time.Duration) error {
	host := strings.Split(addr, ":")[0]
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return fmt.Errorf("ping %s: %w", host, err)
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	if err := pinger.Run(); err != nil {
		return fmt.Errorf("ping %s: %w", host, err)
	}
	if pinger.Statistics().PacketsRecv == 0 {
		return fmt.Errorf("ping %s: no reply within %s", host, timeout)
	}
	return nil
}
