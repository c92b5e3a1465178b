package discovery

import (
	"strconv"
	"strings"
)

// netstatParser reads `netstat -ano -p TCP`. netstat cannot filter by pid,
// so every connection is listed and the owning pid column is matched here.
//
// Format: Proto  Local Address  Foreign Address  State  PID
type netstatParser struct{}

const (
	netstatColumns     = 5
	netstatProtoColumn = 0
	netstatLocalColumn = 1
	netstatPIDColumn   = 4
)

func (netstatParser) Command(int) (string, []string) {
	return "netstat", []string{"-ano", "-p", "TCP"}
}

func (netstatParser) ParseSockets(output string, pid int) []PortBinding {
	want := strconv.Itoa(pid)
	var bindings []PortBinding
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) != netstatColumns {
			continue
		}
		if !strings.EqualFold(fields[netstatProtoColumn], "TCP") || fields[netstatPIDColumn] != want {
			continue
		}
		for _, port := range loopbackPorts(fields[netstatLocalColumn]) {
			bindings = append(bindings, PortBinding{OwnerPID: pid, Port: port})
		}
	}
	return bindings
}
