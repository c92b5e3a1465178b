package discovery

import (
	"context"
	"sort"
)

// PortBinding is a loopback port held by a process.
type PortBinding struct {
	OwnerPID int `json:"owner_pid"`
	Port     int `json:"port"`
}

// ListOpenPorts returns the unique loopback ports held by pid, sorted. An
// empty result is not an error: the game may not have opened its API socket
// yet.
func ListOpenPorts(ctx context.Context, runner Runner, parser SocketListingParser, pid int) ([]int, error) {
	name, args := parser.Command(pid)
	out, err := runner.Run(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return CandidatePorts(parser.ParseSockets(out, pid)), nil
}

// CandidatePorts collapses bindings into a sorted set of port numbers. A
// process may hold the same port on several rows (TCP and UDP, or a listener
// plus its connections).
func CandidatePorts(bindings []PortBinding) []int {
	seen := make(map[int]bool)
	ports := make([]int, 0, len(bindings))
	for _, b := range bindings {
		if !seen[b.Port] {
			seen[b.Port] = true
			ports = append(ports, b.Port)
		}
	}
	sort.Ints(ports)
	return ports
}
