package discovery

import (
	"regexp"
	"strconv"
	"strings"
)

// loopbackAddr matches a loopback host:port pair such as localhost:6112 or
// 127.0.0.1:6112.
var loopbackAddr = regexp.MustCompile(`(?:localhost|127\.0\.0\.1):([0-9]+)`)

// loopbackPorts returns every port bound to a loopback host in addr. An lsof
// connection name like localhost:1->localhost:2 yields both ports.
func loopbackPorts(addr string) []int {
	var ports []int
	for _, match := range loopbackAddr.FindAllStringSubmatch(addr, -1) {
		if port, ok := parsePort(match[1]); ok {
			ports = append(ports, port)
		}
	}
	return ports
}

func parsePort(s string) (int, bool) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, false
	}
	return port, true
}

func parsePID(s string) (int, bool) {
	pid, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// psParser reads `ps aux`.
//
// Format: USER PID %CPU %MEM VSZ RSS TT STAT STARTED TIME COMMAND
// The command is the trailing variable-width column and may contain spaces.
type psParser struct{}

const (
	psHeaderLines   = 1
	psOwnerColumn   = 0
	psPIDColumn     = 1
	psCommandColumn = 10
)

func (psParser) Command() (string, []string) {
	return "ps", []string{"aux"}
}

func (psParser) ParseProcesses(output string) []ProcessRecord {
	var records []ProcessRecord
	for i, line := range strings.Split(output, "\n") {
		if i < psHeaderLines {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) <= psCommandColumn {
			continue
		}
		pid, ok := parsePID(fields[psPIDColumn])
		if !ok {
			continue
		}
		records = append(records, ProcessRecord{
			Owner:       fields[psOwnerColumn],
			PID:         pid,
			CommandLine: strings.Join(fields[psCommandColumn:], " "),
		})
	}
	return records
}

// lsofParser reads `lsof -aPi -p <pid>`.
//
// Format: COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME [STATE]
// Host names are resolved (no -n) so loopback shows up as localhost; ports
// are numeric (-P).
type lsofParser struct{}

const (
	lsofPIDColumn  = 1
	lsofNameColumn = 8
	lsofMinColumns = 9
	lsofMaxColumns = 10
)

func (lsofParser) Command(pid int) (string, []string) {
	return "lsof", []string{"-aPi", "-p", strconv.Itoa(pid)}
}

func (lsofParser) ParseSockets(output string, pid int) []PortBinding {
	var bindings []PortBinding
	for i, line := range strings.Split(output, "\n") {
		if i == 0 {
			continue // header
		}
		fields := strings.Fields(line)
		if len(fields) < lsofMinColumns || len(fields) > lsofMaxColumns {
			continue
		}
		owner, ok := parsePID(fields[lsofPIDColumn])
		if !ok || owner != pid {
			continue
		}
		for _, port := range loopbackPorts(fields[lsofNameColumn]) {
			bindings = append(bindings, PortBinding{OwnerPID: owner, Port: port})
		}
	}
	return bindings
}
