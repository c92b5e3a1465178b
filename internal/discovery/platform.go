package discovery

import "runtime"

// Platform selects the listing commands and their output layout.
type Platform int

const (
	// PlatformPOSIX covers macOS and Linux (ps + lsof).
	PlatformPOSIX Platform = iota
	// PlatformWindows uses tasklist + netstat.
	PlatformWindows
)

// ProcessListingParser knows how to list processes on one platform and how
// to read the resulting table.
type ProcessListingParser interface {
	Command() (name string, args []string)
	ParseProcesses(output string) []ProcessRecord
}

// SocketListingParser knows how to list a process's sockets on one platform
// and how to read the resulting table.
type SocketListingParser interface {
	Command(pid int) (name string, args []string)
	ParseSockets(output string, pid int) []PortBinding
}

// DetectPlatform returns the platform of the running host.
func DetectPlatform() Platform {
	return platformFor(runtime.GOOS)
}

func platformFor(goos string) Platform {
	if goos == "windows" {
		return PlatformWindows
	}
	return PlatformPOSIX
}

func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "windows"
	default:
		return "posix"
	}
}

// ProcessParser returns the process listing parser for p.
func (p Platform) ProcessParser() ProcessListingParser {
	if p == PlatformWindows {
		return tasklistParser{}
	}
	return psParser{}
}

// SocketParser returns the socket listing parser for p.
func (p Platform) SocketParser() SocketListingParser {
	if p == PlatformWindows {
		return netstatParser{}
	}
	return lsofParser{}
}

// Patterns returns the executable patterns StarCraft runs under on p.
// tasklist only shows the image name, so Windows matches on that alone.
func (p Platform) Patterns() []string {
	if p == PlatformWindows {
		return []string{"StarCraft.exe"}
	}
	return []string{
		"StarCraft.app/Contents/MacOS/StarCraft", // macOS
		"/StarCraft.exe",                         // Wine
	}
}
