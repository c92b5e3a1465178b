package discovery

import "strings"

// tasklistParser reads `tasklist /v /fo table`.
//
// The table starts with a blank line, a header line and a ruler of '='
// runs. Columns are fixed width and may contain spaces ("System Idle
// Process"), so each row is sliced using the spans of the ruler instead of
// being split on whitespace.
type tasklistParser struct{}

const (
	tasklistImageColumn = 0
	tasklistPIDColumn   = 1
	tasklistUserColumn  = 6
)

type span struct {
	start, end int
}

func (tasklistParser) Command() (string, []string) {
	return "tasklist", []string{"/v", "/fo", "table"}
}

func (tasklistParser) ParseProcesses(output string) []ProcessRecord {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")

	var spans []span
	body := 0
	for i, line := range lines {
		if isRuler(line) {
			spans = rulerSpans(line)
			body = i + 1
			break
		}
	}
	if len(spans) <= tasklistPIDColumn {
		return nil
	}

	var records []ProcessRecord
	for _, line := range lines[body:] {
		if len(line) < spans[tasklistPIDColumn].end {
			continue
		}
		pid, ok := parsePID(columnText(line, spans, tasklistPIDColumn))
		if !ok {
			continue
		}
		image := columnText(line, spans, tasklistImageColumn)
		if image == "" {
			continue
		}
		var owner string
		if len(spans) > tasklistUserColumn {
			owner = columnText(line, spans, tasklistUserColumn)
		}
		records = append(records, ProcessRecord{
			Owner:       owner,
			PID:         pid,
			CommandLine: image,
		})
	}
	return records
}

func isRuler(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	return strings.Trim(line, "= ") == ""
}

func rulerSpans(ruler string) []span {
	var spans []span
	start := -1
	for i, r := range ruler {
		switch {
		case r == '=' && start < 0:
			start = i
		case r != '=' && start >= 0:
			spans = append(spans, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(ruler)})
	}
	return spans
}

// columnText slices column i out of line. The last column runs to the end
// of the line since window titles overflow the ruler.
func columnText(line string, spans []span, i int) string {
	s := spans[i]
	if s.start >= len(line) {
		return ""
	}
	end := s.end
	if i == len(spans)-1 || end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[s.start:end])
}
