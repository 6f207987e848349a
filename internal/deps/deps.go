package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Requirement defines an external dependency musicclean relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// Module, when set, is a Python module that Command must be able to import.
	Module string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// moduleProbeTimeout bounds a single python import probe.
const moduleProbeTimeout = 20 * time.Second

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch resolved, err := exec.LookPath(cmd); {
		case cmd == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		case req.Module != "":
			status.Available, status.Detail = probeModule(resolved, req.Module)
		default:
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

func probeModule(python, module string) (bool, string) {
	ctx, cancel := context.WithTimeout(context.Background(), moduleProbeTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, python, "-c", "import "+module)
	if out, err := cmd.CombinedOutput(); err != nil {
		detail := strings.TrimSpace(string(out))
		if idx := strings.LastIndex(detail, "\n"); idx >= 0 {
			detail = detail[idx+1:]
		}
		if detail == "" {
			detail = err.Error()
		}
		return false, fmt.Sprintf("python module %q unavailable: %s", module, detail)
	}
	return true, ""
}

// MissingRequired returns the required dependencies that are unavailable.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
