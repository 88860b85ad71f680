package npxgen

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

var nodeVersionRe = regexp.MustCompile(`v?(\d+)\.(\d+)`)

// CheckNode verifies that node is installed and at least minMajor.
// Returns the reported version on success.
func CheckNode(ctx context.Context, minMajor int) (string, error) {
	out, err := exec.CommandContext(ctx, "node", "--version").Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("node.js not found: install node >= %d from https://nodejs.org/", minMajor)
	}
	return checkNodeVersion(strings.TrimSpace(string(out)), minMajor)
}

func checkNodeVersion(version string, minMajor int) (string, error) {
	matches := nodeVersionRe.FindStringSubmatch(version)
	if len(matches) < 3 {
		return version, nil // can't parse, assume ok
	}
	major, _ := strconv.Atoi(matches[1])
	if major < minMajor {
		return "", fmt.Errorf("node.js %s is too old: install node >= %d from https://nodejs.org/", version, minMajor)
	}
	return version, nil
}
