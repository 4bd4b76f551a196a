package sweep

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// ParseTargets reads "address,count,interval_ms" rows from r, one per
// line. Rows that fail to parse or validate are logged and skipped;
// blank lines are ignored. More than MaxTargets valid rows, duplicate
// addresses, or zero valid rows are errors.
func ParseTargets(r io.Reader) ([]Target, error) {
	var targets []Target
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		target, err := parseRow(text)
		if err != nil {
			log.Errorf("line %d: %v", line, err)
			continue
		}

		ip := target.Addr.IP.String()
		if _, dup := seen[ip]; dup {
			return nil, fmt.Errorf("line %d: duplicate address %s", line, ip)
		}
		seen[ip] = struct{}{}

		targets = append(targets, target)
		if len(targets) > MaxTargets {
			return nil, errTooManyTargets
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(targets) == 0 {
		return nil, errNoTargets
	}
	return targets, nil
}

func parseRow(text string) (Target, error) {
	var target Target

	fields := strings.Split(text, ",")
	if len(fields) != 3 {
		return target, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	ip := net.ParseIP(strings.TrimSpace(fields[0]))
	if ip == nil {
		return target, fmt.Errorf("invalid address %q", fields[0])
	}

	count, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return target, fmt.Errorf("invalid count %q", fields[1])
	}

	interval, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return target, fmt.Errorf("invalid interval %q", fields[2])
	}

	target = Target{
		Addr:     net.IPAddr{IP: ip},
		Count:    count,
		Interval: time.Duration(interval) * time.Millisecond,
	}
	return target, target.Validate()
}
