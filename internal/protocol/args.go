package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadArgument is returned when an argument has the wrong shape.
var ErrBadArgument = errors.New("bad argument")

// StringArg returns args[i] as a string. Numbers are formatted.
func StringArg(args []any, i int) (string, bool) {
	if i < 0 || i >= len(args) {
		return "", false
	}
	switch v := args[i].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	}
	return "", false
}

// IntArg returns args[i] as an int, or def when the argument is absent.
// Accepts integral numbers and numeric strings.
func IntArg(args []any, i int, def int) (int, error) {
	if i < 0 || i >= len(args) {
		return def, nil
	}

	switch v := args[i].(type) {
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrBadArgument, v.String())
		}
		return int(n), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrBadArgument, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrBadArgument, v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: unexpected %T", ErrBadArgument, args[i])
}

// ParseCommandLine splits console input like "forward 3" into a command
// and its arguments. Integer tokens become numbers.
func ParseCommandLine(line string) (command string, args []any) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	command = strings.ToLower(fields[0])
	for _, f := range fields[1:] {
		if n, err := strconv.Atoi(f); err == nil {
			args = append(args, n)
			continue
		}
		args = append(args, f)
	}
	return command, args
}
