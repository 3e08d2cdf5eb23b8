package main

import (
	"fmt"
	"strconv"
)

func parseIntArg(args []string, valueName string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one argument: the %s", valueName)
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %v", valueName, args[0], err)
	}
	return i, nil
}

func parseBoolArg(args []string, valueName string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("expected exactly one argument: the %s (true/false)", valueName)
	}
	b, err := strconv.ParseBool(args[0])
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %v", valueName, args[0], err)
	}
	return b, nil
}
