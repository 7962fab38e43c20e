package main

import (
	"strconv"
)

func parseBoolOption(opt string, defaultTo bool) bool {
	if opt == "" {
		return defaultTo
	}

	p, err := strconv.ParseBool(opt)
	if err != nil {
		return defaultTo
	}
	return p
}
