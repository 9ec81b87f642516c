package config

import (
	"fmt"
	"log"
)

// exit is swapped in tests.
var exit = func(msg string) { log.Fatal(msg) }

func MustNonEmpty(value, envName string) {
	if value == "" {
		exit(fmt.Sprintf("missing required env %s", envName))
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		exit(fmt.Sprintf("missing required env %s", envName))
	}
}
