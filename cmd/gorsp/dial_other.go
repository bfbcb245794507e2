//go:build !unix

package main

import "fmt"

func openSerial(path string, baud int) (closableChannel, error) {
	return nil, fmt.Errorf("gorsp: -serial is unix-only")
}
