//go:build unix

package main

import "github.com/riftlabs/gorsp/transport/serial"

func openSerial(path string, baud int) (closableChannel, error) {
	return serial.Open(path, baud)
}
