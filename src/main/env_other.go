//go:build !windows

package main

import (
	"log"

	"imgpaste/src/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	if r, err := screenshot.VirtualBounds(); err == nil {
		log.Printf("MONITOR: Virtual screen %v", r)
	}
	if r, err := screenshot.PrimaryBounds(); err == nil {
		log.Printf("MONITOR: Primary screen %v", r)
	}
}
