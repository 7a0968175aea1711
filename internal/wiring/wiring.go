// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/protanno/internal/adapters/config"
	_ "go.trai.ch/protanno/internal/adapters/csvtable"
	_ "go.trai.ch/protanno/internal/adapters/logger"
	_ "go.trai.ch/protanno/internal/adapters/metrics"
	_ "go.trai.ch/protanno/internal/adapters/sources"
	_ "go.trai.ch/protanno/internal/adapters/storage"
	_ "go.trai.ch/protanno/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/protanno/internal/app"
	_ "go.trai.ch/protanno/internal/engine/acquisition"
)
