// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/cicd/internal/adapters/assembly"
	_ "go.trai.ch/cicd/internal/adapters/cfn"
	_ "go.trai.ch/cicd/internal/adapters/cloudformation"
	_ "go.trai.ch/cicd/internal/adapters/config"
	_ "go.trai.ch/cicd/internal/adapters/diff"
	_ "go.trai.ch/cicd/internal/adapters/logger"
	_ "go.trai.ch/cicd/internal/adapters/telemetry"
	_ "go.trai.ch/cicd/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/cicd/internal/app"
	_ "go.trai.ch/cicd/internal/engine/topology"
)
