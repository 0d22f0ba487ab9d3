package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cicd/internal/adapters/assembly"       //nolint:depguard // Wired in app layer
	"go.trai.ch/cicd/internal/adapters/cfn"            //nolint:depguard // Wired in app layer
	"go.trai.ch/cicd/internal/adapters/cloudformation" //nolint:depguard // Wired in app layer
	"go.trai.ch/cicd/internal/adapters/config"         //nolint:depguard // Wired in app layer
	"go.trai.ch/cicd/internal/adapters/diff"           //nolint:depguard // Wired in app layer
	"go.trai.ch/cicd/internal/adapters/logger"         //nolint:depguard // Wired in app layer
	"go.trai.ch/cicd/internal/adapters/telemetry"      //nolint:depguard // Wired in app layer
	"go.trai.ch/cicd/internal/adapters/watcher"        //nolint:depguard // Wired in app layer
	"go.trai.ch/cicd/internal/core/ports"
	"go.trai.ch/cicd/internal/engine/topology"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App          *App
	Logger       ports.Logger
	ConfigLoader ports.ConfigLoader
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			topology.NodeID,
			cfn.NodeID,
			assembly.NodeID,
			cloudformation.NodeID,
			diff.NodeID,
			watcher.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	builder, err := graft.Dep[*topology.Builder](ctx)
	if err != nil {
		return nil, err
	}

	synthesizer, err := graft.Dep[ports.Synthesizer](ctx)
	if err != nil {
		return nil, err
	}

	opener, err := graft.Dep[ports.AssemblyStoreOpener](ctx)
	if err != nil {
		return nil, err
	}

	deployer, err := graft.Dep[ports.StackDeployer](ctx)
	if err != nil {
		return nil, err
	}

	differ, err := graft.Dep[ports.TemplateDiffer](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, builder, synthesizer, opener, deployer, differ, w, log, tracer), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:          app,
		Logger:       log,
		ConfigLoader: loader,
	}, nil
}
