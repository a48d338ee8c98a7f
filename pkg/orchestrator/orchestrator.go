// Package orchestrator drives a deez run: global start commands, one
// pass over the declared dot groups in order, global end commands.
// Each group is gated on its own dependency set and processed
// independently; a failing group never aborts its siblings. Only a
// declined continue-prompt (or a top-level fatal condition upstream)
// terminates the run.
package orchestrator

import (
	"context"

	"github.com/arthur-debert/deez/pkg/command"
	"github.com/arthur-debert/deez/pkg/deploy"
	"github.com/arthur-debert/deez/pkg/deps"
	"github.com/arthur-debert/deez/pkg/logging"
	"github.com/arthur-debert/deez/pkg/types"
	"github.com/rs/zerolog"
)

// Options contains configuration for the orchestrator.
type Options struct {
	Config   *types.Config
	Engine   *deploy.Engine
	Resolver *deps.Resolver

	// Selected is the manager list the run resolved at startup.
	Selected []string

	Runner command.Runner
	Policy command.FailurePolicy
	Logger zerolog.Logger
}

// Orchestrator iterates dot groups and invokes the deployment engine.
type Orchestrator struct {
	cfg      *types.Config
	engine   *deploy.Engine
	resolver *deps.Resolver
	selected []string
	runner   command.Runner
	policy   command.FailurePolicy
	logger   zerolog.Logger
}

// New creates a new orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("orchestrator")
	}
	policy := opts.Policy
	if policy == nil {
		policy = command.FailFast{}
	}
	return &Orchestrator{
		cfg:      opts.Config,
		engine:   opts.Engine,
		resolver: opts.Resolver,
		selected: opts.Selected,
		runner:   opts.Runner,
		policy:   policy,
		logger:   logger,
	}
}

// Run executes the whole sequence. The returned error is nil unless
// the operator aborted after a failed command.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := command.RunHooks(ctx, o.runner, o.policy, o.cfg.StartCommands); err != nil {
		return err
	}

	for _, group := range o.cfg.Groups {
		if err := o.deployGroup(ctx, group); err != nil {
			return err
		}
	}

	return command.RunHooks(ctx, o.runner, o.policy, o.cfg.EndCommands)
}

// deployGroup processes one dot group: soft dependency gate, pre
// commands, every file unit, post commands. A non-nil error means the
// operator aborted the run, not that the group failed.
func (o *Orchestrator) deployGroup(ctx context.Context, group types.DotGroup) error {
	o.logger.Info().Str("dot", group.Name).Msg("Deploying")

	resolved := o.resolver.Filter(o.selected, group.Dependencies)
	if missing := o.resolver.Check(ctx, resolved); len(missing) > 0 {
		o.logger.Warn().
			Str("dot", group.Name).
			Interface("missing", missing).
			Msg("Skipping dot due to missing dependencies")
		return nil
	}

	if err := command.RunHooks(ctx, o.runner, o.policy, group.PreCommands); err != nil {
		return err
	}

	rc := types.RunContext{Group: group.Name, DefaultAction: o.defaultAction(group)}

	var total deploy.Result
	for _, unit := range group.Files {
		res := o.engine.Apply(rc, unit)
		total.Deployed += res.Deployed
		total.Skipped += res.Skipped
		total.Failed += res.Failed
	}

	if err := command.RunHooks(ctx, o.runner, o.policy, group.PostCommands); err != nil {
		return err
	}

	o.logger.Info().
		Str("dot", group.Name).
		Int("deployed", total.Deployed).
		Int("skipped", total.Skipped).
		Int("failed", total.Failed).
		Msg("Dot processed")
	return nil
}

func (o *Orchestrator) defaultAction(group types.DotGroup) types.Action {
	if group.Action != "" {
		return group.Action
	}
	return o.cfg.DefaultAction
}
