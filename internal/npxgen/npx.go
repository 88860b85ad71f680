// Package npxgen generates clients by running openapi-typescript-codegen
// through npx.
package npxgen

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thellimist/openapi-client-generator/internal/config"
	"github.com/thellimist/openapi-client-generator/internal/generator"
	"github.com/thellimist/openapi-client-generator/internal/nameutil"
)

// Generator shells out to the reference code generator.
type Generator struct {
	cfg    config.NPXConfig
	logger *zap.Logger

	// checkNode is swapped in tests.
	checkNode func(ctx context.Context, minMajor int) (string, error)
	checkMu   sync.Mutex
	checked   bool
	checkErr  error
}

const nodeCheckTimeout = 10 * time.Second

// New returns an npx-backed generator.
func New(cfg config.NPXConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{cfg: cfg, logger: logger, checkNode: CheckNode}
}

// Generate runs the generator CLI and returns its combined output on failure.
func (g *Generator) Generate(ctx context.Context, opts generator.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := g.ensureNode(ctx); err != nil {
		return err
	}

	argv, err := Command(g.cfg, opts)
	if err != nil {
		return err
	}

	g.logger.Debug("running generator", zap.Strings("argv", argv))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", g.cfg.Package, ctx.Err())
		}
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("%s failed: %w", g.cfg.Package, err)
		}
		return fmt.Errorf("%s failed: %w: %s", g.cfg.Package, err, msg)
	}
	return nil
}

// ensureNode runs the node check until it produces a definite answer. The
// check runs detached from the request so a cancelled call cannot decide it.
func (g *Generator) ensureNode(ctx context.Context) error {
	if g.cfg.MinNodeMajor <= 0 {
		return nil
	}
	g.checkMu.Lock()
	defer g.checkMu.Unlock()
	if g.checked {
		return g.checkErr
	}

	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), nodeCheckTimeout)
	defer cancel()
	version, err := g.checkNode(checkCtx, g.cfg.MinNodeMajor)
	if checkCtx.Err() != nil {
		return fmt.Errorf("node.js check: %w", checkCtx.Err())
	}
	g.checked, g.checkErr = true, err
	if err == nil {
		g.logger.Debug("node.js found", zap.String("version", version))
	}
	return err
}

// Command builds the full argument vector for one run.
func Command(cfg config.NPXConfig, opts generator.Options) ([]string, error) {
	argv, err := nameutil.SplitCommand(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse npx command: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("npx command is empty")
	}
	if cfg.Package != "" {
		argv = append(argv, cfg.Package)
	}

	indent := opts.Indent
	if indent == "" {
		indent = generator.Indent4
	}
	argv = append(argv,
		"--input", opts.Input,
		"--output", opts.Output,
		"--client", string(opts.HTTPClient),
	)
	if opts.UseOptions {
		argv = append(argv, "--useOptions")
	}
	if opts.UseUnionTypes {
		argv = append(argv, "--useUnionTypes")
	}
	argv = append(argv,
		"--exportCore", boolFlag(opts.ExportCore),
		"--exportServices", boolFlag(opts.ExportServices),
		"--exportModels", boolFlag(opts.ExportModels),
		"--exportSchemas", boolFlag(opts.ExportSchemas),
		"--indent", string(indent),
	)
	return argv, nil
}

func boolFlag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
