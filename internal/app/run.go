package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/swix/internal/config"
	"github.com/vk/swix/internal/ctxlog"
	"github.com/vk/swix/internal/diag"
	"github.com/vk/swix/internal/emit"
	"github.com/vk/swix/internal/fsutil"
	"github.com/vk/swix/internal/identity"
	"github.com/vk/swix/internal/model"
	"github.com/vk/swix/internal/swix"
)

// Run transforms the configured source into a WiX fragment. The fragment
// and the identity store are published together once every phase has
// succeeded; either both are replaced or neither is.
func (a *App) Run(ctx context.Context) (*model.Document, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	cfg := a.config
	a.logger.Debug("App.Run method started.", "source", cfg.SourcePath, "identity_mode", cfg.IdentityMode)

	vars, lookupEnv, err := a.loadVariables(ctx)
	if err != nil {
		return nil, err
	}

	mode, err := identity.ParseMode(cfg.IdentityMode)
	if err != nil {
		return nil, err
	}
	ids, err := identity.Open(ctx, cfg.IdentityPath(), mode)
	if err != nil {
		return nil, err
	}

	doc, err := a.compile(ctx, vars, lookupEnv)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := emit.Emit(doc, ids)
	if err != nil {
		return nil, diag.WithFile(err, cfg.SourcePath)
	}
	a.logger.Debug("Fragment rendered.", "bytes", len(out))

	files := []fsutil.File{{Path: cfg.OutputPath, Data: out, Perm: 0644}}
	store, ok, err := ids.Pending()
	if err != nil {
		return nil, fmt.Errorf("failed to save identity store: %w", err)
	}
	if ok {
		files = append(files, store)
	}
	if err := fsutil.WriteFilesAtomic(files...); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	a.logger.Debug("Files published.", "count", len(files), "identity_store_written", ok)

	a.logger.Info("Fragment written.",
		"output", cfg.OutputPath,
		"components", len(doc.Components),
		"cabs", len(doc.Cabs),
		"identifiers_minted", ids.Minted())
	a.logger.Debug("App.Run method finished.")
	return doc, nil
}

func (a *App) compile(ctx context.Context, vars map[string]string, lookupEnv func(string) (string, bool)) (*model.Document, error) {
	src := a.config.SourcePath
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer f.Close()

	return swix.Compile(ctx, f, swix.Options{
		SourcePath: src,
		Variables:  vars,
		LookupEnv:  lookupEnv,
		OnUnused: func(line int, names []string) {
			a.logger.Warn("Attributes were never used.", "file", src, "line", line, "attributes", names)
		},
	})
}

// loadVariables merges variable files and command line definitions, and
// builds the environment lookup.
func (a *App) loadVariables(ctx context.Context) (map[string]string, func(string) (string, bool), error) {
	cfg := a.config
	vars := config.NewModel()
	if len(cfg.VarFiles) > 0 {
		loaded, err := a.loader.Load(ctx, cfg.VarFiles...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load variable files: %w", err)
		}
		vars.Merge(loaded)
	}
	for name, value := range cfg.Variables {
		vars.Set(name, value, "command line")
	}
	a.logger.Debug("Variables loaded.", "count", len(vars.Variables), "names", vars.Names())

	var lookupEnv func(string) (string, bool)
	if cfg.EnvFile != "" {
		overlay, err := config.ReadEnvFile(cfg.EnvFile)
		if err != nil {
			return nil, nil, err
		}
		a.logger.Debug("Environment overlay loaded.", "file", cfg.EnvFile, "count", len(overlay))
		lookupEnv = config.EnvLookup(overlay)
	}
	return vars.Variables, lookupEnv, nil
}
