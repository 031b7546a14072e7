package testutil

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/swix/internal/app"
	"github.com/vk/swix/internal/model"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of one transformation run.
type HarnessResult struct {
	Dir        string
	LogOutput  string
	Err        error
	Doc        *model.Document
	Output     string // generated fragment, empty when none was written
	Identities string // identity store, empty when none was written
	Config     *app.Config
}

// Path resolves a workspace-relative name.
func (r *HarnessResult) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// WriteFiles writes each named file under dir, creating subdirectories.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		filePath := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
}

// RunTransform runs one transformation in a fresh workspace using a default
// background context.
func RunTransform(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunTransformIn(context.Background(), t, t.TempDir(), files, cfg)
}

// RunTransformIn writes files into dir and runs a transformation there. Paths
// in cfg are relative to dir. Running twice in the same dir lets tests
// observe the identity store carried between builds.
func RunTransformIn(ctx context.Context, t *testing.T, dir string, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	WriteFiles(t, dir, files)

	cfg.SourcePath = filepath.Join(dir, cfg.SourcePath)
	if cfg.OutputPath != "" {
		cfg.OutputPath = filepath.Join(dir, cfg.OutputPath)
	}
	varFiles := make([]string, len(cfg.VarFiles))
	for i, f := range cfg.VarFiles {
		varFiles[i] = filepath.Join(dir, f)
	}
	cfg.VarFiles = varFiles
	if cfg.EnvFile != "" {
		cfg.EnvFile = filepath.Join(dir, cfg.EnvFile)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}

	result := &HarnessResult{Dir: dir}
	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		result.Err = err
		return result
	}
	result.Config = appConfig

	logBuffer := &SafeBuffer{}
	testApp := app.NewApp(logBuffer, appConfig)
	result.Doc, result.Err = testApp.Run(ctx)
	result.LogOutput = logBuffer.String()
	result.Output = readOptional(t, appConfig.OutputPath)
	result.Identities = readOptional(t, appConfig.IdentityPath())

	if os.Getenv("SWIX_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
	}
	return result
}

func readOptional(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}
