package judger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	judgeerrors "judgecore/pkg/errors"

	"judgecore/internal/compile"
	"judgecore/internal/sandbox"
)

// Compile builds sourceFile (already staged under the working directory)
// into a binary named `name`, content-addressing the result under the
// judger's cache root when one is configured.
func (j *DefaultJudger) Compile(ctx context.Context, sourceFile, name string) (Compilation, error) {
	return CompileAs(ctx, j, GuessFileType(sourceFile), sourceFile, name)
}

// GuessFileType maps a staged source file's extension onto a FileType.
// Defaults to GnuCpp17O2, the reference judge's traditional-problem
// default language.
func GuessFileType(sourceFile string) compile.FileType {
	switch filepath.Ext(sourceFile) {
	case ".py":
		return compile.Python3
	case ".rs":
		return compile.Rust
	case ".s":
		return compile.GnuAssembly
	default:
		return compile.GnuCpp17O2
	}
}

// cachedCompilation is what actually lives in the compile cache: the
// compiled binary's bytes travel with the verdict, since a cache hit must
// be able to materialize the binary into a working directory that didn't
// exist when the entry was written.
type cachedCompilation struct {
	Ok      bool                `json:"ok"`
	Log     string              `json:"log,omitempty"`
	Binary  []byte              `json:"binary,omitempty"`
	Verdict sandbox.Termination `json:"verdict"`
}

// CompileAs runs one compile step for the given file type, caching by the
// source file's contents when the judger has a cache root configured.
func CompileAs(ctx context.Context, j *DefaultJudger, ft compile.FileType, sourceFile, name string) (Compilation, error) {
	if !ft.Compileable() {
		return Compilation{Ok: true, BinPath: sourceFile}, nil
	}

	source, err := os.ReadFile(sourceFile)
	if err != nil {
		return Compilation{}, judgeerrors.Wrapf(err, judgeerrors.CompilationError, "compile: read source: %v", err)
	}

	destPath := filepath.Join(j.workingDir, name)
	logPath := destPath + ".compile.log"
	cacheKey := fmt.Sprintf("%s:%s", ft, source)

	cached, err := CachableBlock(j.cacheRoot, cacheKey, func() (cachedCompilation, error) {
		cfg, err := ft.CompileSandbox(sourceFile, destPath, logPath)
		if err != nil {
			return cachedCompilation{}, err
		}
		term, err := execSandbox(ctx, j.sandboxExe, cfg)
		if err != nil {
			return cachedCompilation{}, judgeerrors.Wrap(err, judgeerrors.CompilationError)
		}
		log := readCompileLog(logPath)
		if term.Status != sandbox.Ok {
			return cachedCompilation{Ok: false, Log: log, Verdict: term}, nil
		}
		bin, err := os.ReadFile(destPath)
		if err != nil {
			return cachedCompilation{}, judgeerrors.Wrapf(err, judgeerrors.JudgeSystemError, "compile: read compiled binary: %v", err)
		}
		return cachedCompilation{Ok: true, Log: log, Binary: bin, Verdict: term}, nil
	})
	if err != nil {
		return Compilation{}, err
	}

	if cached.Ok {
		// On a cache hit the binary may not exist under this job's
		// working directory yet (it could have been compiled for a
		// different job) — materialize it unconditionally.
		if err := os.WriteFile(destPath, cached.Binary, 0755); err != nil {
			return Compilation{}, judgeerrors.Wrapf(err, judgeerrors.JudgeSystemError, "compile: materialize cached binary: %v", err)
		}
	}

	return Compilation{Ok: cached.Ok, Log: cached.Log, BinPath: destPath, Verdict: cached.Verdict}, nil
}

// readCompileLog best-effort reads back the compiler diagnostics redirected
// to logPath. A missing file (nothing was written to stderr) is not an
// error.
func readCompileLog(logPath string) string {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return ""
	}
	return string(data)
}
