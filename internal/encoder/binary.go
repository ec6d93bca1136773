package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// BinaryName is the ggwave encoder executable this strategy drives.
const BinaryName = "ggwave-to-file"

// ErrBinaryNotFound is returned when no executable ggwave-to-file exists in
// any of the candidate locations.
var ErrBinaryNotFound = errors.New("ggwave-to-file binary not found")

// searchPaths returns the fixed ordered list of candidate locations for the
// ggwave-to-file binary.
func searchPaths() []string {
	paths := []string{
		filepath.Join("bin", BinaryName),
		filepath.Join("..", "bin", BinaryName),
		filepath.Join("..", "..", "bin", BinaryName),
		filepath.Join("..", "..", "build", "bin", BinaryName),
		filepath.Join("/usr/local/bin", BinaryName),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "src", "ggwave", "build", "bin", BinaryName))
	}

	return paths
}

// FindBinary locates an executable ggwave-to-file. A non-empty explicit path
// short-circuits the search; otherwise the fixed candidate list is walked in
// order.
func FindBinary(explicit string) (string, error) {
	if explicit != "" {
		if isExecutable(explicit) {
			return explicit, nil
		}
		return "", fmt.Errorf("%w: %q is not an executable file", ErrBinaryNotFound, explicit)
	}

	for _, p := range searchPaths() {
		if isExecutable(p) {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: checked %v", ErrBinaryNotFound, searchPaths())
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	return info.Mode().Perm()&0o111 != 0
}

// BinaryEncoder encodes chunks by invoking ggwave-to-file with the chunk on
// stdin. The binary is resolved once at construction so a missing dependency
// fails before any chunk work starts.
type BinaryEncoder struct {
	path string
	opts Options
}

func NewBinaryEncoder(explicitPath string, opts Options) (*BinaryEncoder, error) {
	path, err := FindBinary(explicitPath)
	if err != nil {
		return nil, err
	}

	return &BinaryEncoder{path: path, opts: opts}, nil
}

func (e *BinaryEncoder) Name() string { return StrategyBinary }

// Path returns the resolved ggwave-to-file location.
func (e *BinaryEncoder) Path() string { return e.path }

// EncodeChunk pipes chunk into ggwave-to-file and checks that the expected
// output file exists and is non-empty. The subprocess exit code is not
// trusted on its own: the file check decides.
func (e *BinaryEncoder) EncodeChunk(ctx context.Context, chunk, outPath string) error {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	tmp, err := os.CreateTemp("", "ggmsg-chunk-*.txt")
	if err != nil {
		return fmt.Errorf("create chunk input file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(chunk); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write chunk input file: %w", err)
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("rewind chunk input file: %w", err)
	}
	defer func() { _ = tmp.Close() }()

	cmd := exec.CommandContext(ctx, e.path,
		fmt.Sprintf("-f%s", outPath),
		fmt.Sprintf("-p%d", e.opts.Protocol),
		fmt.Sprintf("-v%d", e.opts.Volume),
		fmt.Sprintf("-s%d", e.opts.SampleRate),
	)
	cmd.Stdin = tmp

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return fmt.Errorf("encoding timed out after %s: %w", e.opts.Timeout, ctx.Err())
	}

	info, statErr := os.Stat(outPath)
	if statErr != nil || info.Size() == 0 {
		if runErr != nil {
			return fmt.Errorf("%s produced no output: %w", BinaryName, runErr)
		}
		return fmt.Errorf("%s produced no output at %s", BinaryName, outPath)
	}

	return nil
}
