package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	envPackOutDir = "SB6M_PACK_OUT_DIR"
	envMeshDir    = "SB6M_MESH_DIR"

	meshExt = ".sbm"
)

// stdinIsTTY is a small seam for tests.
var stdinIsTTY = isTTY

// resolvePackOut picks the output path for a manifest. Without --output the
// mesh is written as <name>.sbm under SB6M_PACK_OUT_DIR or ./out.
func resolvePackOut(manifestPath, outFlag string) (string, bool, error) {
	outFlag = strings.TrimSpace(outFlag)
	if outFlag != "" {
		outPath := filepath.Clean(outFlag)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return "", false, err
		}
		return outPath, false, nil
	}

	base := strings.TrimSuffix(filepath.Base(filepath.Clean(manifestPath)), filepath.Ext(manifestPath))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", true, fmt.Errorf("invalid manifest path: %q", manifestPath)
	}

	outDir := strings.TrimSpace(os.Getenv(envPackOutDir))
	if outDir == "" {
		outDir = filepath.Join(".", "out")
	}

	outPath := filepath.Join(outDir, base+meshExt)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", true, err
	}
	return outPath, true, nil
}

func meshDir(flag string) string {
	dir := strings.TrimSpace(flag)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(envMeshDir))
	}
	return dir
}

func resolveMeshPath(fileFlag, meshesDir string, stdin io.Reader, stderr io.Writer) (string, error) {
	fileFlag = strings.TrimSpace(fileFlag)
	if fileFlag != "" {
		return filepath.Clean(fileFlag), nil
	}

	dir := meshDir(meshesDir)
	if dir == "" {
		return "", fmt.Errorf("--file or --meshes-path is required unless %s is set", envMeshDir)
	}

	meshes, err := discoverMeshes(dir)
	if err != nil {
		return "", err
	}
	switch len(meshes) {
	case 0:
		return "", fmt.Errorf("no %s meshes found in %s", meshExt, dir)
	case 1:
		_, _ = fmt.Fprintf(stderr, "using mesh %s\n", meshes[0])
		return meshes[0], nil
	default:
		if !stdinIsTTY() {
			return "", fmt.Errorf(
				"multiple meshes found in %s but stdin is not interactive; set --file",
				dir,
			)
		}
		return selectMeshInteractively(dir, meshes, stdin, stderr)
	}
}

func discoverMeshes(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("meshes directory is empty")
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("meshes path is not a directory: %s", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	meshes := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), meshExt) {
			continue
		}
		meshes = append(meshes, filepath.Join(dir, name))
	}
	sort.Strings(meshes)
	return meshes, nil
}

func selectMeshInteractively(dir string, meshes []string, stdin io.Reader, stderr io.Writer) (string, error) {
	if len(meshes) == 0 {
		return "", fmt.Errorf("no meshes available in %s", dir)
	}

	_, _ = fmt.Fprintf(stderr, "select a mesh from %s\n", dir)
	for i, m := range meshes {
		_, _ = fmt.Fprintf(stderr, "%d. %s\n", i+1, meshDisplayName(dir, m))
	}

	reader := bufio.NewReader(stdin)
	for {
		_, _ = fmt.Fprintf(stderr, "enter selection [1-%d]: ", len(meshes))
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if errors.Is(err, io.EOF) {
				return "", errors.New("no selection provided on stdin; set --file")
			}
			continue
		}

		idx, convErr := strconv.Atoi(line)
		if convErr != nil || idx < 1 || idx > len(meshes) {
			_, _ = fmt.Fprintf(stderr, "invalid selection %q\n", line)
			if errors.Is(err, io.EOF) {
				return "", errors.New("invalid selection provided on stdin; set --file")
			}
			continue
		}
		return meshes[idx-1], nil
	}
}

func meshDisplayName(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return rel
}

func isTTY() bool {
	st, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (st.Mode() & os.ModeCharDevice) != 0
}
