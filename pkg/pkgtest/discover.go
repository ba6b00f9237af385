package pkgtest

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dkoosis/pkgcmp/pkg/report"
	"github.com/dkoosis/pkgcmp/pkg/status"
)

// TestTimeFile holds the elapsed test time of a package run.
const TestTimeFile = "test_time"

const outputGlob = "**/*.{Rout,fail}"

// Discover lists the test outputs below dir, keyed by path relative to
// dir. A .fail output marks a run that did not complete: it is registered
// under the name without the suffix with status Failed. A missing dir
// yields no outputs.
func Discover(dir string) (map[string]*status.File, error) {
	files := make(map[string]*status.File)
	matches, err := doublestar.Glob(os.DirFS(dir), outputGlob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discover outputs in %s: %w", dir, err)
	}
	for _, m := range matches {
		rel := filepath.FromSlash(m)
		path := filepath.Join(dir, rel)
		st := status.OK
		if strings.HasSuffix(rel, report.FailSuffix) {
			rel = strings.TrimSuffix(rel, report.FailSuffix)
			st = status.Failed
		}
		if prev, ok := files[rel]; ok && prev.Status == status.Failed {
			continue
		}
		files[rel] = status.NewFile(path, st)
	}
	return files, nil
}

// ReadTestTime applies the optional test_time file in dir to pkg. The file
// holds either a single number, the elapsed time of the whole package, or
// lines of "<relative path> <seconds>" for individual outputs.
func ReadTestTime(dir string, pkg *status.Package) error {
	f, err := os.Open(filepath.Join(dir, TestTimeFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		fields := strings.Fields(sc.Text())
		switch len(fields) {
		case 0:
		case 1:
			secs, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", TestTimeFile, n, err)
			}
			pkg.ElapsedTime = secs
		case 2:
			secs, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return fmt.Errorf("%s:%d: %w", TestTimeFile, n, err)
			}
			if file, ok := pkg.Files[filepath.FromSlash(fields[0])]; ok {
				file.ElapsedTime = secs
			}
		default:
			return fmt.Errorf("%s:%d: unexpected line %q", TestTimeFile, n, sc.Text())
		}
	}
	return sc.Err()
}
