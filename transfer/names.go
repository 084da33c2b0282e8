package transfer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/muingY/gif-compressor-backend/tool"
)

// storedNames picks raw file names for one ingestion call. Every accepted file gets a
// stem of its own, so each raw maps onto a distinct {stem}{suffix}.gif, and no raw name
// looks like an output.
type storedNames struct {
	suffix string
	stems  map[string]struct{} // lower-cased, case-insensitive filesystems collide too
}

func newStoredNames(outputSuffix string) *storedNames {
	return &storedNames{
		suffix: outputSuffix,
		stems:  make(map[string]struct{}),
	}
}

// reserve returns the path under dir the upload called name is stored at.
func (s *storedNames) reserve(dir, name string) string {
	path := tool.NextAvailablePathFunc(dir, name, s.usable)
	s.stems[strings.ToLower(tool.FileStem(path))] = struct{}{}
	return path
}

func (s *storedNames) usable(candidate string) bool {
	stem := tool.FileStem(candidate)
	if _, taken := s.stems[strings.ToLower(stem)]; taken {
		return false
	}
	if s.suffix == "" {
		return true
	}
	output := strings.ToLower(s.suffix + ".gif")
	if strings.HasSuffix(strings.ToLower(filepath.Base(candidate)), output) {
		return false
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(candidate), stem+s.suffix+".gif")); !os.IsNotExist(err) {
		return false
	}
	return true
}
