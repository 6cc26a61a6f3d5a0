package action

import (
	"os"
	"path/filepath"

	"github.com/zopsicle/snowflake/pkg/hash"
)

// CreateSymbolicLink creates a symbolic link named "output" in the
// scratch directory.
type CreateSymbolicLink struct {
	// Target of the symbolic link.
	Target string
}

func (a *CreateSymbolicLink) Inputs() int {
	return 0
}

func (a *CreateSymbolicLink) Outputs() int {
	return 1
}

func (a *CreateSymbolicLink) Perform(p *Perform, inputPaths []string) (Summary, error) {
	if err := os.Symlink(a.Target, filepath.Join(p.Scratch, "output")); err != nil {
		return Summary{}, err
	}
	return Summary{OutputPaths: []string{"output"}}, nil
}

func (a *CreateSymbolicLink) Hash(inputHashes []hash.Hash) hash.Hash {
	h := hash.New()
	h.PutString("CreateSymbolicLink")
	h.PutString(a.Target)
	return h.Finalize()
}
