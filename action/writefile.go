package action

import (
	"os"
	"path/filepath"

	"github.com/zopsicle/snowflake/pkg/hash"
)

// WriteRegularFile writes a regular file named "output" in the scratch
// directory.
type WriteRegularFile struct {
	// Content of the regular file.
	Content []byte

	// Executable sets the executable bits in the file's mode.
	Executable bool
}

func (a *WriteRegularFile) Inputs() int {
	return 0
}

func (a *WriteRegularFile) Outputs() int {
	return 1
}

func (a *WriteRegularFile) Perform(p *Perform, inputPaths []string) (Summary, error) {
	mode := os.FileMode(0o644)
	if a.Executable {
		mode = 0o755
	}
	if err := os.WriteFile(filepath.Join(p.Scratch, "output"), a.Content, mode); err != nil {
		return Summary{}, err
	}
	return Summary{OutputPaths: []string{"output"}}, nil
}

func (a *WriteRegularFile) Hash(inputHashes []hash.Hash) hash.Hash {
	h := hash.New()
	h.PutString("WriteRegularFile")
	h.PutBytes(a.Content)
	h.PutBool(a.Executable)
	return h.Finalize()
}
