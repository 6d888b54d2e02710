// External-toolchain builder: each indexing step shells out to a
// configured command and its exit status is checked explicitly.
package builder

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Tool drives an external corpus-indexing toolchain. EncodeCmd is
// invoked as `encode -d <registry> -n <name> -l <lang> -f <staging>`,
// AlignCmd as `align -d <registry> <mapPath>` plus a second inverse
// pass with -inverse; any toolchain honoring those conventions plugs
// in via the config file.
type Tool struct {
	// Registry is passed to every step as the index destination.
	Registry string
	// EncodeCmd is the corpus indexing command.
	EncodeCmd string
	// AlignCmd is the alignment import command.
	AlignCmd string
}

// EncodeCorpus runs the external indexing command for one staging file.
func (t *Tool) EncodeCorpus(stagingPath, name, lang string) error {
	return t.run(t.EncodeCmd,
		"-d", t.Registry, "-n", strings.ToLower(name), "-l", lang, "-f", stagingPath)
}

// ImportAlignment runs the external alignment import in both
// directions. The reverse pass only runs if the forward pass
// succeeded; a failed import leaves the corpora unaligned.
func (t *Tool) ImportAlignment(mapPath string) error {
	if err := t.run(t.AlignCmd, "-d", t.Registry, mapPath); err != nil {
		return err
	}
	return t.run(t.AlignCmd, "-d", t.Registry, "-inverse", mapPath)
}

// run executes one step and folds an abnormal exit into
// ErrExternalTool, carrying the first stderr line as the diagnostic.
func (t *Tool) run(name string, args ...string) error {
	if name == "" {
		return fmt.Errorf("%w: no command configured", ErrExternalTool)
	}
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		diag := strings.SplitN(strings.TrimSpace(stderr.String()), "\n", 2)[0]
		if diag == "" {
			diag = err.Error()
		}
		return fmt.Errorf("%w: %s: %s", ErrExternalTool, name, diag)
	}
	return nil
}
