// Package savefile reads and rewrites release-format saves: JSON
// documents shaped {"version": 1, "save_data_key": {...}}.
package savefile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dadrian/hcsave"
	"github.com/dadrian/hcsave/output"
)

// Pretty is the layout the game itself writes.
var Pretty = output.Options{Format: output.JSON, Indent: 2}

// Read parses the JSON save at path. Numbers are kept as json.Number so
// integers are written back unchanged.
func Read(path string) (hcsave.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening save: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReader(f))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	root, ok := hcsave.AsObject(v)
	if !ok {
		return nil, fmt.Errorf("%s: not a JSON object (found %s)", path, hcsave.TypeName(v))
	}
	return root, nil
}

// Replace rewrites the save at path with root. The new content is
// written to path.new, the original is renamed to path.bak, and path.new
// then takes its place.
func Replace(path string, root hcsave.Object) error {
	tmp := path + ".new"
	if err := WriteFile(tmp, root, Pretty); err != nil {
		return err
	}
	if err := os.Rename(path, path+".bak"); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("backing up %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// WriteFile atomically writes v to path. On failure nothing is left
// behind.
func WriteFile(path string, v any, opts output.Options) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp output file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	buffered := bufio.NewWriter(tmpFile)
	if err := output.Write(buffered, v, opts); err != nil {
		tmpFile.Close()
		return err
	}
	if err := buffered.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return fmt.Errorf("setting mode on %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp output file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming output to %s: %w", path, err)
	}

	success = true
	return nil
}
