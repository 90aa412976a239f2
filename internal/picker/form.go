package picker

import (
	"fmt"
	"os"
	"path/filepath"
)

// UploadForm is the artwork upload surface the picker fills in.
type UploadForm interface {
	SetFile(filename string, data []byte) error
	SetTitle(title string) error
	SetDescription(description string) error
}

// DirForm is an UploadForm that writes its fields into a directory. Used
// by the CLI harness.
type DirForm struct {
	Dir string
}

func (f DirForm) SetFile(filename string, data []byte) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(f.Dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artwork file: %w", err)
	}
	return nil
}

func (f DirForm) SetTitle(title string) error {
	return f.writeField("title.txt", title)
}

func (f DirForm) SetDescription(description string) error {
	return f.writeField("description.txt", description)
}

func (f DirForm) writeField(name, value string) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.Dir, name), []byte(value), 0o644)
}
