package artifact

import (
	"encoding"
	"fmt"
	"os"
	"path/filepath"
)

// Save marshals v and writes it to path, creating parent directories.
func Save(path string, v encoding.BinaryMarshaler) error {
	b, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("artifact: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	if _, err := file.Write(b); err != nil {
		file.Close()
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}
	return file.Close()
}

// Load reads path and unmarshals it into v.
func Load(path string, v encoding.BinaryUnmarshaler) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	if err := v.UnmarshalBinary(b); err != nil {
		return fmt.Errorf("artifact: unmarshal %s: %w", path, err)
	}
	return nil
}
