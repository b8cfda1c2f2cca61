package recording

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Load reads a recording file written by Save.
func Load(path string) (*Recording, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return r, nil
}

// Save writes r to path, replacing any existing file.
func (r *Recording) Save(path string) error {
	data, err := r.Serialize()
	if err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}
	return writeFile(path, data)
}

// LoadNotes reads a note recording file written by NoteRecording.Save.
func LoadNotes(path string) (*NoteRecording, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	n := NewNoteRecording()
	if err := n.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return n, nil
}

// Save writes n to path, replacing any existing file.
func (n *NoteRecording) Save(path string) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode note recording: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
