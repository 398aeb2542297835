package harness

import (
	"encoding/gob"
	"os"
)

// Checkpoint marks how far a long vector-generation run has gotten, so
// an interrupted run can resume at the next seed.
type Checkpoint struct {
	NextSeed  int64
	OpsPerVec int
	Written   int
}

// SaveCheckpoint writes resume state to a file.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint loads resume state from a file.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
