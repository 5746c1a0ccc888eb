package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jsphweid/sightread/constants"
	"github.com/jsphweid/sightread/model"
	"github.com/jsphweid/sightread/util"
)

// Session files are a 4-byte little-endian payload length followed by
// the gob-encoded record, so a reader can validate truncation before
// decoding.

func WriteSession(dir string, rec model.SessionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	payload, err := util.EncodeGob(rec)
	if err != nil {
		return "", fmt.Errorf("could not encode session: %w", err)
	}

	path := filepath.Join(dir, rec.ID+constants.SessionFileExt)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create session file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, uint32(len(payload))); err != nil {
		return "", fmt.Errorf("could not write session header: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		return "", fmt.Errorf("could not write session payload: %w", err)
	}
	return path, nil
}

func ReadSession(path string) (model.SessionRecord, error) {
	var rec model.SessionRecord

	f, err := os.Open(path)
	if err != nil {
		return rec, fmt.Errorf("could not open session file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		return rec, fmt.Errorf("could not read session header: %w", err)
	}
	length := binary.LittleEndian.Uint32(head)

	payload := make([]byte, length)
	if _, err := io.ReadFull(f, payload); err != nil {
		return rec, fmt.Errorf("truncated session file: %w", err)
	}
	return util.DecodeGob[model.SessionRecord](payload)
}

// ReadAll loads every session under dir, skipping unreadable files.
func ReadAll(dir string) []model.SessionRecord {
	var res []model.SessionRecord
	for _, path := range util.GatherAllSessionPaths(dir, 0) {
		rec, err := ReadSession(path)
		if err != nil {
			continue
		}
		res = append(res, rec)
	}
	return res
}

// FindByID looks a session up by its record ID.
func FindByID(dir, id string) (model.SessionRecord, error) {
	path := filepath.Join(dir, id+constants.SessionFileExt)
	return ReadSession(path)
}
