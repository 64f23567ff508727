package storage

import (
	"encoding/json"
	"errors"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeStudy(s model.Study) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeStudy(data []byte) (model.Study, error) {
	var study model.Study
	if err := json.Unmarshal(data, &study); err != nil {
		return model.Study{}, err
	}
	if err := checkVersion(study.VersionedRecord); err != nil {
		return model.Study{}, err
	}
	return study, nil
}

func EncodeSimulation(r model.SimulationRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeSimulation(data []byte) (model.SimulationRecord, error) {
	var record model.SimulationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.SimulationRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.SimulationRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
