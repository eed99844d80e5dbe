package guildbuild

import (
	"encoding/json"
	"fmt"

	"github.com/neko-jpg/schoolfestival-bot/internal/entity"
)

// recordSchemaVersion names the layout of the snapshot and diff documents
// stored in a build run. Bump it and add a decoder when either layout
// changes, runs written by older versions must stay readable for rollback.
const recordSchemaVersion = 1

type recordDecoder func(snapshot, diff string) (*GuildSnapshot, *DiffResult, error)

var recordDecoders = map[int]recordDecoder{
	1: decodeRecordV1,
}

func encodeRecord(snapshot *GuildSnapshot, diff *DiffResult) (string, string, error) {
	s, err := json.Marshal(snapshot)
	if err != nil {
		return "", "", err
	}

	d, err := json.Marshal(diff)
	if err != nil {
		return "", "", err
	}

	return string(s), string(d), nil
}

func decodeRecord(run *entity.BuildRun) (*GuildSnapshot, *DiffResult, error) {
	decode, ok := recordDecoders[run.SchemaVersion]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported build run schema version %d", run.SchemaVersion)
	}

	return decode(run.Snapshot, run.DryRunResult)
}

func decodeRecordV1(snapshot, diff string) (*GuildSnapshot, *DiffResult, error) {
	s := &GuildSnapshot{}
	if err := json.Unmarshal([]byte(snapshot), s); err != nil {
		return nil, nil, fmt.Errorf("cannot decode snapshot: %w", err)
	}

	d := &DiffResult{}
	if err := json.Unmarshal([]byte(diff), d); err != nil {
		return nil, nil, fmt.Errorf("cannot decode diff: %w", err)
	}

	return s, d, nil
}
