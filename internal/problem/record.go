package problem

import (
	"encoding/json"
	"fmt"
	"slices"

	"golang.org/x/mod/semver"
)

// RecordSchemaVersion is the version written into every persisted record.
const RecordSchemaVersion = "v1.0.0"

// Record is the flat persisted form of a candidate, consumed by the
// rendering and export collaborators.
type Record struct {
	SchemaVersion      string              `json:"schema_version"`
	ID                 string              `json:"id"`
	Request            Request             `json:"request"`
	Stem               string              `json:"stem"`
	Choices            []string            `json:"choices"`
	Answer             Answer              `json:"answer"`
	Solution           string              `json:"solution,omitempty"`
	Status             Status              `json:"status"`
	DifficultyAnalysis *DifficultyAnalysis `json:"difficulty_analysis"`
	RevisionCount      int                 `json:"revision_count"`

	// Critique and Failure explain REJECTED and FAILED records.
	Critique *ReviewCritique `json:"critique,omitempty"`
	Failure  string          `json:"failure,omitempty"`
}

// ToRecord converts a candidate into its persisted form.
func (c *Candidate) ToRecord() Record {
	rec := Record{
		SchemaVersion: RecordSchemaVersion,
		ID:            c.ID,
		Request:       c.Request,
		Stem:          c.Stem,
		Choices:       slices.Clone(c.Choices),
		Answer:        c.Answer.clone(),
		Solution:      c.Solution,
		Status:        c.Status,
		RevisionCount: c.RevisionCount,
	}
	if rec.Choices == nil {
		rec.Choices = []string{}
	}
	if c.Difficulty != nil {
		rec.DifficultyAnalysis = c.Difficulty.clone()
	}
	if c.Critique != nil {
		rec.Critique = c.Critique.clone()
	}
	if c.Failure != nil {
		rec.Failure = c.Failure.Error()
	}
	return rec
}

// Candidate rebuilds a candidate from a record. Provenance and the typed
// failure are not persisted; the failure text stays on the record.
func (r Record) Candidate() *Candidate {
	c := &Candidate{
		ID:                 r.ID,
		Request:            r.Request,
		Stem:               r.Stem,
		Choices:            slices.Clone(r.Choices),
		Answer:             r.Answer.clone(),
		Solution:           r.Solution,
		Status:             r.Status,
		RevisionCount:      r.RevisionCount,
		CurriculumApproved: r.Status == StatusAccepted,
	}
	if r.DifficultyAnalysis != nil {
		c.SetDifficulty(*r.DifficultyAnalysis)
	}
	if r.Critique != nil {
		c.SetCritique(*r.Critique)
	}
	return c
}

// MarshalRecord encodes a record as JSON.
func MarshalRecord(r Record) ([]byte, error) {
	if r.SchemaVersion == "" {
		r.SchemaVersion = RecordSchemaVersion
	}
	return json.Marshal(r)
}

// UnmarshalRecord decodes a record, rejecting schema versions with a newer
// major version than this build understands.
func UnmarshalRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	if err := checkSchemaVersion(r.SchemaVersion); err != nil {
		return Record{}, err
	}
	return r, nil
}

func checkSchemaVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("record has invalid schema_version %q", v)
	}
	if semver.Compare(semver.Major(v), semver.Major(RecordSchemaVersion)) > 0 {
		return fmt.Errorf("record schema %s is newer than supported %s", v, RecordSchemaVersion)
	}
	return nil
}
