// Package record loads report snapshots and applies edits as pure patches.
//
// Every function here returns a new ReportRecord and never mutates its input,
// so an edit history is just a base record plus a list of patches.
package record

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/google/uuid"
)

// New returns an empty record with every list initialized.
func New() core.ReportRecord {
	return withDefaults(core.ReportRecord{})
}

// Load deserializes a stored snapshot, filling defaults for absent lists and
// assigning ids to speakers and assets that lack one.
func Load(data []byte) (core.ReportRecord, error) {
	var r core.ReportRecord
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &r); err != nil {
			return core.ReportRecord{}, fmt.Errorf("decoding report snapshot: %w", err)
		}
	}
	r = withDefaults(r)
	for i := range r.Speakers {
		if r.Speakers[i].ID == "" {
			r.Speakers[i].ID = uuid.NewString()
		}
	}
	for _, c := range core.Collections() {
		assets := r.Assets(c)
		for i := range assets {
			if assets[i].ID == "" {
				assets[i].ID = uuid.NewString()
			}
			if err := assets[i].Validate(); err != nil {
				return core.ReportRecord{}, fmt.Errorf("%s[%d]: %w", c, i, err)
			}
		}
	}
	return r, nil
}

// Marshal serializes a record as a snapshot.
func Marshal(r core.ReportRecord) ([]byte, error) {
	return json.MarshalIndent(withDefaults(r), "", "  ")
}

func withDefaults(r core.ReportRecord) core.ReportRecord {
	if r.Speakers == nil {
		r.Speakers = []core.Speaker{}
	}
	if r.ParticipantProfiles == nil {
		r.ParticipantProfiles = []core.ParticipantProfile{}
	}
	if r.Preparers == nil {
		r.Preparers = []core.Preparer{}
	}
	for _, c := range core.Collections() {
		if r.Assets(c) == nil {
			r.SetAssets(c, []core.NormalizedAsset{})
		}
	}
	return r
}

// Clone copies the record's lists so the copy can be edited independently.
// Image bytes and asset pages/rows are shared; they are never written in place.
func Clone(r core.ReportRecord) core.ReportRecord {
	out := r
	out.Speakers = slices.Clone(r.Speakers)
	out.ParticipantProfiles = slices.Clone(r.ParticipantProfiles)
	out.Preparers = slices.Clone(r.Preparers)
	for _, c := range core.Collections() {
		out.SetAssets(c, slices.Clone(r.Assets(c)))
	}
	return withDefaults(out)
}

// AppendAssets adds assets to the end of a collection, preserving upload order.
func AppendAssets(r core.ReportRecord, c core.Collection, assets ...core.NormalizedAsset) core.ReportRecord {
	out := Clone(r)
	out.SetAssets(c, append(out.Assets(c), assets...))
	return out
}

// RemoveAsset drops the asset with the given id from a collection without
// reordering the others. It reports whether anything was removed.
func RemoveAsset(r core.ReportRecord, c core.Collection, id string) (core.ReportRecord, bool) {
	out := Clone(r)
	assets := out.Assets(c)
	idx := slices.IndexFunc(assets, func(a core.NormalizedAsset) bool { return a.ID == id })
	if idx < 0 {
		return out, false
	}
	out.SetAssets(c, slices.Delete(assets, idx, idx+1))
	return out, true
}

// SetCaption updates the caption of an activity photo.
func SetCaption(r core.ReportRecord, id string, caption string) (core.ReportRecord, bool) {
	out := Clone(r)
	for i := range out.ActivityPhotos {
		if out.ActivityPhotos[i].ID == id {
			out.ActivityPhotos[i].Caption = caption
			return out, true
		}
	}
	return out, false
}
