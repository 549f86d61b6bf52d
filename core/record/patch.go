package record

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// Patch is a partial edit. Nil fields are left untouched; a non-nil field
// replaces the record's value wholesale, lists included.
type Patch struct {
	ActivityTitle *string `json:"activityTitle,omitempty"`
	ActivityType  *string `json:"activityType,omitempty"`
	SubCategory   *string `json:"subCategory,omitempty"`
	Venue         *string `json:"venue,omitempty"`
	Collaboration *string `json:"collaboration,omitempty"`
	Date          *string `json:"date,omitempty"`
	EndDate       *string `json:"endDate,omitempty"`
	Time          *string `json:"time,omitempty"`
	EndTime       *string `json:"endTime,omitempty"`

	Speakers            *[]core.Speaker            `json:"speakers,omitempty"`
	ParticipantProfiles *[]core.ParticipantProfile `json:"participantProfiles,omitempty"`

	Highlights *string `json:"highlights,omitempty"`
	Takeaways  *string `json:"takeaways,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	FollowUp   *string `json:"followUp,omitempty"`

	Preparers *[]core.Preparer `json:"preparers,omitempty"`

	ActivityPhotos  *[]core.NormalizedAsset `json:"activityPhotos,omitempty"`
	AttendanceFiles *[]core.NormalizedAsset `json:"attendanceFiles,omitempty"`
	BrochureFiles   *[]core.NormalizedAsset `json:"brochureFiles,omitempty"`
	ApprovalFiles   *[]core.NormalizedAsset `json:"approvalFiles,omitempty"`
	FeedbackFiles   *[]core.NormalizedAsset `json:"feedbackFiles,omitempty"`
}

// ParsePatch decodes a JSON merge patch. Keys absent from the document stay nil.
func ParsePatch(data []byte) (Patch, error) {
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return Patch{}, fmt.Errorf("decoding patch: %w", err)
	}
	return p, nil
}

// Apply returns r with p merged in. r is not modified.
func Apply(r core.ReportRecord, p Patch) core.ReportRecord {
	out := Clone(r)

	setString(&out.ActivityTitle, p.ActivityTitle)
	setString(&out.ActivityType, p.ActivityType)
	setString(&out.SubCategory, p.SubCategory)
	setString(&out.Venue, p.Venue)
	setString(&out.Collaboration, p.Collaboration)
	setString(&out.Date, p.Date)
	setString(&out.EndDate, p.EndDate)
	setString(&out.Time, p.Time)
	setString(&out.EndTime, p.EndTime)

	setString(&out.Highlights, p.Highlights)
	setString(&out.Takeaways, p.Takeaways)
	setString(&out.Summary, p.Summary)
	setString(&out.FollowUp, p.FollowUp)

	setList(&out.Speakers, p.Speakers)
	setList(&out.ParticipantProfiles, p.ParticipantProfiles)
	setList(&out.Preparers, p.Preparers)

	setList(&out.ActivityPhotos, p.ActivityPhotos)
	setList(&out.AttendanceFiles, p.AttendanceFiles)
	setList(&out.BrochureFiles, p.BrochureFiles)
	setList(&out.ApprovalFiles, p.ApprovalFiles)
	setList(&out.FeedbackFiles, p.FeedbackFiles)

	return withDefaults(out)
}

// Replay applies patches in order on top of base.
func Replay(base core.ReportRecord, patches ...Patch) core.ReportRecord {
	out := Clone(base)
	for _, p := range patches {
		out = Apply(out, p)
	}
	return out
}

// String is a convenience for building patches in code.
func String(s string) *string { return &s }

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setList[T any](dst *[]T, v *[]T) {
	if v != nil {
		*dst = slices.Clone(*v)
	}
}
