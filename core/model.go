package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ReportRecord is the full editable data model for one activity report.
// Every scalar is optional; a blank value means "omit from output".
type ReportRecord struct {
	ActivityTitle string `json:"activityTitle,omitempty"`
	ActivityType  string `json:"activityType,omitempty"`
	SubCategory   string `json:"subCategory,omitempty"`
	Venue         string `json:"venue,omitempty"`
	Collaboration string `json:"collaboration,omitempty"`
	Date          string `json:"date,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	Time          string `json:"time,omitempty"`
	EndTime       string `json:"endTime,omitempty"`

	Speakers            []Speaker            `json:"speakers"`
	ParticipantProfiles []ParticipantProfile `json:"participantProfiles"`

	Highlights string `json:"highlights,omitempty"`
	Takeaways  string `json:"takeaways,omitempty"`
	Summary    string `json:"summary,omitempty"`
	FollowUp   string `json:"followUp,omitempty"`

	Preparers []Preparer `json:"preparers"`

	ActivityPhotos  []NormalizedAsset `json:"activityPhotos"`
	AttendanceFiles []NormalizedAsset `json:"attendanceFiles"`
	BrochureFiles   []NormalizedAsset `json:"brochureFiles"`
	ApprovalFiles   []NormalizedAsset `json:"approvalFiles"`
	FeedbackFiles   []NormalizedAsset `json:"feedbackFiles"`
}

// Speaker is a guest or presenter of the activity.
type Speaker struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	Title        string `json:"title,omitempty"`
	Organization string `json:"organization,omitempty"`
	Contact      string `json:"contact,omitempty"`
	Presentation string `json:"presentation,omitempty"`
	About        string `json:"about,omitempty"`
	Photo        *Image `json:"photo,omitempty"`
}

// Preparer is one entry of the "report prepared by" block.
type Preparer struct {
	Name        string `json:"name,omitempty"`
	Designation string `json:"designation,omitempty"`
	Signature   *Image `json:"signature,omitempty"`
}

// ParticipantType is the fixed participant category enum.
type ParticipantType string

const (
	Faculty         ParticipantType = "Faculty"
	Student         ParticipantType = "Student"
	ResearchScholar ParticipantType = "Research Scholar"
	Others          ParticipantType = "Others"
)

// ParseParticipantType matches s case-insensitively against the enum.
// Blank input stays blank; anything unrecognized is filed under Others.
func ParseParticipantType(s string) ParticipantType {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, t := range []ParticipantType{Faculty, Student, ResearchScholar, Others} {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	switch strings.ToLower(s) {
	case "faculties", "staff":
		return Faculty
	case "students":
		return Student
	case "research scholars", "scholar", "scholars":
		return ResearchScholar
	}
	return Others
}

// ParticipantProfile is a (category, count) pair.
type ParticipantProfile struct {
	Type  ParticipantType `json:"type"`
	Count int             `json:"count"`
}

// Blank reports whether the entry has neither a category nor a count.
func (p ParticipantProfile) Blank() bool {
	return p.Type == "" && p.Count == 0
}

// UnmarshalJSON accepts counts as numbers or numeric strings, since form
// inputs store them as text.
func (p *ParticipantProfile) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type  string          `json:"type"`
		Count json.RawMessage `json:"count"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	count, err := parseCount(raw.Count)
	if err != nil {
		return fmt.Errorf("participant %q: %w", raw.Type, err)
	}
	p.Type = ParseParticipantType(raw.Type)
	p.Count = count
	return nil
}

func parseCount(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("count must be a number: %s", raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("count must be a number: %q", s)
	}
	return n, nil
}

// SourceKind identifies what an uploaded file was before normalization.
type SourceKind string

const (
	KindImage       SourceKind = "image"
	KindSpreadsheet SourceKind = "spreadsheet"
	KindPDF         SourceKind = "pdf"
)

// NormalizedAsset is ingestion's uniform output for one uploaded file:
// either page images (image, pdf) or uniform row records (spreadsheet).
type NormalizedAsset struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Kind SourceKind `json:"kind"`

	Pages []Image `json:"pages,omitempty"`

	// Columns is the header row in source order; every row is keyed by it.
	Columns []string            `json:"columns,omitempty"`
	Rows    []map[string]string `json:"rows,omitempty"`

	// Caption is only meaningful for activity photos.
	Caption string `json:"caption,omitempty"`
}

// Validate enforces the exactly-one-shape invariant.
func (a NormalizedAsset) Validate() error {
	hasPages, hasRows := len(a.Pages) > 0, len(a.Rows) > 0
	switch {
	case hasPages && hasRows:
		return fmt.Errorf("asset %s has both pages and rows", a.ID)
	case !hasPages && !hasRows:
		return fmt.Errorf("asset %s has neither pages nor rows", a.ID)
	}
	return nil
}

// Collection names one of the five attachment categories.
type Collection string

const (
	ActivityPhotos  Collection = "activityPhotos"
	AttendanceFiles Collection = "attendanceFiles"
	BrochureFiles   Collection = "brochureFiles"
	ApprovalFiles   Collection = "approvalFiles"
	FeedbackFiles   Collection = "feedbackFiles"
)

// Collections lists every collection in document order.
func Collections() []Collection {
	return []Collection{ActivityPhotos, AttendanceFiles, BrochureFiles, ApprovalFiles, FeedbackFiles}
}

// ParseCollection accepts the snapshot key or a short alias ("photos", "nfa", ...).
func ParseCollection(s string) (Collection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "activityphotos", "photos":
		return ActivityPhotos, nil
	case "attendancefiles", "attendance":
		return AttendanceFiles, nil
	case "brochurefiles", "brochure":
		return BrochureFiles, nil
	case "approvalfiles", "approval", "nfa":
		return ApprovalFiles, nil
	case "feedbackfiles", "feedback":
		return FeedbackFiles, nil
	}
	return "", fmt.Errorf("unknown asset collection %q", s)
}

// Assets returns the collection's assets. The slice is shared with the record.
func (r *ReportRecord) Assets(c Collection) []NormalizedAsset {
	if p := r.assetsPtr(c); p != nil {
		return *p
	}
	return nil
}

// SetAssets replaces the collection's assets.
func (r *ReportRecord) SetAssets(c Collection, assets []NormalizedAsset) {
	if p := r.assetsPtr(c); p != nil {
		*p = assets
	}
}

func (r *ReportRecord) assetsPtr(c Collection) *[]NormalizedAsset {
	switch c {
	case ActivityPhotos:
		return &r.ActivityPhotos
	case AttendanceFiles:
		return &r.AttendanceFiles
	case BrochureFiles:
		return &r.BrochureFiles
	case ApprovalFiles:
		return &r.ApprovalFiles
	case FeedbackFiles:
		return &r.FeedbackFiles
	}
	return nil
}

// Accepts reports whether a collection takes uploads of the given kind.
// Photos are images only; attendance also takes spreadsheets.
func (c Collection) Accepts(k SourceKind) bool {
	switch c {
	case ActivityPhotos:
		return k == KindImage
	case AttendanceFiles:
		return k == KindImage || k == KindPDF || k == KindSpreadsheet
	case BrochureFiles, ApprovalFiles, FeedbackFiles:
		return k == KindImage || k == KindPDF
	}
	return false
}
