package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// LayoutKind tags how a section is laid out.
type LayoutKind string

const (
	LayoutTable     LayoutKind = "table"
	LayoutFreeform  LayoutKind = "freeform"
	LayoutImage     LayoutKind = "image"
	LayoutPageBreak LayoutKind = "pagebreak"
)

// SectionID identifies a section of the fixed report template.
type SectionID string

const (
	SectionHeader         SectionID = "header"
	SectionGeneralInfo    SectionID = "general_information"
	SectionSpeakers       SectionID = "speaker_details"
	SectionParticipants   SectionID = "participants_profile"
	SectionSynopsis       SectionID = "synopsis"
	SectionPreparedBy     SectionID = "prepared_by"
	SectionSpeakerProfile SectionID = "speaker_profile"
	SectionActivityPhotos SectionID = "activity_photos"
	SectionAttendance     SectionID = "attendance_list"
	SectionBrochure       SectionID = "event_brochure"
	SectionApproval       SectionID = "notice_for_approval"
	SectionFeedback       SectionID = "feedback_analysis"
	SectionPageBreak      SectionID = "page_break"
)

// ElementKind is the type of a content element.
type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementTable ElementKind = "table"
	ElementImage ElementKind = "image"
	// ElementBlock groups children; with KeepTogether it is never split across pages.
	ElementBlock ElementKind = "block"
)

// TextStyle selects the typographic treatment of a text element.
type TextStyle string

const (
	StyleInstitution   TextStyle = "institution"
	StyleSchool        TextStyle = "school"
	StyleDepartment    TextStyle = "department"
	StyleReportTitle   TextStyle = "report_title"
	StyleSectionTitle  TextStyle = "section_title"
	StyleCenteredTitle TextStyle = "centered_title"
	StyleSubtitle      TextStyle = "subtitle"
	StyleBody          TextStyle = "body"
	StyleCaption       TextStyle = "caption"
)

// ImageRole tells the renderer how to size an image.
type ImageRole string

const (
	RoleSignature  ImageRole = "signature"
	RolePortrait   ImageRole = "portrait"
	RolePhoto      ImageRole = "photo"
	RoleAttachment ImageRole = "attachment"
)

// TableStyle distinguishes label/value tables from header-row grids.
type TableStyle string

const (
	TableLabelValue TableStyle = "label_value"
	TableGrid       TableStyle = "grid"
)

// Cell holds text or an embedded image.
type Cell struct {
	Text  string    `json:"text,omitempty"`
	Image *Image    `json:"image,omitempty"`
	Role  ImageRole `json:"role,omitempty"`
}

// Row is an atomic layout unit: it is never split across a page break.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Table is a bordered table.
type Table struct {
	Style  TableStyle `json:"style"`
	Header []string   `json:"header,omitempty"`
	Rows   []Row      `json:"rows"`
}

// Element is one piece of rendered content.
type Element struct {
	Kind         ElementKind `json:"kind"`
	Style        TextStyle   `json:"style,omitempty"`
	Text         string      `json:"text,omitempty"`
	Table        *Table      `json:"table,omitempty"`
	Image        *Image      `json:"image,omitempty"`
	Role         ImageRole   `json:"role,omitempty"`
	Children     []Element   `json:"children,omitempty"`
	KeepTogether bool        `json:"keepTogether,omitempty"`
}

// Section is a top-level unit of the report template.
type Section struct {
	ID       SectionID  `json:"id"`
	Kind     LayoutKind `json:"kind"`
	Title    string     `json:"title,omitempty"`
	Elements []Element  `json:"elements,omitempty"`
}

// Footer describes the running footer. Page numbers are only known after
// pagination, so the renderer fills them in.
type Footer struct {
	// Format is a fmt verb string receiving the page number, e.g. "Page %d".
	Format string `json:"format"`
}

// Composition is the pure rendering plan produced from a ReportRecord.
type Composition struct {
	Sections []Section `json:"sections"`
	Footer   Footer    `json:"footer"`
}

// Section returns the first section with the given id.
func (c Composition) Section(id SectionID) (Section, bool) {
	for _, s := range c.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Index returns the position of the first section with the given id, or -1.
func (c Composition) Index(id SectionID) int {
	for i, s := range c.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Fingerprint is a stable digest of the composition's canonical JSON form.
func (c Composition) Fingerprint() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
