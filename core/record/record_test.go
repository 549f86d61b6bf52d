package record

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/fixture"
)

func TestLoadDefaults(t *testing.T) {
	for _, in := range []string{"", "  ", "{}", `{"activityTitle":"Expo"}`} {
		r, err := Load([]byte(in))
		if err != nil {
			t.Fatalf("Load(%q): %v", in, err)
		}
		if r.Speakers == nil || r.ParticipantProfiles == nil || r.Preparers == nil {
			t.Errorf("Load(%q) left nil lists", in)
		}
		for _, c := range core.Collections() {
			if r.Assets(c) == nil {
				t.Errorf("Load(%q) left %s nil", in, c)
			}
		}
	}
}

func TestLoadNormalizesLooseInput(t *testing.T) {
	img := fixture.Image(4, 4)
	snapshot := `{
		"activityTitle": "Expo",
		"speakers": [{"name": "Dr. Rao", "photo": "` + img.DataURL() + `"}, {"name": ""}],
		"participantProfiles": [
			{"type": "students", "count": "120"},
			{"type": "Alumni", "count": 3},
			{"type": "", "count": ""}
		],
		"attendanceFiles": [{"name": "list.csv", "kind": "spreadsheet", "columns": ["Name"], "rows": [{"Name": "Asha"}]}]
	}`
	r, err := Load([]byte(snapshot))
	if err != nil {
		t.Fatal(err)
	}
	if r.Speakers[0].ID == "" || r.Speakers[1].ID == "" || r.Speakers[0].ID == r.Speakers[1].ID {
		t.Errorf("speaker ids = %q, %q", r.Speakers[0].ID, r.Speakers[1].ID)
	}
	if r.Speakers[0].Photo.Empty() || r.Speakers[0].Photo.Width != 4 {
		t.Errorf("photo = %+v", r.Speakers[0].Photo)
	}
	want := []core.ParticipantProfile{{Type: core.Student, Count: 120}, {Type: core.Others, Count: 3}, {}}
	for i, w := range want {
		if r.ParticipantProfiles[i] != w {
			t.Errorf("participant %d = %+v, want %+v", i, r.ParticipantProfiles[i], w)
		}
	}
	if r.AttendanceFiles[0].ID == "" {
		t.Error("asset id not assigned")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"syntax":       `{"activityTitle": `,
		"count":        `{"participantProfiles": [{"type": "Faculty", "count": "many"}]}`,
		"shapeless":    `{"brochureFiles": [{"id": "x", "kind": "image"}]}`,
		"image string": `{"speakers": [{"photo": "http://example.com/a.png"}]}`,
	}
	for name, in := range cases {
		if _, err := Load([]byte(in)); err == nil {
			t.Errorf("%s: Load accepted %s", name, in)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	r := New()
	r.ActivityTitle = "Expo"
	r.Preparers = []core.Preparer{{Name: "Asha", Signature: fixture.Image(6, 3)}}

	data, err := Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"signature": "data:image/png;base64,`) {
		t.Errorf("signature not inlined: %s", data)
	}
	back, err := Load(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Preparers[0].Signature.Width != 6 || back.ActivityTitle != "Expo" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestApplyIsPure(t *testing.T) {
	base := New()
	base.ActivityTitle = "Before"
	base.Speakers = []core.Speaker{{ID: "s1", Name: "Dr. Rao"}}

	speakers := []core.Speaker{{ID: "s1", Name: "Dr. Rao"}, {ID: "s2", Name: "Ms. Iyer"}}
	out := Apply(base, Patch{ActivityTitle: String("After"), Speakers: &speakers})

	if base.ActivityTitle != "Before" || len(base.Speakers) != 1 {
		t.Errorf("base mutated: %+v", base)
	}
	if out.ActivityTitle != "After" || len(out.Speakers) != 2 {
		t.Errorf("out = %+v", out)
	}
	speakers[0].Name = "changed later"
	if out.Speakers[0].Name != "Dr. Rao" {
		t.Error("patch list aliased into record")
	}
	if out.Venue != "" {
		t.Error("untouched field changed")
	}
}

func TestParsePatchAndReplay(t *testing.T) {
	p1, err := ParsePatch([]byte(`{"activityTitle": "Expo", "venue": "Hall"}`))
	if err != nil {
		t.Fatal(err)
	}
	p2, err := ParsePatch([]byte(`{"venue": ""}`))
	if err != nil {
		t.Fatal(err)
	}
	if p1.Summary != nil {
		t.Error("absent key decoded as set")
	}

	r := Replay(New(), p1, p2)
	if r.ActivityTitle != "Expo" || r.Venue != "" {
		t.Errorf("replayed = %+v", r)
	}
	again := Replay(New(), p1, p2)
	a, _ := json.Marshal(r)
	b, _ := json.Marshal(again)
	if string(a) != string(b) {
		t.Error("replay is not deterministic")
	}

	if _, err := ParsePatch([]byte(`[]`)); err == nil {
		t.Error("array patch accepted")
	}
}

func TestAssetOrder(t *testing.T) {
	page := *fixture.Image(2, 2)
	r := New()
	r = AppendAssets(r, core.BrochureFiles,
		core.NormalizedAsset{ID: "a", Kind: core.KindImage, Pages: []core.Image{page}},
		core.NormalizedAsset{ID: "b", Kind: core.KindImage, Pages: []core.Image{page}},
	)
	r2 := AppendAssets(r, core.BrochureFiles, core.NormalizedAsset{ID: "c", Kind: core.KindImage, Pages: []core.Image{page}})
	if len(r.BrochureFiles) != 2 {
		t.Error("append mutated its input")
	}

	r3, ok := RemoveAsset(r2, core.BrochureFiles, "a")
	if !ok {
		t.Fatal("remove failed")
	}
	if len(r2.BrochureFiles) != 3 || r2.BrochureFiles[0].ID != "a" {
		t.Error("remove mutated its input")
	}
	if len(r3.BrochureFiles) != 2 || r3.BrochureFiles[0].ID != "b" || r3.BrochureFiles[1].ID != "c" {
		t.Errorf("after remove = %+v", r3.BrochureFiles)
	}
	if _, ok := RemoveAsset(r3, core.BrochureFiles, "missing"); ok {
		t.Error("removed a missing id")
	}
	if _, ok := SetCaption(r3, "missing", "x"); ok {
		t.Error("captioned a missing photo")
	}
}
