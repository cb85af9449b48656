package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
)

// findNulls returns the paths of every JSON null in v.
func findNulls(path string, v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{path}
	case map[string]any:
		var out []string
		for k, child := range val {
			out = append(out, findNulls(path+"."+k, child)...)
		}
		return out
	case []any:
		var out []string
		for i, child := range val {
			out = append(out, findNulls(path+"["+strconv.Itoa(i)+"]", child)...)
		}
		return out
	}
	return nil
}

func TestBuildPayloadEmptyDraftHasNoNulls(t *testing.T) {
	payload := BuildPayload(model.FormDraft{}.Normalized(), "report-1")

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}

	if nulls := findNulls("$", decoded); len(nulls) > 0 {
		t.Errorf("Expected no null values, got %v", nulls)
	}

	for _, key := range []string{
		"metadata", "client_details", "installation_details", "supply_characteristics",
		"protective_device", "distribution_boards", "cable_sizes", "earthing_bonding",
		"inspection_items", "schedule_of_tests", "observations", "declarations",
		"departures_from_bs7671", "comments",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in payload", key)
		}
	}

	if len(payload.InspectionItems) != model.InspectionItemCount {
		t.Errorf("Expected %d inspection items, got %d", model.InspectionItemCount, len(payload.InspectionItems))
	}
	if payload.DistributionBoards == nil || len(payload.DistributionBoards) != 0 {
		t.Errorf("Expected empty non-nil boards, got %#v", payload.DistributionBoards)
	}
}

func TestBuildPayloadIsDeterministic(t *testing.T) {
	draft := model.FormDraft{
		ClientName:        "A. Smith",
		CertificateNumber: "EIC-001",
		BoardLocation:     "Hall cupboard",
		ScheduleOfTests:   []model.TestEntry{{CircuitNumber: "1"}, {CircuitNumber: "2", Zs: "0.41"}},
		Observations:      []model.Observation{{ID: "obs-1", LegacyCode: "C3"}},
	}.Normalized()

	first, _ := json.Marshal(BuildPayload(draft, "report-1"))
	second, _ := json.Marshal(BuildPayload(draft, "report-1"))
	if !bytes.Equal(first, second) {
		t.Error("Expected identical payload bytes across runs")
	}
}

func TestBuildPayloadCanonicalizesOutcomes(t *testing.T) {
	tests := []struct {
		outcome  string
		expected string
	}{
		{"satisfactory", "Acceptable"},
		{"acceptable", "Acceptable"},
		{"Acceptable", "Acceptable"},
		{"na", "N/A"},
		{"not-applicable", "N/A"},
		{"N/A", "N/A"},
		{"limitation", "LIM"},
		{"LIM", "LIM"},
		{"C2", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			draft := model.FormDraft{
				InspectionItems: []model.InspectionItem{{ItemNumber: "4", Outcome: tt.outcome}},
			}.Normalized()

			payload := BuildPayload(draft, "r")
			if got := payload.InspectionItems[3].Outcome; got != tt.expected {
				t.Errorf("Expected outcome %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestBuildPayloadMatchesLegacyItemIdentities(t *testing.T) {
	var draft model.FormDraft
	raw := `{"inspectionItems":[
		{"id":"item-2","outcome":"satisfactory"},
		{"id":"5","outcome":"limitation"},
		{"itemNumber":7,"outcome":"na"},
		{"itemNumber":"9.0","id":"item-3","outcome":"acceptable"}
	]}`
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		t.Fatalf("Failed to decode draft: %v", err)
	}

	payload := BuildPayload(draft.Normalized(), "r")

	expected := map[string]string{"2": "Acceptable", "5": "LIM", "7": "N/A", "9": "Acceptable", "3": ""}
	for _, row := range payload.InspectionItems {
		if want, ok := expected[row.ItemNumber]; ok && row.Outcome != want {
			t.Errorf("Item %s: expected outcome %q, got %q", row.ItemNumber, want, row.Outcome)
		}
		if row.Description == "" {
			t.Errorf("Item %s: expected template description", row.ItemNumber)
		}
	}
}

func TestBuildPayloadFirstDuplicateItemWins(t *testing.T) {
	draft := model.FormDraft{
		InspectionItems: []model.InspectionItem{
			{ItemNumber: "1", Outcome: "LIM"},
			{ID: "item-1", Outcome: "acceptable"},
		},
	}.Normalized()

	if got := BuildPayload(draft, "r").InspectionItems[0].Outcome; got != "LIM" {
		t.Errorf("Expected first item to win, got %q", got)
	}
}

func TestBuildPayloadScheduleDefaults(t *testing.T) {
	payload := BuildPayload(model.FormDraft{ScheduleOfTests: []model.TestEntry{{}}}, "r")

	if len(payload.ScheduleOfTests) != 1 {
		t.Fatalf("Expected 1 schedule row, got %d", len(payload.ScheduleOfTests))
	}
	row := payload.ScheduleOfTests[0]

	v := reflect.ValueOf(row)
	textCells := 0
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() != reflect.String {
			continue
		}
		textCells++
		if field.String() != model.NotApplicable {
			t.Errorf("Field %s: expected N/A, got %q", v.Type().Field(i).Name, field.String())
		}
	}
	if textCells < 40 {
		t.Errorf("Expected at least 40 text cells, got %d", textCells)
	}
	if row.IsRingFinal {
		t.Error("Expected is_ring_final to default to false")
	}
	data, _ := json.Marshal(row)
	if !bytes.Contains(data, []byte(`"rcd_test_button":"N/A"`)) {
		t.Errorf("Expected rcd_test_button to default to N/A, got %s", data)
	}
}

func TestBuildPayloadScheduleKeepsValues(t *testing.T) {
	payload := BuildPayload(model.FormDraft{ScheduleOfTests: []model.TestEntry{{
		CircuitNumber: "3",
		Zs:            "0.62",
		IsRingFinal:   true,
		RcdTestButton: model.MarkPass,
	}}}, "r")

	row := payload.ScheduleOfTests[0]
	if row.CircuitNumber != "3" || row.Zs != "0.62" {
		t.Errorf("Expected values kept, got circuit %q zs %q", row.CircuitNumber, row.Zs)
	}
	if !row.IsRingFinal || row.RcdTestButton != "✓" {
		t.Errorf("Expected ring final and test button kept, got %v %q", row.IsRingFinal, row.RcdTestButton)
	}
}

func TestBuildPayloadMinimalValidExport(t *testing.T) {
	signed := func(name string) model.Declaration {
		return model.Declaration{Name: name, Signature: "sig-" + name}
	}
	draft := model.FormDraft{
		ClientName:          "A. Smith",
		InstallationAddress: "1 Test St",
		InstallationDate:    "2024-01-01",
		Designer:            signed("D"),
		Constructor:         signed("C"),
		Inspector:           signed("I"),
	}

	if !draft.CanGenerateCertificate() {
		t.Fatalf("Expected certificate to be generatable, missing %v", draft.MissingSections())
	}

	payload := BuildPayload(draft.Normalized(), "report-9")
	if payload.ClientDetails.ClientName != "A. Smith" {
		t.Errorf("Expected client name 'A. Smith', got %q", payload.ClientDetails.ClientName)
	}
	if payload.Metadata.ReportID != "report-9" {
		t.Errorf("Expected report id, got %q", payload.Metadata.ReportID)
	}
}

func TestBuildPayloadDistributionBoards(t *testing.T) {
	tests := []struct {
		name     string
		draft    model.FormDraft
		expected []model.BoardSection
	}{
		{
			name:     "no boards and no legacy fields",
			draft:    model.FormDraft{},
			expected: []model.BoardSection{},
		},
		{
			name: "legacy single board",
			draft: model.FormDraft{
				BoardLocation: "Garage",
				Zdb:           "0.35",
				RcdType:       "A",
			},
			expected: []model.BoardSection{{
				Reference: "DB1",
				Location:  "Garage",
				Zdb:       "0.35",
				RCD:       model.BoardRCDFields{Type: "A"},
			}},
		},
		{
			name: "board value wins over legacy field",
			draft: model.FormDraft{
				BoardLocation: "Garage",
				SpdType:       "T2",
				DistributionBoards: []model.DistributionBoard{
					{Reference: "Main", Location: "Kitchen"},
					{SPD: model.BoardSPD{Type: "T1"}},
				},
			},
			expected: []model.BoardSection{
				{Reference: "Main", Location: "Kitchen", SPD: model.BoardSPDFields{Type: "T2"}},
				{Reference: "DB2", Location: "Garage", SPD: model.BoardSPDFields{Type: "T1"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPayload(tt.draft, "r").DistributionBoards
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestBuildPayloadObservations(t *testing.T) {
	payload := BuildPayload(model.FormDraft{Observations: []model.Observation{
		{ID: "a", DefectCode: "C2", LegacyCode: "C3"},
		{ID: "b", LegacyCode: "FI"},
	}}, "r")

	if payload.Observations[0].DefectCode != "C2" {
		t.Errorf("Expected defectCode preferred, got %q", payload.Observations[0].DefectCode)
	}
	if payload.Observations[1].DefectCode != "FI" {
		t.Errorf("Expected legacy code used, got %q", payload.Observations[1].DefectCode)
	}
	for _, o := range payload.Observations {
		if o.PhotoEvidence == nil || o.PhotoCount != 0 {
			t.Errorf("Expected empty photo evidence, got %#v", o)
		}
	}
}

func TestBuildPayloadCustomConductorSize(t *testing.T) {
	payload := BuildPayload(model.FormDraft{
		MainEarthingConductorSize:       "custom",
		MainEarthingConductorSizeCustom: "25",
		MainBondingConductorSize:        "10",
		MainBondingConductorSizeCustom:  "99",
	}, "r")

	if payload.CableSizes.MainEarthingConductorSize != "25" {
		t.Errorf("Expected custom earthing size, got %q", payload.CableSizes.MainEarthingConductorSize)
	}
	if payload.CableSizes.MainBondingConductorSize != "10" {
		t.Errorf("Expected picked bonding size, got %q", payload.CableSizes.MainBondingConductorSize)
	}
}

type fakePhotoStore struct {
	photos []model.ReportPhoto
	err    error
	calls  int
}

func (f *fakePhotoStore) ListByReport(_ context.Context, _, _ string) ([]model.ReportPhoto, error) {
	f.calls++
	return f.photos, f.err
}

type fakeURLResolver struct{}

func (fakeURLResolver) PublicURL(objectName string) string {
	return "https://cdn.test/" + objectName
}

func TestPhotoJoiner(t *testing.T) {
	observations := []model.ObservationRow{{ID: "obs-1"}, {ID: "obs-2"}}

	tests := []struct {
		name          string
		store         *fakePhotoStore
		expectedCount []int
	}{
		{
			name: "photos grouped by observation",
			store: &fakePhotoStore{photos: []model.ReportPhoto{
				{ObservationID: "obs-1", FilePath: "p/1.jpg"},
				{ObservationID: "obs-1", FilePath: "p/2.jpg"},
				{ObservationID: "obs-9", FilePath: "p/9.jpg"},
			}},
			expectedCount: []int{2, 0},
		},
		{
			name:          "no photos",
			store:         &fakePhotoStore{},
			expectedCount: []int{0, 0},
		},
		{
			name:          "lookup error",
			store:         &fakePhotoStore{err: errors.New("db down")},
			expectedCount: []int{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joiner := NewPhotoJoiner(tt.store, fakeURLResolver{})
			got := joiner.Join(context.Background(), "r", observations)

			if len(got) != len(observations) {
				t.Fatalf("Expected %d observations, got %d", len(observations), len(got))
			}
			if tt.store.calls != 1 {
				t.Errorf("Expected a single photo query, got %d", tt.store.calls)
			}
			for i, o := range got {
				if o.PhotoEvidence == nil {
					t.Errorf("Observation %s: expected non-nil photo evidence", o.ID)
				}
				if o.PhotoCount != tt.expectedCount[i] || len(o.PhotoEvidence) != tt.expectedCount[i] {
					t.Errorf("Observation %s: expected %d photos, got %d", o.ID, tt.expectedCount[i], o.PhotoCount)
				}
			}
		})
	}

	joiner := NewPhotoJoiner(&fakePhotoStore{photos: []model.ReportPhoto{{ObservationID: "obs-1", FilePath: "p/1.jpg"}}}, fakeURLResolver{})
	got := joiner.Join(context.Background(), "r", observations)
	if got[0].PhotoEvidence[0] != "https://cdn.test/p/1.jpg" {
		t.Errorf("Expected resolved URL, got %q", got[0].PhotoEvidence[0])
	}
}
