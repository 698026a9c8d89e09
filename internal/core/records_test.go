package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/packcat/internal/infer"
)

func TestBuildPacks(t *testing.T) {
	grid := [][]string{
		{"Name", "Updated", "Link", "Requires", "Author", "Description"},
		{"base_pack", "2024-03-01", "https://example.com/base_pack.zip", "", "alice", "The base pack"},
		{"", "", "", "", "", ""},
		{"addon", "someday", "https://example.com/dl?id=7", "base_pack, extras", "bob", ""},
		{"", "2024-01-01", "not a url", "", "carol", "orphan"},
		{"", "", "https://example.com/files/loose.zip", "", "", ""},
	}
	analysis := infer.Analyze(grid)
	if !analysis.HasHeader {
		t.Fatal("expected header")
	}

	report := BuildPacks(grid, analysis.Mapping, analysis.HasHeader)

	if len(report.Packs) != 3 {
		t.Fatalf("got %d packs, want 3: %+v", len(report.Packs), report.Packs)
	}

	base := report.Packs[0]
	if base.Name != "base_pack" || base.Line != 2 || base.Author != "alice" {
		t.Errorf("base pack = %+v", base)
	}
	if base.DateModified.String() != "2024-03-01" {
		t.Errorf("base date = %s", base.DateModified)
	}
	if !base.UnzipRequired {
		t.Error("base pack should require unzip")
	}
	if base.Dependencies != nil {
		t.Errorf("base deps = %v, want none", base.Dependencies)
	}

	addon := report.Packs[1]
	if addon.DateModified.Known {
		t.Errorf("addon date should be unknown, got %s", addon.DateModified)
	}
	if diff := cmp.Diff([]string{"base_pack", "extras"}, addon.Dependencies); diff != "" {
		t.Errorf("addon deps mismatch (-want +got):\n%s", diff)
	}
	if addon.UnzipRequired {
		t.Error("addon should not require unzip")
	}

	loose := report.Packs[2]
	if loose.Name != "loose.zip" || !loose.UnzipRequired {
		t.Errorf("loose pack = %+v", loose)
	}

	wantSkipped := []SkippedRow{
		{Line: 3, Reason: "empty row"},
		{Line: 5, Reason: "no name or url"},
	}
	if diff := cmp.Diff(wantSkipped, report.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildPacks_NoHeader(t *testing.T) {
	grid := [][]string{
		{"pack_one.zip", "2024-01-01"},
		{"pack_two.zip", "2024-02-01"},
	}
	m := infer.Infer(grid)
	report := BuildPacks(grid, m, false)
	if len(report.Packs) != 2 {
		t.Fatalf("got %d packs, want 2", len(report.Packs))
	}
	if report.Packs[0].Line != 1 || report.Packs[0].Name != "pack_one.zip" {
		t.Errorf("first pack = %+v", report.Packs[0])
	}
}

func TestBuildPacks_Unassigned(t *testing.T) {
	report := BuildPacks([][]string{{"a"}, {"b"}}, infer.NewMapping(), false)
	if len(report.Packs) != 0 || len(report.Skipped) != 2 {
		t.Errorf("report = %+v", report)
	}
	if got := BuildPacks(nil, infer.NewMapping(), true); len(got.Packs) != 0 {
		t.Errorf("nil grid produced packs: %+v", got)
	}
}

func TestParseCatalog_NoHeaderKeepsFirstRow(t *testing.T) {
	data := "forest_pack,https://example.com/forest.zip,2024-01-01,Adds a day and night time cycle to every forest biome\n" +
		"river_pack,https://example.com/river.zip,2024-02-01,Rivers now flow downhill and carry boats along with them\n" +
		"cave_pack,https://example.com/cave.zip,2024-03-01,Deeper caves with glowing mushrooms and underground lakes\n"

	cat, err := ParseCatalog([]byte(data))
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if cat.Analysis.HasHeader {
		t.Fatal("first data row treated as a header")
	}

	var names []string
	for _, p := range cat.Report.Packs {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"forest_pack", "river_pack", "cave_pack"}, names); diff != "" {
		t.Errorf("packs mismatch (-want +got):\n%s", diff)
	}
	if len(cat.Report.Skipped) != 0 {
		t.Errorf("skipped = %+v, want none", cat.Report.Skipped)
	}

	first := cat.Report.Packs[0]
	if first.Line != 1 || !first.DateModified.Known || first.Description == "" {
		t.Errorf("first pack = %+v", first)
	}
}
