package scan_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"taxfiler/internal/scan"
	"taxfiler/internal/testsupport"
	"taxfiler/internal/tracking"
)

func TestDirFiltersCandidates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.CSV", "notes.txt", ".hidden.pdf", "c.Pdf"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), 10)
	}
	testsupport.WriteFile(t, filepath.Join(dir, "nested", "deep.pdf"), 10)

	infos, err := scan.Dir(context.Background(), dir, scan.Filter{IgnoreHidden: true}, nil)
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
	}
	if want := []string{"a.CSV", "b.pdf", "c.Pdf"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	if infos[0].Extension != ".csv" || infos[0].Size != 10 || !filepath.IsAbs(infos[0].Path) {
		t.Fatalf("unexpected info %+v", infos[0])
	}
}

func TestDirHiddenFilesWhenAllowed(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, ".hidden.pdf"), 1)
	infos, err := scan.Dir(context.Background(), dir, scan.Filter{}, nil)
	if err != nil || len(infos) != 1 {
		t.Fatalf("Dir = %v, %v", infos, err)
	}
}

func TestDirSkipsTracked(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	testsupport.WriteFile(t, a, 1)
	testsupport.WriteFile(t, filepath.Join(dir, "b.pdf"), 1)
	tracker := tracking.NewMemory()
	if err := tracker.MarkProcessed(context.Background(), tracking.Record{Path: a}); err != nil {
		t.Fatal(err)
	}

	infos, err := scan.Dir(context.Background(), dir, scan.Filter{Extensions: []string{".pdf"}}, tracker)
	if err != nil {
		t.Fatal(err)
	}
	if got := scan.Paths(infos); len(got) != 1 || filepath.Base(got[0]) != "b.pdf" {
		t.Fatalf("paths = %v", got)
	}
}

func TestDirMissing(t *testing.T) {
	if _, err := scan.Dir(context.Background(), filepath.Join(t.TempDir(), "absent"), scan.Filter{}, nil); err == nil {
		t.Fatal("expected error for missing inbox")
	}
}

func TestFilterAccepts(t *testing.T) {
	f := scan.Filter{Extensions: []string{".pdf"}, IgnoreHidden: true}
	cases := map[string]bool{
		"a.pdf":   true,
		"A.PDF":   true,
		"a.csv":   false,
		".a.pdf":  false,
		"":        false,
		"pdf":     false,
		"a.pdf~":  false,
		"決算書.pdf": true,
	}
	for name, want := range cases {
		if got := f.Accepts(name); got != want {
			t.Fatalf("Accepts(%q) = %v, want %v", name, got, want)
		}
	}
}
