package roster

import (
	"path/filepath"
	"testing"
)

func sampleRoster() Roster {
	return FromSubmissions("responses.json", []Submission{
		{Email: "alice@school.edu", Name: "Alice", ResponseID: "resp-1"},
		{Email: "bob@school.edu"},
		{},
	})
}

func TestFromSubmissions(t *testing.T) {
	r := sampleRoster()
	if len(r.Students) != 3 {
		t.Fatalf("expected 3 students, got %d", len(r.Students))
	}
	alice, ok := r.LookupByID("s001")
	if !ok || alice.Name != "Alice" || alice.ResponseID != "resp-1" {
		t.Fatalf("s001 wrong: %+v", alice)
	}
	// missing email gets a synthetic placeholder
	anon, ok := r.LookupByID("s003")
	if !ok || anon.Email != "student3@unknown" {
		t.Fatalf("s003 wrong: %+v", anon)
	}
}

func TestLookupByEmailCaseInsensitive(t *testing.T) {
	r := sampleRoster()
	id, s, ok := r.LookupByEmail("ALICE@School.EDU")
	if !ok || id != "s001" || s.Name != "Alice" {
		t.Fatalf("lookup failed: %v %+v %v", id, s, ok)
	}
	if _, _, ok := r.LookupByEmail("nobody@school.edu"); ok {
		t.Fatalf("unknown email should not resolve")
	}
}

func TestDisplayNameFallbacks(t *testing.T) {
	r := sampleRoster()
	if got := r.DisplayName("s001"); got != "Alice" {
		t.Fatalf("expected name, got %q", got)
	}
	if got := r.DisplayName("s002"); got != "bob@school.edu" {
		t.Fatalf("expected email fallback, got %q", got)
	}
	if got := r.DisplayName("s999"); got != "s999" {
		t.Fatalf("unknown IDs fall back to themselves, got %q", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r := sampleRoster()
	dir := t.TempDir()

	for _, name := range []string{"roster.yaml", "roster.json"} {
		path := filepath.Join(dir, name)
		if err := r.Save(path); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if len(loaded.Students) != 3 {
			t.Fatalf("%s: expected 3 students, got %d", name, len(loaded.Students))
		}
		if s, _ := loaded.LookupByID("s001"); s.Email != "alice@school.edu" {
			t.Fatalf("%s: s001 lost: %+v", name, s)
		}
	}
}

func TestListSorted(t *testing.T) {
	r := sampleRoster()
	ids := r.List()
	if len(ids) != 3 || ids[0] != "s001" || ids[2] != "s003" {
		t.Fatalf("expected sorted IDs, got %v", ids)
	}
}
