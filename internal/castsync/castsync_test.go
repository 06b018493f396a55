package castsync_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"callsheet/internal/castsync"
	"callsheet/internal/production"
)

var palette = []string{"#e06c75", "#98c379", "#e5c07b", "#61afef"}

func TestResolveCreatesDeterministicPlaceholder(t *testing.T) {
	entries := []production.CastEntry{{Number: 1, Name: "Alice Smith"}}

	got := castsync.Resolve(entries, nil, palette)
	if len(got.Characters) != 1 {
		t.Fatalf("expected 1 character, got %d", len(got.Characters))
	}
	ch := got.Characters[0]
	if ch.ID != "cast-1" {
		t.Fatalf("expected id cast-1, got %q", ch.ID)
	}
	if ch.Initials != "AS" {
		t.Fatalf("expected initials AS, got %q", ch.Initials)
	}
	if ch.AvatarColour != palette[1%len(palette)] {
		t.Fatalf("unexpected colour %q", ch.AvatarColour)
	}
	if ch.Confirmed {
		t.Fatal("placeholder must not be confirmed")
	}
	if len(got.CreatedIDs) != 1 || got.CreatedIDs[0] != "cast-1" {
		t.Fatalf("unexpected created ids %v", got.CreatedIDs)
	}
}

func TestResolveIdempotent(t *testing.T) {
	entries := []production.CastEntry{
		{Number: 1, Name: "Alice Smith"},
		{Number: 2, Name: "Bob Jones"},
	}

	first := castsync.Resolve(entries, nil, palette)
	second := castsync.Resolve(entries, first.Characters, palette)

	if diff := cmp.Diff(first.Characters, second.Characters); diff != "" {
		t.Fatalf("resolution not idempotent (-first +second):\n%s", diff)
	}
	if len(second.CreatedIDs) != 0 {
		t.Fatalf("second pass created %v", second.CreatedIDs)
	}
	if second.Matched != 2 {
		t.Fatalf("expected 2 matches on second pass, got %d", second.Matched)
	}
}

func TestResolveMatchesByFoldedName(t *testing.T) {
	existing := []production.Character{
		{ID: "ch-77", Name: "ALICE SMITH", Confirmed: true},
	}
	entries := []production.CastEntry{{Number: 3, Name: "alice smith"}}

	got := castsync.Resolve(entries, existing, palette)
	if len(got.Characters) != 1 {
		t.Fatalf("expected 1 character, got %d", len(got.Characters))
	}
	ch := got.Characters[0]
	if ch.ID != "ch-77" {
		t.Fatalf("expected existing identity kept, got %q", ch.ID)
	}
	if !ch.Confirmed {
		t.Fatal("confirmed flag must survive resolution")
	}
	if ch.ActorNumber != 3 {
		t.Fatalf("expected actor number backfilled to 3, got %d", ch.ActorNumber)
	}
}

func TestResolveReassignedNumberDoesNotClaimConfirmed(t *testing.T) {
	existing := []production.Character{
		{ID: "ch-bob", Name: "Bob Jones", ActorNumber: 1, Confirmed: true},
	}
	entries := []production.CastEntry{{Number: 1, Name: "Alice Smith"}}

	got := castsync.Resolve(entries, existing, palette)
	if len(got.Characters) != 2 {
		t.Fatalf("expected 2 characters, got %+v", got.Characters)
	}
	var bob, alice *production.Character
	for i := range got.Characters {
		switch got.Characters[i].Name {
		case "Bob Jones":
			bob = &got.Characters[i]
		case "Alice Smith":
			alice = &got.Characters[i]
		}
	}
	if bob == nil || bob.ID != "ch-bob" || !bob.Confirmed {
		t.Fatalf("confirmed character altered: %+v", got.Characters)
	}
	if alice == nil || alice.ID != "cast-1" || alice.Initials != "AS" || alice.Confirmed {
		t.Fatalf("expected cast-1 placeholder for the new name, got %+v", got.Characters)
	}
	if len(got.CreatedIDs) != 1 || got.CreatedIDs[0] != "cast-1" {
		t.Fatalf("unexpected created ids %v", got.CreatedIDs)
	}
}

func TestResolveRenamedPlaceholderKeepsIdentity(t *testing.T) {
	first := castsync.Resolve([]production.CastEntry{{Number: 4, Name: "Day Player"}}, nil, palette)

	second := castsync.Resolve([]production.CastEntry{{Number: 4, Name: "Stunt Double"}}, first.Characters, palette)
	if len(second.Characters) != 1 {
		t.Fatalf("expected 1 character, got %+v", second.Characters)
	}
	ch := second.Characters[0]
	if ch.ID != "cast-4" || ch.Name != "Stunt Double" || ch.Initials != "SD" {
		t.Fatalf("placeholder not renamed in place: %+v", ch)
	}
	if len(second.CreatedIDs) != 0 {
		t.Fatalf("rename created new ids %v", second.CreatedIDs)
	}
}

func TestResolveNeverRemovesExisting(t *testing.T) {
	existing := []production.Character{
		{ID: "ch-9", Name: "Old Timer", ActorNumber: 9, Confirmed: true},
	}
	got := castsync.Resolve(nil, existing, palette)
	if len(got.Characters) != 1 || got.Characters[0].ID != "ch-9" {
		t.Fatalf("existing character dropped: %+v", got.Characters)
	}
}

func TestResolveOrdering(t *testing.T) {
	existing := []production.Character{
		{ID: "ch-a", Name: "Zed Extra"},
		{ID: "ch-b", Name: "Ann Extra"},
	}
	entries := []production.CastEntry{
		{Number: 2, Name: "Bob Jones"},
		{Number: 1, Name: "Alice Smith"},
	}

	got := castsync.Resolve(entries, existing, palette)
	var order []string
	for _, ch := range got.Characters {
		order = append(order, ch.Name)
	}
	want := []string{"Alice Smith", "Bob Jones", "Ann Extra", "Zed Extra"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("unexpected roster order (-want +got):\n%s", diff)
	}
}

func TestInitials(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Alice Smith", "AS"},
		{"Cher", "CH"},
		{"Jean-Luc Picard", "JP"},
		{"", "?"},
		{"X", "X"},
	}
	for _, tc := range cases {
		if got := castsync.Initials(tc.name); got != tc.want {
			t.Errorf("Initials(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
