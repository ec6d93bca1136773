package protocol

import "testing"

func TestAll_HasTwelveEntriesInIDOrder(t *testing.T) {
	all := All()
	if len(all) != 12 {
		t.Fatalf("expected 12 protocols, got %d", len(all))
	}
	for i, p := range all {
		if p.ID != i {
			t.Errorf("entry %d has id %d", i, p.ID)
		}
		if p.Name == "" || p.Desc == "" {
			t.Errorf("entry %d has empty name or description", i)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := All()
	a[0].Name = "mutated"

	b := All()
	if b[0].Name != "Normal" {
		t.Errorf("mutating All() result leaked into the table: %q", b[0].Name)
	}
}

func TestByID(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		want    string
		wantErr bool
	}{
		{name: "first entry", id: 0, want: "Normal"},
		{name: "default entry", id: DefaultID, want: "[U] Fastest"},
		{name: "last entry", id: 11, want: "[MT] Fastest"},
		{name: "negative id", id: -1, wantErr: true},
		{name: "one past end", id: 12, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ByID(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ByID(%d) expected error", tt.id)
				}
				return
			}
			if err != nil {
				t.Fatalf("ByID(%d) unexpected error: %v", tt.id, err)
			}
			if p.Name != tt.want {
				t.Errorf("ByID(%d).Name = %q, want %q", tt.id, p.Name, tt.want)
			}
		})
	}
}
