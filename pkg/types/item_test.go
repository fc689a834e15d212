package types

import "testing"

func TestItemID_BytesSortOrder(t *testing.T) {
	a := ItemID(1).Bytes()
	b := ItemID(256).Bytes()
	if string(a) >= string(b) {
		t.Errorf("encoded 1 should sort before encoded 256")
	}

	got, err := ItemIDFromBytes(b)
	if err != nil {
		t.Fatalf("ItemIDFromBytes: %v", err)
	}
	if got != 256 {
		t.Errorf("ItemIDFromBytes = %d, want 256", got)
	}

	if _, err := ItemIDFromBytes([]byte{1, 2}); err == nil {
		t.Error("ItemIDFromBytes should reject short input")
	}
}

func TestItemRange(t *testing.T) {
	r := ItemRange{First: 5, Count: 3}
	if r.Last() != 7 {
		t.Errorf("Last() = %d, want 7", r.Last())
	}

	ids := r.IDs()
	if len(ids) != 3 || ids[0] != 5 || ids[2] != 7 {
		t.Errorf("IDs() = %v, want [5 6 7]", ids)
	}

	for _, tt := range []struct {
		id   ItemID
		want bool
	}{
		{4, false},
		{5, true},
		{7, true},
		{8, false},
	} {
		if got := r.Contains(tt.id); got != tt.want {
			t.Errorf("Contains(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}

	if len((ItemRange{First: 9}).IDs()) != 0 {
		t.Error("empty range should expand to no IDs")
	}
}
