package nanoid

import "testing"

func TestPrimaryKey(t *testing.T) {
	gen := PrimaryKey()
	id := gen()
	if len(id) != primaryKeySize {
		t.Errorf("id length = %d, want %d", len(id), primaryKeySize)
	}
	if !IsPrimaryKey(id) {
		t.Errorf("generated id %q failed validation", id)
	}
	if gen() == id {
		t.Error("consecutive ids must differ")
	}
}

func TestIsPrimaryKeyRejectsBadInput(t *testing.T) {
	cases := []string{"", "short", "abcd-efgh_ijk!mn", "has spaces here!"}
	for _, c := range cases {
		if IsPrimaryKey(c) {
			t.Errorf("IsPrimaryKey(%q) = true, want false", c)
		}
	}
}
