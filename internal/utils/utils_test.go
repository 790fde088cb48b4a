package utils

import "testing"

func TestNilIfBlank(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"", nil},
		{"   \t", nil},
		{"BANK-1", ToPtr("BANK-1")},
		{"  0400 000 000 ", ToPtr("0400 000 000")},
	}

	for _, tt := range tests {
		got := NilIfBlank(tt.in)
		if FromPtr(got) != FromPtr(tt.want) || (got == nil) != (tt.want == nil) {
			t.Errorf("NilIfBlank(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTrimPtr(t *testing.T) {
	if got := TrimPtr(nil); got != nil {
		t.Errorf("TrimPtr(nil) = %q, want nil", *got)
	}
	if got := TrimPtr(ToPtr(" ")); got != nil {
		t.Errorf("blank value should become nil, got %q", *got)
	}
	if got := TrimPtr(ToPtr(" 1 Wharf St ")); FromPtr(got) != "1 Wharf St" {
		t.Errorf("TrimPtr = %q, want trimmed value", FromPtr(got))
	}
}

func TestFromPtrZeroValue(t *testing.T) {
	var n *int
	if FromPtr(n) != 0 {
		t.Error("FromPtr(nil) should return the zero value")
	}
	if FromPtr(ToPtr(42)) != 42 {
		t.Error("FromPtr should dereference")
	}
}
