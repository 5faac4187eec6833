package util

import "testing"

func TestPasswordTooShort(t *testing.T) {
	tests := []struct {
		password string
		short    bool
	}{
		{"", true},
		{"abc", true},
		{"abcd", false},
		{"çãõé", false},
		{"😀", true},
		{"😀😀", false},
	}
	for _, tc := range tests {
		if got := PasswordTooShort(tc.password); got != tc.short {
			t.Fatalf("PasswordTooShort(%q)=%v, want %v", tc.password, got, tc.short)
		}
	}
}

func TestFirstBlank(t *testing.T) {
	name, ok := FirstBlank([2]string{"título", "Holerite"}, [2]string{"data", "  "}, [2]string{"link", ""})
	if !ok || name != "data" {
		t.Fatalf("expected data, got %q %v", name, ok)
	}
	if _, ok := FirstBlank([2]string{"título", "x"}); ok {
		t.Fatal("expected no blank field")
	}
}
