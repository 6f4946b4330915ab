package config

import (
	"reflect"
	"testing"
)

func TestNormalizeHostEntries(t *testing.T) {
	input := []string{" Example.com ", "http://Example.com/path", "sub.example.com", "https://sub.example.com", "", "example.org."}
	want := []string{"example.com", "sub.example.com", "example.org"}

	got := NormalizeHostEntries(input)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeHostEntries(%v) = %v, want %v", input, got, want)
	}
}

func TestHostBlocklistIsBlocked(t *testing.T) {
	blocklist := NewHostBlocklist([]string{"example.com"})

	cases := []struct {
		input    string
		blocked  bool
		testName string
	}{
		{"http://example.com", true, "exact url"},
		{"example.com", true, "bare host"},
		{"EXAMPLE.COM.", true, "case and trailing dot"},
		{"https://api.example.com/resource", true, "subdomain"},
		{"https://example.net", false, "different domain"},
		{"notexample.com", false, "suffix without dot boundary"},
	}

	for _, tc := range cases {
		if got := blocklist.IsBlocked(tc.input); got != tc.blocked {
			t.Errorf("%s: IsBlocked(%q) = %v, want %v", tc.testName, tc.input, got, tc.blocked)
		}
	}
}

func TestNilHostBlocklistBlocksNothing(t *testing.T) {
	var blocklist *HostBlocklist
	if blocklist.IsBlocked("example.com") {
		t.Fatal("nil blocklist should not block anything")
	}
	if hosts := blocklist.Hosts(); hosts != nil {
		t.Fatalf("Hosts() = %v, want nil", hosts)
	}
}

func TestHostBlocklistHostsSorted(t *testing.T) {
	blocklist := NewHostBlocklist([]string{"b.example", "a.example", "A.example"})
	want := []string{"a.example", "b.example"}
	if got := blocklist.Hosts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Hosts() = %v, want %v", got, want)
	}
}
