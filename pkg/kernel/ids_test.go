package kernel_test

import (
	"testing"

	"github.com/gatehouse-dev/gatehouse/pkg/kernel"
)

func TestGroupRefIsHref(t *testing.T) {
	cases := []struct {
		ref  string
		want bool
	}{
		{"https://dir.test/v1/groups/admins", true},
		{"http://dir.test/v1/groups/admins", true},
		{"http://x", true},
		{"admins", false},
		{"https-is-not-a-scheme", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := kernel.NewGroupRef(tc.ref).IsHref(); got != tc.want {
			t.Errorf("IsHref(%q) = %v, want %v", tc.ref, got, tc.want)
		}
	}
}
