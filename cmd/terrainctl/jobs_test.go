package main

import "testing"

func TestIsTerminal(t *testing.T) {
	cases := map[string]bool{
		"QUEUED":    false,
		"RUNNING":   false,
		"COMPLETED": true,
		"FAILED":    true,
		"CANCELLED": true,
	}
	for status, want := range cases {
		if got := isTerminal(status); got != want {
			t.Errorf("isTerminal(%q) = %v, want %v", status, got, want)
		}
	}
}
