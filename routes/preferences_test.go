package routes

import (
	"reflect"
	"testing"
)

func TestDedupeUintsKeepsOrder(t *testing.T) {
	got := dedupeUints([]uint{1, 1, 2, 3, 2})
	want := []uint{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dedupeUints = %v, want %v", got, want)
	}
}

func TestDedupeStringsKeepsOrder(t *testing.T) {
	got := dedupeStrings([]string{"Monday", "Friday", "Monday"})
	want := []string{"Monday", "Friday"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dedupeStrings = %v, want %v", got, want)
	}
}

func TestDedupeUintsEmpty(t *testing.T) {
	if got := dedupeUints(nil); len(got) != 0 {
		t.Fatalf("dedupeUints(nil) = %v, want empty", got)
	}
}
