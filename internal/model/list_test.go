package model

import (
	"encoding/json"
	"testing"
)

func TestStringListScan(t *testing.T) {
	tests := []struct {
		src  any
		want int
	}{
		{nil, 0},
		{"", 0},
		{`["halal","nut-free"]`, 2},
		{[]byte(`["vegan"]`), 1},
	}

	for _, tt := range tests {
		var l StringList
		if err := l.Scan(tt.src); err != nil {
			t.Fatalf("Scan(%v): %v", tt.src, err)
		}
		if len(l) != tt.want {
			t.Errorf("Scan(%v) len = %d, want %d", tt.src, len(l), tt.want)
		}
	}

	var l StringList
	if err := l.Scan(42); err == nil {
		t.Error("expected error for integer column")
	}
}

func TestNilListsRenderEmpty(t *testing.T) {
	v := Volunteer{FirstName: "Ana"}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out map[string]any
	json.Unmarshal(data, &out)
	if skills, ok := out["skills"].([]any); !ok || len(skills) != 0 {
		t.Errorf("expected empty skills array, got %v", out["skills"])
	}
	if avail, ok := out["availability"].([]any); !ok || len(avail) != 0 {
		t.Errorf("expected empty availability array, got %v", out["availability"])
	}
}

func TestAvailabilityValue(t *testing.T) {
	l := AvailabilityList{{Day: "monday", StartTime: "09:00", EndTime: "12:00"}}
	v, err := l.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var back AvailabilityList
	if err := back.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(back) != 1 || back[0].Day != "monday" {
		t.Errorf("unexpected availability after scan: %+v", back)
	}
}
