package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Firmware
		wantErr bool
	}{
		{"1.2.3", Firmware{1, 2, 3}, false},
		{"1.2", Firmware{1, 2, 0}, false},
		{"0.0.0", Firmware{}, false},
		{"1", Firmware{}, true},
		{"1.2.3.4", Firmware{}, true},
		{"a.b.c", Firmware{}, true},
		{"1..3", Firmware{}, true},
		{"", Firmware{}, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.1.0", "1.0.9", 1},
		{"2.0.0", "1.9.9", 1},
		{"1.0.0", "1.0.1", -1},
	}
	for _, tt := range tests {
		a, err := Parse(tt.a)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.a, err)
		}
		b, err := Parse(tt.b)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.b, err)
		}
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if wantNewer := tt.want > 0; a.Newer(b) != wantNewer {
			t.Errorf("Newer(%s, %s) = %v, want %v", tt.a, tt.b, a.Newer(b), wantNewer)
		}
	}
}

func TestString(t *testing.T) {
	v := Firmware{Major: 1, Minor: 2, Patch: 3}
	if got := v.String(); got != "1.2.3" {
		t.Errorf("String() = %q, want 1.2.3", got)
	}
}
