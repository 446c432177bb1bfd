package errors

import "testing"

func TestValidateSnapshotID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"canonical", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"empty", "", true},
		{"garbage", "not-a-uuid", true},
		{"path traversal", "../../etc/passwd", true},
		{"braced", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}", true},
		{"urn", "urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"uppercase", "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapshotID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSnapshotID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange("ticks", 5, 0, 10); err != nil {
		t.Errorf("in range: %v", err)
	}
	if err := ValidateRange("ticks", 11, 0, 10); err == nil {
		t.Error("above range: expected error")
	}
	if err := ValidateRange("ticks", -1, 0, 10); err == nil {
		t.Error("below range: expected error")
	}
}
