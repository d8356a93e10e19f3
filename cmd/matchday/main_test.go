package main

import (
	"testing"
	"time"
)

func TestParseTimeFlag(t *testing.T) {
	now := time.Date(2021, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		value   string
		want    time.Time
		wantErr bool
	}{
		{value: "72h", want: time.Date(2021, 3, 7, 12, 0, 0, 0, time.UTC)},
		{value: "2021-03-01", want: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)},
		{value: "2021-03-01T18:30:00Z", want: time.Date(2021, 3, 1, 18, 30, 0, 0, time.UTC)},
		{value: "last week", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseTimeFlag(tt.value, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTimeFlag() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("parseTimeFlag() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"snapshot", "refresh", "kits", "plugins", "sources"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("command %q not found: %v", name, err)
		}
	}
}
