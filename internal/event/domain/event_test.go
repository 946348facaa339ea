package domain

import "testing"

func TestEvent_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{"valid", Event{ID: "annual-gathering-2026", Name: "Annual Gathering"}, false},
		{"dots and underscores", Event{ID: "gala.v2_final", Name: "Gala"}, false},
		{"empty id", Event{ID: "", Name: "Gala"}, true},
		{"uppercase id", Event{ID: "Gala", Name: "Gala"}, true},
		{"colon in id", Event{ID: "ga:la", Name: "Gala"}, true},
		{"missing name", Event{ID: "gala"}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.event.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
