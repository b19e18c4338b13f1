package row

import "testing"

func TestSubnetScope(t *testing.T) {
	tests := []struct {
		name  string
		flags map[string]string
		want  string
	}{
		{"none", map[string]string{}, ""},
		{"all disabled", map[string]string{FieldPrivateToVRF: "false", FieldAdvertisedExternally: "false", FieldSharedBetweenVRFs: "false"}, ""},
		{"private", map[string]string{FieldPrivateToVRF: "enabled"}, "private"},
		{"public", map[string]string{FieldAdvertisedExternally: "enabled"}, "public"},
		{"public replaces private", map[string]string{FieldPrivateToVRF: "enabled", FieldAdvertisedExternally: "enabled"}, "public"},
		{"private shared", map[string]string{FieldPrivateToVRF: "enabled", FieldSharedBetweenVRFs: "enabled"}, "private,shared"},
		{"public shared", map[string]string{FieldAdvertisedExternally: "enabled", FieldSharedBetweenVRFs: "enabled"}, "public,shared"},
		{"all enabled", map[string]string{FieldPrivateToVRF: "enabled", FieldAdvertisedExternally: "enabled", FieldSharedBetweenVRFs: "enabled"}, "public,shared"},
		// No leading separator when neither private nor public is set
		{"shared only has no leading comma", map[string]string{FieldSharedBetweenVRFs: "enabled"}, "shared"},
		{"boolean-like values", map[string]string{FieldPrivateToVRF: "true", FieldSharedBetweenVRFs: "Yes"}, "private,shared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubnetScope(tt.flags); got != tt.want {
				t.Errorf("SubnetScope(%v) = %q, want %q", tt.flags, got, tt.want)
			}
		})
	}
}
