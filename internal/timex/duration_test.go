package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string hours", in: `"8760h"`, want: 8760 * time.Hour},
		{name: "string seconds", in: `"3s"`, want: 3 * time.Second},
		{name: "nanoseconds", in: `1500000000`, want: 1500 * time.Millisecond},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
		{name: "malformed", in: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		V Duration `json:"v"`
	}{V: Duration{90 * time.Minute}})
	require.NoError(t, err)
	require.JSONEq(t, `{"v":"1h30m0s"}`, string(b))
}

func TestDuration_YAML(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: "v: 720h\n", want: 720 * time.Hour},
		{name: "quoted string", in: "v: \"90m\"\n", want: 90 * time.Minute},
		{name: "nanoseconds", in: "v: 1500000000\n", want: 1500 * time.Millisecond},
		{name: "bad string", in: "v: soon\n", wantErr: true},
		{name: "list", in: "v: [1, 2]\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				V Duration `yaml:"v"`
			}
			err := yaml.Unmarshal([]byte(tt.in), &out)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, out.V.Duration)
		})
	}

	b, err := yaml.Marshal(struct {
		V Duration `yaml:"v"`
	}{V: Duration{time.Hour}})
	require.NoError(t, err)
	require.Equal(t, "v: 1h0m0s\n", string(b))
}
