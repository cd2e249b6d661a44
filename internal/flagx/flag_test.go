package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		names []string
		want  []string
	}{
		{
			name:  "separate value",
			args:  []string{"-c", "conf.json", "-a", ":8080"},
			names: []string{"c"},
			want:  []string{"-c", "conf.json"},
		},
		{
			name:  "inline value with double dash",
			args:  []string{"--config=alt.json", "-a", ":8080"},
			names: []string{"config"},
			want:  []string{"--config=alt.json"},
		},
		{
			name:  "names may carry dashes",
			args:  []string{"-t", "5s"},
			names: []string{"-t"},
			want:  []string{"-t", "5s"},
		},
		{
			name:  "unknown flags and positionals dropped",
			args:  []string{"-x", "1", "--y=2", "positional"},
			names: []string{"c", "config"},
			want:  []string{},
		},
		{
			name:  "missing value at end",
			args:  []string{"-c"},
			names: []string{"c"},
			want:  []string{"-c"},
		},
		{
			name:  "next flag is not a value",
			args:  []string{"-c", "-a", ":1"},
			names: []string{"c"},
			want:  []string{"-c"},
		},
		{
			name:  "order and repeats kept",
			args:  []string{"-a", ":1", "-c", "one.json", "-o", "x", "-c", "two.json"},
			names: []string{"a", "c"},
			want:  []string{"-a", ":1", "-c", "one.json", "-c", "two.json"},
		},
		{
			name:  "double dash ends the scan",
			args:  []string{"-a", ":1", "--", "-c", "x.json"},
			names: []string{"a", "c"},
			want:  []string{"-a", ":1"},
		},
		{
			name:  "empty",
			args:  nil,
			names: []string{"c"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pick(tt.args, tt.names...))
		})
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/console/server.json"}, "/etc/console/server.json"},
		{"long", []string{"-a", ":9000", "-config", "/tmp/s.json"}, "/tmp/s.json"},
		{"long with equals", []string{"--config=/tmp/s.json"}, "/tmp/s.json"},
		{"last wins", []string{"-c", "1.json", "-config", "2.json"}, "2.json"},
		{"absent", []string{"-a", ":9000", "-l", "debug"}, ""},
		{"no value", []string{"-c"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigPath(tt.args))
		})
	}
}
