package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "keeps allowed flag with value",
			args:    []string{"-d", "vault.db", "-l", "debug"},
			allowed: []string{"-d"},
			want:    []string{"-d", "vault.db"},
		},
		{
			name:    "drops unknown flags",
			args:    []string{"-x", "1", "-d", "vault.db"},
			allowed: []string{"-d"},
			want:    []string{"-d", "vault.db"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=/tmp/c.json", "-d=vault.db"},
			allowed: []string{"--config"},
			want:    []string{"--config=/tmp/c.json"},
		},
		{
			name:    "flag followed by another flag keeps no value",
			args:    []string{"-v", "-d", "vault.db"},
			allowed: []string{"-v", "-d"},
			want:    []string{"-v", "-d", "vault.db"},
		},
		{
			name:    "empty input",
			args:    nil,
			allowed: []string{"-d"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"client", "-c", "/tmp/config.json", "-d", "vault.db"}
	assert.Equal(t, "/tmp/config.json", JsonConfigFlags())

	os.Args = []string{"client", "-config=/etc/pv/config.json"}
	assert.Equal(t, "/etc/pv/config.json", JsonConfigFlags())

	os.Args = []string{"client", "-d", "vault.db"}
	assert.Equal(t, "", JsonConfigFlags())
}
