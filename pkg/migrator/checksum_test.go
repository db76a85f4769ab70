package migrator_test

import (
	"regexp"
	"testing"

	"github.com/pseudomuto/scheman/pkg/migrator"
	"github.com/stretchr/testify/require"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]+$`)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "d41d8cd98f00b204e9800998ecf8427e",
		},
		{
			name:     "short input",
			input:    "abc",
			expected: "900150983cd24fb0d6963f7d28e17f72",
		},
		{
			name:     "sentence",
			input:    "The quick brown fox jumps over the lazy dog",
			expected: "9e107d9d372bb6826bd81d3542a419d6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, migrator.Checksum(tt.input))
		})
	}
}

func TestChecksum_Properties(t *testing.T) {
	inputs := []string{
		"",
		"CREATE TABLE users(id INT)\n",
		"INSERT INTO names VALUES ('zoë', '名前');\n",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			sum := migrator.Checksum(input)

			require.Len(t, sum, migrator.ChecksumLength)
			require.Regexp(t, hexDigest, sum)
			require.Equal(t, sum, migrator.Checksum(input))
			require.NotEqual(t, sum, migrator.Checksum(input+" "))
		})
	}
}
