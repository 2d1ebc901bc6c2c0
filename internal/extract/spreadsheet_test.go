package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenCSV(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{
			name: "empty cells dropped, rows joined with separator",
			csv:  "a,,b\n,c,\n",
			want: "a b | c",
		},
		{
			name: "single row",
			csv:  "x,y,z",
			want: "x y z",
		},
		{
			name: "fully empty rows dropped",
			csv:  "a,b\n,,\nc,d\n",
			want: "a b | c d",
		},
		{
			name: "variable field counts",
			csv:  "one\ntwo,three,four\n",
			want: "one | two three four",
		},
		{
			name: "quoted cells keep embedded commas",
			csv:  "\"Smith, Jane\",accounting\n",
			want: "Smith, Jane accounting",
		},
		{
			name: "empty input",
			csv:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := flattenCSV([]byte(tt.csv))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
