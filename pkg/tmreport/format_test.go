package tmreport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miko-misa/typmark/pkg/tmreport"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    tmreport.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: tmreport.FormatText},
		{name: "text", input: "text", want: tmreport.FormatText},
		{name: "json", input: "json", want: tmreport.FormatJSON},
		{name: "sarif", input: "sarif", want: tmreport.FormatSARIF},
		{name: "unknown format", input: "diff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tmreport.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_IsValid(t *testing.T) {
	tests := []struct {
		format tmreport.Format
		want   bool
	}{
		{tmreport.FormatText, true},
		{tmreport.FormatJSON, true},
		{tmreport.FormatSARIF, true},
		{tmreport.Format("table"), false},
		{tmreport.Format(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  tmreport.Format
		wantErr bool
	}{
		{name: "text reporter", format: tmreport.FormatText},
		{name: "json reporter", format: tmreport.FormatJSON},
		{name: "sarif reporter", format: tmreport.FormatSARIF},
		{name: "empty defaults to text", format: ""},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tmreport.New(tmreport.Options{Format: tt.format})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}
}
