package gcsuploader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"simple", "gs://bucket/file.csv", "bucket", "file.csv", false},
		{"nested", "gs://bucket/runs/2025/d_customer.csv", "bucket", "runs/2025/d_customer.csv", false},
		{"no scheme", "bucket/file.csv", "", "", true},
		{"no object", "gs://bucket", "", "", true},
		{"empty object", "gs://bucket/", "", "", true},
		{"empty bucket", "gs:///file.csv", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "d_customer.csv", ObjectName("", "out/d_customer.csv"))
	assert.Equal(t, "runs/1/f_transactions.csv", ObjectName("/runs/1/", "/tmp/out/f_transactions.csv"))
	assert.Equal(t, "x/d_macro_economic.csv", ObjectName("x", `C:\data\d_macro_economic.csv`))
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	assert.Equal(t, "file.csv", ExtractFilenameFromGCSURI("gs://bucket/folder/file.csv"))
	assert.Equal(t, "bucket", ExtractFilenameFromGCSURI("gs://bucket"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", contentType("a/B.CSV"))
	assert.Equal(t, "application/octet-stream", contentType("a/b.parquet"))
}
