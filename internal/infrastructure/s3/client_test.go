package s3

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// TestNewClient tests client construction without contacting the server
func TestNewClient(t *testing.T) {
	c, err := NewClient(&Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "ads-media",
	}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "ads-media", c.bucket)

	_, err = NewClient(&Config{Endpoint: "http://bad endpoint"}, zerolog.Nop())
	require.Error(t, err)
}
