package vision

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, image.White.C)
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestPrepareImageKeepsSmallImages(t *testing.T) {
	data := encodePNG(t, 200, 100)

	prepared, err := prepareImage(data)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(prepared))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestPrepareImageDownscalesWideImages(t *testing.T) {
	data := encodePNG(t, 2048, 512)

	prepared, err := prepareImage(data)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(prepared))
	require.NoError(t, err)
	assert.Equal(t, maxDimension, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestPrepareImageDownscalesTallImages(t *testing.T) {
	data := encodePNG(t, 512, 2048)

	prepared, err := prepareImage(data)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(prepared))
	require.NoError(t, err)
	assert.Equal(t, maxDimension, img.Bounds().Dy())
}

func TestPrepareImageRejectsGarbage(t *testing.T) {
	_, err := prepareImage([]byte("not an image"))
	assert.Error(t, err)
}

func TestDescribeRejectsEmptyImage(t *testing.T) {
	client := NewClient(&Config{APIKey: "k"})
	_, err := client.Describe(context.Background(), nil, "")
	assert.Error(t, err)
}
