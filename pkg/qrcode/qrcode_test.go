package qrcode_test

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrakshhq/vraksh/pkg/qrcode"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()

		result, err := qrcode.Generate("", 256)
		require.ErrorIs(t, err, qrcode.ErrEmptyContent)
		assert.Nil(t, result)
	})

	t.Run("rejects whitespace-only content", func(t *testing.T) {
		t.Parallel()

		result, err := qrcode.Generate("   \t\n", 256)
		require.ErrorIs(t, err, qrcode.ErrEmptyContent)
		assert.Nil(t, result)
	})

	t.Run("produces a decodable PNG", func(t *testing.T) {
		t.Parallel()

		result, err := qrcode.Generate("https://vraksh.test/alice", 256)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(result))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
	})

	t.Run("non-positive size falls back to default", func(t *testing.T) {
		t.Parallel()

		result, err := qrcode.Generate("https://vraksh.test/alice", 0)
		require.NoError(t, err)

		img, err := png.Decode(bytes.NewReader(result))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
	})
}

func TestGenerateDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.GenerateDataURI("https://vraksh.test/alice", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
