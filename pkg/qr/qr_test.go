package qr_test

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"phishguard/pkg/qr"
	"slices"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/require"
)

func encodeQR(t *testing.T, content string) image.Image {
	t.Helper()

	b, err := qrcode.Encode(content, qrcode.Medium, 256)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)

	return img
}

func TestZXing_Payloads_SingleCode(t *testing.T) {
	d := qr.NewZXing()

	got := slices.Collect(d.Payloads(encodeQR(t, "https://example.com")))
	require.Equal(t, []string{"https://example.com"}, got)
}

func TestZXing_Payloads_NonURLText(t *testing.T) {
	d := qr.NewZXing()

	got := slices.Collect(d.Payloads(encodeQR(t, "hello world")))
	require.Equal(t, []string{"hello world"}, got)
}

func TestZXing_Payloads_UTF8(t *testing.T) {
	d := qr.NewZXing()

	got := slices.Collect(d.Payloads(encodeQR(t, "https://пример.рф/путь")))
	require.Equal(t, []string{"https://пример.рф/путь"}, got)
}

func TestZXing_Payloads_BlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := qr.NewZXing()
	require.Empty(t, slices.Collect(d.Payloads(img)))
}

func TestZXing_Payloads_Restartable(t *testing.T) {
	d := qr.NewZXing()
	seq := d.Payloads(encodeQR(t, "https://example.org/a"))

	require.Equal(t, slices.Collect(seq), slices.Collect(seq))
}
