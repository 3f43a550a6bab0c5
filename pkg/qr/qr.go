// Package qr finds and decodes QR codes in still images.
package qr

import (
	"image"
	"iter"

	"github.com/makiuchi-d/gozxing"
	multiqrcode "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Decoder extracts QR payloads from an image.
type Decoder interface {
	// Payloads returns the decoded text of every QR code found in img, in the
	// order the underlying reader reports them. The sequence is finite and can
	// be ranged over again; stopping early skips the remaining work.
	Payloads(img image.Image) iter.Seq[string]
}

type multipleReader interface {
	DecodeMultiple(image *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) ([]*gozxing.Result, error)
}

// ZXing is a Decoder backed by the gozxing port of ZXing.
type ZXing struct {
	multi  multipleReader
	single gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewZXing returns a Decoder that reads byte segments as UTF-8 and tries hard
// on noisy photos.
func NewZXing() *ZXing {
	return &ZXing{
		multi:  multiqrcode.NewQRCodeMultiReader(),
		single: qrcode.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER:    true,
			gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
		},
	}
}

// Payloads implements Decoder. Images without a readable QR code yield an
// empty sequence.
func (z *ZXing) Payloads(img image.Image) iter.Seq[string] {
	return func(yield func(string) bool) {
		bmp, err := gozxing.NewBinaryBitmapFromImage(img)
		if err != nil {
			return
		}

		results, err := z.multi.DecodeMultiple(bmp, z.hints)
		if err != nil || len(results) == 0 {
			// the multi detector misses some symbols the single one finds
			res, err := z.single.Decode(bmp, z.hints)
			if err != nil {
				return
			}
			results = []*gozxing.Result{res}
		}

		for _, res := range results {
			if !yield(res.GetText()) {
				return
			}
		}
	}
}

var _ Decoder = (*ZXing)(nil)
