package dataset

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/scttfrdmn/deepcare-go/pkg/msa"
)

// Channel layout of example images: one 8-bit channel per base, R=A, G=C,
// B=G, alpha=T. Gap and Absent cells are zero in every channel.
var channelOf = map[msa.Code]int{
	msa.BaseA: 0,
	msa.BaseC: 1,
	msa.BaseG: 2,
	msa.BaseT: 3,
}

var codeOfChannel = [4]msa.Code{msa.BaseA, msa.BaseC, msa.BaseG, msa.BaseT}

// WindowImage renders w as a one-hot NRGBA image
func WindowImage(w *msa.Window) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w.Width, w.Height))
	for r := 0; r < w.Height; r++ {
		for c := 0; c < w.Width; c++ {
			ch, ok := channelOf[w.At(r, c)]
			if !ok {
				continue
			}
			img.Pix[img.PixOffset(c, r)+ch] = 0xff
		}
	}
	return img
}

// EncodeWindow returns the PNG encoding of w
func EncodeWindow(w *msa.Window) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, WindowImage(w)); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeWindow reverses EncodeWindow. Gap cells come back as Absent since
// the image does not distinguish them.
func DecodeWindow(data []byte) (*msa.Window, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}

	bounds := img.Bounds()
	w := msa.NewWindow(bounds.Dy(), bounds.Dx())
	for r := 0; r < w.Height; r++ {
		for c := 0; c < w.Width; c++ {
			px := color.NRGBAModel.Convert(img.At(bounds.Min.X+c, bounds.Min.Y+r)).(color.NRGBA)
			code, err := pixelCode([4]uint8{px.R, px.G, px.B, px.A})
			if err != nil {
				return nil, fmt.Errorf("pixel (%d, %d): %w", r, c, err)
			}
			w.Set(r, c, code)
		}
	}
	return w, nil
}

func pixelCode(px [4]uint8) (msa.Code, error) {
	code := msa.Absent
	for ch, v := range px {
		switch v {
		case 0:
		case 0xff:
			if code != msa.Absent {
				return msa.Absent, fmt.Errorf("more than one base channel set: %v", px)
			}
			code = codeOfChannel[ch]
		default:
			return msa.Absent, fmt.Errorf("channel value %d is not one-hot", v)
		}
	}
	return code, nil
}

// Preview colours
var previewPalette = map[msa.Code]color.RGBA{
	msa.Absent: {0xff, 0xff, 0xff, 0xff},
	msa.BaseA:  {0x00, 0xb0, 0x00, 0xff},
	msa.BaseC:  {0x00, 0x40, 0xe0, 0xff},
	msa.BaseG:  {0xff, 0xa5, 0x00, 0xff},
	msa.BaseT:  {0xd0, 0x00, 0x00, 0xff},
	msa.Gap:    {0x80, 0x80, 0x80, 0xff},
}

// previewScale is the pixel size of one cell in preview images
const previewScale = 4

// EncodePreview renders a coloured, enlarged PNG for visual inspection.
// The center column is outlined in black.
func EncodePreview(w *msa.Window) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w.Width*previewScale, w.Height*previewScale))
	center := w.Width / 2

	for r := 0; r < w.Height; r++ {
		for c := 0; c < w.Width; c++ {
			col := previewPalette[w.At(r, c)]
			for dy := 0; dy < previewScale; dy++ {
				for dx := 0; dx < previewScale; dx++ {
					px := col
					if c == center && (dx == 0 || dx == previewScale-1) {
						px = color.RGBA{0, 0, 0, 0xff}
					}
					img.SetRGBA(c*previewScale+dx, r*previewScale+dy, px)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
