package gui

import (
	"fmt"
	"image"
	"io"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/disintegration/imaging"
)

const defaultSaveName = "screenshot.png"

var saveExtensions = []string{".png", ".jpg", ".jpeg"}

// encodeImage writes img in the format named by the file extension. Anything
// other than JPEG is written as PNG.
func encodeImage(w io.Writer, name string, img image.Image) (imaging.Format, error) {
	format, err := imaging.FormatFromFilename(name)
	if err != nil || format != imaging.JPEG {
		format = imaging.PNG
	}
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(95)); err != nil {
		return format, fmt.Errorf("encode %s: %w", format, err)
	}
	return format, nil
}

// saveImage asks for a destination and writes img there, reporting the
// outcome in a dialog on parent.
func saveImage(parent fyne.Window, img image.Image) {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, parent)
			return
		}
		if wc == nil {
			return
		}
		path := wc.URI().Path()
		_, err = encodeImage(wc, wc.URI().Name(), img)
		if cerr := wc.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Printf("Save image to %s failed: %v", path, err)
			dialog.ShowError(fmt.Errorf("could not save image to %s: %w", path, err), parent)
			return
		}
		log.Printf("Image saved to %s", path)
		dialog.ShowInformation("Saved", "Image saved to:\n"+path, parent)
	}, parent)
	d.SetFileName(defaultSaveName)
	d.SetFilter(storage.NewExtensionFileFilter(saveExtensions))
	d.Show()
}
