package view

import (
	"image"
	"log/slog"

	"github.com/soocke/pixel-ruler-go/domain/raster"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// PhotoView shows the photo being measured and reports left clicks in image
// coordinates.
type PhotoView interface {
	Show(img image.Image)
	OnClick(fn func(x, y int))
}

type photoView struct {
	label   *LabelWidget
	photo   *Img // last Tk photo image; deleted before it is replaced
	onClick func(x, y int)
	logger  *slog.Logger
}

// NewPhotoView creates the photo label at row, spanning cols columns.
// The label has no border or padding so event coordinates equal pixel
// coordinates of the shown image.
func NewPhotoView(row, cols int, logger *slog.Logger) PhotoView {
	placeholder := image.NewNRGBA(image.Rect(0, 0, 320, 200))
	photo := NewPhoto(Data(raster.EncodePNG(placeholder)))
	lbl := Label(Image(photo), Borderwidth(0), Padx(0), Pady(0), Cursor("crosshair"))
	Grid(lbl, Row(row), Column(0), Columnspan(cols), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	v := &photoView{label: lbl, photo: photo, logger: logger}
	Bind(lbl, "<Button-1>", Command(func(e *Event) {
		defer recoverLog(v.logger, "click handler panic")
		if v.onClick != nil {
			v.onClick(e.X, e.Y)
		}
	}))
	return v
}

func (v *photoView) Show(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	png := raster.EncodePNG(img)
	if len(png) == 0 {
		if v.logger != nil {
			v.logger.Error("photo encode failed", "size", img.Bounds().Size().String())
		}
		return
	}
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(png))
	v.label.Configure(Image(v.photo))
}

func (v *photoView) OnClick(fn func(x, y int)) {
	if v != nil {
		v.onClick = fn
	}
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
